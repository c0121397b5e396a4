// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"crypto/rand"

	"github.com/specfarm/farmd/yield"
)

func RandomHash() yield.Bytes32 {
	var b32 yield.Bytes32

	rand.Read(b32[:])
	return b32
}

func RandAddress() yield.Address {
	var addr yield.Address

	rand.Read(addr[:])
	return addr
}

func RandAddresses(n int) []yield.Address {
	addrs := make([]yield.Address, n)
	for i := range n {
		addrs[i] = RandAddress()
	}
	return addrs
}
