// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"sync/atomic"

	"github.com/specfarm/farmd/yield"
)

// DevAccount is a named account of development scenarios.
type DevAccount struct {
	Name    string
	Address yield.Address
}

var devAccounts atomic.Value

// DevAddress derives the address of a named account.
func DevAddress(name string) yield.Address {
	h := yield.Blake2b([]byte("dev-account"), []byte(name))
	return yield.BytesToAddress(h[12:])
}

// DevAccounts returns the accounts scenarios use when none are named.
func DevAccounts() []DevAccount {
	if accs := devAccounts.Load(); accs != nil {
		return accs.([]DevAccount)
	}

	var accs []DevAccount
	for _, name := range []string{"owner", "alice", "bob", "carol", "controller", "platform"} {
		accs = append(accs, DevAccount{Name: name, Address: DevAddress(name)})
	}
	devAccounts.Store(accs)
	return accs
}
