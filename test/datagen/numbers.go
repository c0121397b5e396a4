// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	mathrand "math/rand/v2"

	"github.com/specfarm/farmd/fixed"
)

// RandAmount returns a random amount in [1, max].
func RandAmount(max uint64) fixed.Uint {
	return fixed.NewUint(mathrand.Uint64N(max) + 1) //#nosec G404
}
