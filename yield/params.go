// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package yield

// Gas schedule of contract execution.
const (
	SloadGas       uint64 = 200
	SstoreSetGas   uint64 = 20000
	SstoreResetGas uint64 = 5000
	QueryGas       uint64 = 1000 // per cross-contract query
	MessageGas     uint64 = 2000 // per dispatched sub-message

	// DefaultTxGasLimit is the gas limit applied to a transaction when none is given.
	DefaultTxGasLimit uint64 = 10 * 1000 * 1000
	// MaxCallDepth bounds sub-message nesting.
	MaxCallDepth = 16
)
