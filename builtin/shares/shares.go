// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package shares converts between bonded amounts and pool shares.
//
// A pool holds totalBond units of the bonded asset represented by totalShare
// shares. Depositing mints shares at the current rate, withdrawing burns them,
// and compounding raises totalBond without minting, so every holder's claim
// grows pro rata. Every division floors, which favors the pool.
package shares

import (
	"github.com/specfarm/farmd/fixed"
)

// ToShares returns the shares minted for deposit against the pre-deposit totals.
// An empty pool mints 1:1.
func ToShares(deposit, totalBond, totalShare fixed.Uint) (fixed.Uint, error) {
	if totalBond.IsZero() || totalShare.IsZero() {
		return deposit, nil
	}
	return deposit.MulDiv(totalShare, totalBond)
}

// ToAmount returns the bonded amount that share is worth.
func ToAmount(share, totalBond, totalShare fixed.Uint) (fixed.Uint, error) {
	if totalShare.IsZero() {
		return fixed.Uint{}, nil
	}
	return share.MulDiv(totalBond, totalShare)
}

// ExchangeRate returns bonded amount per share, 1 for an empty pool.
func ExchangeRate(totalBond, totalShare fixed.Uint) (fixed.Decimal, error) {
	if totalShare.IsZero() {
		return fixed.OneDecimal(), nil
	}
	return fixed.NewDecimalFromRatio(totalBond, totalShare)
}
