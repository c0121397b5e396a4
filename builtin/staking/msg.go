// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/specfarm/farmd/fixed"
	"github.com/specfarm/farmd/yield"
)

type InstantiateMsg struct {
	RewardToken yield.Address `json:"reward_token"`
	// StakingToken is the pool addressed by messages that name none.
	StakingToken *yield.Address `json:"staking_token,omitempty"`
}

// BondHook is the receive payload of "bond" and "deposit". The pool
// defaults to the token that was sent.
type BondHook struct {
	AssetToken *yield.Address `json:"asset_token,omitempty"`
}

// AccrueHook distributes the received reward tokens to the bonders of a pool.
type AccrueHook struct {
	Pool *yield.Address `json:"pool,omitempty"`
}

type UnbondMsg struct {
	AssetToken *yield.Address `json:"asset_token,omitempty"`
	Amount     fixed.Uint     `json:"amount"`
}

// WithdrawMsg claims rewards. With LPToken set it also unbonds Amount.
type WithdrawMsg struct {
	AssetToken *yield.Address `json:"asset_token,omitempty"`
	LPToken    *yield.Address `json:"lp_token,omitempty"`
	Amount     *fixed.Uint    `json:"amount,omitempty"`
}

// SetDeferPayoutMsg makes withdrawals keep rewards pending instead of paying them.
type SetDeferPayoutMsg struct {
	Defer bool `json:"defer"`
}

type PoolQuery struct {
	Pool yield.Address `json:"pool"`
}

type PoolResponse struct {
	StakingToken yield.Address `json:"staking_token"`
	TotalBond    fixed.Uint    `json:"total_bond"`
	RewardIndex  fixed.Decimal `json:"reward_index"`
}
