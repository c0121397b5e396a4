// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"github.com/specfarm/farmd/fixed"
	"github.com/specfarm/farmd/yield"
)

// InstantiateMsg configures a farm. Owner defaults to the instantiating sender.
type InstantiateMsg struct {
	Owner             *yield.Address `json:"owner,omitempty"`
	StakingContract   yield.Address  `json:"staking_contract"`
	RewardToken       yield.Address  `json:"reward_token"`
	PairedAsset       yield.Address  `json:"paired_asset"`
	Router            yield.Address  `json:"router"`
	Governance        yield.Address  `json:"governance"`
	Platform          yield.Address  `json:"platform"`
	Controller        yield.Address  `json:"controller"`
	PlatformFeeRate   fixed.Decimal  `json:"platform_fee_rate"`
	ControllerFeeRate fixed.Decimal  `json:"controller_fee_rate"`
	CommunityFeeRate  fixed.Decimal  `json:"community_fee_rate"`
	MaxSpread         fixed.Decimal  `json:"max_spread"`
	Adapter           string         `json:"adapter"`
}

// BondHook is the receive payload that bonds the sent staking tokens.
type BondHook struct {
	StakerAddr *yield.Address `json:"staker_addr,omitempty"`
}

type UnbondMsg struct {
	StakingToken yield.Address `json:"staking_token"`
	Share        fixed.Uint    `json:"share"`
}

type WithdrawMsg struct {
	StakingToken *yield.Address `json:"staking_token,omitempty"`
}

type CompoundMsg struct {
	StakingTokens []yield.Address `json:"staking_tokens,omitempty"`
}

// UpdateConfigMsg changes the fields that are set.
type UpdateConfigMsg struct {
	Owner             *yield.Address `json:"owner,omitempty"`
	Router            *yield.Address `json:"router,omitempty"`
	Governance        *yield.Address `json:"governance,omitempty"`
	Platform          *yield.Address `json:"platform,omitempty"`
	Controller        *yield.Address `json:"controller,omitempty"`
	PlatformFeeRate   *fixed.Decimal `json:"platform_fee_rate,omitempty"`
	ControllerFeeRate *fixed.Decimal `json:"controller_fee_rate,omitempty"`
	CommunityFeeRate  *fixed.Decimal `json:"community_fee_rate,omitempty"`
	MaxSpread         *fixed.Decimal `json:"max_spread,omitempty"`
}

type RegisterPoolMsg struct {
	StakingToken yield.Address  `json:"staking_token"`
	ExternalID   *yield.Address `json:"external_id,omitempty"`
	StakeRatio   *fixed.Decimal `json:"stake_ratio,omitempty"`
}

type UpdatePoolMsg struct {
	StakingToken yield.Address `json:"staking_token"`
	StakeRatio   fixed.Decimal `json:"stake_ratio"`
}

// MigrateMsg carries nothing, the stored version selects the steps to run.
type MigrateMsg struct{}

type PoolQuery struct {
	StakingToken yield.Address `json:"staking_token"`
}

type RewardInfoQuery struct {
	Staker       yield.Address  `json:"staker"`
	StakingToken *yield.Address `json:"staking_token,omitempty"`
}

type PoolResponse struct {
	StakingToken       yield.Address `json:"staking_token"`
	ExternalID         yield.Address `json:"external_id"`
	TotalBondAmount    fixed.Uint    `json:"total_bond_amount"`
	TotalShareAmount   fixed.Uint    `json:"total_share_amount"`
	ExchangeRate       fixed.Decimal `json:"exchange_rate"`
	RewardIndex        fixed.Decimal `json:"reward_index"`
	StakeRatio         fixed.Decimal `json:"stake_ratio"`
	LastCompoundHeight uint64        `json:"last_compound_height"`
	LastCompoundTime   uint64        `json:"last_compound_time"`
	Version            uint64        `json:"version"`
}

type PoolsResponse struct {
	Pools []PoolResponse `json:"pools"`
}

type RewardInfoItem struct {
	StakingToken          yield.Address `json:"staking_token"`
	BondShare             fixed.Uint    `json:"bond_share"`
	BondAmount            fixed.Uint    `json:"bond_amount"`
	PendingReward         fixed.Uint    `json:"pending_reward"`
	PendingExternalReward fixed.Uint    `json:"pending_external_reward"`
}

type RewardInfoResponse struct {
	Staker      yield.Address    `json:"staker"`
	RewardInfos []RewardInfoItem `json:"reward_infos"`
}

type ContractInfoResponse struct {
	Name    string `json:"name"`
	Version uint64 `json:"version"`
}
