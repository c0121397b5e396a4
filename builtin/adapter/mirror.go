// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package adapter

import (
	"github.com/specfarm/farmd/builtin/cw20"
	"github.com/specfarm/farmd/fixed"
	"github.com/specfarm/farmd/xenv"
	"github.com/specfarm/farmd/yield"
)

// Mirror targets multi-pool staking contracts keyed by asset token.
type Mirror struct{}

type MirrorRewardInfoQuery struct {
	StakerAddr yield.Address  `json:"staker_addr"`
	AssetToken *yield.Address `json:"asset_token,omitempty"`
}

type MirrorRewardInfo struct {
	AssetToken    yield.Address `json:"asset_token"`
	BondAmount    fixed.Uint    `json:"bond_amount"`
	PendingReward fixed.Uint    `json:"pending_reward"`
}

type MirrorRewardInfoResponse struct {
	StakerAddr  yield.Address      `json:"staker_addr"`
	RewardInfos []MirrorRewardInfo `json:"reward_infos"`
}

type MirrorBondHook struct {
	AssetToken yield.Address `json:"asset_token"`
}

type MirrorUnbondMsg struct {
	AssetToken yield.Address `json:"asset_token"`
	Amount     fixed.Uint    `json:"amount"`
}

type MirrorWithdrawMsg struct {
	AssetToken *yield.Address `json:"asset_token,omitempty"`
}

func (Mirror) Name() string { return "mirror" }

func (Mirror) SinglePool() bool { return false }

func (Mirror) QueryReward(q Querier, staking, pool, staker yield.Address, _ *uint64) (RewardInfo, error) {
	var res MirrorRewardInfoResponse
	req := xenv.Tagged("reward_info", MirrorRewardInfoQuery{StakerAddr: staker, AssetToken: &pool})
	if err := query(q, staking, req, &res); err != nil {
		return RewardInfo{}, err
	}

	var info RewardInfo
	for _, ri := range res.RewardInfos {
		if ri.AssetToken != pool {
			continue
		}
		info.BondAmount = info.BondAmount.Add(ri.BondAmount)
		info.PendingReward = info.PendingReward.Add(ri.PendingReward)
	}
	return info, nil
}

func (Mirror) BondMsg(staking, stakingToken, pool yield.Address, amount fixed.Uint) (xenv.ExecuteMsg, error) {
	return cw20.Send(stakingToken, staking, amount, xenv.Tagged("bond", MirrorBondHook{AssetToken: pool}))
}

func (Mirror) UnbondMsg(staking, _, pool yield.Address, amount fixed.Uint) (xenv.ExecuteMsg, error) {
	return xenv.NewExecuteMsg(staking, xenv.Tagged("unbond", MirrorUnbondMsg{AssetToken: pool, Amount: amount}))
}

func (Mirror) ClaimMsg(staking, _, pool yield.Address) (xenv.ExecuteMsg, error) {
	return xenv.NewExecuteMsg(staking, xenv.Tagged("withdraw", MirrorWithdrawMsg{AssetToken: &pool}))
}
