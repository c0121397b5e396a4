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

// Anchor targets single-pool staking contracts whose staker state can be
// read at a block height.
type Anchor struct{}

type AnchorStakerInfoQuery struct {
	Staker      yield.Address `json:"staker"`
	BlockHeight *uint64       `json:"block_height,omitempty"`
}

type AnchorStakerInfoResponse struct {
	Staker        yield.Address `json:"staker"`
	RewardIndex   fixed.Decimal `json:"reward_index"`
	BondAmount    fixed.Uint    `json:"bond_amount"`
	PendingReward fixed.Uint    `json:"pending_reward"`
}

type AnchorUnbondMsg struct {
	Amount fixed.Uint `json:"amount"`
}

func (Anchor) Name() string { return "anchor" }

func (Anchor) SinglePool() bool { return true }

func (Anchor) QueryReward(q Querier, staking, _, staker yield.Address, at *uint64) (RewardInfo, error) {
	var res AnchorStakerInfoResponse
	req := xenv.Tagged("staker_info", AnchorStakerInfoQuery{Staker: staker, BlockHeight: at})
	if err := query(q, staking, req, &res); err != nil {
		return RewardInfo{}, err
	}
	return RewardInfo{BondAmount: res.BondAmount, PendingReward: res.PendingReward}, nil
}

func (Anchor) BondMsg(staking, stakingToken, _ yield.Address, amount fixed.Uint) (xenv.ExecuteMsg, error) {
	return cw20.Send(stakingToken, staking, amount, xenv.Tagged("bond", nil))
}

func (Anchor) UnbondMsg(staking, _, _ yield.Address, amount fixed.Uint) (xenv.ExecuteMsg, error) {
	return xenv.NewExecuteMsg(staking, xenv.Tagged("unbond", AnchorUnbondMsg{Amount: amount}))
}

func (Anchor) ClaimMsg(staking, _, _ yield.Address) (xenv.ExecuteMsg, error) {
	return xenv.NewExecuteMsg(staking, xenv.Tagged("withdraw", nil))
}
