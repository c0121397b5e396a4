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

// Astroport targets generator contracts keyed by LP token, which report
// the deposit and the pending reward through two separate queries.
type Astroport struct{}

type AstroportUserQuery struct {
	LPToken yield.Address `json:"lp_token"`
	User    yield.Address `json:"user"`
}

type AstroportPendingResponse struct {
	Pending        fixed.Uint  `json:"pending"`
	PendingOnProxy *fixed.Uint `json:"pending_on_proxy,omitempty"`
}

type AstroportWithdrawMsg struct {
	LPToken yield.Address `json:"lp_token"`
	Amount  fixed.Uint    `json:"amount"`
}

func (Astroport) Name() string { return "astroport" }

func (Astroport) SinglePool() bool { return false }

func (Astroport) QueryReward(q Querier, staking, pool, staker yield.Address, _ *uint64) (RewardInfo, error) {
	body := AstroportUserQuery{LPToken: pool, User: staker}

	var deposit fixed.Uint
	if err := query(q, staking, xenv.Tagged("deposit", body), &deposit); err != nil {
		return RewardInfo{}, err
	}
	var pending AstroportPendingResponse
	if err := query(q, staking, xenv.Tagged("pending_token", body), &pending); err != nil {
		return RewardInfo{}, err
	}
	return RewardInfo{BondAmount: deposit, PendingReward: pending.Pending}, nil
}

func (Astroport) BondMsg(staking, stakingToken, _ yield.Address, amount fixed.Uint) (xenv.ExecuteMsg, error) {
	return cw20.Send(stakingToken, staking, amount, xenv.Tagged("deposit", nil))
}

func (Astroport) UnbondMsg(staking, _, pool yield.Address, amount fixed.Uint) (xenv.ExecuteMsg, error) {
	return xenv.NewExecuteMsg(staking, xenv.Tagged("withdraw", AstroportWithdrawMsg{LPToken: pool, Amount: amount}))
}

// ClaimMsg withdraws nothing, the generator pays out pending rewards on every withdraw.
func (Astroport) ClaimMsg(staking, _, pool yield.Address) (xenv.ExecuteMsg, error) {
	return xenv.NewExecuteMsg(staking, xenv.Tagged("withdraw", AstroportWithdrawMsg{LPToken: pool, Amount: fixed.ZeroUint()}))
}
