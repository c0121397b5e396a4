// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking is an external staking protocol farms bond into. One
// contract answers the mirror, anchor and astroport message dialects, so
// every adapter can be exercised against it.
package staking

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/log"

	"github.com/specfarm/farmd/builtin/adapter"
	"github.com/specfarm/farmd/builtin/cw20"
	"github.com/specfarm/farmd/builtin/reverts"
	"github.com/specfarm/farmd/fixed"
	"github.com/specfarm/farmd/xenv"
	"github.com/specfarm/farmd/yield"
)

const Kind = "staking"

var logger = log.New("pkg", "staking")

type Contract struct{}

var _ xenv.Contract = Contract{}

func (Contract) Instantiate(env *xenv.Environment, msg []byte) (*xenv.Response, error) {
	var init InstantiateMsg
	if err := xenv.DecodeBody(msg, &init); err != nil {
		return nil, err
	}
	if init.RewardToken.IsZero() {
		return nil, reverts.New(reverts.InvalidInput, "reward token required")
	}
	cfg := &config{Owner: env.Caller(), RewardToken: init.RewardToken}
	if init.StakingToken != nil {
		cfg.StakingToken = *init.StakingToken
	}
	if err := newState(env).config.Upsert(cfg); err != nil {
		return nil, err
	}
	return xenv.NewResponse().AddAttribute("action", "instantiate"), nil
}

func (Contract) Execute(env *xenv.Environment, msg []byte) (*xenv.Response, error) {
	tag, body, err := xenv.SplitTagged(msg)
	if err != nil {
		return nil, err
	}
	s := newState(env)

	switch tag {
	case "receive":
		var m cw20.ReceiveMsg
		if err := xenv.DecodeBody(body, &m); err != nil {
			return nil, err
		}
		return receive(env, s, m)
	case "unbond":
		var m UnbondMsg
		if err := xenv.DecodeBody(body, &m); err != nil {
			return nil, err
		}
		poolAddr, p, err := s.resolvePool(m.AssetToken)
		if err != nil {
			return nil, err
		}
		return unbond(env, s, poolAddr, p, m.Amount, false)
	case "withdraw":
		var m WithdrawMsg
		if err := xenv.DecodeBody(body, &m); err != nil {
			return nil, err
		}
		return withdraw(env, s, m)
	case "set_defer_payout":
		var m SetDeferPayoutMsg
		if err := xenv.DecodeBody(body, &m); err != nil {
			return nil, err
		}
		cfg, err := s.getConfig()
		if err != nil {
			return nil, err
		}
		if env.Caller() != cfg.Owner {
			return nil, reverts.New(reverts.Unauthorized, "only the owner can defer payouts")
		}
		cfg.DeferPayout = m.Defer
		if err := s.config.Upsert(cfg); err != nil {
			return nil, err
		}
		return xenv.NewResponse().AddAttribute("action", "set_defer_payout").AddAttribute("defer", m.Defer), nil
	}
	return nil, reverts.Errorf(reverts.InvalidInput, "unknown execute message %q", tag)
}

func receive(env *xenv.Environment, s *state, m cw20.ReceiveMsg) (*xenv.Response, error) {
	tag, body, err := xenv.SplitTagged(m.Msg)
	if err != nil {
		return nil, err
	}
	switch tag {
	case "bond", "deposit":
		var hook BondHook
		if err := xenv.DecodeBody(body, &hook); err != nil {
			return nil, err
		}
		poolAddr := env.Caller()
		if hook.AssetToken != nil {
			poolAddr = *hook.AssetToken
		}
		return bond(env, s, m.Sender, poolAddr, m.Amount)
	case "accrue":
		var hook AccrueHook
		if err := xenv.DecodeBody(body, &hook); err != nil {
			return nil, err
		}
		return accrue(env, s, hook.Pool, m.Amount)
	}
	return nil, reverts.Errorf(reverts.InvalidInput, "unknown receive hook %q", tag)
}

func bond(env *xenv.Environment, s *state, sender, poolAddr yield.Address, amount fixed.Uint) (*xenv.Response, error) {
	if amount.IsZero() {
		return nil, reverts.New(reverts.InvalidInput, "invalid zero amount")
	}
	p, found, err := s.pools.Get(poolAddr)
	if err != nil {
		return nil, err
	}
	if !found {
		p.StakingToken = env.Caller()
	} else if p.StakingToken != env.Caller() {
		return nil, reverts.Errorf(reverts.InvalidInput, "pool %v stakes %v, not %v", poolAddr, p.StakingToken, env.Caller())
	}

	st, stFound, err := s.getStaker(sender, poolAddr)
	if err != nil {
		return nil, err
	}
	if err := st.settle(p); err != nil {
		return nil, err
	}
	st.Bond = st.Bond.Add(amount)
	p.TotalBond = p.TotalBond.Add(amount)

	if err := s.setStaker(sender, poolAddr, st, !stFound); err != nil {
		return nil, err
	}
	if err := s.pools.Set(poolAddr, p, !found); err != nil {
		return nil, err
	}
	return xenv.NewResponse().
		AddAttribute("action", "bond").
		AddAttribute("staker", sender).
		AddAttribute("pool", poolAddr).
		AddAttribute("amount", amount), nil
}

func accrue(env *xenv.Environment, s *state, explicit *yield.Address, amount fixed.Uint) (*xenv.Response, error) {
	cfg, err := s.getConfig()
	if err != nil {
		return nil, err
	}
	if env.Caller() != cfg.RewardToken {
		return nil, reverts.New(reverts.Unauthorized, "only reward tokens can be accrued")
	}
	poolAddr, p, err := s.resolvePool(explicit)
	if err != nil {
		return nil, err
	}
	if p.TotalBond.IsZero() {
		return nil, reverts.Errorf(reverts.InvalidInput, "pool %v has no bond to reward", poolAddr)
	}
	perBond, err := fixed.NewDecimalFromRatio(amount, p.TotalBond)
	if err != nil {
		return nil, err
	}
	p.RewardIndex = p.RewardIndex.Add(perBond)
	if err := s.pools.Set(poolAddr, p, false); err != nil {
		return nil, err
	}
	logger.Debug("reward accrued", "pool", poolAddr, "amount", amount, "index", p.RewardIndex)
	return xenv.NewResponse().
		AddAttribute("action", "accrue").
		AddAttribute("pool", poolAddr).
		AddAttribute("amount", amount), nil
}

// unbond returns amount to the caller. With claim set the pending reward is paid too.
func unbond(env *xenv.Environment, s *state, poolAddr yield.Address, p *pool, amount fixed.Uint, claim bool) (*xenv.Response, error) {
	caller := env.Caller()
	st, found, err := s.getStaker(caller, poolAddr)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, reverts.Errorf(reverts.UnknownUser, "%v has nothing bonded in %v", caller, poolAddr)
	}
	if err := st.settle(p); err != nil {
		return nil, err
	}
	if st.Bond, err = st.Bond.Sub(amount); err != nil {
		return nil, reverts.Errorf(reverts.InsufficientBalance, "unbond %v exceeds bond", amount)
	}
	if p.TotalBond, err = p.TotalBond.Sub(amount); err != nil {
		return nil, err
	}

	res := xenv.NewResponse().
		AddAttribute("action", "unbond").
		AddAttribute("staker", caller).
		AddAttribute("pool", poolAddr).
		AddAttribute("amount", amount)
	if claim {
		if err := payout(s, st, caller, res); err != nil {
			return nil, err
		}
	}
	if !amount.IsZero() {
		transfer, err := cw20.Transfer(p.StakingToken, caller, amount)
		if err != nil {
			return nil, err
		}
		res.AddMessage(transfer)
	}
	if err := s.setStaker(caller, poolAddr, st, false); err != nil {
		return nil, err
	}
	if err := s.pools.Set(poolAddr, p, false); err != nil {
		return nil, err
	}
	return res, nil
}

func withdraw(env *xenv.Environment, s *state, m WithdrawMsg) (*xenv.Response, error) {
	caller := env.Caller()
	if m.LPToken != nil {
		poolAddr, p, err := s.resolvePool(m.LPToken)
		if err != nil {
			return nil, err
		}
		amount := fixed.ZeroUint()
		if m.Amount != nil {
			amount = *m.Amount
		}
		return unbond(env, s, poolAddr, p, amount, true)
	}

	var pools []yield.Address
	if m.AssetToken != nil {
		pools = []yield.Address{*m.AssetToken}
	} else {
		var err error
		if pools, err = s.stakerPools(caller); err != nil {
			return nil, err
		}
	}

	res := xenv.NewResponse().AddAttribute("action", "withdraw").AddAttribute("staker", caller)
	for _, poolAddr := range pools {
		addr := poolAddr
		_, p, err := s.resolvePool(&addr)
		if err != nil {
			return nil, err
		}
		st, found, err := s.getStaker(caller, poolAddr)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		if err := st.settle(p); err != nil {
			return nil, err
		}
		if err := payout(s, st, caller, res); err != nil {
			return nil, err
		}
		if err := s.setStaker(caller, poolAddr, st, false); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// payout pays the settled pending reward of st to addr, unless payouts are deferred.
func payout(s *state, st *staker, addr yield.Address, res *xenv.Response) error {
	cfg, err := s.getConfig()
	if err != nil {
		return err
	}
	if cfg.DeferPayout || st.Pending.IsZero() {
		return nil
	}
	transfer, err := cw20.Transfer(cfg.RewardToken, addr, st.Pending)
	if err != nil {
		return err
	}
	res.AddMessage(transfer).AddAttribute("reward", st.Pending)
	st.Pending = fixed.ZeroUint()
	return nil
}

func (Contract) Query(env *xenv.Environment, msg []byte) ([]byte, error) {
	tag, body, err := xenv.SplitTagged(msg)
	if err != nil {
		return nil, err
	}
	s := newState(env)

	switch tag {
	case "reward_info":
		var q adapter.MirrorRewardInfoQuery
		if err := xenv.DecodeBody(body, &q); err != nil {
			return nil, err
		}
		pools := []yield.Address{}
		if q.AssetToken != nil {
			pools = append(pools, *q.AssetToken)
		} else if pools, err = s.stakerPools(q.StakerAddr); err != nil {
			return nil, err
		}
		res := adapter.MirrorRewardInfoResponse{StakerAddr: q.StakerAddr, RewardInfos: []adapter.MirrorRewardInfo{}}
		for _, poolAddr := range pools {
			st, err := s.view(q.StakerAddr, poolAddr)
			if err != nil {
				return nil, err
			}
			if st.isEmpty() {
				continue
			}
			res.RewardInfos = append(res.RewardInfos, adapter.MirrorRewardInfo{
				AssetToken:    poolAddr,
				BondAmount:    st.Bond,
				PendingReward: st.Pending,
			})
		}
		return json.Marshal(res)

	case "staker_info":
		// state is not versioned, the block height is accepted and the latest state returned
		var q adapter.AnchorStakerInfoQuery
		if err := xenv.DecodeBody(body, &q); err != nil {
			return nil, err
		}
		cfg, err := s.getConfig()
		if err != nil {
			return nil, err
		}
		st, err := s.view(q.Staker, cfg.StakingToken)
		if err != nil {
			return nil, err
		}
		return json.Marshal(adapter.AnchorStakerInfoResponse{
			Staker:        q.Staker,
			RewardIndex:   st.Index,
			BondAmount:    st.Bond,
			PendingReward: st.Pending,
		})

	case "deposit", "pending_token":
		var q adapter.AstroportUserQuery
		if err := xenv.DecodeBody(body, &q); err != nil {
			return nil, err
		}
		st, err := s.view(q.User, q.LPToken)
		if err != nil {
			return nil, err
		}
		if tag == "deposit" {
			return json.Marshal(st.Bond)
		}
		return json.Marshal(adapter.AstroportPendingResponse{Pending: st.Pending})

	case "pool":
		var q PoolQuery
		if err := xenv.DecodeBody(body, &q); err != nil {
			return nil, err
		}
		p, found, err := s.pools.Get(q.Pool)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, reverts.Errorf(reverts.UnknownPool, "no pool %v", q.Pool)
		}
		return json.Marshal(PoolResponse{StakingToken: p.StakingToken, TotalBond: p.TotalBond, RewardIndex: p.RewardIndex})
	}
	return nil, reverts.Errorf(reverts.InvalidInput, "unknown query %q", tag)
}
