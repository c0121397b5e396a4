// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"github.com/specfarm/farmd/builtin/adapter"
	"github.com/specfarm/farmd/builtin/cw20"
	"github.com/specfarm/farmd/builtin/reverts"
	"github.com/specfarm/farmd/builtin/shares"
	"github.com/specfarm/farmd/fixed"
	"github.com/specfarm/farmd/xenv"
	"github.com/specfarm/farmd/yield"
)

// reconcile refreshes the pool's bond total from what the external
// protocol reports for the farm.
func reconcile(env *xenv.Environment, cfg *Config, ad adapter.Adapter, pool *PoolInfo) error {
	info, err := ad.QueryReward(env, cfg.StakingContract, pool.ExternalID, env.Contract(), nil)
	if err != nil {
		return err
	}
	if info.BondAmount.Cmp(pool.TotalBondAmount) != 0 {
		logger.Debug("bond reconciled", "pool", pool.StakingToken, "ledger", pool.TotalBondAmount, "external", info.BondAmount)
	}
	pool.TotalBondAmount = info.BondAmount
	return nil
}

func bond(env *xenv.Environment, s *state, user yield.Address, amount fixed.Uint) (*xenv.Response, error) {
	if amount.IsZero() {
		return nil, reverts.New(reverts.InvalidInput, "invalid zero amount")
	}
	cfg, err := s.getConfig()
	if err != nil {
		return nil, err
	}
	ad, err := adapter.New(cfg.Adapter)
	if err != nil {
		return nil, err
	}
	// the pool is the token contract delivering the receive hook
	pool, err := s.getPool(env.Caller())
	if err != nil {
		return nil, err
	}
	if err := reconcile(env, cfg, ad, pool); err != nil {
		return nil, err
	}

	reward, found, err := s.getReward(user, pool.StakingToken)
	if err != nil {
		return nil, err
	}
	if err := reward.settle(pool); err != nil {
		return nil, err
	}

	share, err := shares.ToShares(amount, pool.TotalBondAmount, pool.TotalShareAmount)
	if err != nil {
		return nil, err
	}
	if share.IsZero() {
		return nil, reverts.Errorf(reverts.InvalidInput, "deposit %v is too small to mint a share", amount)
	}

	reward.BondShare = reward.BondShare.Add(share)
	pool.TotalBondAmount = pool.TotalBondAmount.Add(amount)
	pool.TotalShareAmount = pool.TotalShareAmount.Add(share)

	if err := s.setReward(user, pool.StakingToken, reward, !found); err != nil {
		return nil, err
	}
	if err := s.setPool(pool); err != nil {
		return nil, err
	}

	stake, err := ad.BondMsg(cfg.StakingContract, pool.StakingToken, pool.ExternalID, amount)
	if err != nil {
		return nil, err
	}
	return xenv.NewResponse().
		AddMessage(stake).
		AddAttribute("action", "bond").
		AddAttribute("staker", user).
		AddAttribute("staking_token", pool.StakingToken).
		AddAttribute("amount", amount).
		AddAttribute("share", share), nil
}

func unbond(env *xenv.Environment, s *state, user yield.Address, m UnbondMsg) (*xenv.Response, error) {
	if m.Share.IsZero() {
		return nil, reverts.New(reverts.InvalidInput, "invalid zero share")
	}
	cfg, err := s.getConfig()
	if err != nil {
		return nil, err
	}
	ad, err := adapter.New(cfg.Adapter)
	if err != nil {
		return nil, err
	}
	pool, err := s.getPool(m.StakingToken)
	if err != nil {
		return nil, err
	}
	reward, found, err := s.getReward(user, pool.StakingToken)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, reverts.Errorf(reverts.UnknownUser, "%v has no position in %v", user, pool.StakingToken)
	}
	if reward.BondShare.Lt(m.Share) {
		return nil, reverts.Errorf(reverts.InsufficientBalance, "unbond %v shares, hold %v", m.Share, reward.BondShare)
	}

	if err := reconcile(env, cfg, ad, pool); err != nil {
		return nil, err
	}
	if err := reward.settle(pool); err != nil {
		return nil, err
	}

	amount, err := shares.ToAmount(m.Share, pool.TotalBondAmount, pool.TotalShareAmount)
	if err != nil {
		return nil, err
	}
	if amount.IsZero() {
		return nil, reverts.Errorf(reverts.InvalidInput, "%v shares are worth nothing", m.Share)
	}

	if reward.BondShare, err = reward.BondShare.Sub(m.Share); err != nil {
		return nil, err
	}
	if pool.TotalShareAmount, err = pool.TotalShareAmount.Sub(m.Share); err != nil {
		return nil, err
	}
	if pool.TotalBondAmount, err = pool.TotalBondAmount.Sub(amount); err != nil {
		return nil, err
	}

	if err := s.setReward(user, pool.StakingToken, reward, false); err != nil {
		return nil, err
	}
	if err := s.setPool(pool); err != nil {
		return nil, err
	}

	unstake, err := ad.UnbondMsg(cfg.StakingContract, pool.StakingToken, pool.ExternalID, amount)
	if err != nil {
		return nil, err
	}
	payout, err := cw20.Transfer(pool.StakingToken, user, amount)
	if err != nil {
		return nil, err
	}
	return xenv.NewResponse().
		AddMessage(unstake).
		AddMessage(payout).
		AddAttribute("action", "unbond").
		AddAttribute("staker", user).
		AddAttribute("staking_token", pool.StakingToken).
		AddAttribute("amount", amount).
		AddAttribute("share", m.Share), nil
}

// withdraw pays out the distributed rewards of user, in one pool or all of them.
func withdraw(env *xenv.Environment, s *state, user yield.Address, m WithdrawMsg) (*xenv.Response, error) {
	cfg, err := s.getConfig()
	if err != nil {
		return nil, err
	}

	var tokens []yield.Address
	if m.StakingToken != nil {
		tokens = []yield.Address{*m.StakingToken}
	} else if tokens, err = s.userPools(user); err != nil {
		return nil, err
	}

	total := fixed.ZeroUint()
	for _, token := range tokens {
		pool, err := s.getPool(token)
		if err != nil {
			return nil, err
		}
		reward, found, err := s.getReward(user, token)
		if err != nil {
			return nil, err
		}
		if !found {
			if m.StakingToken != nil {
				return nil, reverts.Errorf(reverts.UnknownUser, "%v has no position in %v", user, token)
			}
			continue
		}
		if err := reward.settle(pool); err != nil {
			return nil, err
		}
		total = total.Add(reward.PendingReward)
		reward.PendingReward = fixed.ZeroUint()
		if err := s.setReward(user, token, reward, false); err != nil {
			return nil, err
		}
	}

	res := xenv.NewResponse().
		AddAttribute("action", "withdraw").
		AddAttribute("staker", user).
		AddAttribute("amount", total)
	if !total.IsZero() {
		payout, err := cw20.Transfer(cfg.RewardToken, user, total)
		if err != nil {
			return nil, err
		}
		res.AddMessage(payout)
	}
	return res, nil
}
