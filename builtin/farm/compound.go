// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"github.com/pkg/errors"

	"github.com/specfarm/farmd/builtin/adapter"
	"github.com/specfarm/farmd/builtin/cw20"
	"github.com/specfarm/farmd/builtin/reverts"
	"github.com/specfarm/farmd/builtin/router"
	"github.com/specfarm/farmd/fixed"
	"github.com/specfarm/farmd/xenv"
	"github.com/specfarm/farmd/yield"
)

// compounder runs one step of a compound cycle. Every step that waits for
// another contract leaves a PendingOp behind and resumes in Reply.
type compounder struct {
	env *xenv.Environment
	s   *state
	cfg *Config
	ad  adapter.Adapter
	res *xenv.Response

	// reward tokens leaving through messages of res that have not run yet
	outflow fixed.Uint
}

func newCompounder(env *xenv.Environment, s *state) (*compounder, error) {
	cfg, err := s.getConfig()
	if err != nil {
		return nil, err
	}
	ad, err := adapter.New(cfg.Adapter)
	if err != nil {
		return nil, err
	}
	return &compounder{env: env, s: s, cfg: cfg, ad: ad, res: xenv.NewResponse()}, nil
}

func compound(env *xenv.Environment, s *state, m CompoundMsg) (*xenv.Response, error) {
	c, err := newCompounder(env, s)
	if err != nil {
		return nil, err
	}
	if !c.cfg.Controller.IsZero() && env.Caller() != c.cfg.Controller {
		return nil, reverts.New(reverts.Unauthorized, "only the controller can compound")
	}

	var pools []*PoolInfo
	if len(m.StakingTokens) > 0 {
		for _, token := range m.StakingTokens {
			pool, err := s.getPool(token)
			if err != nil {
				return nil, err
			}
			pools = append(pools, pool)
		}
	} else if pools, err = s.allPools(); err != nil {
		return nil, err
	}

	var queue []yield.Address
	for _, pool := range pools {
		info, err := c.ad.QueryReward(env, c.cfg.StakingContract, pool.ExternalID, env.Contract(), nil)
		if err != nil {
			return nil, err
		}
		if info.PendingReward.IsZero() {
			continue
		}
		queue = append(queue, pool.StakingToken)
	}

	c.res.AddAttribute("action", "compound").AddAttribute("pools", len(queue))
	if len(queue) == 0 {
		return c.res, nil
	}
	logger.Debug("compound started", "farm", env.Contract(), "pools", len(queue))
	if err := c.claim(env.Caller(), queue); err != nil {
		return nil, err
	}
	return c.res, nil
}

// claim issues the claim of queue[0] after snapshotting the reward balance.
func (c *compounder) claim(executor yield.Address, queue []yield.Address) error {
	pool, err := c.s.getPool(queue[0])
	if err != nil {
		return err
	}
	balance, err := cw20.QueryBalance(c.env, c.cfg.RewardToken, c.env.Contract())
	if err != nil {
		return err
	}
	// the snapshot is read once the queued transfers have left
	before, err := balance.Sub(c.outflow)
	if err != nil {
		return errors.Wrap(err, "reward balance below queued transfers")
	}
	id, err := c.s.putPendingOp(&PendingOp{
		Stage:        stageClaim,
		Pool:         pool.StakingToken,
		Executor:     executor,
		RewardBefore: before,
		Queue:        queue[1:],
	})
	if err != nil {
		return err
	}
	msg, err := c.ad.ClaimMsg(c.cfg.StakingContract, pool.StakingToken, pool.ExternalID)
	if err != nil {
		return err
	}
	c.res.AddSubMessage(id, msg, xenv.ReplyOnSuccess)
	return nil
}

// next continues the cycle with the first queued pool, if any.
func (c *compounder) next(op *PendingOp) error {
	if len(op.Queue) == 0 {
		return nil
	}
	return c.claim(op.Executor, op.Queue)
}

type split struct {
	platform   fixed.Uint
	controller fixed.Uint
	community  fixed.Uint
	stake      fixed.Uint
	compound   fixed.Uint
}

// splitReward divides a claimed reward into fees, the distributed stake
// portion and the compounded remainder. Every part floors, the remainder
// absorbs the dust.
func splitReward(cfg *Config, pool *PoolInfo, claimed fixed.Uint) (split, error) {
	var (
		sp  split
		err error
	)
	if sp.platform, err = cfg.PlatformFeeRate.MulUint(claimed); err != nil {
		return sp, err
	}
	if sp.controller, err = cfg.ControllerFeeRate.MulUint(claimed); err != nil {
		return sp, err
	}
	if sp.community, err = cfg.CommunityFeeRate.MulUint(claimed); err != nil {
		return sp, err
	}
	net, err := claimed.Sub(sp.platform.Add(sp.controller).Add(sp.community))
	if err != nil {
		return sp, errors.Wrap(err, "fees exceed reward")
	}
	if !pool.TotalShareAmount.IsZero() {
		if sp.stake, err = pool.StakeRatio.MulUint(net); err != nil {
			return sp, err
		}
	}
	sp.compound, err = net.Sub(sp.stake)
	return sp, err
}

func (c *compounder) transfer(to yield.Address, amount fixed.Uint) error {
	if amount.IsZero() {
		return nil
	}
	msg, err := cw20.Transfer(c.cfg.RewardToken, to, amount)
	if err != nil {
		return err
	}
	c.res.AddMessage(msg)
	c.outflow = c.outflow.Add(amount)
	return nil
}

// onClaimed distributes what the claim of op.Pool paid the farm.
func (c *compounder) onClaimed(op *PendingOp) error {
	pool, err := c.s.getPool(op.Pool)
	if err != nil {
		return err
	}
	balance, err := cw20.QueryBalance(c.env, c.cfg.RewardToken, c.env.Contract())
	if err != nil {
		return err
	}
	claimed := balance.SaturatingSub(op.RewardBefore)
	if claimed.IsZero() {
		// payout deferred by the external protocol, retried on the next compound
		logger.Debug("claim paid nothing", "pool", pool.StakingToken)
		c.res.AddAttribute("skipped", pool.StakingToken)
		return c.next(op)
	}

	sp, err := splitReward(c.cfg, pool, claimed)
	if err != nil {
		return err
	}
	if err := c.transfer(c.cfg.Platform, sp.platform); err != nil {
		return err
	}
	if err := c.transfer(op.Executor, sp.controller); err != nil {
		return err
	}
	if err := c.transfer(c.cfg.Governance, sp.community); err != nil {
		return err
	}
	if !sp.stake.IsZero() {
		perShare, err := fixed.NewDecimalFromRatio(sp.stake, pool.TotalShareAmount)
		if err != nil {
			return err
		}
		pool.RewardIndex = pool.RewardIndex.Add(perShare)
	}
	c.res.
		AddAttribute("staking_token", pool.StakingToken).
		AddAttribute("claimed", claimed).
		AddAttribute("platform_fee", sp.platform).
		AddAttribute("controller_fee", sp.controller).
		AddAttribute("community_fee", sp.community).
		AddAttribute("stake_amount", sp.stake).
		AddAttribute("compound_amount", sp.compound)

	switch {
	case sp.compound.IsZero():
		return c.finish(pool, op)
	case pool.StakingToken == c.cfg.RewardToken:
		if err := c.reinvest(pool, sp.compound); err != nil {
			return err
		}
		return c.finish(pool, op)
	}

	// swap into the staking token, reinvested in the swap reply
	if err := c.s.setPool(pool); err != nil {
		return err
	}
	stakingBefore, err := cw20.QueryBalance(c.env, pool.StakingToken, c.env.Contract())
	if err != nil {
		return err
	}
	maxSpread := c.cfg.MaxSpread
	id, err := c.s.putPendingOp(&PendingOp{
		Stage:         stageSwap,
		Pool:          pool.StakingToken,
		Executor:      op.Executor,
		OfferAmount:   sp.compound,
		StakingBefore: stakingBefore,
		Queue:         op.Queue,
	})
	if err != nil {
		return err
	}
	msg, err := cw20.Send(c.cfg.RewardToken, c.cfg.Router, sp.compound, xenv.Tagged("zap", router.ZapHook{
		ToToken:   pool.StakingToken,
		MaxSpread: &maxSpread,
	}))
	if err != nil {
		return err
	}
	c.res.AddSubMessage(id, msg, xenv.ReplyOnSuccess)
	return nil
}

// onSwapped reinvests what the router paid for op.OfferAmount.
func (c *compounder) onSwapped(op *PendingOp) error {
	pool, err := c.s.getPool(op.Pool)
	if err != nil {
		return err
	}
	balance, err := cw20.QueryBalance(c.env, pool.StakingToken, c.env.Contract())
	if err != nil {
		return err
	}
	received := balance.SaturatingSub(op.StakingBefore)
	if received.IsZero() {
		return reverts.Errorf(reverts.ExternalCallFailed, "swap of %v returned nothing", op.OfferAmount)
	}
	c.res.
		AddAttribute("staking_token", pool.StakingToken).
		AddAttribute("offer_amount", op.OfferAmount).
		AddAttribute("return_amount", received)
	if err := c.reinvest(pool, received); err != nil {
		return err
	}
	return c.finish(pool, op)
}

// reinvest stakes amount for the pool. No shares are minted, so every
// holder's claim grows.
func (c *compounder) reinvest(pool *PoolInfo, amount fixed.Uint) error {
	msg, err := c.ad.BondMsg(c.cfg.StakingContract, pool.StakingToken, pool.ExternalID, amount)
	if err != nil {
		return err
	}
	c.res.AddMessage(msg).AddAttribute("reinvest_amount", amount)
	if pool.StakingToken == c.cfg.RewardToken {
		c.outflow = c.outflow.Add(amount)
	}
	pool.TotalBondAmount = pool.TotalBondAmount.Add(amount)
	return nil
}

func (c *compounder) finish(pool *PoolInfo, op *PendingOp) error {
	block := c.env.BlockContext()
	pool.LastCompoundHeight = block.Height
	pool.LastCompoundTime = block.Time
	if err := c.s.setPool(pool); err != nil {
		return err
	}
	logger.Debug("pool compounded", "pool", pool.StakingToken, "bond", pool.TotalBondAmount, "share", pool.TotalShareAmount)
	return c.next(op)
}

func reply(env *xenv.Environment, s *state, r xenv.Reply) (*xenv.Response, error) {
	op, err := s.takePendingOp(r.ID)
	if err != nil {
		return nil, err
	}
	if !r.IsOk() {
		return nil, reverts.Errorf(reverts.ExternalCallFailed, "%v of %v failed: %v", op.Stage, op.Pool, r.Result.Err)
	}
	c, err := newCompounder(env, s)
	if err != nil {
		return nil, err
	}
	c.res.AddAttribute("action", "compound_"+op.Stage.String())

	switch op.Stage {
	case stageClaim:
		err = c.onClaimed(op)
	case stageSwap:
		err = c.onSwapped(op)
	default:
		err = reverts.Errorf(reverts.InvalidInput, "unknown stage %d", op.Stage)
	}
	if err != nil {
		return nil, err
	}
	return c.res, nil
}
