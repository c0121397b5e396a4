// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package farm is the auto-compounding farm contract.
//
// Users bond staking tokens and receive shares of a pool. The farm stakes
// everything into an external staking protocol reached through an adapter,
// and compounding claims the protocol's rewards, takes the fees, swaps the
// rest into the staking token and stakes it again without minting shares.
// Each compound step that waits on another contract is persisted as a
// PendingOp and resumed by the matching reply.
package farm

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/log"

	"github.com/specfarm/farmd/builtin/adapter"
	"github.com/specfarm/farmd/builtin/cw20"
	"github.com/specfarm/farmd/builtin/reverts"
	"github.com/specfarm/farmd/fixed"
	"github.com/specfarm/farmd/xenv"
)

const Kind = "farm"

var logger = log.New("pkg", "farm")

type Contract struct{}

var (
	_ xenv.Contract = Contract{}
	_ xenv.Replier  = Contract{}
	_ xenv.Migrator = Contract{}
)

func (Contract) Instantiate(env *xenv.Environment, msg []byte) (*xenv.Response, error) {
	var init InstantiateMsg
	if err := xenv.DecodeBody(msg, &init); err != nil {
		return nil, err
	}
	if _, err := adapter.New(init.Adapter); err != nil {
		return nil, err
	}
	cfg := &Config{
		Owner:             env.Caller(),
		StakingContract:   init.StakingContract,
		RewardToken:       init.RewardToken,
		PairedAsset:       init.PairedAsset,
		Router:            init.Router,
		Governance:        init.Governance,
		Platform:          init.Platform,
		Controller:        init.Controller,
		PlatformFeeRate:   init.PlatformFeeRate,
		ControllerFeeRate: init.ControllerFeeRate,
		CommunityFeeRate:  init.CommunityFeeRate,
		MaxSpread:         init.MaxSpread,
		Adapter:           init.Adapter,
	}
	if init.Owner != nil {
		cfg.Owner = *init.Owner
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	s := newState(env)
	if err := s.config.Upsert(cfg); err != nil {
		return nil, err
	}
	if err := s.info.Upsert(&contractInfo{Name: contractName, Version: contractVersion}); err != nil {
		return nil, err
	}
	return xenv.NewResponse().
		AddAttribute("action", "instantiate").
		AddAttribute("adapter", cfg.Adapter).
		AddAttribute("owner", cfg.Owner), nil
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
		hookTag, hookBody, err := xenv.SplitTagged(m.Msg)
		if err != nil {
			return nil, err
		}
		if hookTag != "bond" {
			return nil, reverts.Errorf(reverts.InvalidInput, "unknown receive hook %q", hookTag)
		}
		var hook BondHook
		if err := xenv.DecodeBody(hookBody, &hook); err != nil {
			return nil, err
		}
		user := m.Sender
		if hook.StakerAddr != nil {
			user = *hook.StakerAddr
		}
		return bond(env, s, user, m.Amount)

	case "unbond":
		var m UnbondMsg
		if err := xenv.DecodeBody(body, &m); err != nil {
			return nil, err
		}
		return unbond(env, s, env.Caller(), m)

	case "withdraw":
		var m WithdrawMsg
		if err := xenv.DecodeBody(body, &m); err != nil {
			return nil, err
		}
		return withdraw(env, s, env.Caller(), m)

	case "compound":
		var m CompoundMsg
		if err := xenv.DecodeBody(body, &m); err != nil {
			return nil, err
		}
		return compound(env, s, m)

	case "update_config":
		var m UpdateConfigMsg
		if err := xenv.DecodeBody(body, &m); err != nil {
			return nil, err
		}
		return updateConfig(env, s, m)

	case "register_pool":
		var m RegisterPoolMsg
		if err := xenv.DecodeBody(body, &m); err != nil {
			return nil, err
		}
		return registerPool(env, s, m)

	case "update_pool":
		var m UpdatePoolMsg
		if err := xenv.DecodeBody(body, &m); err != nil {
			return nil, err
		}
		return updatePool(env, s, m)
	}
	return nil, reverts.Errorf(reverts.InvalidInput, "unknown execute message %q", tag)
}

func (Contract) Reply(env *xenv.Environment, r xenv.Reply) (*xenv.Response, error) {
	return reply(env, newState(env), r)
}

func (Contract) Migrate(env *xenv.Environment, msg []byte) (*xenv.Response, error) {
	var m MigrateMsg
	if err := xenv.DecodeBody(msg, &m); err != nil {
		return nil, err
	}
	return migrate(env, newState(env))
}

func (Contract) Query(env *xenv.Environment, msg []byte) ([]byte, error) {
	tag, body, err := xenv.SplitTagged(msg)
	if err != nil {
		return nil, err
	}
	s := newState(env)

	var res any
	switch tag {
	case "config":
		res, err = queryConfig(s)
	case "pool":
		var q PoolQuery
		if err := xenv.DecodeBody(body, &q); err != nil {
			return nil, err
		}
		res, err = queryPool(s, q)
	case "pools":
		res, err = queryPools(s)
	case "reward_info":
		var q RewardInfoQuery
		if err := xenv.DecodeBody(body, &q); err != nil {
			return nil, err
		}
		res, err = queryRewardInfo(env, s, q)
	case "contract_info":
		res, err = queryContractInfo(s)
	default:
		return nil, reverts.Errorf(reverts.InvalidInput, "unknown query %q", tag)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(res)
}

func onlyOwner(env *xenv.Environment, cfg *Config) error {
	if env.Caller() != cfg.Owner {
		return reverts.New(reverts.Unauthorized, "only the owner can do this")
	}
	return nil
}

func updateConfig(env *xenv.Environment, s *state, m UpdateConfigMsg) (*xenv.Response, error) {
	cfg, err := s.getConfig()
	if err != nil {
		return nil, err
	}
	if err := onlyOwner(env, cfg); err != nil {
		return nil, err
	}
	if m.Owner != nil {
		cfg.Owner = *m.Owner
	}
	if m.Router != nil {
		cfg.Router = *m.Router
	}
	if m.Governance != nil {
		cfg.Governance = *m.Governance
	}
	if m.Platform != nil {
		cfg.Platform = *m.Platform
	}
	if m.Controller != nil {
		cfg.Controller = *m.Controller
	}
	if m.PlatformFeeRate != nil {
		cfg.PlatformFeeRate = *m.PlatformFeeRate
	}
	if m.ControllerFeeRate != nil {
		cfg.ControllerFeeRate = *m.ControllerFeeRate
	}
	if m.CommunityFeeRate != nil {
		cfg.CommunityFeeRate = *m.CommunityFeeRate
	}
	if m.MaxSpread != nil {
		cfg.MaxSpread = *m.MaxSpread
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if err := s.config.Upsert(cfg); err != nil {
		return nil, err
	}
	return xenv.NewResponse().AddAttribute("action", "update_config"), nil
}

func validStakeRatio(ratio fixed.Decimal) error {
	if ratio.Cmp(fixed.OneDecimal()) > 0 {
		return reverts.Errorf(reverts.InvalidInput, "stake ratio %v exceeds 1", ratio)
	}
	return nil
}

func registerPool(env *xenv.Environment, s *state, m RegisterPoolMsg) (*xenv.Response, error) {
	cfg, err := s.getConfig()
	if err != nil {
		return nil, err
	}
	if err := onlyOwner(env, cfg); err != nil {
		return nil, err
	}
	if m.StakingToken.IsZero() {
		return nil, reverts.New(reverts.InvalidInput, "staking token required")
	}
	_, found, err := s.pools.Get(m.StakingToken)
	if err != nil {
		return nil, err
	}
	if found {
		return nil, reverts.Errorf(reverts.InvalidInput, "pool %v already registered", m.StakingToken)
	}

	pool := &PoolInfo{StakingToken: m.StakingToken, ExternalID: m.StakingToken}
	if m.ExternalID != nil {
		pool.ExternalID = *m.ExternalID
	}

	// every pool must map to its own external position
	ad, err := adapter.New(cfg.Adapter)
	if err != nil {
		return nil, err
	}
	pools, err := s.allPools()
	if err != nil {
		return nil, err
	}
	if ad.SinglePool() && len(pools) > 0 {
		return nil, reverts.Errorf(reverts.InvalidInput, "adapter %s supports a single pool", ad.Name())
	}
	for _, p := range pools {
		if p.ExternalID == pool.ExternalID {
			return nil, reverts.Errorf(reverts.InvalidInput, "external id %v already used by pool %v", pool.ExternalID, p.StakingToken)
		}
	}
	if m.StakeRatio != nil {
		if err := validStakeRatio(*m.StakeRatio); err != nil {
			return nil, err
		}
		pool.StakeRatio = *m.StakeRatio
	}
	if err := s.pools.Set(pool.StakingToken, pool, true); err != nil {
		return nil, err
	}
	return xenv.NewResponse().
		AddAttribute("action", "register_pool").
		AddAttribute("staking_token", pool.StakingToken).
		AddAttribute("external_id", pool.ExternalID), nil
}

func updatePool(env *xenv.Environment, s *state, m UpdatePoolMsg) (*xenv.Response, error) {
	cfg, err := s.getConfig()
	if err != nil {
		return nil, err
	}
	if err := onlyOwner(env, cfg); err != nil {
		return nil, err
	}
	pool, err := s.getPool(m.StakingToken)
	if err != nil {
		return nil, err
	}
	if err := validStakeRatio(m.StakeRatio); err != nil {
		return nil, err
	}
	pool.StakeRatio = m.StakeRatio
	if err := s.setPool(pool); err != nil {
		return nil, err
	}
	return xenv.NewResponse().
		AddAttribute("action", "update_pool").
		AddAttribute("staking_token", pool.StakingToken).
		AddAttribute("stake_ratio", pool.StakeRatio), nil
}
