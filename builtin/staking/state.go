// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/pkg/errors"

	"github.com/specfarm/farmd/builtin/reverts"
	"github.com/specfarm/farmd/builtin/storage"
	"github.com/specfarm/farmd/fixed"
	"github.com/specfarm/farmd/xenv"
	"github.com/specfarm/farmd/yield"
)

type config struct {
	Owner        yield.Address
	RewardToken  yield.Address
	StakingToken yield.Address
	DeferPayout  bool
}

type pool struct {
	StakingToken yield.Address
	TotalBond    fixed.Uint
	RewardIndex  fixed.Decimal
}

type staker struct {
	Bond    fixed.Uint
	Index   fixed.Decimal
	Pending fixed.Uint
}

func (s *staker) isEmpty() bool {
	return s.Bond.IsZero() && s.Pending.IsZero()
}

// settle moves what the staker earned since its last checkpoint into Pending.
func (s *staker) settle(p *pool) error {
	diff, err := p.RewardIndex.Sub(s.Index)
	if err != nil {
		return errors.Wrap(err, "reward index went backwards")
	}
	earned, err := diff.MulUint(s.Bond)
	if err != nil {
		return err
	}
	s.Pending = s.Pending.Add(earned)
	s.Index = p.RewardIndex
	return nil
}

type state struct {
	config  *storage.Raw[*config]
	pools   *storage.Mapping[yield.Address, *pool]
	stakers *storage.Mapping[storage.CompositeKey, *staker]
}

func newState(env *xenv.Environment) *state {
	ctx := storage.NewContext(env.Store(), env.UseGas)
	return &state{
		config:  storage.NewRaw[*config](ctx, "config"),
		pools:   storage.NewMapping[yield.Address, *pool](ctx, "pool"),
		stakers: storage.NewMapping[storage.CompositeKey, *staker](ctx, "staker"),
	}
}

func stakerKey(addr, pool yield.Address) storage.CompositeKey {
	return storage.Join(addr, pool)
}

func (s *state) getConfig() (*config, error) {
	cfg, found, err := s.config.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get config")
	}
	if !found {
		return nil, errors.New("staking contract not instantiated")
	}
	return cfg, nil
}

// resolvePool picks the pool a message addresses: explicit, else the default one.
func (s *state) resolvePool(explicit *yield.Address) (yield.Address, *pool, error) {
	addr := yield.Address{}
	if explicit != nil {
		addr = *explicit
	} else {
		cfg, err := s.getConfig()
		if err != nil {
			return addr, nil, err
		}
		addr = cfg.StakingToken
	}
	p, found, err := s.pools.Get(addr)
	if err != nil {
		return addr, nil, errors.Wrap(err, "failed to get pool")
	}
	if !found {
		return addr, nil, reverts.Errorf(reverts.UnknownPool, "no pool %v", addr)
	}
	return addr, p, nil
}

func (s *state) getStaker(addr, poolAddr yield.Address) (*staker, bool, error) {
	st, found, err := s.stakers.Get(stakerKey(addr, poolAddr))
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to get staker")
	}
	return st, found, nil
}

func (s *state) setStaker(addr, poolAddr yield.Address, st *staker, isNew bool) error {
	if st.isEmpty() {
		if isNew {
			return nil
		}
		return s.stakers.Delete(stakerKey(addr, poolAddr))
	}
	return s.stakers.Set(stakerKey(addr, poolAddr), st, isNew)
}

// stakerPools lists the pools addr has a record in.
func (s *state) stakerPools(addr yield.Address) ([]yield.Address, error) {
	var pools []yield.Address
	err := s.stakers.Iterate(addr.Bytes(), func(key []byte, _ *staker) (bool, error) {
		pools = append(pools, yield.BytesToAddress(key[len(addr.Bytes()):]))
		return true, nil
	})
	return pools, err
}

// view returns the settled state of a staker without writing it.
func (s *state) view(addr, poolAddr yield.Address) (*staker, error) {
	p, found, err := s.pools.Get(poolAddr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get pool")
	}
	st, _, err := s.getStaker(addr, poolAddr)
	if err != nil {
		return nil, err
	}
	if found {
		if err := st.settle(p); err != nil {
			return nil, err
		}
	}
	return st, nil
}
