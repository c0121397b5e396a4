// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"github.com/pkg/errors"

	"github.com/specfarm/farmd/builtin/reverts"
	"github.com/specfarm/farmd/builtin/storage"
	"github.com/specfarm/farmd/fixed"
	"github.com/specfarm/farmd/xenv"
	"github.com/specfarm/farmd/yield"
)

// poolInfoV1 is the pool record of version 1 farms, stored under "pool_info".
// It predates the distributed reward stream.
type poolInfoV1 struct {
	StakingToken       yield.Address
	TotalBondAmount    fixed.Uint
	TotalShareAmount   fixed.Uint
	LastCompoundHeight uint64
	LastCompoundTime   uint64
}

func v1Pools(env *xenv.Environment) *storage.Mapping[yield.Address, *poolInfoV1] {
	return storage.NewMapping[yield.Address, *poolInfoV1](storage.NewContext(env.Store(), env.UseGas), "pool_info")
}

// migrateV1 rewrites version 1 pool records into the current layout.
func migrateV1(env *xenv.Environment, s *state) (int, error) {
	old := v1Pools(env)

	var pools []*poolInfoV1
	if err := old.Iterate(nil, func(_ []byte, p *poolInfoV1) (bool, error) {
		pools = append(pools, p)
		return true, nil
	}); err != nil {
		return 0, errors.Wrap(err, "failed to read v1 pools")
	}

	for _, p := range pools {
		if err := s.pools.Set(p.StakingToken, &PoolInfo{
			StakingToken:       p.StakingToken,
			ExternalID:         p.StakingToken,
			TotalBondAmount:    p.TotalBondAmount,
			TotalShareAmount:   p.TotalShareAmount,
			LastCompoundHeight: p.LastCompoundHeight,
			LastCompoundTime:   p.LastCompoundTime,
		}, true); err != nil {
			return 0, err
		}
		if err := old.Delete(p.StakingToken); err != nil {
			return 0, err
		}
	}
	return len(pools), nil
}

func migrate(env *xenv.Environment, s *state) (*xenv.Response, error) {
	from, err := s.version()
	if err != nil {
		return nil, err
	}
	if from >= contractVersion {
		return nil, reverts.Errorf(reverts.InvalidInput, "already at version %d", from)
	}

	res := xenv.NewResponse().AddAttribute("action", "migrate").AddAttribute("from_version", from)
	if from == 1 {
		n, err := migrateV1(env, s)
		if err != nil {
			return nil, err
		}
		logger.Debug("farm migrated", "farm", env.Contract(), "pools", n)
		res.AddAttribute("pools", n)
	}
	if err := s.info.Upsert(&contractInfo{Name: contractName, Version: contractVersion}); err != nil {
		return nil, err
	}
	return res.AddAttribute("to_version", contractVersion), nil
}
