// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"github.com/specfarm/farmd/builtin/adapter"
	"github.com/specfarm/farmd/builtin/reverts"
	"github.com/specfarm/farmd/builtin/shares"
	"github.com/specfarm/farmd/xenv"
	"github.com/specfarm/farmd/yield"
)

func (s *state) version() (uint64, error) {
	info, found, err := s.info.Get()
	if err != nil {
		return 0, err
	}
	if !found {
		return 1, nil
	}
	return info.Version, nil
}

func poolResponse(pool *PoolInfo, version uint64) (PoolResponse, error) {
	rate, err := shares.ExchangeRate(pool.TotalBondAmount, pool.TotalShareAmount)
	if err != nil {
		return PoolResponse{}, err
	}
	return PoolResponse{
		StakingToken:       pool.StakingToken,
		ExternalID:         pool.ExternalID,
		TotalBondAmount:    pool.TotalBondAmount,
		TotalShareAmount:   pool.TotalShareAmount,
		ExchangeRate:       rate,
		RewardIndex:        pool.RewardIndex,
		StakeRatio:         pool.StakeRatio,
		LastCompoundHeight: pool.LastCompoundHeight,
		LastCompoundTime:   pool.LastCompoundTime,
		Version:            version,
	}, nil
}

func queryPool(s *state, q PoolQuery) (PoolResponse, error) {
	pool, err := s.getPool(q.StakingToken)
	if err != nil {
		return PoolResponse{}, err
	}
	version, err := s.version()
	if err != nil {
		return PoolResponse{}, err
	}
	return poolResponse(pool, version)
}

func queryPools(s *state) (PoolsResponse, error) {
	pools, err := s.allPools()
	if err != nil {
		return PoolsResponse{}, err
	}
	version, err := s.version()
	if err != nil {
		return PoolsResponse{}, err
	}
	res := PoolsResponse{Pools: make([]PoolResponse, 0, len(pools))}
	for _, pool := range pools {
		pr, err := poolResponse(pool, version)
		if err != nil {
			return PoolsResponse{}, err
		}
		res.Pools = append(res.Pools, pr)
	}
	return res, nil
}

// queryRewardInfo reports the positions of a staker as they would settle
// now, without writing anything.
func queryRewardInfo(env *xenv.Environment, s *state, q RewardInfoQuery) (RewardInfoResponse, error) {
	cfg, err := s.getConfig()
	if err != nil {
		return RewardInfoResponse{}, err
	}
	ad, err := adapter.New(cfg.Adapter)
	if err != nil {
		return RewardInfoResponse{}, err
	}

	var tokens []yield.Address
	if q.StakingToken != nil {
		if _, err := s.getPool(*q.StakingToken); err != nil {
			return RewardInfoResponse{}, err
		}
		tokens = []yield.Address{*q.StakingToken}
	} else if tokens, err = s.userPools(q.Staker); err != nil {
		return RewardInfoResponse{}, err
	}

	res := RewardInfoResponse{Staker: q.Staker, RewardInfos: []RewardInfoItem{}}
	for _, token := range tokens {
		reward, found, err := s.getReward(q.Staker, token)
		if err != nil {
			return RewardInfoResponse{}, err
		}
		if !found {
			continue
		}
		pool, err := s.getPool(token)
		if err != nil {
			return RewardInfoResponse{}, err
		}
		item, err := rewardItem(env, cfg, ad, pool, reward)
		if err != nil {
			return RewardInfoResponse{}, err
		}
		res.RewardInfos = append(res.RewardInfos, item)
	}
	if len(res.RewardInfos) == 0 {
		return RewardInfoResponse{}, reverts.Errorf(reverts.UnknownUser, "%v has no position", q.Staker)
	}
	return res, nil
}

func rewardItem(env *xenv.Environment, cfg *Config, ad adapter.Adapter, pool *PoolInfo, reward *RewardInfo) (RewardInfoItem, error) {
	external, err := ad.QueryReward(env, cfg.StakingContract, pool.ExternalID, env.Contract(), nil)
	if err != nil {
		return RewardInfoItem{}, err
	}
	// value shares against the external bond, which is what unbond reconciles to
	bondAmount, err := shares.ToAmount(reward.BondShare, external.BondAmount, pool.TotalShareAmount)
	if err != nil {
		return RewardInfoItem{}, err
	}
	externalReward, err := shares.ToAmount(reward.BondShare, external.PendingReward, pool.TotalShareAmount)
	if err != nil {
		return RewardInfoItem{}, err
	}
	settled := *reward
	if err := settled.settle(pool); err != nil {
		return RewardInfoItem{}, err
	}
	return RewardInfoItem{
		StakingToken:          pool.StakingToken,
		BondShare:             reward.BondShare,
		BondAmount:            bondAmount,
		PendingReward:         settled.PendingReward,
		PendingExternalReward: externalReward,
	}, nil
}

func queryConfig(s *state) (*Config, error) {
	return s.getConfig()
}

func queryContractInfo(s *state) (ContractInfoResponse, error) {
	info, found, err := s.info.Get()
	if err != nil {
		return ContractInfoResponse{}, err
	}
	if !found {
		return ContractInfoResponse{Name: contractName, Version: 1}, nil
	}
	return ContractInfoResponse{Name: info.Name, Version: info.Version}, nil
}
