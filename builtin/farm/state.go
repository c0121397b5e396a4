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

const (
	contractName    = "farm"
	contractVersion = 2
)

// Config is the farm configuration, changed only through update_config.
type Config struct {
	Owner             yield.Address `json:"owner"`
	StakingContract   yield.Address `json:"staking_contract"`
	RewardToken       yield.Address `json:"reward_token"`
	PairedAsset       yield.Address `json:"paired_asset"`
	Router            yield.Address `json:"router"`
	Governance        yield.Address `json:"governance"`
	Platform          yield.Address `json:"platform"`
	Controller        yield.Address `json:"controller"` // zero lets anyone compound
	PlatformFeeRate   fixed.Decimal `json:"platform_fee_rate"`
	ControllerFeeRate fixed.Decimal `json:"controller_fee_rate"`
	CommunityFeeRate  fixed.Decimal `json:"community_fee_rate"`
	MaxSpread         fixed.Decimal `json:"max_spread"`
	Adapter           string        `json:"adapter"`
}

func (c *Config) validate() error {
	if c.StakingContract.IsZero() || c.RewardToken.IsZero() || c.Router.IsZero() {
		return reverts.New(reverts.InvalidInput, "staking contract, reward token and router are required")
	}
	fees := c.PlatformFeeRate.Add(c.ControllerFeeRate).Add(c.CommunityFeeRate)
	if fees.Cmp(fixed.OneDecimal()) >= 0 {
		return reverts.Errorf(reverts.InvalidInput, "total fee rate %v must be below 1", fees)
	}
	if !c.PlatformFeeRate.IsZero() && c.Platform.IsZero() {
		return reverts.New(reverts.InvalidInput, "platform fee without platform address")
	}
	if !c.CommunityFeeRate.IsZero() && c.Governance.IsZero() {
		return reverts.New(reverts.InvalidInput, "community fee without governance address")
	}
	if c.MaxSpread.Cmp(fixed.OneDecimal()) > 0 {
		return reverts.New(reverts.InvalidInput, "max spread must not exceed 1")
	}
	return nil
}

// PoolInfo is the ledger of one pool, keyed by its staking token.
type PoolInfo struct {
	StakingToken       yield.Address
	ExternalID         yield.Address
	TotalBondAmount    fixed.Uint
	TotalShareAmount   fixed.Uint
	RewardIndex        fixed.Decimal
	StakeRatio         fixed.Decimal
	LastCompoundHeight uint64
	LastCompoundTime   uint64
}

// RewardInfo is the position of one user in one pool.
type RewardInfo struct {
	BondShare     fixed.Uint
	Index         fixed.Decimal
	PendingReward fixed.Uint
}

func (r *RewardInfo) isEmpty() bool {
	return r.BondShare.IsZero() && r.PendingReward.IsZero()
}

// settle credits the reward distributed to the user's shares since its last checkpoint.
func (r *RewardInfo) settle(pool *PoolInfo) error {
	diff, err := pool.RewardIndex.Sub(r.Index)
	if err != nil {
		return errors.Wrap(err, "reward index went backwards")
	}
	earned, err := diff.MulUint(r.BondShare)
	if err != nil {
		return err
	}
	r.PendingReward = r.PendingReward.Add(earned)
	r.Index = pool.RewardIndex
	return nil
}

type stage uint8

const (
	stageClaim stage = iota + 1
	stageSwap
)

func (s stage) String() string {
	switch s {
	case stageClaim:
		return "claim"
	case stageSwap:
		return "swap"
	}
	return "unknown"
}

// PendingOp is the continuation of a compound step waiting for its reply.
type PendingOp struct {
	Stage         stage
	Pool          yield.Address
	Executor      yield.Address   // receives the controller fee
	RewardBefore  fixed.Uint      // reward token balance before the claim
	OfferAmount   fixed.Uint      // reward tokens offered to the router
	StakingBefore fixed.Uint      // staking token balance before the swap
	Queue         []yield.Address // pools left in this cycle
}

type contractInfo struct {
	Name    string
	Version uint64
}

type state struct {
	config     *storage.Raw[*Config]
	pools      *storage.Mapping[yield.Address, *PoolInfo]
	rewards    *storage.Mapping[storage.CompositeKey, *RewardInfo]
	pendingOps *storage.Mapping[storage.Uint64Key, *PendingOp]
	replySeq   *storage.Raw[uint64]
	info       *storage.Raw[*contractInfo]
}

func newState(env *xenv.Environment) *state {
	ctx := storage.NewContext(env.Store(), env.UseGas)
	return &state{
		config:     storage.NewRaw[*Config](ctx, "config"),
		pools:      storage.NewMapping[yield.Address, *PoolInfo](ctx, "pool"),
		rewards:    storage.NewMapping[storage.CompositeKey, *RewardInfo](ctx, "reward"),
		pendingOps: storage.NewMapping[storage.Uint64Key, *PendingOp](ctx, "pending-op"),
		replySeq:   storage.NewRaw[uint64](ctx, "reply-seq"),
		info:       storage.NewRaw[*contractInfo](ctx, "contract-info"),
	}
}

func rewardKey(user, pool yield.Address) storage.CompositeKey {
	return storage.Join(user, pool)
}

func (s *state) getConfig() (*Config, error) {
	cfg, found, err := s.config.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get config")
	}
	if !found {
		return nil, errors.New("farm not instantiated")
	}
	return cfg, nil
}

func (s *state) getPool(token yield.Address) (*PoolInfo, error) {
	pool, found, err := s.pools.Get(token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get pool")
	}
	if !found {
		return nil, reverts.Errorf(reverts.UnknownPool, "pool %v is not registered", token)
	}
	return pool, nil
}

func (s *state) setPool(pool *PoolInfo) error {
	return s.pools.Set(pool.StakingToken, pool, false)
}

// allPools returns every registered pool in staking token order.
func (s *state) allPools() ([]*PoolInfo, error) {
	var pools []*PoolInfo
	err := s.pools.Iterate(nil, func(_ []byte, pool *PoolInfo) (bool, error) {
		pools = append(pools, pool)
		return true, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to iterate pools")
	}
	return pools, nil
}

func (s *state) getReward(user, pool yield.Address) (*RewardInfo, bool, error) {
	r, found, err := s.rewards.Get(rewardKey(user, pool))
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to get reward info")
	}
	return r, found, nil
}

// setReward stores r, or drops the record once it holds nothing.
func (s *state) setReward(user, pool yield.Address, r *RewardInfo, isNew bool) error {
	if r.isEmpty() {
		if isNew {
			return nil
		}
		return s.rewards.Delete(rewardKey(user, pool))
	}
	return s.rewards.Set(rewardKey(user, pool), r, isNew)
}

// userPools lists the pools user holds a record in.
func (s *state) userPools(user yield.Address) ([]yield.Address, error) {
	prefix := user.Bytes()
	var pools []yield.Address
	err := s.rewards.Iterate(prefix, func(key []byte, _ *RewardInfo) (bool, error) {
		pools = append(pools, yield.BytesToAddress(key[len(prefix):]))
		return true, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to iterate rewards")
	}
	return pools, nil
}

func (s *state) nextReplyID() (uint64, error) {
	seq, _, err := s.replySeq.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get reply seq")
	}
	seq++
	return seq, s.replySeq.Upsert(seq)
}

// takePendingOp loads and removes the continuation of reply id.
func (s *state) takePendingOp(id uint64) (*PendingOp, error) {
	op, found, err := s.pendingOps.Get(storage.Uint64Key(id))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get pending op")
	}
	if !found {
		return nil, reverts.Errorf(reverts.InvalidInput, "no pending operation for reply %d", id)
	}
	return op, s.pendingOps.Delete(storage.Uint64Key(id))
}

func (s *state) putPendingOp(op *PendingOp) (uint64, error) {
	id, err := s.nextReplyID()
	if err != nil {
		return 0, err
	}
	return id, s.pendingOps.Set(storage.Uint64Key(id), op, true)
}
