// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package testchain deploys a complete farm world on an in-memory runtime:
// a reward token, staking tokens, an external staking protocol, a router,
// a governance contract and one farm.
package testchain

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specfarm/farmd/builtin/farm"
	"github.com/specfarm/farmd/builtin/staking"
	"github.com/specfarm/farmd/fixed"
	"github.com/specfarm/farmd/genesis"
	"github.com/specfarm/farmd/lvldb"
	"github.com/specfarm/farmd/runtime"
	"github.com/specfarm/farmd/xenv"
	"github.com/specfarm/farmd/yield"
)

// Contract and account names of the world.
const (
	Reward  = "mir"
	LP      = "lp"
	LP2     = "lp2"
	Staking = "staking"
	Router  = "router"
	Gov     = "gov"
	Farm    = "farm"

	Owner      = "owner"
	Platform   = "platform"
	Controller = "controller"

	// InitialBalance is what every user holds of every staking token.
	InitialBalance = 1_000_000
)

var Users = []string{"alice", "bob", "carol"}

type Options struct {
	Adapter           string
	PlatformFeeRate   string
	ControllerFeeRate string
	CommunityFeeRate  string
	MaxSpread         string
	StakeRatio        string
	Price             string
	Spread            string
	// Controller restricts compounding to the controller account.
	Controller bool
	// SecondPool registers LP2 as a second pool.
	SecondPool bool
	// RewardPool registers the reward token itself as a pool.
	RewardPool bool
}

func DefaultOptions() Options {
	return Options{
		Adapter:           "mirror",
		PlatformFeeRate:   "0",
		ControllerFeeRate: "0",
		CommunityFeeRate:  "0",
		MaxSpread:         "0.01",
		StakeRatio:        "0",
		Price:             "1",
		Spread:            "0",
	}
}

// Chain is a deployed world.
type Chain struct {
	*genesis.Deployment
	t *testing.T
}

func rate(t *testing.T, s string) genesis.Rate {
	d, err := fixed.ParseDecimal(s)
	require.NoError(t, err)
	return genesis.Rate(d)
}

// New builds a world. It fails the test on any deployment error.
func New(t *testing.T, opts Options) *Chain {
	c, err := Build(t, opts)
	require.NoError(t, err)
	return c
}

// Build builds a world and returns the deployment error, if any.
func Build(t *testing.T, opts Options) (*Chain, error) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rt, err := runtime.New(db, genesis.Registry())
	require.NoError(t, err)

	stakingTokens := []string{LP}
	if opts.SecondPool {
		stakingTokens = append(stakingTokens, LP2)
	}

	b := genesis.NewBuilder().Timestamp(1_700_000_000).Owner(Owner)
	router := genesis.RouterSpec{Name: Router}
	var pools []genesis.PoolSpec
	for _, token := range stakingTokens {
		balances := map[string]genesis.Amount{Router: genesis.Amount(fixed.NewUint(1_000_000_000_000))}
		for _, u := range Users {
			balances[u] = genesis.Amount(fixed.NewUint(InitialBalance))
		}
		b.Token(genesis.TokenSpec{Name: token, Symbol: token, Decimals: 6, Balances: balances})
		router.Pairs = append(router.Pairs, genesis.PairSpec{
			Offer:  Reward,
			Ask:    token,
			Price:  rate(t, opts.Price),
			Spread: rate(t, opts.Spread),
		})
		pools = append(pools, genesis.PoolSpec{Token: token, StakeRatio: rate(t, opts.StakeRatio)})
	}

	rewardBalances := map[string]genesis.Amount{}
	if opts.RewardPool {
		for _, u := range Users {
			rewardBalances[u] = genesis.Amount(fixed.NewUint(InitialBalance))
		}
		pools = append(pools, genesis.PoolSpec{Token: Reward, StakeRatio: rate(t, opts.StakeRatio)})
	}
	b.Token(genesis.TokenSpec{Name: Reward, Symbol: "MIR", Decimals: 6, Balances: rewardBalances})

	controller := ""
	if opts.Controller {
		controller = Controller
	}
	b.Staking(genesis.StakingSpec{Name: Staking, RewardToken: Reward, StakingToken: LP}).
		Router(router).
		Gov(genesis.GovSpec{Name: Gov, Token: Reward}).
		Farm(genesis.FarmSpec{
			Name:              Farm,
			Adapter:           opts.Adapter,
			Staking:           Staking,
			RewardToken:       Reward,
			PairedAsset:       Reward,
			Router:            Router,
			Governance:        Gov,
			Platform:          Platform,
			Controller:        controller,
			PlatformFeeRate:   rate(t, opts.PlatformFeeRate),
			ControllerFeeRate: rate(t, opts.ControllerFeeRate),
			CommunityFeeRate:  rate(t, opts.CommunityFeeRate),
			MaxSpread:         rate(t, opts.MaxSpread),
			Pools:             pools,
		})

	d, err := b.Build(rt)
	if err != nil {
		return nil, err
	}
	return &Chain{Deployment: d, t: t}, nil
}

// Addr resolves a contract or account name.
func (c *Chain) Addr(name string) yield.Address {
	return c.Resolve(name)
}

// Bond bonds amount of token into the farm as user.
func (c *Chain) Bond(user, token string, amount uint64) (*runtime.Receipt, error) {
	return c.Send(c.Addr(user), token, Farm, fixed.NewUint(amount), xenv.Tagged("bond", nil))
}

// Unbond burns share shares of the token pool as user.
func (c *Chain) Unbond(user, token string, share fixed.Uint) (*runtime.Receipt, error) {
	return c.Execute(c.Addr(user), Farm, xenv.Tagged("unbond", farm.UnbondMsg{
		StakingToken: c.Addr(token),
		Share:        share,
	}))
}

// Compound compounds every pool as sender.
func (c *Chain) Compound(sender string) (*runtime.Receipt, error) {
	return c.Execute(c.Addr(sender), Farm, xenv.Tagged("compound", farm.CompoundMsg{}))
}

// Withdraw collects the distributed rewards of user.
func (c *Chain) Withdraw(user string) (*runtime.Receipt, error) {
	return c.Execute(c.Addr(user), Farm, xenv.Tagged("withdraw", farm.WithdrawMsg{}))
}

// Accrue distributes amount of fresh reward tokens to the bonders of pool in the staking contract.
func (c *Chain) Accrue(pool string, amount uint64) {
	require.NoError(c.t, c.Mint(Reward, Owner, fixed.NewUint(amount)))
	addr := c.Addr(pool)
	_, err := c.Send(c.Owner, Reward, Staking, fixed.NewUint(amount), xenv.Tagged("accrue", staking.AccrueHook{Pool: &addr}))
	require.NoError(c.t, err)
}

// DeferPayout toggles whether the staking contract withholds claimed rewards.
func (c *Chain) DeferPayout(deferred bool) {
	_, err := c.Execute(c.Owner, Staking, xenv.Tagged("set_defer_payout", staking.SetDeferPayoutMsg{Defer: deferred}))
	require.NoError(c.t, err)
}

func (c *Chain) Pool(token string) farm.PoolResponse {
	var res farm.PoolResponse
	require.NoError(c.t, c.Query(Farm, xenv.Tagged("pool", farm.PoolQuery{StakingToken: c.Addr(token)}), &res))
	return res
}

func (c *Chain) Config() farm.Config {
	var res farm.Config
	require.NoError(c.t, c.Query(Farm, xenv.Tagged("config", nil), &res))
	return res
}

// RewardInfo returns the position of user in token.
func (c *Chain) RewardInfo(user, token string) (farm.RewardInfoItem, error) {
	addr := c.Addr(token)
	var res farm.RewardInfoResponse
	if err := c.Query(Farm, xenv.Tagged("reward_info", farm.RewardInfoQuery{Staker: c.Addr(user), StakingToken: &addr}), &res); err != nil {
		return farm.RewardInfoItem{}, err
	}
	require.Len(c.t, res.RewardInfos, 1)
	return res.RewardInfos[0], nil
}

// BalanceOf returns the balance of holder in token.
func (c *Chain) BalanceOf(token, holder string) fixed.Uint {
	bal, err := c.Balance(token, holder)
	require.NoError(c.t, err)
	return bal
}

// ExternalBond returns what the staking contract holds in pool.
func (c *Chain) ExternalBond(pool string) fixed.Uint {
	var res staking.PoolResponse
	require.NoError(c.t, c.Query(Staking, xenv.Tagged("pool", staking.PoolQuery{Pool: c.Addr(pool)}), &res))
	return res.TotalBond
}
