// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"maps"
	"slices"

	"github.com/pkg/errors"

	"github.com/specfarm/farmd/builtin/cw20"
	"github.com/specfarm/farmd/builtin/farm"
	"github.com/specfarm/farmd/builtin/gov"
	"github.com/specfarm/farmd/builtin/router"
	"github.com/specfarm/farmd/builtin/staking"
	"github.com/specfarm/farmd/runtime"
	"github.com/specfarm/farmd/xenv"
	"github.com/specfarm/farmd/yield"
)

// Registry returns every contract kind a genesis can deploy.
func Registry() runtime.Registry {
	return runtime.Registry{
		cw20.Kind:    cw20.Token{},
		staking.Kind: staking.Contract{},
		router.Kind:  router.Router{},
		gov.Kind:     gov.Contract{},
		farm.Kind:    farm.Contract{},
	}
}

// Builder helper to build a genesis deployment.
type Builder struct {
	g Genesis
}

func NewBuilder() *Builder {
	return &Builder{g: Genesis{ChainID: "farmd-dev", Owner: "owner"}}
}

// FromGenesis starts a builder from a decoded genesis.
func FromGenesis(g Genesis) *Builder {
	return &Builder{g: g}
}

func (b *Builder) ChainID(id string) *Builder {
	b.g.ChainID = id
	return b
}

// Timestamp set timestamp.
func (b *Builder) Timestamp(t uint64) *Builder {
	b.g.Timestamp = t
	return b
}

// Owner names the account deploying every contract and minting every token.
func (b *Builder) Owner(name string) *Builder {
	b.g.Owner = name
	return b
}

func (b *Builder) Token(spec TokenSpec) *Builder {
	b.g.Tokens = append(b.g.Tokens, spec)
	return b
}

func (b *Builder) Staking(spec StakingSpec) *Builder {
	b.g.Staking = append(b.g.Staking, spec)
	return b
}

func (b *Builder) Router(spec RouterSpec) *Builder {
	b.g.Routers = append(b.g.Routers, spec)
	return b
}

func (b *Builder) Gov(spec GovSpec) *Builder {
	b.g.Govs = append(b.g.Govs, spec)
	return b
}

func (b *Builder) Farm(spec FarmSpec) *Builder {
	b.g.Farms = append(b.g.Farms, spec)
	return b
}

// Build deploys the genesis onto rt.
func (b *Builder) Build(rt *runtime.Runtime) (*Deployment, error) {
	g := b.g
	d := newDeployment(rt, DevAddress(g.Owner))

	if err := rt.SetBlock(xenv.BlockContext{Height: g.Height, Time: g.Timestamp, ChainID: g.ChainID}); err != nil {
		return nil, err
	}

	for _, t := range g.Tokens {
		minter := d.Owner
		if err := d.instantiate(cw20.Kind, t.Name, cw20.InstantiateMsg{
			Name:     t.Name,
			Symbol:   t.Symbol,
			Decimals: t.Decimals,
			Minter:   &minter,
		}); err != nil {
			return nil, err
		}
	}
	for _, s := range g.Staking {
		msg := staking.InstantiateMsg{RewardToken: d.Resolve(s.RewardToken)}
		if s.StakingToken != "" {
			token := d.Resolve(s.StakingToken)
			msg.StakingToken = &token
		}
		if err := d.instantiate(staking.Kind, s.Name, msg); err != nil {
			return nil, err
		}
	}
	for _, r := range g.Routers {
		msg := router.InstantiateMsg{}
		for _, p := range r.Pairs {
			msg.Pairs = append(msg.Pairs, router.Pair{
				OfferToken: d.Resolve(p.Offer),
				AskToken:   d.Resolve(p.Ask),
				Price:      p.Price.Decimal(),
				Spread:     p.Spread.Decimal(),
			})
		}
		if err := d.instantiate(router.Kind, r.Name, msg); err != nil {
			return nil, err
		}
	}
	for _, gv := range g.Govs {
		if err := d.instantiate(gov.Kind, gv.Name, gov.InstantiateMsg{Token: d.Resolve(gv.Token)}); err != nil {
			return nil, err
		}
	}
	for _, f := range g.Farms {
		if err := d.deployFarm(f); err != nil {
			return nil, err
		}
	}

	// balances last, so that contracts can hold inventory
	for _, t := range g.Tokens {
		for _, holder := range slices.Sorted(maps.Keys(t.Balances)) {
			if err := d.Mint(t.Name, holder, t.Balances[holder].Uint()); err != nil {
				return nil, errors.Wrapf(err, "mint %s to %s", t.Name, holder)
			}
		}
	}
	return d, nil
}

func (d *Deployment) deployFarm(f FarmSpec) error {
	resolve := func(name string) yield.Address {
		if name == "" {
			return yield.Address{}
		}
		return d.Resolve(name)
	}
	if err := d.instantiate(farm.Kind, f.Name, farm.InstantiateMsg{
		StakingContract:   resolve(f.Staking),
		RewardToken:       resolve(f.RewardToken),
		PairedAsset:       resolve(f.PairedAsset),
		Router:            resolve(f.Router),
		Governance:        resolve(f.Governance),
		Platform:          resolve(f.Platform),
		Controller:        resolve(f.Controller),
		PlatformFeeRate:   f.PlatformFeeRate.Decimal(),
		ControllerFeeRate: f.ControllerFeeRate.Decimal(),
		CommunityFeeRate:  f.CommunityFeeRate.Decimal(),
		MaxSpread:         f.MaxSpread.Decimal(),
		Adapter:           f.Adapter,
	}); err != nil {
		return err
	}

	for _, p := range f.Pools {
		msg := farm.RegisterPoolMsg{StakingToken: d.Resolve(p.Token)}
		if p.ExternalID != "" {
			id := d.Resolve(p.ExternalID)
			msg.ExternalID = &id
		}
		ratio := p.StakeRatio.Decimal()
		msg.StakeRatio = &ratio
		if _, err := d.Execute(d.Owner, f.Name, xenv.Tagged("register_pool", msg)); err != nil {
			return errors.Wrapf(err, "register pool %s of %s", p.Token, f.Name)
		}
	}
	return nil
}
