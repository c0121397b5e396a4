// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package adapter normalizes the query and message shapes of the external
// staking protocols a farm bonds into.
package adapter

import (
	"sort"

	"github.com/specfarm/farmd/builtin/reverts"
	"github.com/specfarm/farmd/fixed"
	"github.com/specfarm/farmd/xenv"
	"github.com/specfarm/farmd/yield"
)

// Querier performs JSON smart queries. *xenv.Environment implements it.
type Querier interface {
	QueryJSON(contract yield.Address, req, res any) error
}

var _ Querier = (*xenv.Environment)(nil)

// RewardInfo is what a staker holds in one pool of an external protocol.
type RewardInfo struct {
	BondAmount    fixed.Uint `json:"bond_amount"`
	PendingReward fixed.Uint `json:"pending_reward"`
}

// Adapter speaks the protocol of one family of external staking contracts.
//
// pool is the identity the external protocol uses for a farm pool. Protocols
// with a single pool per contract ignore it.
type Adapter interface {
	Name() string

	// SinglePool reports whether the protocol keeps one position per staker,
	// so a farm using it can back only one pool.
	SinglePool() bool

	// QueryReward returns the bond and the unclaimed reward of staker.
	// at pins the query to a block height on protocols with point-in-time state.
	QueryReward(q Querier, staking, pool, staker yield.Address, at *uint64) (RewardInfo, error)

	// BondMsg stakes amount of stakingToken, held by the caller, into staking.
	BondMsg(staking, stakingToken, pool yield.Address, amount fixed.Uint) (xenv.ExecuteMsg, error)
	// UnbondMsg returns amount of stakingToken from staking to the caller.
	UnbondMsg(staking, stakingToken, pool yield.Address, amount fixed.Uint) (xenv.ExecuteMsg, error)
	// ClaimMsg pays the unclaimed reward of the caller out to the caller.
	ClaimMsg(staking, stakingToken, pool yield.Address) (xenv.ExecuteMsg, error)
}

var registry = map[string]Adapter{
	Mirror{}.Name():    Mirror{},
	Anchor{}.Name():    Anchor{},
	Astroport{}.Name(): Astroport{},
}

// New returns the adapter registered under name.
func New(name string) (Adapter, error) {
	a, ok := registry[name]
	if !ok {
		return nil, reverts.Errorf(reverts.InvalidInput, "unknown adapter %q", name)
	}
	return a, nil
}

// Names lists the registered adapters in lexical order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func query(q Querier, contract yield.Address, req, res any) error {
	if err := q.QueryJSON(contract, req, res); err != nil {
		if reverts.IsRevertErr(err) {
			return reverts.Wrap(reverts.ExternalCallFailed, err, "staking query")
		}
		return reverts.Errorf(reverts.ExternalCallFailed, "staking query: %v", err)
	}
	return nil
}
