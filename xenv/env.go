// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/specfarm/farmd/builtin/gascharger"
	"github.com/specfarm/farmd/builtin/reverts"
	"github.com/specfarm/farmd/kv"
	"github.com/specfarm/farmd/yield"
)

// BlockContext block context.
type BlockContext struct {
	Height  uint64 `json:"height"`
	Time    uint64 `json:"time"` // unix seconds
	ChainID string `json:"chain_id"`
}

// Querier answers synchronous smart queries against other contracts.
type Querier interface {
	Query(contract yield.Address, msg []byte) ([]byte, error)
}

// Environment an env to execute a contract entry point.
type Environment struct {
	block    *BlockContext
	contract yield.Address
	caller   yield.Address
	store    kv.Store
	querier  Querier
	charger  *gascharger.Charger
}

// New create a new env.
func New(
	block *BlockContext,
	contract yield.Address,
	caller yield.Address,
	store kv.Store,
	querier Querier,
	charger *gascharger.Charger,
) *Environment {
	return &Environment{
		block:    block,
		contract: contract,
		caller:   caller,
		store:    store,
		querier:  querier,
		charger:  charger,
	}
}

func (env *Environment) BlockContext() *BlockContext { return env.block }
func (env *Environment) Contract() yield.Address     { return env.contract }
func (env *Environment) Caller() yield.Address       { return env.caller }
func (env *Environment) Store() kv.Store             { return env.store }

// UseGas charges gas. It panics when the transaction runs out of gas.
func (env *Environment) UseGas(gas uint64) {
	if env.charger != nil {
		env.charger.Charge(gas)
	}
}

// Query performs a raw smart query.
func (env *Environment) Query(contract yield.Address, msg []byte) ([]byte, error) {
	env.UseGas(yield.QueryGas)
	if env.querier == nil {
		return nil, reverts.New(reverts.ExternalCallFailed, "no querier")
	}
	res, err := env.querier.Query(contract, msg)
	if err != nil {
		if reverts.IsRevertErr(err) {
			return nil, err
		}
		return nil, reverts.Errorf(reverts.ExternalCallFailed, "query %v: %v", contract, err)
	}
	return res, nil
}

// QueryJSON marshals req, queries contract and unmarshals the answer into res.
func (env *Environment) QueryJSON(contract yield.Address, req, res any) error {
	data, err := json.Marshal(req)
	if err != nil {
		return errors.Wrap(err, "encode query")
	}
	out, err := env.Query(contract, data)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(out, res); err != nil {
		return reverts.Errorf(reverts.ExternalCallFailed, "decode query result of %v: %v", contract, err)
	}
	return nil
}
