// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/specfarm/farmd/builtin/farm"
	"github.com/specfarm/farmd/builtin/reverts"
	"github.com/specfarm/farmd/builtin/staking"
	"github.com/specfarm/farmd/runtime"
	"github.com/specfarm/farmd/xenv"
	"github.com/specfarm/farmd/yield"
)

// Step is one action of a scenario.
//
//	bond      sender sends Amount of Token to Farm
//	unbond    sender burns Share shares of the Token pool of Farm
//	withdraw  sender collects distributed rewards from Farm
//	compound  sender compounds Farm
//	accrue    the owner mints Amount of Token and distributes it to the Pool bonders of Contract
//	advance   moves Blocks blocks forward, Seconds each
//	execute   sender runs Msg against Contract, "@name" strings are replaced by addresses
//	migrate   the owner migrates Contract
type Step struct {
	Action      string         `yaml:"action"`
	Sender      string         `yaml:"sender"`
	Farm        string         `yaml:"farm"`
	Contract    string         `yaml:"contract"`
	Token       string         `yaml:"token"`
	Pool        string         `yaml:"pool"`
	Amount      Amount         `yaml:"amount"`
	Share       Amount         `yaml:"share"`
	Blocks      uint64         `yaml:"blocks"`
	Seconds     uint64         `yaml:"seconds"`
	Msg         map[string]any `yaml:"msg"`
	ExpectError string         `yaml:"expect_error"`
}

func (s Step) String() string {
	var b strings.Builder
	b.WriteString(s.Action)
	for _, kv := range [][2]string{{"sender", s.Sender}, {"farm", s.Farm}, {"contract", s.Contract}, {"token", s.Token}} {
		if kv[1] != "" {
			fmt.Fprintf(&b, " %s=%s", kv[0], kv[1])
		}
	}
	return b.String()
}

// Run executes a step. A step expecting an error succeeds only when it
// fails with that revert kind.
func (d *Deployment) Run(step Step) (*runtime.Receipt, error) {
	receipt, err := d.run(step)
	if step.ExpectError == "" {
		return receipt, err
	}
	if err == nil {
		return receipt, errors.Errorf("%v: expected %s, succeeded", step, step.ExpectError)
	}
	if !reverts.IsKind(err, reverts.Kind(step.ExpectError)) {
		return receipt, errors.Wrapf(err, "%v: expected %s", step, step.ExpectError)
	}
	return receipt, nil
}

func (d *Deployment) sender(step Step) yield.Address {
	if step.Sender == "" {
		return d.Owner
	}
	return d.Resolve(step.Sender)
}

func (d *Deployment) run(step Step) (*runtime.Receipt, error) {
	switch step.Action {
	case "bond":
		return d.Send(d.sender(step), step.Token, step.Farm, step.Amount.Uint(), xenv.Tagged("bond", nil))
	case "unbond":
		return d.Execute(d.sender(step), step.Farm, xenv.Tagged("unbond", farm.UnbondMsg{
			StakingToken: d.Resolve(step.Token),
			Share:        step.Share.Uint(),
		}))
	case "withdraw":
		msg := farm.WithdrawMsg{}
		if step.Token != "" {
			token := d.Resolve(step.Token)
			msg.StakingToken = &token
		}
		return d.Execute(d.sender(step), step.Farm, xenv.Tagged("withdraw", msg))
	case "compound":
		return d.Execute(d.sender(step), step.Farm, xenv.Tagged("compound", farm.CompoundMsg{}))
	case "accrue":
		if err := d.Mint(step.Token, d.Owner.String(), step.Amount.Uint()); err != nil {
			return nil, err
		}
		hook := staking.AccrueHook{}
		if step.Pool != "" {
			pool := d.Resolve(step.Pool)
			hook.Pool = &pool
		}
		return d.Send(d.Owner, step.Token, step.Contract, step.Amount.Uint(), xenv.Tagged("accrue", hook))
	case "advance":
		blocks := max(step.Blocks, 1)
		for range blocks {
			if err := d.Runtime.NextBlock(step.Seconds); err != nil {
				return nil, err
			}
		}
		return nil, nil
	case "execute":
		data, err := json.Marshal(d.substitute(step.Msg))
		if err != nil {
			return nil, errors.Wrap(err, "encode step msg")
		}
		addr, ok := d.Contract(step.Contract)
		if !ok {
			return nil, errors.Errorf("unknown contract %q", step.Contract)
		}
		return d.Runtime.ExecuteRaw(d.sender(step), addr, data)
	case "migrate":
		addr, ok := d.Contract(step.Contract)
		if !ok {
			return nil, errors.Errorf("unknown contract %q", step.Contract)
		}
		return d.Runtime.Migrate(d.Owner, addr, struct{}{})
	}
	return nil, errors.Errorf("unknown step action %q", step.Action)
}

// substitute replaces "@name" strings with the resolved address.
func (d *Deployment) substitute(v any) any {
	switch t := v.(type) {
	case string:
		if name, ok := strings.CutPrefix(t, "@"); ok {
			return d.Resolve(name).String()
		}
		return t
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = d.substitute(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = d.substitute(val)
		}
		return out
	}
	return v
}
