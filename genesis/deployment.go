// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/pkg/errors"

	"github.com/specfarm/farmd/builtin/cw20"
	"github.com/specfarm/farmd/fixed"
	"github.com/specfarm/farmd/runtime"
	"github.com/specfarm/farmd/xenv"
	"github.com/specfarm/farmd/yield"
)

// Deployment is a built genesis: the runtime and the addresses of its named contracts.
type Deployment struct {
	Runtime   *runtime.Runtime
	Owner     yield.Address
	contracts map[string]yield.Address
}

func newDeployment(rt *runtime.Runtime, owner yield.Address) *Deployment {
	return &Deployment{Runtime: rt, Owner: owner, contracts: make(map[string]yield.Address)}
}

// Attach rebuilds the deployment of a runtime whose contracts were deployed
// earlier, using their labels as names.
func Attach(rt *runtime.Runtime) (*Deployment, error) {
	infos, err := rt.Contracts()
	if err != nil {
		return nil, err
	}
	d := newDeployment(rt, yield.Address{})
	for _, info := range infos {
		d.contracts[info.Label] = info.Address
		d.Owner = info.Admin
	}
	return d, nil
}

// Contract returns the address of the contract deployed as name.
func (d *Deployment) Contract(name string) (yield.Address, bool) {
	addr, ok := d.contracts[name]
	return addr, ok
}

// Contracts returns the names of every deployed contract.
func (d *Deployment) Contracts() map[string]yield.Address {
	out := make(map[string]yield.Address, len(d.contracts))
	for k, v := range d.contracts {
		out[k] = v
	}
	return out
}

// Resolve maps a name to a contract, then to a hex address, and otherwise to a dev account.
func (d *Deployment) Resolve(name string) yield.Address {
	if addr, ok := d.contracts[name]; ok {
		return addr
	}
	if addr, err := yield.ParseAddress(name); err == nil {
		return addr
	}
	return DevAddress(name)
}

func (d *Deployment) instantiate(kind, name string, msg any) error {
	if _, exists := d.contracts[name]; exists {
		return errors.Errorf("duplicate contract name %q", name)
	}
	addr, _, err := d.Runtime.Instantiate(d.Owner, kind, name, msg)
	if err != nil {
		return errors.Wrapf(err, "instantiate %s %q", kind, name)
	}
	d.contracts[name] = addr
	return nil
}

// Execute runs msg against the named contract.
func (d *Deployment) Execute(sender yield.Address, contract string, msg any) (*runtime.Receipt, error) {
	addr, ok := d.contracts[contract]
	if !ok {
		return nil, errors.Errorf("unknown contract %q", contract)
	}
	return d.Runtime.Execute(sender, addr, msg)
}

// Query runs a query against the named contract.
func (d *Deployment) Query(contract string, msg, res any) error {
	addr, ok := d.contracts[contract]
	if !ok {
		return errors.Errorf("unknown contract %q", contract)
	}
	return d.Runtime.Query(addr, msg, res)
}

// Mint mints amount of the named token to holder, as the owner.
func (d *Deployment) Mint(token, holder string, amount fixed.Uint) error {
	_, err := d.Execute(d.Owner, token, xenv.Tagged("mint", cw20.MintMsg{
		Recipient: d.Resolve(holder),
		Amount:    amount,
	}))
	return err
}

// Send sends amount of the named token from sender to a contract with a receive hook.
func (d *Deployment) Send(sender yield.Address, token, contract string, amount fixed.Uint, hook any) (*runtime.Receipt, error) {
	msg, err := cw20.Send(d.Resolve(token), d.Resolve(contract), amount, hook)
	if err != nil {
		return nil, err
	}
	return d.Runtime.ExecuteRaw(sender, msg.Contract, msg.Msg)
}

// Balance returns the balance of holder in the named token.
func (d *Deployment) Balance(token, holder string) (fixed.Uint, error) {
	var res cw20.BalanceResponse
	err := d.Query(token, xenv.Tagged("balance", cw20.BalanceQuery{Address: d.Resolve(holder)}), &res)
	return res.Balance, err
}
