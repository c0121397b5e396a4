// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/specfarm/farmd/builtin/gascharger"
	"github.com/specfarm/farmd/builtin/reverts"
	"github.com/specfarm/farmd/kv"
	"github.com/specfarm/farmd/xenv"
	"github.com/specfarm/farmd/yield"
)

// txContext carries the state of one executing transaction.
type txContext struct {
	rt      *Runtime
	overlay *kv.Stacked
	charger *gascharger.Charger
	block   *xenv.BlockContext
	origin  yield.Address
}

type execResult struct {
	events []xenv.Event
	data   []byte
}

func (tx *txContext) nextSeq() (uint64, error) {
	meta := metaBucket.NewStore(tx.overlay)
	var seq uint64
	data, err := meta.Get(keySeq)
	if err == nil && len(data) == 8 {
		seq = binary.BigEndian.Uint64(data)
	} else if err != nil && !meta.IsNotFound(err) {
		return 0, err
	}
	seq++
	return seq, meta.Put(keySeq, binary.BigEndian.AppendUint64(nil, seq))
}

func (tx *txContext) contract(addr yield.Address) (xenv.Contract, error) {
	info, err := loadContract(contractBucket.NewGetter(tx.overlay), addr)
	if err != nil {
		return nil, err
	}
	impl, ok := tx.rt.registry[info.Kind]
	if !ok {
		return nil, errors.Errorf("contract kind %q not registered", info.Kind)
	}
	return impl, nil
}

func (tx *txContext) env(contract, caller yield.Address, readonly bool) *xenv.Environment {
	store := contractStore(tx.overlay, contract)
	if readonly {
		store = kv.ReadOnly(store)
	}
	return xenv.New(tx.block, contract, caller, store, querier{tx}, tx.charger)
}

// execute runs the execute entry point of contract and then its messages.
func (tx *txContext) execute(depth int, sender, contract yield.Address, msg []byte) (*execResult, error) {
	impl, err := tx.contract(contract)
	if err != nil {
		return nil, err
	}
	return tx.call(depth, contract, func(env *xenv.Environment) (*xenv.Response, error) {
		return impl.Execute(env, msg)
	}, sender, "execute")
}

// call runs one entry point, records its event and dispatches the messages it returned.
func (tx *txContext) call(
	depth int,
	contract yield.Address,
	entry func(env *xenv.Environment) (*xenv.Response, error),
	caller yield.Address,
	eventType string,
) (*execResult, error) {
	if depth > yield.MaxCallDepth {
		return nil, reverts.New(reverts.ExternalCallFailed, "max call depth exceeded")
	}

	var res *xenv.Response
	if err := guard(func() error {
		var err error
		res, err = entry(tx.env(contract, caller, false))
		return err
	}); err != nil {
		return nil, err
	}
	if res == nil {
		res = xenv.NewResponse()
	}

	out := &execResult{
		events: []xenv.Event{{Type: eventType, Contract: contract, Attributes: res.Attributes}},
		data:   res.Data,
	}
	events, err := tx.dispatch(depth, contract, res.Messages)
	if err != nil {
		return nil, err
	}
	out.events = append(out.events, events...)
	return out, nil
}

// dispatch runs messages depth-first in order. A reply runs right after its
// sub-message, and the messages of the reply run before the next sibling.
func (tx *txContext) dispatch(depth int, contract yield.Address, msgs []xenv.SubMsg) ([]xenv.Event, error) {
	var events []xenv.Event
	for _, sub := range msgs {
		tx.charger.Charge(yield.MessageGas)

		level := tx.overlay.Push()
		res, err := tx.execute(depth+1, contract, sub.Msg.Contract, sub.Msg.Msg)
		if err != nil {
			tx.overlay.PopTo(level)
			if sub.ReplyOn != xenv.ReplyOnError && sub.ReplyOn != xenv.ReplyAlways {
				return nil, external(sub.Msg.Contract, err)
			}
			replied, err := tx.reply(depth, contract, xenv.Reply{
				ID:     sub.ID,
				Result: xenv.SubMsgResult{Err: err.Error()},
			})
			if err != nil {
				return nil, err
			}
			events = append(events, replied...)
			continue
		}

		events = append(events, res.events...)
		if sub.ReplyOn == xenv.ReplyOnSuccess || sub.ReplyOn == xenv.ReplyAlways {
			replied, err := tx.reply(depth, contract, xenv.Reply{
				ID:     sub.ID,
				Result: xenv.SubMsgResult{Events: res.events, Data: res.data},
			})
			if err != nil {
				return nil, err
			}
			events = append(events, replied...)
		}
	}
	return events, nil
}

func (tx *txContext) reply(depth int, contract yield.Address, reply xenv.Reply) ([]xenv.Event, error) {
	impl, err := tx.contract(contract)
	if err != nil {
		return nil, err
	}
	replier, ok := impl.(xenv.Replier)
	if !ok {
		return nil, reverts.Errorf(reverts.ExternalCallFailed, "contract %v does not handle replies", contract)
	}
	res, err := tx.call(depth, contract, func(env *xenv.Environment) (*xenv.Response, error) {
		return replier.Reply(env, reply)
	}, contract, "reply")
	if err != nil {
		return nil, err
	}
	return res.events, nil
}

func (tx *txContext) query(contract yield.Address, msg []byte) (out []byte, err error) {
	impl, err := tx.contract(contract)
	if err != nil {
		return nil, err
	}
	err = guard(func() error {
		var err error
		out, err = impl.Query(tx.env(contract, yield.Address{}, true), msg)
		return err
	})
	return
}

// external marks err as raised by another contract, keeping its message.
func external(contract yield.Address, err error) error {
	if ve, ok := reverts.As(err); ok && ve.Kind() == reverts.ExternalCallFailed {
		return err
	}
	return reverts.Wrap(reverts.ExternalCallFailed, err, contract.String())
}

// guard recovers contract panics into errors, except running out of gas
// which aborts the whole transaction.
func guard(fn func() error) (err error) {
	defer func() {
		if e := recover(); e != nil {
			if e == gascharger.ErrOutOfGas {
				panic(e)
			}
			if v, ok := e.(error); ok {
				err = errors.Wrap(v, "contract panicked")
			} else {
				err = errors.Errorf("contract panicked: %v", e)
			}
		}
	}()
	return fn()
}

type querier struct {
	tx *txContext
}

func (q querier) Query(contract yield.Address, msg []byte) ([]byte, error) {
	return q.tx.query(contract, msg)
}
