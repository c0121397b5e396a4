// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/specfarm/farmd/kv"
	"github.com/specfarm/farmd/yield"
)

// Mapping is a typed key/value collection living under its own namespace
// of the contract store. Values are RLP encoded.
type Mapping[K Key, V any] struct {
	context *Context
	ns      kv.Bucket
}

func NewMapping[K Key, V any](context *Context, name string) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, ns: kv.Bucket(namespace(name))}
}

func (m *Mapping[K, V]) store() kv.Store {
	return m.ns.NewStore(m.context.store)
}

func newValue[V any]() (value V) {
	if t := reflect.TypeOf(value); t != nil && t.Kind() == reflect.Ptr {
		value = reflect.New(t.Elem()).Interface().(V)
	}
	return
}

// Get returns the value under key. found is false when the key is absent,
// in which case value is the zero value (a fresh allocation for pointer types).
func (m *Mapping[K, V]) Get(key K) (value V, found bool, err error) {
	value = newValue[V]()
	raw, err := m.store().Get(key.Bytes())
	if err != nil {
		if m.context.store.IsNotFound(err) {
			m.context.UseGas(yield.SloadGas)
			return value, false, nil
		}
		return value, false, errors.Wrap(err, "storage get")
	}
	m.context.UseGas(toWordSize(len(raw)) * yield.SloadGas)
	if err := rlp.DecodeBytes(raw, &value); err != nil {
		return value, false, errors.Wrap(err, "storage decode")
	}
	return value, true, nil
}

// Set stores value under key. newValue selects the gas price of a fresh slot.
func (m *Mapping[K, V]) Set(key K, value V, newValue bool) error {
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return errors.Wrap(err, "storage encode")
	}
	slots := toWordSize(len(raw))
	if newValue {
		m.context.UseGas(slots * yield.SstoreSetGas)
	} else {
		m.context.UseGas(slots * yield.SstoreResetGas)
	}
	return m.store().Put(key.Bytes(), raw)
}

// Delete removes key.
func (m *Mapping[K, V]) Delete(key K) error {
	m.context.UseGas(yield.SstoreResetGas)
	return m.store().Delete(key.Bytes())
}

// Iterate visits entries whose key starts with prefix in ascending key order.
// The traverse stops early when fn returns false.
func (m *Mapping[K, V]) Iterate(prefix []byte, fn func(key []byte, value V) (bool, error)) error {
	it := m.store().Iterate(kv.BytesPrefix(prefix))
	defer it.Release()

	for it.Next() {
		raw := it.Value()
		m.context.UseGas(toWordSize(len(raw)) * yield.SloadGas)

		value := newValue[V]()
		if err := rlp.DecodeBytes(raw, &value); err != nil {
			return errors.Wrap(err, "storage decode")
		}
		cont, err := fn(append([]byte(nil), it.Key()...), value)
		if err != nil {
			return err
		}
		if !cont {
			break
		}
	}
	return it.Error()
}
