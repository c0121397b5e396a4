// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/specfarm/farmd/yield"
)

// Raw is a single typed value stored under its own name.
type Raw[V any] struct {
	context *Context
	key     []byte
}

func NewRaw[V any](context *Context, name string) *Raw[V] {
	return &Raw[V]{context: context, key: namespace(name)}
}

// Get returns the stored value. found is false when nothing was stored yet.
func (r *Raw[V]) Get() (value V, found bool, err error) {
	value = newValue[V]()
	raw, err := r.context.store.Get(r.key)
	if err != nil {
		if r.context.store.IsNotFound(err) {
			r.context.UseGas(yield.SloadGas)
			return value, false, nil
		}
		return value, false, errors.Wrap(err, "storage get")
	}
	r.context.UseGas(toWordSize(len(raw)) * yield.SloadGas)
	if err := rlp.DecodeBytes(raw, &value); err != nil {
		return value, false, errors.Wrap(err, "storage decode")
	}
	return value, true, nil
}

// Upsert stores value.
func (r *Raw[V]) Upsert(value V) error {
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return errors.Wrap(err, "storage encode")
	}
	r.context.UseGas(toWordSize(len(raw)) * yield.SstoreResetGas)
	return r.context.store.Put(r.key, raw)
}

// Delete removes the value.
func (r *Raw[V]) Delete() error {
	r.context.UseGas(yield.SstoreResetGas)
	return r.context.store.Delete(r.key)
}
