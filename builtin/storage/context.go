// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"encoding/binary"

	"github.com/specfarm/farmd/kv"
)

type UseGasFunc func(gas uint64)

type Context struct {
	store   kv.Store
	charger UseGasFunc
}

func NewContext(store kv.Store, charger UseGasFunc) *Context {
	return &Context{
		store:   store,
		charger: charger,
	}
}

func (c *Context) Store() kv.Store {
	return c.store
}

func (c *Context) UseGas(gas uint64) {
	if c.charger != nil {
		c.charger(gas)
	}
}

// namespace returns the length-prefixed form of name: [len(name) as uint16][name].
func namespace(name string) []byte {
	if len(name) > 0xffff {
		panic("storage: namespace too long")
	}
	ns := make([]byte, 2, 2+len(name))
	binary.BigEndian.PutUint16(ns, uint16(len(name)))
	return append(ns, name...)
}
