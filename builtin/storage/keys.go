// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"encoding/binary"
)

type Key interface {
	Bytes() []byte
}

// Uint64Key orders numerically under iteration.
type Uint64Key uint64

func (k Uint64Key) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(k))
}

// StringKey is a plain string key.
type StringKey string

func (k StringKey) Bytes() []byte {
	return []byte(k)
}

// CompositeKey concatenates fixed-size parts, so that the leading parts
// can be used as an iteration prefix.
type CompositeKey []byte

func (k CompositeKey) Bytes() []byte {
	return k
}

// Join builds a CompositeKey.
func Join(parts ...Key) CompositeKey {
	var k CompositeKey
	for _, p := range parts {
		k = append(k, p.Bytes()...)
	}
	return k
}
