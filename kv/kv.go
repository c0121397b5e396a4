// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"errors"

	"github.com/syndtr/goleveldb/leveldb/util"
)

// ErrNotFound is returned by in-process stores when a key is absent.
var ErrNotFound = errors.New("kv: not found")

// ErrReadOnly is returned by writes on a read-only store.
var ErrReadOnly = errors.New("kv: read only")

// Getter wraps methods for getting kvs.
type Getter interface {
	// Get value for given key.
	// An error returned if key not found. It can be checked via IsNotFound.
	Get(key []byte) (value []byte, err error)
	Has(key []byte) (bool, error)
	IsNotFound(error) bool
}

// Putter wraps methods for putting kvs.
type Putter interface {
	Put(key, value []byte) error
	Delete(key []byte) error
}

// Iterator to iterates kvs, in ascending key order.
type Iterator interface {
	Next() bool
	Release()
	Error() error

	Key() []byte
	Value() []byte
}

// Range is the key range.
type Range struct {
	Start []byte // start of key range (included)
	Limit []byte // limit of key range (excluded), nil means no limit
}

// Contains returns whether key falls into the range.
func (r Range) Contains(key []byte) bool {
	if string(key) < string(r.Start) {
		return false
	}
	return len(r.Limit) == 0 || string(key) < string(r.Limit)
}

// BytesPrefix returns key range that satisfy the given prefix.
func BytesPrefix(prefix []byte) Range {
	r := util.BytesPrefix(prefix)
	return Range{Start: r.Start, Limit: r.Limit}
}

// Store defines the full functional kv store.
type Store interface {
	Getter
	Putter
	Iterate(r Range) Iterator
}

// Batch defines batch of putting ops.
type Batch interface {
	Putter

	Len() int
	Write() error
}

// Persistent is a store backed by durable storage.
type Persistent interface {
	Store
	NewBatch() Batch
	Close() error
}
