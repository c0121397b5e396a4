// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"bytes"
	"errors"
	"slices"

	"github.com/specfarm/farmd/stackedmap"
)

type entry struct {
	val     []byte
	deleted bool
}

// Stacked is a journaled write overlay on top of a store.
// Writes land on the top level; Pop reverts them, Commit flushes all
// surviving writes to a batch.
type Stacked struct {
	base Store
	sm   *stackedmap.StackedMap[string, entry]
}

var _ Store = (*Stacked)(nil)

// NewStacked creates an overlay with one level pushed.
func NewStacked(base Store) *Stacked {
	s := &Stacked{base: base}
	s.sm = stackedmap.New(func(key string) (entry, bool, error) {
		val, err := base.Get([]byte(key))
		if err != nil {
			if base.IsNotFound(err) {
				return entry{}, false, nil
			}
			return entry{}, false, err
		}
		return entry{val: val}, true, nil
	})
	s.sm.Push()
	return s
}

// Push pushes a new write level and returns the depth before push.
func (s *Stacked) Push() int { return s.sm.Push() }

// PopTo reverts writes until depth is reached.
func (s *Stacked) PopTo(depth int) { s.sm.PopTo(depth) }

// Depth returns depth of the level stack.
func (s *Stacked) Depth() int { return s.sm.Depth() }

func (s *Stacked) Get(key []byte) ([]byte, error) {
	e, ok, err := s.sm.Get(string(key))
	if err != nil {
		return nil, err
	}
	if !ok || e.deleted {
		return nil, ErrNotFound
	}
	return e.val, nil
}

func (s *Stacked) Has(key []byte) (bool, error) {
	_, err := s.Get(key)
	if err != nil {
		if s.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Stacked) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func (s *Stacked) Put(key, val []byte) error {
	s.sm.Put(string(key), entry{val: bytes.Clone(val)})
	return nil
}

func (s *Stacked) Delete(key []byte) error {
	s.sm.Put(string(key), entry{deleted: true})
	return nil
}

// dirty returns the latest pending write of every touched key.
func (s *Stacked) dirty() map[string]entry {
	m := make(map[string]entry)
	s.sm.Journal(func(key string, e entry) bool {
		m[key] = e
		return true
	})
	return m
}

// Iterate merges the base range with pending writes.
func (s *Stacked) Iterate(r Range) Iterator {
	merged := make(map[string][]byte)
	it := s.base.Iterate(r)
	for it.Next() {
		merged[string(it.Key())] = bytes.Clone(it.Value())
	}
	err := it.Error()
	it.Release()
	if err != nil {
		return errIterator(err)
	}

	for key, e := range s.dirty() {
		if !r.Contains([]byte(key)) {
			continue
		}
		if e.deleted {
			delete(merged, key)
		} else {
			merged[key] = e.val
		}
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	pairs := make([]Pair, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, Pair{Key: []byte(k), Value: merged[k]})
	}
	return NewSliceIterator(pairs)
}

// Commit writes all pending writes into putter and resets the overlay.
func (s *Stacked) Commit(putter Putter) (int, error) {
	dirty := s.dirty()
	keys := make([]string, 0, len(dirty))
	for k := range dirty {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		e := dirty[k]
		var err error
		if e.deleted {
			err = putter.Delete([]byte(k))
		} else {
			err = putter.Put([]byte(k), e.val)
		}
		if err != nil {
			return 0, err
		}
	}
	s.sm.PopTo(0)
	s.sm.Push()
	return len(keys), nil
}
