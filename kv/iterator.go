// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

// Pair is a key/value pair.
type Pair struct {
	Key   []byte
	Value []byte
}

// sliceIterator iterates over pairs already sorted by key.
type sliceIterator struct {
	pairs []Pair
	pos   int
	err   error
}

// NewSliceIterator creates an iterator over sorted pairs.
func NewSliceIterator(pairs []Pair) Iterator {
	return &sliceIterator{pairs: pairs, pos: -1}
}

func errIterator(err error) Iterator {
	return &sliceIterator{pos: -1, err: err}
}

func (it *sliceIterator) Next() bool {
	if it.err != nil || it.pos+1 >= len(it.pairs) {
		it.pos = len(it.pairs)
		return false
	}
	it.pos++
	return true
}

func (it *sliceIterator) Key() []byte {
	if it.pos < 0 || it.pos >= len(it.pairs) {
		return nil
	}
	return it.pairs[it.pos].Key
}

func (it *sliceIterator) Value() []byte {
	if it.pos < 0 || it.pos >= len(it.pairs) {
		return nil
	}
	return it.pairs[it.pos].Value
}

func (it *sliceIterator) Release()     { it.pairs = nil }
func (it *sliceIterator) Error() error { return it.err }
