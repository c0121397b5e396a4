// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

// NewMemStore returns an empty in-process store.
func NewMemStore() *Stacked {
	return NewStacked(&struct {
		GetFunc
		HasFunc
		IsNotFoundFunc
		PutFunc
		DeleteFunc
		IterateFunc
	}{
		func([]byte) ([]byte, error) { return nil, ErrNotFound },
		func([]byte) (bool, error) { return false, nil },
		func(err error) bool { return err == ErrNotFound },
		func([]byte, []byte) error { return ErrReadOnly },
		func([]byte) error { return ErrReadOnly },
		func(Range) Iterator { return NewSliceIterator(nil) },
	})
}
