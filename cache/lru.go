// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package cache memoizes contract query answers between state changes.
package cache

import lru "github.com/hashicorp/golang-lru"

// LRU a LRU cache extends golang-lru.
type LRU struct {
	*lru.Cache
}

// NewLRU create a LRU cache instance.
// maxSize should be > 0, or an error returned.
func NewLRU(maxSize int) (*LRU, error) {
	cache, err := lru.New(maxSize)
	if err != nil {
		return nil, err
	}
	return &LRU{cache}, nil
}

// Loader loads the value of a missed key.
type Loader func(key string) ([]byte, error)

// GetOrLoad first try to get from cache, do load if missed.
// Failed loads are not cached.
func (l *LRU) GetOrLoad(key string, loader Loader) ([]byte, bool, error) {
	if v, ok := l.Get(key); ok {
		return v.([]byte), true, nil
	}
	v, err := loader(key)
	if err != nil {
		return nil, false, err
	}
	l.Add(key, v)
	return v, false, nil
}
