// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"sync/atomic"

	"github.com/specfarm/farmd/metrics"
	"github.com/specfarm/farmd/runtime"
	"github.com/specfarm/farmd/yield"
)

var metricLookups = metrics.LazyLoadCounterVec("query_cache_lookups", []string{"result"})

// Querier runs raw contract queries.
type Querier interface {
	QueryRaw(contract yield.Address, msg []byte) ([]byte, error)
}

// QueryCache caches raw query answers. Every committed transaction
// drops the whole cache.
type QueryCache struct {
	q         Querier
	lru       *LRU
	hit, miss atomic.Int64
}

func NewQueryCache(q Querier, size int) (*QueryCache, error) {
	l, err := NewLRU(size)
	if err != nil {
		return nil, err
	}
	return &QueryCache{q: q, lru: l}, nil
}

// QueryRaw answers from the cache, querying q on a miss.
func (c *QueryCache) QueryRaw(contract yield.Address, msg []byte) ([]byte, error) {
	key := string(contract.Bytes()) + string(msg)
	out, cached, err := c.lru.GetOrLoad(key, func(string) ([]byte, error) {
		return c.q.QueryRaw(contract, msg)
	})
	if err != nil {
		return nil, err
	}
	if cached {
		c.hit.Add(1)
		metricLookups().AddWithLabel(1, map[string]string{"result": "hit"})
	} else {
		c.miss.Add(1)
		metricLookups().AddWithLabel(1, map[string]string{"result": "miss"})
	}
	return out, nil
}

// Invalidate drops every cached answer.
func (c *QueryCache) Invalidate() {
	c.lru.Purge()
}

// Track invalidates the cache whenever rt commits a transaction.
func (c *QueryCache) Track(rt *runtime.Runtime) {
	rt.OnReceipt(func(r *runtime.Receipt) {
		if !r.Reverted {
			c.Invalidate()
		}
	})
}

// Stats returns the number of hits and misses.
func (c *QueryCache) Stats() (hit, miss int64) {
	return c.hit.Load(), c.miss.Load()
}

func (c *QueryCache) Len() int {
	return c.lru.Len()
}
