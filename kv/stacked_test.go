// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, s Store, r Range) map[string]string {
	out := make(map[string]string)
	it := s.Iterate(r)
	defer it.Release()
	var last string
	for it.Next() {
		k := string(it.Key())
		assert.Greater(t, k, last, "keys must ascend")
		last = k
		out[k] = string(it.Value())
	}
	require.NoError(t, it.Error())
	return out
}

func TestStackedRevert(t *testing.T) {
	base := NewMemStore()
	require.NoError(t, base.Put([]byte("x"), []byte("0")))

	s := NewStacked(base)
	require.NoError(t, s.Put([]byte("a"), []byte("1")))

	depth := s.Push()
	require.NoError(t, s.Put([]byte("a"), []byte("2")))
	require.NoError(t, s.Delete([]byte("x")))

	v, err := s.Get([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, "2", string(v))
	_, err = s.Get([]byte("x"))
	assert.True(t, s.IsNotFound(err))

	s.PopTo(depth)
	v, err = s.Get([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, "1", string(v))
	has, err := s.Has([]byte("x"))
	require.NoError(t, err)
	assert.True(t, has)

	// nothing reaches the base until commit
	has, err = base.Has([]byte("a"))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestStackedIterate(t *testing.T) {
	base := NewMemStore()
	require.NoError(t, base.Put([]byte("p1"), []byte("a")))
	require.NoError(t, base.Put([]byte("p2"), []byte("b")))
	require.NoError(t, base.Put([]byte("q1"), []byte("c")))

	s := NewStacked(base)
	s.Push()
	require.NoError(t, s.Delete([]byte("p1")))
	require.NoError(t, s.Put([]byte("p3"), []byte("d")))
	require.NoError(t, s.Put([]byte("p2"), []byte("e")))

	assert.Equal(t, map[string]string{"p2": "e", "p3": "d"}, collect(t, s, BytesPrefix([]byte("p"))))
	assert.Equal(t, map[string]string{"p2": "e", "p3": "d", "q1": "c"}, collect(t, s, Range{}))
}

func TestStackedCommit(t *testing.T) {
	base := NewMemStore()
	require.NoError(t, base.Put([]byte("gone"), []byte("x")))

	s := NewStacked(base)
	require.NoError(t, s.Put([]byte("k1"), []byte("v1")))
	s.Push()
	require.NoError(t, s.Put([]byte("k2"), []byte("v2")))
	require.NoError(t, s.Delete([]byte("gone")))

	n, err := s.Commit(base)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 1, s.Depth())

	assert.Equal(t, map[string]string{"k1": "v1", "k2": "v2"}, collect(t, base, Range{}))
}
