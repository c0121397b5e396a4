// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mem map[string]string

func (m mem) Get(k []byte) ([]byte, error) {
	if v, ok := m[string(k)]; ok {
		return []byte(v), nil
	}
	return nil, errors.New("not found")
}

func (m mem) Has(k []byte) (bool, error) {
	_, ok := m[string(k)]
	return ok, nil
}

func (m mem) Put(k, v []byte) error {
	m[string(k)] = string(v)
	return nil
}

func (m mem) Delete(k []byte) error {
	delete(m, string(k))
	return nil
}

func (m mem) IsNotFound(err error) bool {
	return true
}

func TestBucket_GetterGet(t *testing.T) {
	m := mem{"k1": "v1", "k2": "v2"}

	tests := []struct {
		b    Bucket
		key  string
		want string
	}{
		{Bucket(""), "k1", "v1"},
		{Bucket(""), "k2", "v2"},
		{Bucket("k"), "k1", ""},
		{Bucket("k"), "1", "v1"},
		{Bucket("k"), "2", "v2"},
		{Bucket("k1"), "", "v1"},
	}
	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			if got, _ := tt.b.NewGetter(m).Get([]byte(tt.key)); !reflect.DeepEqual(string(got), tt.want) {
				t.Errorf("Bucket.NewGetter.Get = %v, want %v", string(got), tt.want)
			}
		})
	}
}

func TestBucket_GetterHas(t *testing.T) {
	m := mem{"k1": "v1", "k2": "v2"}

	tests := []struct {
		b    Bucket
		key  string
		want bool
	}{
		{Bucket(""), "k1", true},
		{Bucket(""), "k2", true},
		{Bucket("k"), "k1", false},
		{Bucket("k"), "1", true},
		{Bucket("k"), "2", true},
		{Bucket("k1"), "", true},
	}
	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			if got, _ := tt.b.NewGetter(m).Has([]byte(tt.key)); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Bucket.NewGetter.Has = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBucket_Putter(t *testing.T) {
	m := mem{}
	p := Bucket("p/").NewPutter(m)

	require.NoError(t, p.Put([]byte("a"), []byte("1")))
	assert.Equal(t, mem{"p/a": "1"}, m)

	require.NoError(t, p.Delete([]byte("a")))
	assert.Equal(t, mem{}, m)
}

func TestBucket_StoreIterate(t *testing.T) {
	base := NewMemStore()
	for _, k := range []string{"a/1", "a/2", "b/1", "a"} {
		require.NoError(t, base.Put([]byte(k), []byte("v"+k)))
	}

	s := Bucket("a/").NewStore(base)
	var keys []string
	it := s.Iterate(Range{})
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	it.Release()
	require.NoError(t, it.Error())
	assert.Equal(t, []string{"1", "2"}, keys)

	v, err := s.Get([]byte("2"))
	require.NoError(t, err)
	assert.Equal(t, "va/2", string(v))
}

func TestReadOnly(t *testing.T) {
	base := NewMemStore()
	require.NoError(t, base.Put([]byte("k"), []byte("v")))

	ro := ReadOnly(base)
	v, err := ro.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, "v", string(v))
	assert.ErrorIs(t, ro.Put([]byte("k"), []byte("x")), ErrReadOnly)
	assert.ErrorIs(t, ro.Delete([]byte("k")), ErrReadOnly)
}
