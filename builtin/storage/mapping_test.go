// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specfarm/farmd/builtin/gascharger"
	"github.com/specfarm/farmd/fixed"
	"github.com/specfarm/farmd/kv"
	"github.com/specfarm/farmd/test/datagen"
	"github.com/specfarm/farmd/yield"
)

type TestStruct struct {
	Field1 uint64
	Field2 fixed.Uint
	Addr1  yield.Address
	Bytes1 yield.Bytes32
}

// newTestContext returns a fresh Context with in-memory store and unlimited gas.
func newTestContext() (*Context, *gascharger.Charger) {
	charger := gascharger.New(0)
	return NewContext(kv.NewMemStore(), charger.Charge), charger
}

func newRandomStruct() *TestStruct {
	return &TestStruct{
		Field1: 100,
		Field2: fixed.NewUint(200),
		Addr1:  datagen.RandAddress(),
		Bytes1: datagen.RandomHash(),
	}
}

func TestMapping_GetSet(t *testing.T) {
	ctx, charger := newTestContext()
	m := NewMapping[yield.Address, *TestStruct](ctx, "structs")

	key := datagen.RandAddress()
	got, found, err := m.Get(key)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NotNil(t, got, "pointer values are allocated even when absent")
	assert.Equal(t, yield.SloadGas, charger.TotalGas())

	value := newRandomStruct()
	require.NoError(t, m.Set(key, value, true))

	got, found, err = m.Get(key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, value, got)

	require.NoError(t, m.Delete(key))
	_, found, err = m.Get(key)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMapping_ValueTypes(t *testing.T) {
	ctx, _ := newTestContext()
	m := NewMapping[StringKey, fixed.Uint](ctx, "amounts")

	require.NoError(t, m.Set("a", fixed.NewUint(42), true))
	got, found, err := m.Get("a")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, fixed.NewUint(42), got)
}

func TestMapping_Gas(t *testing.T) {
	ctx, charger := newTestContext()
	m := NewMapping[Uint64Key, *TestStruct](ctx, "gas")

	require.NoError(t, m.Set(1, newRandomStruct(), true))
	setGas := charger.TotalGas()
	assert.Equal(t, uint64(0), setGas%yield.SstoreSetGas)
	assert.Greater(t, setGas, yield.SstoreSetGas, "the value spans more than one word")

	require.NoError(t, m.Set(1, newRandomStruct(), false))
	assert.Equal(t, setGas/yield.SstoreSetGas*yield.SstoreResetGas, charger.TotalGas()-setGas)
}

func TestMapping_NamespaceIsolation(t *testing.T) {
	ctx, _ := newTestContext()
	a := NewMapping[StringKey, fixed.Uint](ctx, "a")
	ab := NewMapping[StringKey, fixed.Uint](ctx, "ab")

	require.NoError(t, a.Set("b1", fixed.NewUint(1), true))
	require.NoError(t, ab.Set("1", fixed.NewUint(2), true))

	var keys []string
	require.NoError(t, a.Iterate(nil, func(key []byte, v fixed.Uint) (bool, error) {
		keys = append(keys, string(key))
		return true, nil
	}))
	assert.Equal(t, []string{"b1"}, keys)

	got, found, err := ab.Get("1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, fixed.NewUint(2), got)
}

func TestMapping_IteratePrefix(t *testing.T) {
	ctx, _ := newTestContext()
	m := NewMapping[CompositeKey, fixed.Uint](ctx, "reward")

	u1, u2 := yield.Address{1}, yield.Address{2}
	p1, p2 := yield.Address{0xa}, yield.Address{0xb}

	require.NoError(t, m.Set(Join(u1, p1), fixed.NewUint(11), true))
	require.NoError(t, m.Set(Join(u1, p2), fixed.NewUint(12), true))
	require.NoError(t, m.Set(Join(u2, p1), fixed.NewUint(21), true))

	var values []fixed.Uint
	require.NoError(t, m.Iterate(u1.Bytes(), func(key []byte, v fixed.Uint) (bool, error) {
		assert.Equal(t, u1.Bytes(), key[:yield.AddressLength])
		values = append(values, v)
		return true, nil
	}))
	assert.Equal(t, []fixed.Uint{fixed.NewUint(11), fixed.NewUint(12)}, values)

	count := 0
	require.NoError(t, m.Iterate(nil, func(key []byte, v fixed.Uint) (bool, error) {
		count++
		return false, nil
	}))
	assert.Equal(t, 1, count)
}

func TestRaw(t *testing.T) {
	ctx, _ := newTestContext()
	r := NewRaw[uint64](ctx, "counter")

	v, found, err := r.Get()
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, uint64(0), v)

	require.NoError(t, r.Upsert(7))
	v, found, err = r.Get()
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, uint64(7), v)

	require.NoError(t, r.Delete())
	_, found, err = r.Get()
	require.NoError(t, err)
	assert.False(t, found)
}
