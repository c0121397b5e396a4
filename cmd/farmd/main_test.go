// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specfarm/farmd/genesis"
	"github.com/specfarm/farmd/runtime"
)

const scenario = "../../genesis/testdata/compound.yaml"

func TestBootstrapAndReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := openStores(dir)
	require.NoError(t, err)
	rt, err := runtime.New(s.main, genesis.Registry())
	require.NoError(t, err)
	s.events.Track(rt)

	_, err = bootstrap(rt, "", false)
	assert.Error(t, err, "empty runtime needs a scenario")

	d, err := bootstrap(rt, scenario, false)
	require.NoError(t, err)
	var out bytes.Buffer
	require.NoError(t, printFarms(&out, d))
	assert.Contains(t, out.String(), "bond=1650 share=1500")
	s.Close()

	s, err = openStores(dir)
	require.NoError(t, err)
	defer s.Close()
	rt, err = runtime.New(s.main, genesis.Registry())
	require.NoError(t, err)

	d2, err := bootstrap(rt, scenario, false)
	require.NoError(t, err)
	assert.Equal(t, d.Contracts(), d2.Contracts())
	assert.Equal(t, uint64(2), rt.Block().Height)

	out.Reset()
	require.NoError(t, inspect(&out, rt, s.main))
	assert.Contains(t, out.String(), "farm farm")
}

func TestOpenStoresInMemory(t *testing.T) {
	s, err := openStores("")
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, "Memory", s.dir)
}
