// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package router_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specfarm/farmd/builtin/reverts"
	"github.com/specfarm/farmd/builtin/router"
	"github.com/specfarm/farmd/fixed"
	"github.com/specfarm/farmd/test/testchain"
	"github.com/specfarm/farmd/xenv"
)

func newChain(t *testing.T, price, spread string) *testchain.Chain {
	opts := testchain.DefaultOptions()
	opts.RewardPool = true
	opts.Price = price
	opts.Spread = spread
	return testchain.New(t, opts)
}

func TestSimulate(t *testing.T) {
	c := newChain(t, "2", "0.01")

	var res router.SimulateResponse
	require.NoError(t, c.Query(testchain.Router, xenv.Tagged("simulate", router.SimulateQuery{
		OfferToken: c.Addr(testchain.Reward),
		AskToken:   c.Addr(testchain.LP),
		Amount:     fixed.NewUint(1000),
	}), &res))
	assert.Equal(t, fixed.NewUint(1980), res.ReturnAmount)
	assert.Equal(t, fixed.NewUint(20), res.SpreadAmount)

	err := c.Query(testchain.Router, xenv.Tagged("simulate", router.SimulateQuery{
		OfferToken: c.Addr(testchain.LP),
		AskToken:   c.Addr(testchain.Reward),
		Amount:     fixed.NewUint(1000),
	}), &res)
	assert.True(t, reverts.IsKind(err, reverts.InvalidInput))
}

func TestZap(t *testing.T) {
	c := newChain(t, "2", "0.01")
	lp := c.Addr(testchain.LP)
	maxSpread := fixed.MustParseDecimal("0.01")

	before := c.BalanceOf(testchain.LP, "alice")
	_, err := c.Send(c.Addr("alice"), testchain.Reward, testchain.Router, fixed.NewUint(100), xenv.Tagged("zap", router.ZapHook{ToToken: lp, MaxSpread: &maxSpread}))
	require.NoError(t, err)
	assert.Equal(t, before.Add(fixed.NewUint(198)), c.BalanceOf(testchain.LP, "alice"))

	bob := c.Addr("bob")
	_, err = c.Send(c.Addr("alice"), testchain.Reward, testchain.Router, fixed.NewUint(10), xenv.Tagged("zap", router.ZapHook{ToToken: lp, Receiver: &bob}))
	require.NoError(t, err)
	assert.Equal(t, fixed.NewUint(testchain.InitialBalance+19), c.BalanceOf(testchain.LP, "bob"))

	t.Run("max spread", func(t *testing.T) {
		tight := fixed.MustParseDecimal("0.005")
		_, err := c.Send(c.Addr("alice"), testchain.Reward, testchain.Router, fixed.NewUint(100), xenv.Tagged("zap", router.ZapHook{ToToken: lp, MaxSpread: &tight}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max spread assertion")
	})

	t.Run("nothing returned", func(t *testing.T) {
		_, err := c.Send(c.Addr("alice"), testchain.Reward, testchain.Router, fixed.NewUint(0), xenv.Tagged("zap", router.ZapHook{ToToken: lp}))
		assert.Error(t, err)
	})
}

func TestSetPair(t *testing.T) {
	c := newChain(t, "1", "0")
	pair := router.Pair{
		OfferToken: c.Addr(testchain.Reward),
		AskToken:   c.Addr(testchain.LP),
		Price:      fixed.MustParseDecimal("3"),
	}

	_, err := c.Execute(c.Addr("alice"), testchain.Router, xenv.Tagged("set_pair", pair))
	assert.True(t, reverts.IsKind(err, reverts.Unauthorized))

	_, err = c.Execute(c.Owner, testchain.Router, xenv.Tagged("set_pair", pair))
	require.NoError(t, err)

	var res router.SimulateResponse
	require.NoError(t, c.Query(testchain.Router, xenv.Tagged("simulate", router.SimulateQuery{
		OfferToken: pair.OfferToken,
		AskToken:   pair.AskToken,
		Amount:     fixed.NewUint(10),
	}), &res))
	assert.Equal(t, fixed.NewUint(30), res.ReturnAmount)

	pair.Spread = fixed.OneDecimal()
	_, err = c.Execute(c.Owner, testchain.Router, xenv.Tagged("set_pair", pair))
	assert.True(t, reverts.IsKind(err, reverts.InvalidInput))
}
