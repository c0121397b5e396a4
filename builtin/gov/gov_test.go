// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gov_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specfarm/farmd/builtin/gov"
	"github.com/specfarm/farmd/builtin/reverts"
	"github.com/specfarm/farmd/fixed"
	"github.com/specfarm/farmd/test/testchain"
	"github.com/specfarm/farmd/xenv"
)

func balance(t *testing.T, c *testchain.Chain, who string) gov.BalanceResponse {
	var res gov.BalanceResponse
	require.NoError(t, c.Query(testchain.Gov, xenv.Tagged("balance", gov.BalanceQuery{Address: c.Addr(who)}), &res))
	return res
}

func stake(c *testchain.Chain, who string, amount uint64) error {
	_, err := c.Send(c.Addr(who), testchain.Reward, testchain.Gov, fixed.NewUint(amount), xenv.Tagged("stake", nil))
	return err
}

func TestStakeAndUnstake(t *testing.T) {
	opts := testchain.DefaultOptions()
	opts.RewardPool = true
	c := testchain.New(t, opts)

	require.NoError(t, stake(c, "alice", 100))
	assert.Equal(t, gov.BalanceResponse{Share: fixed.NewUint(100), Amount: fixed.NewUint(100)}, balance(t, c, "alice"))

	// fees flow in without minting shares
	require.NoError(t, c.Mint(testchain.Reward, testchain.Gov, fixed.NewUint(50)))
	assert.Equal(t, fixed.NewUint(150), balance(t, c, "alice").Amount)

	require.NoError(t, stake(c, "bob", 150))
	assert.Equal(t, fixed.NewUint(100), balance(t, c, "bob").Share)

	var st gov.StateResponse
	require.NoError(t, c.Query(testchain.Gov, xenv.Tagged("state", nil), &st))
	assert.Equal(t, fixed.NewUint(200), st.TotalShare)
	assert.Equal(t, fixed.NewUint(300), st.TotalBalance)
	assert.Equal(t, "1.5", st.ExchangeRate.String())

	too := fixed.NewUint(101)
	_, err := c.Execute(c.Addr("bob"), testchain.Gov, xenv.Tagged("unstake", gov.UnstakeMsg{Shares: &too}))
	assert.True(t, reverts.IsKind(err, reverts.InsufficientBalance))

	_, err = c.Execute(c.Addr("carol"), testchain.Gov, xenv.Tagged("unstake", gov.UnstakeMsg{}))
	assert.True(t, reverts.IsKind(err, reverts.UnknownUser))

	before := c.BalanceOf(testchain.Reward, "alice")
	_, err = c.Execute(c.Addr("alice"), testchain.Gov, xenv.Tagged("unstake", gov.UnstakeMsg{}))
	require.NoError(t, err)
	assert.Equal(t, before.Add(fixed.NewUint(150)), c.BalanceOf(testchain.Reward, "alice"))
	assert.True(t, balance(t, c, "alice").Share.IsZero())
}

func TestStakeRejectsOtherTokens(t *testing.T) {
	c := testchain.New(t, testchain.DefaultOptions())
	_, err := c.Send(c.Addr("alice"), testchain.LP, testchain.Gov, fixed.NewUint(10), xenv.Tagged("stake", nil))
	assert.True(t, reverts.IsKind(err, reverts.Unauthorized))
	assert.Equal(t, fixed.NewUint(testchain.InitialBalance), c.BalanceOf(testchain.LP, "alice"))
}
