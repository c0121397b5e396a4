// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cw20_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specfarm/farmd/builtin/cw20"
	"github.com/specfarm/farmd/builtin/reverts"
	"github.com/specfarm/farmd/fixed"
	"github.com/specfarm/farmd/lvldb"
	"github.com/specfarm/farmd/runtime"
	"github.com/specfarm/farmd/test/datagen"
	"github.com/specfarm/farmd/xenv"
	"github.com/specfarm/farmd/yield"
)

func setup(t *testing.T) (*runtime.Runtime, yield.Address, yield.Address) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rt, err := runtime.New(db, runtime.Registry{cw20.Kind: cw20.Token{}})
	require.NoError(t, err)

	minter := datagen.RandAddress()
	token, _, err := rt.Instantiate(minter, cw20.Kind, "tkn", cw20.InstantiateMsg{
		Name:            "Token",
		Symbol:          "TKN",
		Decimals:        6,
		InitialBalances: []cw20.Balance{{Address: minter, Amount: fixed.NewUint(500)}},
		Minter:          &minter,
	})
	require.NoError(t, err)
	return rt, token, minter
}

func balanceOf(t *testing.T, rt *runtime.Runtime, token, addr yield.Address) fixed.Uint {
	var res cw20.BalanceResponse
	require.NoError(t, rt.Query(token, xenv.Tagged("balance", cw20.BalanceQuery{Address: addr}), &res))
	return res.Balance
}

func supplyOf(t *testing.T, rt *runtime.Runtime, token yield.Address) fixed.Uint {
	var res cw20.TokenInfoResponse
	require.NoError(t, rt.Query(token, xenv.Tagged("token_info", nil), &res))
	return res.TotalSupply
}

func TestTransfer(t *testing.T) {
	rt, token, minter := setup(t)
	alice := datagen.RandAddress()

	_, err := rt.Execute(minter, token, xenv.Tagged("transfer", cw20.TransferMsg{Recipient: alice, Amount: fixed.NewUint(120)}))
	require.NoError(t, err)
	assert.Equal(t, fixed.NewUint(380), balanceOf(t, rt, token, minter))
	assert.Equal(t, fixed.NewUint(120), balanceOf(t, rt, token, alice))

	_, err = rt.Execute(alice, token, xenv.Tagged("transfer", cw20.TransferMsg{Recipient: minter, Amount: fixed.NewUint(121)}))
	assert.True(t, reverts.IsKind(err, reverts.InsufficientBalance))

	_, err = rt.Execute(alice, token, xenv.Tagged("transfer", cw20.TransferMsg{Recipient: minter, Amount: fixed.NewUint(0)}))
	assert.True(t, reverts.IsKind(err, reverts.InvalidInput))

	assert.Equal(t, fixed.NewUint(120), balanceOf(t, rt, token, alice))
}

func TestMintAndBurn(t *testing.T) {
	rt, token, minter := setup(t)
	alice := datagen.RandAddress()

	_, err := rt.Execute(alice, token, xenv.Tagged("mint", cw20.MintMsg{Recipient: alice, Amount: fixed.NewUint(1)}))
	assert.True(t, reverts.IsKind(err, reverts.Unauthorized))

	_, err = rt.Execute(minter, token, xenv.Tagged("mint", cw20.MintMsg{Recipient: alice, Amount: fixed.NewUint(70)}))
	require.NoError(t, err)
	assert.Equal(t, fixed.NewUint(570), supplyOf(t, rt, token))

	_, err = rt.Execute(alice, token, xenv.Tagged("burn", cw20.BurnMsg{Amount: fixed.NewUint(20)}))
	require.NoError(t, err)
	assert.Equal(t, fixed.NewUint(50), balanceOf(t, rt, token, alice))
	assert.Equal(t, fixed.NewUint(550), supplyOf(t, rt, token))
}

func TestSendWithoutReceiver(t *testing.T) {
	rt, token, minter := setup(t)

	// a send to an address holding no contract fails and rolls back the debit
	receipt, err := rt.Execute(minter, token, xenv.Tagged("send", cw20.SendMsg{
		Contract: datagen.RandAddress(),
		Amount:   fixed.NewUint(10),
		Msg:      []byte(`{}`),
	}))
	require.Error(t, err)
	assert.True(t, receipt.Reverted)
	assert.True(t, reverts.IsKind(err, reverts.ExternalCallFailed))
	assert.Equal(t, fixed.NewUint(500), balanceOf(t, rt, token, minter))
}

func TestUnknownMessage(t *testing.T) {
	rt, token, minter := setup(t)

	_, err := rt.Execute(minter, token, xenv.Tagged("approve", nil))
	assert.True(t, reverts.IsKind(err, reverts.InvalidInput))

	var res any
	err = rt.Query(token, xenv.Tagged("allowance", nil), &res)
	assert.True(t, reverts.IsKind(err, reverts.InvalidInput))
}

func TestTransfersConserveSupply(t *testing.T) {
	rt, token, minter := setup(t)
	holders := datagen.RandAddresses(5)

	for _, h := range holders {
		_, err := rt.Execute(minter, token, xenv.Tagged("mint", cw20.MintMsg{Recipient: h, Amount: datagen.RandAmount(1000)}))
		require.NoError(t, err)
	}
	supply := supplyOf(t, rt, token)

	for i := range 50 {
		from, to := holders[i%len(holders)], holders[(i+1)%len(holders)]
		// overdrafts revert and leave balances untouched
		_, _ = rt.Execute(from, token, xenv.Tagged("transfer", cw20.TransferMsg{Recipient: to, Amount: datagen.RandAmount(300)}))
	}

	sum := balanceOf(t, rt, token, minter)
	for _, h := range holders {
		sum = sum.Add(balanceOf(t, rt, token, h))
	}
	assert.Equal(t, supply, sum)
	assert.Equal(t, supply, supplyOf(t, rt, token))
}
