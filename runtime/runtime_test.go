// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specfarm/farmd/builtin/cw20"
	"github.com/specfarm/farmd/builtin/reverts"
	"github.com/specfarm/farmd/fixed"
	"github.com/specfarm/farmd/lvldb"
	"github.com/specfarm/farmd/xenv"
	"github.com/specfarm/farmd/yield"
)

// relay forwards one message and records what comes back.
type relay struct{}

type relayCall struct {
	Target  yield.Address   `json:"target"`
	Msg     json.RawMessage `json:"msg"`
	ID      uint64          `json:"id"`
	ReplyOn xenv.ReplyOn    `json:"reply_on"`
}

func (relay) Instantiate(env *xenv.Environment, msg []byte) (*xenv.Response, error) {
	return xenv.NewResponse(), env.Store().Put([]byte("init"), []byte("1"))
}

func (relay) Execute(env *xenv.Environment, msg []byte) (*xenv.Response, error) {
	tag, body, err := xenv.SplitTagged(msg)
	if err != nil {
		return nil, err
	}
	switch tag {
	case "call":
		var c relayCall
		if err := xenv.DecodeBody(body, &c); err != nil {
			return nil, err
		}
		if err := env.Store().Put([]byte("touched"), []byte("1")); err != nil {
			return nil, err
		}
		return xenv.NewResponse().
			AddAttribute("action", "call").
			AddSubMessage(c.ID, xenv.ExecuteMsg{Contract: c.Target, Msg: c.Msg}, c.ReplyOn), nil
	case "write":
		return xenv.NewResponse().AddAttribute("action", "write"), env.Store().Put([]byte("written"), []byte("1"))
	case "fail":
		if err := env.Store().Put([]byte("written"), []byte("1")); err != nil {
			return nil, err
		}
		return nil, reverts.New(reverts.InvalidInput, "asked to fail")
	case "panic":
		var zero fixed.Uint
		_, err := zero.Sub(fixed.NewUint(1))
		panic(err)
	}
	return nil, reverts.New(reverts.InvalidInput, "unknown")
}

func (relay) Reply(env *xenv.Environment, reply xenv.Reply) (*xenv.Response, error) {
	key := []byte("reply/" + strconv.FormatUint(reply.ID, 10))
	val := "ok"
	if !reply.IsOk() {
		val = reply.Result.Err
	}
	return xenv.NewResponse().AddAttribute("reply", reply.ID), env.Store().Put(key, []byte(val))
}

func (relay) Query(env *xenv.Environment, msg []byte) ([]byte, error) {
	var q struct {
		Get string `json:"get"`
	}
	if err := json.Unmarshal(msg, &q); err != nil {
		return nil, err
	}
	v, err := env.Store().Get([]byte(q.Get))
	if err != nil {
		if env.Store().IsNotFound(err) {
			return json.Marshal("")
		}
		return nil, err
	}
	return json.Marshal(string(v))
}

type fixture struct {
	t     *testing.T
	rt    *Runtime
	db    *lvldb.LevelDB
	owner yield.Address
	token yield.Address
	relay yield.Address
}

func newFixture(t *testing.T) *fixture {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rt, err := New(db, Registry{cw20.Kind: cw20.Token{}, "relay": relay{}})
	require.NoError(t, err)

	f := &fixture{t: t, rt: rt, db: db, owner: yield.BytesToAddress([]byte("owner"))}
	f.token, _, err = rt.Instantiate(f.owner, cw20.Kind, "token", cw20.InstantiateMsg{
		Name:            "Token",
		Symbol:          "TKN",
		Decimals:        6,
		InitialBalances: []cw20.Balance{{Address: f.owner, Amount: fixed.NewUint(1000)}},
	})
	require.NoError(t, err)
	f.relay, _, err = rt.Instantiate(f.owner, "relay", "relay", struct{}{})
	require.NoError(t, err)
	return f
}

func (f *fixture) get(key string) string {
	var v string
	require.NoError(f.t, f.rt.Query(f.relay, map[string]string{"get": key}, &v))
	return v
}

func (f *fixture) balance(addr yield.Address) fixed.Uint {
	var res cw20.BalanceResponse
	require.NoError(f.t, f.rt.Query(f.token, xenv.Tagged("balance", cw20.BalanceQuery{Address: addr}), &res))
	return res.Balance
}

func (f *fixture) transferMsg(to yield.Address, amount uint64) json.RawMessage {
	msg, err := cw20.Transfer(f.token, to, fixed.NewUint(amount))
	require.NoError(f.t, err)
	return msg.Msg
}

func TestInstantiateAndQuery(t *testing.T) {
	f := newFixture(t)

	assert.NotEqual(t, f.token, f.relay)
	assert.Equal(t, "1", f.get("init"))
	assert.Equal(t, fixed.NewUint(1000), f.balance(f.owner))

	info, err := f.rt.Contract(f.token)
	require.NoError(t, err)
	assert.Equal(t, cw20.Kind, info.Kind)
	assert.Equal(t, f.owner, info.Admin)

	all, err := f.rt.Contracts()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = f.rt.Contract(yield.Address{9})
	assert.True(t, reverts.IsKind(err, reverts.ExternalCallFailed))
}

func TestFailedTxRollsBack(t *testing.T) {
	f := newFixture(t)

	// the relay holds no tokens, so the forwarded transfer fails
	receipt, err := f.rt.Execute(f.owner, f.relay, xenv.Tagged("call", relayCall{
		Target: f.token,
		Msg:    f.transferMsg(f.owner, 1),
	}))
	require.Error(t, err)
	assert.True(t, receipt.Reverted)
	assert.True(t, reverts.IsKind(err, reverts.ExternalCallFailed))
	assert.True(t, reverts.IsKind(err, reverts.InsufficientBalance))
	assert.Equal(t, "", f.get("touched"), "writes of a reverted tx are discarded")

	receipt, err = f.rt.Execute(f.owner, f.relay, xenv.Tagged("fail", nil))
	require.Error(t, err)
	assert.True(t, receipt.Reverted)
	assert.Equal(t, "", f.get("written"))
}

func TestReplyOnError(t *testing.T) {
	f := newFixture(t)

	fail, err := json.Marshal(xenv.Tagged("fail", nil))
	require.NoError(t, err)

	receipt, err := f.rt.Execute(f.owner, f.relay, xenv.Tagged("call", relayCall{
		Target:  f.relay,
		Msg:     fail,
		ID:      7,
		ReplyOn: xenv.ReplyOnError,
	}))
	require.NoError(t, err)
	assert.False(t, receipt.Reverted)

	assert.Equal(t, "1", f.get("touched"))
	assert.Equal(t, "", f.get("written"), "the failed sub-message writes are reverted")
	assert.Contains(t, f.get("reply/7"), "asked to fail")
}

func TestReplyOnSuccessOrdering(t *testing.T) {
	f := newFixture(t)

	write, err := json.Marshal(xenv.Tagged("write", nil))
	require.NoError(t, err)

	receipt, err := f.rt.Execute(f.owner, f.relay, xenv.Tagged("call", relayCall{
		Target:  f.relay,
		Msg:     write,
		ID:      3,
		ReplyOn: xenv.ReplyOnSuccess,
	}))
	require.NoError(t, err)

	assert.Equal(t, "1", f.get("written"))
	assert.Equal(t, "ok", f.get("reply/3"))

	var types []string
	for _, ev := range receipt.Events {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []string{"execute", "execute", "reply"}, types)
	v, ok := receipt.Attr(f.relay, "reply")
	assert.True(t, ok)
	assert.Equal(t, "3", v)
}

func TestPanicsAndGas(t *testing.T) {
	f := newFixture(t)

	receipt, err := f.rt.Execute(f.owner, f.relay, xenv.Tagged("panic", nil))
	require.Error(t, err)
	assert.True(t, receipt.Reverted)
	assert.ErrorIs(t, err, fixed.ErrUnderflow)

	f.rt.SetGasLimit(yield.SloadGas)
	receipt, err = f.rt.Execute(f.owner, f.token, xenv.Tagged("transfer", cw20.TransferMsg{
		Recipient: f.relay,
		Amount:    fixed.NewUint(1),
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of gas")
	assert.True(t, receipt.Reverted)

	f.rt.SetGasLimit(0)
	assert.Equal(t, fixed.NewUint(1000), f.balance(f.owner))
}

func TestBlockContextPersists(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.rt.SetBlock(xenv.BlockContext{Height: 10, Time: 1000, ChainID: "test"}))
	require.NoError(t, f.rt.NextBlock(6))
	assert.Equal(t, xenv.BlockContext{Height: 11, Time: 1006, ChainID: "test"}, f.rt.Block())

	reopened, err := New(f.db, f.rt.registry)
	require.NoError(t, err)
	assert.Equal(t, f.rt.Block(), reopened.Block())
}

func TestMigrateRequiresAdmin(t *testing.T) {
	f := newFixture(t)

	_, err := f.rt.Migrate(yield.Address{1}, f.relay, struct{}{})
	assert.True(t, reverts.IsKind(err, reverts.Unauthorized))

	_, err = f.rt.Migrate(f.owner, f.relay, struct{}{})
	assert.True(t, reverts.IsKind(err, reverts.InvalidInput), "relay has no migrate entry point")
}

func TestReceiptHook(t *testing.T) {
	f := newFixture(t)

	var got []*Receipt
	f.rt.OnReceipt(func(r *Receipt) { got = append(got, r) })

	_, err := f.rt.Execute(f.owner, f.token, xenv.Tagged("transfer", cw20.TransferMsg{
		Recipient: f.relay,
		Amount:    fixed.NewUint(10),
	}))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, f.token, got[0].Contract)
	assert.Greater(t, got[0].GasUsed, uint64(0))
	v, _ := got[0].Attr(f.token, "amount")
	assert.Equal(t, "10", v)
}
