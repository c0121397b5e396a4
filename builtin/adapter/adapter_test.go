// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package adapter

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specfarm/farmd/builtin/cw20"
	"github.com/specfarm/farmd/builtin/reverts"
	"github.com/specfarm/farmd/fixed"
	"github.com/specfarm/farmd/xenv"
	"github.com/specfarm/farmd/yield"
)

// fakeQuerier answers by the tag of the query.
type fakeQuerier struct {
	answers map[string]string
	asked   []string
	err     error
}

func (f *fakeQuerier) QueryJSON(contract yield.Address, req, res any) error {
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	f.asked = append(f.asked, string(data))
	if f.err != nil {
		return f.err
	}
	tag, _, err := xenv.SplitTagged(data)
	if err != nil {
		return err
	}
	answer, ok := f.answers[tag]
	if !ok {
		return reverts.Errorf(reverts.InvalidInput, "unknown query %q", tag)
	}
	return json.Unmarshal([]byte(answer), res)
}

var (
	staking = yield.BytesToAddress([]byte("staking"))
	lp      = yield.BytesToAddress([]byte("lp"))
	asset   = yield.BytesToAddress([]byte("asset"))
	farm    = yield.BytesToAddress([]byte("farm"))
)

func TestNew(t *testing.T) {
	for _, name := range Names() {
		a, err := New(name)
		require.NoError(t, err)
		assert.Equal(t, name, a.Name())
	}
	assert.Equal(t, []string{"anchor", "astroport", "mirror"}, Names())

	assert.True(t, Anchor{}.SinglePool())
	assert.False(t, Mirror{}.SinglePool())
	assert.False(t, Astroport{}.SinglePool())

	_, err := New("spectrum")
	assert.True(t, reverts.IsKind(err, reverts.InvalidInput))
}

func TestMirror_QueryReward(t *testing.T) {
	other := yield.BytesToAddress([]byte("other"))
	resp, _ := json.Marshal(MirrorRewardInfoResponse{
		StakerAddr: farm,
		RewardInfos: []MirrorRewardInfo{
			{AssetToken: asset, BondAmount: fixed.NewUint(100), PendingReward: fixed.NewUint(7)},
			{AssetToken: other, BondAmount: fixed.NewUint(900), PendingReward: fixed.NewUint(90)},
		},
	})
	q := &fakeQuerier{answers: map[string]string{"reward_info": string(resp)}}

	info, err := Mirror{}.QueryReward(q, staking, asset, farm, nil)
	require.NoError(t, err)
	assert.Equal(t, RewardInfo{BondAmount: fixed.NewUint(100), PendingReward: fixed.NewUint(7)}, info)
	assert.Contains(t, q.asked[0], `"asset_token":"`+asset.String()+`"`)

	info, err = Mirror{}.QueryReward(q, staking, lp, farm, nil)
	require.NoError(t, err)
	assert.True(t, info.BondAmount.IsZero())
}

func TestAnchor_QueryRewardAtHeight(t *testing.T) {
	q := &fakeQuerier{answers: map[string]string{
		"staker_info": `{"staker":"` + farm.String() + `","reward_index":"1.5","bond_amount":"40","pending_reward":"3"}`,
	}}

	height := uint64(42)
	info, err := Anchor{}.QueryReward(q, staking, lp, farm, &height)
	require.NoError(t, err)
	assert.Equal(t, fixed.NewUint(40), info.BondAmount)
	assert.Equal(t, fixed.NewUint(3), info.PendingReward)
	assert.Contains(t, q.asked[0], `"block_height":42`)

	_, err = Anchor{}.QueryReward(q, staking, lp, farm, nil)
	require.NoError(t, err)
	assert.NotContains(t, q.asked[1], "block_height")
}

func TestAstroport_QueryRewardMergesTwoQueries(t *testing.T) {
	q := &fakeQuerier{answers: map[string]string{
		"deposit":       `"250"`,
		"pending_token": `{"pending":"11"}`,
	}}

	info, err := Astroport{}.QueryReward(q, staking, lp, farm, nil)
	require.NoError(t, err)
	assert.Equal(t, RewardInfo{BondAmount: fixed.NewUint(250), PendingReward: fixed.NewUint(11)}, info)
	assert.Len(t, q.asked, 2)
}

func TestQueryErrorsAreExternal(t *testing.T) {
	for _, name := range Names() {
		a, _ := New(name)

		_, err := a.QueryReward(&fakeQuerier{err: errors.New("boom")}, staking, lp, farm, nil)
		assert.True(t, reverts.IsKind(err, reverts.ExternalCallFailed), name)

		_, err = a.QueryReward(&fakeQuerier{answers: map[string]string{}}, staking, lp, farm, nil)
		assert.True(t, reverts.IsKind(err, reverts.ExternalCallFailed), name)
		assert.True(t, reverts.IsKind(err, reverts.InvalidInput), name)
	}
}

func decodeSend(t *testing.T, msg xenv.ExecuteMsg) (cw20.SendMsg, string) {
	tag, body, err := xenv.SplitTagged(msg.Msg)
	require.NoError(t, err)
	require.Equal(t, "send", tag)
	var send cw20.SendMsg
	require.NoError(t, json.Unmarshal(body, &send))
	hook, _, err := xenv.SplitTagged(send.Msg)
	require.NoError(t, err)
	return send, hook
}

func TestMessages(t *testing.T) {
	tests := []struct {
		adapter    Adapter
		bondHook   string
		unbondTag  string
		claimTag   string
		claimBody  string
		unbondBody string
	}{
		{Mirror{}, "bond", "unbond", "withdraw", `{"asset_token":"` + lp.String() + `"}`, `{"asset_token":"` + lp.String() + `","amount":"5"}`},
		{Anchor{}, "bond", "unbond", "withdraw", `{}`, `{"amount":"5"}`},
		{Astroport{}, "deposit", "withdraw", "withdraw", `{"lp_token":"` + lp.String() + `","amount":"0"}`, `{"lp_token":"` + lp.String() + `","amount":"5"}`},
	}
	for _, tt := range tests {
		t.Run(tt.adapter.Name(), func(t *testing.T) {
			bond, err := tt.adapter.BondMsg(staking, lp, lp, fixed.NewUint(5))
			require.NoError(t, err)
			assert.Equal(t, lp, bond.Contract, "bonding sends the staking token")
			send, hook := decodeSend(t, bond)
			assert.Equal(t, staking, send.Contract)
			assert.Equal(t, fixed.NewUint(5), send.Amount)
			assert.Equal(t, tt.bondHook, hook)

			unbond, err := tt.adapter.UnbondMsg(staking, lp, lp, fixed.NewUint(5))
			require.NoError(t, err)
			assert.Equal(t, staking, unbond.Contract)
			tag, body, err := xenv.SplitTagged(unbond.Msg)
			require.NoError(t, err)
			assert.Equal(t, tt.unbondTag, tag)
			assert.JSONEq(t, tt.unbondBody, string(body))

			claim, err := tt.adapter.ClaimMsg(staking, lp, lp)
			require.NoError(t, err)
			tag, body, err = xenv.SplitTagged(claim.Msg)
			require.NoError(t, err)
			assert.Equal(t, tt.claimTag, tag)
			assert.JSONEq(t, tt.claimBody, string(body))
		})
	}
}
