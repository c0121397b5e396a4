// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specfarm/farmd/eventdb"
	"github.com/specfarm/farmd/fixed"
	"github.com/specfarm/farmd/runtime"
	"github.com/specfarm/farmd/test/testchain"
	"github.com/specfarm/farmd/xenv"
	"github.com/specfarm/farmd/yield"
)

func newEvents(n int) []*eventdb.Event {
	contract := yield.BytesToAddress([]byte("farm"))
	var events []*eventdb.Event
	for i := range n {
		action := "bond"
		if i%2 == 1 {
			action = "compound"
		}
		events = append(events, &eventdb.Event{
			TxID:       yield.BytesToBytes32([]byte{byte(i)}),
			Height:     uint64(i),
			Time:       uint64(1000 + 10*i),
			Sender:     yield.BytesToAddress([]byte("alice")),
			Contract:   contract,
			Type:       "execute",
			Action:     action,
			Attributes: []xenv.Attribute{{Key: "action", Value: action}},
		})
	}
	return events
}

func TestFilter(t *testing.T) {
	db, err := eventdb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Insert(newEvents(100)))
	contract := yield.BytesToAddress([]byte("farm"))

	tests := []struct {
		name   string
		filter *eventdb.Filter
		want   int
	}{
		{"all", nil, 100},
		{"block range", &eventdb.Filter{Range: &eventdb.Range{Unit: eventdb.Block, From: 10, To: 19}}, 10},
		{"time range", &eventdb.Filter{Range: &eventdb.Range{Unit: eventdb.Time, From: 1000, To: 1045}}, 5},
		{"open range", &eventdb.Filter{Range: &eventdb.Range{From: 90}}, 10},
		{"action", &eventdb.Filter{Action: "compound"}, 50},
		{"contract and limit", &eventdb.Filter{Contract: &contract, Options: &eventdb.Options{Offset: 0, Limit: 5}}, 5},
		{"other contract", &eventdb.Filter{Contract: &yield.Address{}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := db.Filter(tt.filter)
			require.NoError(t, err)
			assert.Len(t, events, tt.want)
		})
	}

	desc, err := db.Filter(&eventdb.Filter{Order: eventdb.DESC, Options: &eventdb.Options{Limit: 1}})
	require.NoError(t, err)
	require.Len(t, desc, 1)
	assert.Equal(t, uint64(99), desc[0].Height)
	assert.Equal(t, []xenv.Attribute{{Key: "action", Value: "compound"}}, desc[0].Attributes)
}

func TestTrack(t *testing.T) {
	db, err := eventdb.New(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	defer db.Close()

	c := testchain.New(t, testchain.DefaultOptions())
	db.Track(c.Runtime)

	_, err = c.Bond("alice", testchain.LP, 1000)
	require.NoError(t, err)
	_, err = c.Unbond("bob", testchain.LP, fixed.NewUint(1))
	require.Error(t, err)

	farm := c.Addr(testchain.Farm)
	events, err := db.Filter(&eventdb.Filter{Contract: &farm})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "bond", events[0].Action)
	assert.Equal(t, c.Addr("alice"), events[0].Sender)
}

func TestFromReceipt(t *testing.T) {
	assert.Empty(t, eventdb.FromReceipt(&runtime.Receipt{Reverted: true, Events: []xenv.Event{{Type: "execute"}}}))

	events := eventdb.FromReceipt(&runtime.Receipt{
		Height: 3,
		Events: []xenv.Event{
			{Type: "execute", Attributes: []xenv.Attribute{{Key: "action", Value: "bond"}}},
			{Type: "reply"},
		},
	})
	require.Len(t, events, 2)
	assert.Equal(t, "bond", events[0].Action)
	assert.Equal(t, uint32(1), events[1].Index)
	assert.Equal(t, uint64(3), events[1].Height)
}
