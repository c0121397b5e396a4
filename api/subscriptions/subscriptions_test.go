// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specfarm/farmd/eventdb"
	"github.com/specfarm/farmd/test/testchain"
	"github.com/specfarm/farmd/yield"
)

func newServer(t *testing.T, origins ...string) (*testchain.Chain, *Subscriptions, *httptest.Server) {
	chain := testchain.New(t, testchain.DefaultOptions())
	subs := New(chain.Runtime, chain.Deployment, origins)

	router := mux.NewRouter()
	subs.Mount(router, "/subscriptions")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	t.Cleanup(subs.Close)
	return chain, subs, ts
}

func dial(t *testing.T, ts *httptest.Server, query string, header http.Header) (*websocket.Conn, *http.Response, error) {
	u := url.URL{Scheme: "ws", Host: strings.TrimPrefix(ts.URL, "http://"), Path: "/subscriptions/event", RawQuery: query}
	return websocket.DefaultDialer.Dial(u.String(), header)
}

func TestSubscribeEvent(t *testing.T) {
	chain, _, ts := newServer(t, "*")

	conn, resp, err := dial(t, ts, "contract=farm&action=bond", nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	assert.Equal(t, "websocket", resp.Header.Get("Upgrade"))

	_, err = chain.Bond("alice", testchain.LP, 1000)
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var ev eventdb.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, chain.Addr(testchain.Farm), ev.Contract)
	assert.Equal(t, "bond", ev.Action)
	assert.Equal(t, chain.Addr("alice"), ev.Sender)
}

func TestSubscribeEventRejectsOrigin(t *testing.T) {
	_, _, ts := newServer(t, "https://farm.example")

	_, resp, err := dial(t, ts, "", http.Header{"Origin": []string{"https://other.example"}})
	assert.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := dial(t, ts, "", http.Header{"Origin": []string{"https://FARM.example"}})
	require.NoError(t, err)
	conn.Close()
}

func TestCloseEndsSubscriptions(t *testing.T) {
	_, subs, ts := newServer(t, "*")

	conn, _, err := dial(t, ts, "", nil)
	require.NoError(t, err)
	defer conn.Close()

	subs.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)

	_, resp, err := dial(t, ts, "", nil)
	assert.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestEventFilter(t *testing.T) {
	farm := yield.BytesToAddress([]byte("farm"))
	ev := &eventdb.Event{Contract: farm, Action: "bond"}

	assert.True(t, (&EventFilter{}).Match(ev))
	assert.True(t, (&EventFilter{Contract: &farm, Action: "bond"}).Match(ev))
	assert.False(t, (&EventFilter{Action: "unbond"}).Match(ev))

	other := yield.BytesToAddress([]byte("other"))
	assert.False(t, (&EventFilter{Contract: &other}).Match(ev))
}
