// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/specfarm/farmd/api/utils"
	"github.com/specfarm/farmd/eventdb"
	"github.com/specfarm/farmd/metrics"
	"github.com/specfarm/farmd/runtime"
	"github.com/specfarm/farmd/yield"
)

const (
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 7) / 10
	writeWait  = 10 * time.Second
	// events buffered per connection; a slower reader misses events
	bufferSize = 64
)

var (
	logger                     = log.New("pkg", "subscriptions")
	metricActiveWebsocketGauge = metrics.LazyLoadGauge("api_active_websocket_count")
)

// Subscriptions streams committed contract events over websocket.
type Subscriptions struct {
	resolver  utils.Resolver
	upgrader  *websocket.Upgrader
	listeners map[chan *eventdb.Event]struct{}
	mu        sync.RWMutex
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New creates the subscriptions api and hooks it to the receipts of rt.
func New(rt *runtime.Runtime, resolver utils.Resolver, allowedOrigins []string) *Subscriptions {
	s := &Subscriptions{
		resolver:  resolver,
		listeners: make(map[chan *eventdb.Event]struct{}),
		done:      make(chan struct{}),
		upgrader: &websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				origin = strings.ToLower(origin)
				for _, allowed := range allowedOrigins {
					if allowed == "*" || allowed == origin {
						return true
					}
				}
				return false
			},
		},
	}
	rt.OnReceipt(s.dispatch)
	return s
}

// dispatch runs inside the runtime lock and must not call back into it.
func (s *Subscriptions) dispatch(r *runtime.Receipt) {
	events := eventdb.FromReceipt(r)
	if len(events) == 0 {
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ev := range events {
		for lsn := range s.listeners {
			select {
			case lsn <- ev:
			default:
			}
		}
	}
}

func (s *Subscriptions) subscribe(ch chan *eventdb.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[ch] = struct{}{}
}

func (s *Subscriptions) unsubscribe(ch chan *eventdb.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.listeners, ch)
}

func (s *Subscriptions) parseFilter(req *http.Request) (*EventFilter, error) {
	var filter EventFilter
	if contract := req.URL.Query().Get("contract"); contract != "" {
		addr, err := utils.ParseAddress(contract, s.resolver)
		if err != nil {
			return nil, utils.BadRequest(errors.WithMessage(err, "contract"))
		}
		filter.Contract = &addr
	}
	filter.Action = req.URL.Query().Get("action")
	return &filter, nil
}

func (s *Subscriptions) handleSubscribeEvent(w http.ResponseWriter, req *http.Request) error {
	filter, err := s.parseFilter(req)
	if err != nil {
		return err
	}

	select {
	case <-s.done:
		return utils.HTTPError(errors.New("subscriptions closed"), http.StatusServiceUnavailable)
	default:
	}
	s.wg.Add(1)
	defer s.wg.Done()

	// listen before the handshake completes so no event after it is missed
	ch := make(chan *eventdb.Event, bufferSize)
	s.subscribe(ch)
	defer s.unsubscribe(ch)

	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		logger.Debug("upgrade to websocket", "err", err)
		// the upgrader has replied already
		return nil
	}
	defer conn.Close()

	metricActiveWebsocketGauge().Add(1)
	defer metricActiveWebsocketGauge().Add(-1)

	if err := s.pipe(conn, ch, filter); err != nil {
		logger.Debug("event subscription closed", "err", err)
	}
	return nil
}

func (s *Subscriptions) pipe(conn *websocket.Conn, ch <-chan *eventdb.Event, filter *EventFilter) error {
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "service closed")
			return conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		case <-closed:
			return nil
		case ev := <-ch:
			if !filter.Match(ev) {
				continue
			}
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return err
			}
			if err := conn.WriteJSON(ev); err != nil {
				return err
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		}
	}
}

// Close ends every open subscription and waits for the handlers to return.
func (s *Subscriptions) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/event").
		Methods(http.MethodGet).
		Name("WS /subscriptions/event").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubscribeEvent))
}

// EventFilter selects the events a subscriber receives. Empty fields match anything.
type EventFilter struct {
	Contract *yield.Address
	Action   string
}

func (f *EventFilter) Match(ev *eventdb.Event) bool {
	if f.Contract != nil && *f.Contract != ev.Contract {
		return false
	}
	return f.Action == "" || f.Action == ev.Action
}
