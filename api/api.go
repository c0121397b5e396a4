// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/specfarm/farmd/api/admin/loglevel"
	"github.com/specfarm/farmd/api/contracts"
	"github.com/specfarm/farmd/api/events"
	"github.com/specfarm/farmd/api/farms"
	"github.com/specfarm/farmd/api/node"
	"github.com/specfarm/farmd/api/subscriptions"
	"github.com/specfarm/farmd/api/utils"
	"github.com/specfarm/farmd/cache"
	"github.com/specfarm/farmd/eventdb"
	"github.com/specfarm/farmd/metrics"
	"github.com/specfarm/farmd/runtime"
)

var logger = log.New("pkg", "api")

type Options struct {
	AllowedOrigins  string
	EnableReqLogger bool
	EnableMetrics   bool
	EnableExecute   bool
	EventsLimit     uint64
	NodeInfo        node.Info
	// LogLevel mounts /admin/loglevel when set.
	LogLevel *loglevel.LogLevel
}

// New returns the api router and a func closing its websocket subscriptions.
// eventDB and queryCache are optional.
func New(
	rt *runtime.Runtime,
	resolver utils.Resolver,
	eventDB *eventdb.EventDB,
	queryCache *cache.QueryCache,
	opts Options,
) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	var querier cache.Querier = rt
	if queryCache != nil {
		querier = queryCache
	}

	router := mux.NewRouter()

	contracts.New(rt, querier, resolver, opts.EnableExecute).
		Mount(router, "/contracts")
	farms.New(querier, resolver).
		Mount(router, "/farms")
	node.New(rt, opts.NodeInfo).
		Mount(router, "/node")
	if eventDB != nil {
		events.New(eventDB, opts.EventsLimit).
			Mount(router, "/logs/event")
	}
	subs := subscriptions.New(rt, resolver, origins)
	subs.Mount(router, "/subscriptions")
	if opts.LogLevel != nil {
		opts.LogLevel.Mount(router, "/admin/loglevel")
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
		router.Path("/metrics").Methods(http.MethodGet).Handler(metrics.HTTPHandler())
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	if opts.EnableReqLogger {
		handler = RequestLoggerHandler(handler, logger)
	}

	return handler.ServeHTTP, subs.Close // subscriptions hold hijacked conns, which need to be closed
}
