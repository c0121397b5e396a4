// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/specfarm/farmd/api"
	"github.com/specfarm/farmd/api/admin/loglevel"
	"github.com/specfarm/farmd/api/node"
	"github.com/specfarm/farmd/cache"
	"github.com/specfarm/farmd/genesis"
	"github.com/specfarm/farmd/metrics"
	"github.com/specfarm/farmd/runtime"
)

const shutdownTimeout = 5 * time.Second

func serveAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	glog, level, err := initLogger(ctx)
	if err != nil {
		return err
	}
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	s, err := openStores(ctx.String(dataDirFlag.Name))
	if err != nil {
		return err
	}
	defer s.Close()

	rt, err := runtime.New(s.main, genesis.Registry())
	if err != nil {
		return err
	}
	s.events.Track(rt)

	d, err := bootstrap(rt, ctx.String(scenarioFlag.Name), false)
	if err != nil {
		return err
	}

	queryCache, err := cache.NewQueryCache(rt, ctx.Int(apiCacheSizeFlag.Name))
	if err != nil {
		return err
	}
	queryCache.Track(rt)

	opts := api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		EnableReqLogger: ctx.Bool(enableAPILogsFlag.Name),
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
		EnableExecute:   ctx.Bool(apiEnableExecuteFlag.Name),
		EventsLimit:     ctx.Uint64(apiEventsLimitFlag.Name),
		NodeInfo: node.Info{
			Version: fullVersion(),
			ChainID: rt.Block().ChainID,
			DataDir: s.dir,
		},
	}
	if ctx.Bool(enableAdminFlag.Name) {
		opts.LogLevel = loglevel.New(glog, level)
	}
	handler, closeAPI := api.New(rt, d, s.events, queryCache, opts)
	defer closeAPI()

	addr := ctx.String(apiAddrFlag.Name)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen API addr [%v]", addr)
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}

	exitCtx, cancel := handleExitSignal()
	defer cancel()

	logger.Info("API server started", "url", "http://"+listener.Addr().String(), "dataDir", s.dir)

	g, gctx := errgroup.WithContext(exitCtx)
	g.Go(func() error {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("stopping API server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
