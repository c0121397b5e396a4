// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/specfarm/farmd/eventdb"
	"github.com/specfarm/farmd/genesis"
	"github.com/specfarm/farmd/lvldb"
	"github.com/specfarm/farmd/runtime"
)

func initLogger(ctx *cli.Context) (*log.GlogHandler, slog.Level, error) {
	level := log.FromLegacyLevel(ctx.Int(verbosityFlag.Name))
	fd := os.Stderr.Fd()
	useColor := (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) && os.Getenv("TERM") != "dumb"

	handler := log.NewGlogHandler(log.NewTerminalHandler(os.Stderr, useColor))
	handler.Verbosity(level)
	if err := handler.Vmodule(ctx.String(vmoduleFlag.Name)); err != nil {
		return nil, level, errors.Wrap(err, "vmodule")
	}
	log.SetDefault(log.NewLogger(handler))
	return handler, level, nil
}

// handleExitSignal returns a context cancelled on SIGINT or SIGTERM.
func handleExitSignal() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(exitSignalCh)

		select {
		case sig := <-exitSignalCh:
			logger.Info("exit signal received", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// stores are the databases a command works on.
type stores struct {
	main   *lvldb.LevelDB
	events *eventdb.EventDB
	dir    string
}

func openStores(dataDir string) (*stores, error) {
	if dataDir == "" {
		main, err := lvldb.NewMem()
		if err != nil {
			return nil, err
		}
		events, err := eventdb.NewMem()
		if err != nil {
			main.Close()
			return nil, err
		}
		return &stores{main: main, events: events, dir: "Memory"}, nil
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, errors.Wrapf(err, "create data dir at '%v'", dataDir)
	}
	mainDir := filepath.Join(dataDir, "main.db")
	main, err := lvldb.New(mainDir, lvldb.Options{CacheSize: 128, OpenFilesCacheCapacity: 64})
	if err != nil {
		return nil, errors.Wrapf(err, "open main database at '%v'", mainDir)
	}
	eventsPath := filepath.Join(dataDir, "events.db")
	events, err := eventdb.New(eventsPath)
	if err != nil {
		main.Close()
		return nil, errors.Wrapf(err, "open event database at '%v'", eventsPath)
	}
	return &stores{main: main, events: events, dir: dataDir}, nil
}

func (s *stores) Close() {
	logger.Info("closing event database...")
	if err := s.events.Close(); err != nil {
		logger.Warn("close event database", "err", err)
	}
	logger.Info("closing main database...")
	if err := s.main.Close(); err != nil {
		logger.Warn("close main database", "err", err)
	}
}

// bootstrap attaches to the contracts of rt. An empty runtime is deployed from
// the scenario, whose steps are replayed with a progress bar.
func bootstrap(rt *runtime.Runtime, scenarioPath string, progress bool) (*genesis.Deployment, error) {
	infos, err := rt.Contracts()
	if err != nil {
		return nil, err
	}
	if len(infos) > 0 {
		if scenarioPath != "" {
			logger.Warn("runtime already deployed, scenario ignored", "contracts", len(infos))
		}
		return genesis.Attach(rt)
	}
	if scenarioPath == "" {
		return nil, errors.New("empty runtime, a scenario is required")
	}

	sc, err := genesis.LoadScenario(scenarioPath)
	if err != nil {
		return nil, err
	}
	d, err := genesis.FromGenesis(sc.Genesis).Build(rt)
	if err != nil {
		return nil, errors.Wrap(err, "build genesis")
	}
	logger.Info("genesis deployed", "chainID", sc.ChainID, "contracts", len(d.Contracts()))
	if err := replay(d, sc.Steps, progress); err != nil {
		return nil, err
	}
	return d, nil
}

func replay(d *genesis.Deployment, steps []genesis.Step, progress bool) error {
	if len(steps) == 0 {
		return nil
	}
	var bar *pb.ProgressBar
	if progress {
		fmt.Println(">> Replaying scenario <<")
		bar = pb.New(len(steps)).SetMaxWidth(90).Start()
		defer func() { bar.NotPrint = true }()
	}

	for i, step := range steps {
		receipt, err := d.Run(step)
		if err != nil {
			return errors.WithMessagef(err, "step %d", i)
		}
		if receipt != nil {
			logger.Debug("step done", "step", step.String(), "height", receipt.Height, "gas", receipt.GasUsed, "reverted", receipt.Reverted)
		}
		if bar != nil {
			bar.Increment()
		}
	}
	if bar != nil {
		bar.Finish()
	}
	return nil
}
