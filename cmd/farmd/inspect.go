// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/specfarm/farmd/builtin/farm"
	"github.com/specfarm/farmd/genesis"
	"github.com/specfarm/farmd/lvldb"
	"github.com/specfarm/farmd/runtime"
	"github.com/specfarm/farmd/xenv"
)

var dumper = spew.ConfigState{Indent: "  ", SortKeys: true}

func inspectAction(ctx *cli.Context) error {
	if _, _, err := initLogger(ctx); err != nil {
		return err
	}
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return errors.Errorf("--%s is required", dataDirFlag.Name)
	}
	s, err := openStores(dataDir)
	if err != nil {
		return err
	}
	defer s.Close()

	rt, err := runtime.New(s.main, genesis.Registry())
	if err != nil {
		return err
	}
	return inspect(os.Stdout, rt, s.main)
}

func inspect(w io.Writer, rt *runtime.Runtime, db *lvldb.LevelDB) error {
	infos, err := rt.Contracts()
	if err != nil {
		return err
	}
	stats, err := db.Stats()
	if err != nil {
		return errors.Wrap(err, "leveldb stats")
	}
	fmt.Fprintln(w, stats)
	fmt.Fprintf(w, "block: %s", dumper.Sdump(rt.Block()))
	for _, info := range infos {
		fmt.Fprintf(w, "%s %s %v\n", info.Kind, info.Label, info.Address)
		if info.Kind != farm.Kind {
			continue
		}
		var cfg farm.Config
		if err := rt.Query(info.Address, xenv.Tagged("config", nil), &cfg); err != nil {
			return errors.WithMessagef(err, "query farm %s config", info.Label)
		}
		var pools farm.PoolsResponse
		if err := rt.Query(info.Address, xenv.Tagged("pools", nil), &pools); err != nil {
			return errors.WithMessagef(err, "query farm %s pools", info.Label)
		}
		dumper.Fdump(w, cfg, pools)
	}
	return nil
}
