// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/specfarm/farmd/builtin/farm"
	"github.com/specfarm/farmd/genesis"
	"github.com/specfarm/farmd/runtime"
	"github.com/specfarm/farmd/xenv"
)

func runAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	if _, _, err := initLogger(ctx); err != nil {
		return err
	}
	scenario := ctx.String(scenarioFlag.Name)
	if scenario == "" {
		return errors.Errorf("--%s is required", scenarioFlag.Name)
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
	infos, err := rt.Contracts()
	if err != nil {
		return err
	}
	if len(infos) > 0 {
		return errors.Errorf("%v is already deployed, use serve or inspect", s.dir)
	}
	s.events.Track(rt)

	d, err := bootstrap(rt, scenario, true)
	if err != nil {
		return err
	}
	return printFarms(os.Stdout, d)
}

// printFarms writes one line per pool of every deployed farm.
func printFarms(w io.Writer, d *genesis.Deployment) error {
	infos, err := d.Runtime.Contracts()
	if err != nil {
		return err
	}
	block := d.Runtime.Block()
	fmt.Fprintf(w, "chain %s at height %d\n", block.ChainID, block.Height)
	for _, info := range infos {
		if info.Kind != farm.Kind {
			continue
		}
		var pools farm.PoolsResponse
		if err := d.Runtime.Query(info.Address, xenv.Tagged("pools", nil), &pools); err != nil {
			return errors.WithMessagef(err, "query farm %s", info.Label)
		}
		fmt.Fprintf(w, "farm %s (%v)\n", info.Label, info.Address)
		for _, p := range pools.Pools {
			fmt.Fprintf(w, "  pool %v bond=%v share=%v rate=%v last_compound=%d\n",
				p.StakingToken, p.TotalBondAmount, p.TotalShareAmount, p.ExchangeRate, p.LastCompoundHeight)
		}
	}
	return nil
}
