// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	cli "gopkg.in/urfave/cli.v1"
)

var (
	version   string
	gitCommit string
	gitTag    string
	logger    = log.New("pkg", "farmd")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version: fullVersion(),
		Name:    "farmd",
		Usage:   "Auto-compounding yield farm runtime",
		Flags: []cli.Flag{
			verbosityFlag,
			vmoduleFlag,
		},
		Commands: []cli.Command{
			{
				Name:  "run",
				Usage: "Deploy a scenario and replay its steps",
				Flags: []cli.Flag{
					dataDirFlag,
					scenarioFlag,
					verbosityFlag,
					vmoduleFlag,
				},
				Action: runAction,
			},
			{
				Name:  "serve",
				Usage: "Serve the REST API over a runtime",
				Flags: []cli.Flag{
					dataDirFlag,
					scenarioFlag,
					apiAddrFlag,
					apiCorsFlag,
					apiEnableExecuteFlag,
					apiEventsLimitFlag,
					apiCacheSizeFlag,
					enableAPILogsFlag,
					enableMetricsFlag,
					enableAdminFlag,
					verbosityFlag,
					vmoduleFlag,
				},
				Action: serveAction,
			},
			{
				Name:  "inspect",
				Usage: "Dump the contracts and farm pools of a data dir",
				Flags: []cli.Flag{
					dataDirFlag,
					verbosityFlag,
				},
				Action: inspectAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
