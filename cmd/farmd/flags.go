// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Usage: "directory for the runtime and event databases, in memory when empty",
	}
	scenarioFlag = cli.StringFlag{
		Name:  "scenario",
		Usage: "YAML scenario to deploy into an empty runtime",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-5)",
	}
	vmoduleFlag = cli.StringFlag{
		Name:  "vmodule",
		Usage: "per-module log verbosity, e.g. farm=5,runtime=4",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8669",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiEnableExecuteFlag = cli.BoolFlag{
		Name:  "api-enable-execute",
		Usage: "expose contract execution on behalf of any sender",
	}
	apiEventsLimitFlag = cli.Uint64Flag{
		Name:  "api-events-limit",
		Value: 1000,
		Usage: "maximum number of events returned per query",
	}
	apiCacheSizeFlag = cli.IntFlag{
		Name:  "api-cache-size",
		Value: 4096,
		Usage: "number of query results kept in memory",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection and the /metrics endpoint",
	}
	enableAdminFlag = cli.BoolFlag{
		Name:  "enable-admin",
		Usage: "enables the /admin endpoints",
	}
)
