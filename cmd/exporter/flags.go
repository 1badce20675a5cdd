// Copyright (c) 2024 The Ternoa staking exporter developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"time"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/ternoa-network/staking-exporter/log"
)

var (
	endpointFlag = cli.StringFlag{
		Name:   "endpoint",
		Value:  "wss://mainnet.ternoa.network",
		Usage:  "websocket endpoint of the chain node",
		EnvVar: "EXPORTER_ENDPOINT",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:   "metrics-addr",
		Value:  ":8000",
		Usage:  "metrics service listening address",
		EnvVar: "EXPORTER_METRICS_ADDR",
	}
	enableAdminFlag = cli.BoolFlag{
		Name:   "enable-admin",
		Usage:  "enables the admin server (health, loglevel)",
		EnvVar: "EXPORTER_ENABLE_ADMIN",
	}
	adminAddrFlag = cli.StringFlag{
		Name:   "admin-addr",
		Value:  ":8001",
		Usage:  "admin service listening address",
		EnvVar: "EXPORTER_ADMIN_ADDR",
	}
	pollIntervalFlag = cli.DurationFlag{
		Name:   "poll-interval",
		Value:  60 * time.Second,
		Usage:  "delay between poll cycles",
		EnvVar: "EXPORTER_POLL_INTERVAL",
	}
	validatorsFlag = cli.StringFlag{
		Name:   "validators",
		Usage:  "comma separated validator watch list (empty polls all registered)",
		EnvVar: "EXPORTER_VALIDATORS",
	}
	configFlag = cli.StringFlag{
		Name:   "config",
		Usage:  "YAML config file path",
		EnvVar: "EXPORTER_CONFIG",
	}
	verbosityFlag = cli.IntFlag{
		Name:   "verbosity",
		Value:  log.LegacyLevelInfo,
		Usage:  "log verbosity (0-5)",
		EnvVar: "EXPORTER_VERBOSITY",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:   "json-logs",
		Usage:  "output logs in JSON format",
		EnvVar: "EXPORTER_JSON_LOGS",
	}
)
