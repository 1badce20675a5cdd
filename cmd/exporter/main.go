// Copyright (c) 2024 The Ternoa staking exporter developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// exporter polls a Ternoa node for validator staking state and publishes it
// as prometheus metrics.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/ternoa-network/staking-exporter/cmd/exporter/httpserver"
	"github.com/ternoa-network/staking-exporter/cmd/exporter/node"
	"github.com/ternoa-network/staking-exporter/health"
	"github.com/ternoa-network/staking-exporter/log"
	"github.com/ternoa-network/staking-exporter/metrics"
)

var (
	version   string
	gitCommit string
	gitTag    string

	flags = []cli.Flag{
		endpointFlag,
		metricsAddrFlag,
		enableAdminFlag,
		adminAddrFlag,
		pollIntervalFlag,
		validatorsFlag,
		configFlag,
		verbosityFlag,
		jsonLogsFlag,
	}
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func run(ctx *cli.Context) error {
	logLevel := initLogger(ctx.Int(verbosityFlag.Name), ctx.Bool(jsonLogsFlag.Name))

	cfg, err := resolveConfig(ctx)
	if err != nil {
		return err
	}

	metrics.InitializePrometheusMetrics()
	metricsURL, closeMetrics, err := httpserver.StartMetricsServer(cfg.MetricsAddr)
	if err != nil {
		return errors.Wrap(err, "start metrics server")
	}
	log.Info("metrics server started", "url", metricsURL)
	defer closeMetrics()

	healthStatus := health.New(cfg.PollInterval)
	if cfg.EnableAdmin {
		adminURL, closeAdmin, err := httpserver.StartAdminServer(cfg.AdminAddr, logLevel, healthStatus)
		if err != nil {
			return errors.Wrap(err, "start admin server")
		}
		log.Info("admin server started", "url", adminURL)
		defer closeAdmin()
	}

	defer log.Info("exited")
	return node.New(cfg.Options, healthStatus).Run(handleExitSignal())
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Exporter",
		Usage:     "Ternoa validator staking metrics exporter",
		Copyright: "2024 Ternoa",
		Flags:     flags,
		Action:    run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
