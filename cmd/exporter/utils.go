// Copyright (c) 2024 The Ternoa staking exporter developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/ternoa-network/staking-exporter/log"
)

func initLogger(lvl int, jsonLogs bool) *slog.LevelVar {
	logLevel := new(slog.LevelVar)
	logLevel.Set(log.FromLegacyLevel(lvl))

	output := io.Writer(os.Stdout)
	var handler slog.Handler
	if jsonLogs {
		handler = log.JSONHandlerWithLevel(output, logLevel)
	} else {
		useColor := isatty.IsTerminal(os.Stdout.Fd())
		handler = log.NewTerminalHandlerWithLevel(output, logLevel, useColor)
	}
	log.SetDefault(log.NewLogger(handler))

	return logLevel
}

// handleExitSignal returns a context canceled on interrupt or termination.
func handleExitSignal() context.Context {
	exitSignalCh := make(chan os.Signal, 1)
	signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sig := <-exitSignalCh
		log.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func parseValidators(list string) []string {
	var validators []string
	for _, addr := range strings.Split(list, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			validators = append(validators, addr)
		}
	}
	return validators
}
