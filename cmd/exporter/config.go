// Copyright (c) 2024 The Ternoa staking exporter developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"os"
	"time"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"
	yaml "gopkg.in/yaml.v3"

	"github.com/ternoa-network/staking-exporter/cmd/exporter/node"
)

// fileConfig mirrors the flag set for YAML deployments. Flags set on the
// command line take precedence over file values.
type fileConfig struct {
	Endpoint            string   `yaml:"endpoint"`
	MetricsAddr         string   `yaml:"metricsAddr"`
	EnableAdmin         bool     `yaml:"enableAdmin"`
	AdminAddr           string   `yaml:"adminAddr"`
	PollIntervalSeconds int      `yaml:"pollIntervalSeconds"`
	Validators          []string `yaml:"validators"`
}

type runConfig struct {
	node.Options
	MetricsAddr string
	EnableAdmin bool
	AdminAddr   string
}

func loadFileConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config [%v]", path)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config [%v]", path)
	}
	return &cfg, nil
}

func resolveConfig(ctx *cli.Context) (*runConfig, error) {
	fileCfg := &fileConfig{}
	if path := ctx.String(configFlag.Name); path != "" {
		loaded, err := loadFileConfig(path)
		if err != nil {
			return nil, err
		}
		fileCfg = loaded
	}

	cfg := &runConfig{
		Options: node.Options{
			Endpoint:     stringValue(ctx, endpointFlag.Name, fileCfg.Endpoint),
			PollInterval: durationValue(ctx, pollIntervalFlag.Name, time.Duration(fileCfg.PollIntervalSeconds)*time.Second),
			Validators:   fileCfg.Validators,
		},
		MetricsAddr: stringValue(ctx, metricsAddrFlag.Name, fileCfg.MetricsAddr),
		EnableAdmin: ctx.Bool(enableAdminFlag.Name) || fileCfg.EnableAdmin,
		AdminAddr:   stringValue(ctx, adminAddrFlag.Name, fileCfg.AdminAddr),
	}
	if list := ctx.String(validatorsFlag.Name); list != "" {
		cfg.Validators = parseValidators(list)
	}
	return cfg, nil
}

func stringValue(ctx *cli.Context, name, fromFile string) string {
	if ctx.IsSet(name) || fromFile == "" {
		return ctx.String(name)
	}
	return fromFile
}

func durationValue(ctx *cli.Context, name string, fromFile time.Duration) time.Duration {
	if ctx.IsSet(name) || fromFile <= 0 {
		return ctx.Duration(name)
	}
	return fromFile
}
