// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cli wires configuration, logging, and the run loop into the
// sdmon command.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/mchmarny/sdmon/pkg/bus"
	"github.com/mchmarny/sdmon/pkg/config"
	"github.com/mchmarny/sdmon/pkg/logging"
	"github.com/mchmarny/sdmon/pkg/serializer"
	"github.com/mchmarny/sdmon/pkg/server"
	"github.com/mchmarny/sdmon/pkg/snapshotter"
)

const name = "sdmon"

// overridden during build with ldflags
var version = "dev"

// New builds the root command.
func New() *cli.Command {
	return &cli.Command{
		Name:    name,
		Version: version,
		Usage:   "systemd health telemetry agent",
		Description: `Collects health telemetry from the service manager over D-Bus:
unit counts and states, per-service stats, timers, networkd link state,
manager resource usage, bus daemon stats, boot timing, and unit file
verification. Machines registered with machined are traversed and
reported as nested subtrees. Output is one JSON document per cycle.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to YAML config file",
				Sources: cli.EnvVars("SDMON_CONFIG"),
			},
			&cli.BoolFlag{
				Name:  "daemon",
				Usage: "collect repeatedly on the refresh interval",
			},
			&cli.BoolFlag{
				Name:  "once",
				Usage: "collect one snapshot and exit, overriding the config",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: fmt.Sprintf("output format, one of %v", serializer.SupportedFormats()),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "write snapshots to this file instead of stdout",
			},
			&cli.StringFlag{
				Name:  "key-prefix",
				Usage: "prefix for every flat output key",
			},
			&cli.IntFlag{
				Name:  "interval",
				Usage: "daemon refresh interval in seconds",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "expose Prometheus metrics on this address (e.g. :9100)",
			},
		},
		Action: run,
	}
}

// Execute runs the command with signal-driven cancellation. This is
// called by main.main().
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	return New().Run(ctx, os.Args)
}

func run(ctx context.Context, cmd *cli.Command) error {
	logging.SetDefaultStructuredLoggerWithLevel(name, version, cmd.String("log-level"))

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	// Flags override the config file.
	if cmd.Bool("daemon") {
		cfg.Agent.Daemon = true
	}
	if cmd.Bool("once") {
		cfg.Agent.Daemon = false
	}
	if v := cmd.String("format"); v != "" {
		cfg.Agent.OutputFormat = v
	}
	if v := cmd.String("output"); v != "" {
		cfg.Agent.OutputPath = v
	}
	if v := cmd.String("key-prefix"); v != "" {
		cfg.Agent.KeyPrefix = v
	}
	if v := cmd.Int("interval"); v > 0 {
		cfg.Agent.RefreshSecs = int64(v)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	var ops *server.Server
	if addr := cmd.String("metrics-addr"); addr != "" {
		srvCfg := server.NewConfig(addr)
		srvCfg.Name = name
		srvCfg.Version = version
		ops = server.NewServer(srvCfg)
		go func() {
			if err := ops.Start(ctx); err != nil {
				slog.Error("ops server failed", "error", err)
			}
		}()
	}

	writer := serializer.NewFileWriterOrStdout(
		serializer.Format(cfg.Agent.OutputFormat),
		cfg.Agent.KeyPrefix,
		cfg.Agent.OutputPath,
	)
	defer writer.Close()

	loop := &snapshotter.RunLoop{
		Snapshotter: &snapshotter.Snapshotter{
			Config: cfg,
			Dialer: &bus.DBusDialer{CallTimeout: cfg.BusTimeout()},
		},
		Emitter: writer,
	}
	if ops != nil {
		loop.Ready = func() { ops.SetReady(true) }
	}
	return loop.Execute(ctx)
}
