// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/oddrunner/simbridge/cmd/simbridge/cli"
)

func serveCommand() *cli.Command {
	var flags settings
	return &cli.Command{
		Name:    "serve",
		Summary: "Serve the request channels until interrupted",
		Description: `Bind the ten request channels, connect to the simulator, load the
configured scene and answer requests until SIGINT or SIGTERM.

A fatal error (simulator unreachable, required setting missing, scene
load failure) stops the bridge with a non-zero exit status.`,
		Usage: "simbridge serve [flags]",
		Flags: func() *pflag.FlagSet {
			set := pflag.NewFlagSet("serve", pflag.ContinueOnError)
			flags.register(set)
			return set
		},
		Examples: []cli.Example{
			{
				Description: "Serve with the simulator settings from the environment",
				Command:     "LGSVL__SIMULATOR_HOST=127.0.0.1 LGSVL__SIMULATOR_PORT=8181 LGSVL__MAP=BorregasAve LGSVL__VEHICLE_0=Lexus2016RXHybrid simbridge serve",
			},
			{
				Description: "Expose metrics and the status socket",
				Command:     "simbridge serve --metrics-addr :9102 --control-socket /run/simbridge.sock",
			},
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.LogLevel)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, err := startServer(ctx, cfg, nil, logger)
			if err != nil {
				return err
			}
			select {
			case <-ctx.Done():
				logger.Info("shutting down")
			case <-srv.Done():
			}
			return srv.Close()
		},
	}
}
