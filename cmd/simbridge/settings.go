// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/oddrunner/simbridge/lib/config"
	"github.com/oddrunner/simbridge/lib/logging"
)

// settings are the flags shared by serve and run. Flags override the
// configuration file and the environment only when given.
type settings struct {
	flags *pflag.FlagSet

	configPath    string
	logLevel      string
	bindHost      string
	basePort      int
	metricsAddr   string
	controlSocket string
	journalPath   string
}

func (s *settings) register(flags *pflag.FlagSet) {
	s.flags = flags
	flags.StringVarP(&s.configPath, "config", "c", "", "configuration file (default $SIMBRIDGE_CONFIG)")
	flags.StringVarP(&s.logLevel, "log-level", "L", "", "log level: debug, info, warn or error")
	flags.StringVar(&s.bindHost, "bind-host", "", `interface the channels bind to ("*" for all)`)
	flags.IntVar(&s.basePort, "base-port", 0, "port of the Initialize channel; the other nine follow")
	flags.StringVar(&s.metricsAddr, "metrics-addr", "", "serve Prometheus metrics at this address")
	flags.StringVar(&s.controlSocket, "control-socket", "", "serve the status action on this Unix socket")
	flags.StringVar(&s.journalPath, "journal", "", "append every request and reply to this file")
}

// load builds the effective configuration.
func (s *settings) load() (*config.Config, error) {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		return nil, err
	}
	s.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (s *settings) apply(cfg *config.Config) {
	if s.changed("log-level") {
		cfg.LogLevel = s.logLevel
	}
	if s.changed("bind-host") {
		cfg.Channels.BindHost = s.bindHost
	}
	if s.changed("base-port") {
		cfg.Channels.BasePort = s.basePort
	}
	if s.changed("metrics-addr") {
		cfg.Metrics.Addr = s.metricsAddr
	}
	if s.changed("control-socket") {
		cfg.Control.Socket = s.controlSocket
	}
	if s.changed("journal") {
		cfg.Journal.Path = s.journalPath
	}
}

func (s *settings) changed(name string) bool {
	return s.flags != nil && s.flags.Changed(name)
}

// newLogger builds the process logger and makes it the default.
func newLogger(level string) (*slog.Logger, error) {
	parsed, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger := logging.New(parsed)
	slog.SetDefault(logger)
	return logger, nil
}
