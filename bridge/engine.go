// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"log/slog"

	"github.com/oddrunner/simbridge/coordinate"
	"github.com/oddrunner/simbridge/lib/netutil"
	"github.com/oddrunner/simbridge/simulator"
)

var _ Engine = (*simulator.Client)(nil)

// AgentEngine is the part of the simulator the [Registry] drives.
type AgentEngine interface {
	AddAgent(ctx context.Context, preset string, agentType simulator.AgentType, state coordinate.AgentState) (string, error)
	RemoveAgent(ctx context.Context, uid string) error
	SetAgentState(ctx context.Context, uid string, state coordinate.AgentState) error
}

// Engine is a connected simulator. *simulator.Client is the production
// implementation.
type Engine interface {
	AgentEngine

	CurrentScene(ctx context.Context) (string, error)
	LoadScene(ctx context.Context, scene string) error
	Reset(ctx context.Context) error
	Stop(ctx context.Context) error

	// Run advances the simulation by timeLimit seconds of simulated
	// time and returns how many events it processed.
	Run(ctx context.Context, timeLimit float64) (int, error)

	MapToGPS(ctx context.Context, transform coordinate.Transform) (simulator.GPSData, error)
	Close() error
}

// Dialer opens an Engine connection.
type Dialer func(ctx context.Context, host string, port int) (Engine, error)

// Prober checks that something is listening before a Dialer is used.
type Prober func(ctx context.Context, host string, port int) error

// SimulatorDialer returns a Dialer for the SVL websocket API.
func SimulatorDialer(logger *slog.Logger) Dialer {
	return func(ctx context.Context, host string, port int) (Engine, error) {
		client, err := simulator.Dial(ctx, host, port, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// TCPProber probes with netutil.ProbeTCP and its default timeout.
func TCPProber(ctx context.Context, host string, port int) error {
	return netutil.ProbeTCP(ctx, host, port, netutil.DefaultProbeTimeout)
}
