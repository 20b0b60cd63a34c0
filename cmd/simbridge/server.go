// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oddrunner/simbridge/bridge"
	"github.com/oddrunner/simbridge/lib/clock"
	"github.com/oddrunner/simbridge/lib/config"
	"github.com/oddrunner/simbridge/lib/journal"
	"github.com/oddrunner/simbridge/lib/service"
	"github.com/oddrunner/simbridge/transport"
)

const metricsShutdownTimeout = 5 * time.Second

// server is a running bridge with its optional surfaces: metrics
// endpoint, control socket and journal.
type server struct {
	logger     *slog.Logger
	dispatcher *bridge.Dispatcher
	journal    *journal.Writer
	metrics    *http.Server

	// metricsAddress is the bound metrics listener address.
	metricsAddress string

	cancelControl context.CancelFunc
	controlDone   chan error
}

// startServer binds the channels and starts the bridge. Startup
// continues in the background; see Ready and Done.
func startServer(ctx context.Context, cfg *config.Config, binder transport.Binder, logger *slog.Logger) (*server, error) {
	s := &server{logger: logger}
	s.dispatcher = &bridge.Dispatcher{
		Bridge: bridge.New(bridge.Options{
			Simulator: cfg.Simulator,
			Presets:   cfg.Presets,
			Logger:    logger,
		}),
		Binder:   binder,
		BindHost: cfg.Channels.BindHost,
		BasePort: cfg.Channels.BasePort,
		Logger:   logger,
	}

	if cfg.Journal.Path != "" {
		writer, err := journal.Create(cfg.Journal.Path, clock.Real())
		if err != nil {
			return nil, err
		}
		s.journal = writer
		s.dispatcher.Journal = writer
		logger.Info("journal enabled", "path", cfg.Journal.Path)
	}

	if cfg.Metrics.Addr != "" {
		if err := s.startMetrics(cfg.Metrics.Addr); err != nil {
			s.close()
			return nil, err
		}
	}

	if err := s.dispatcher.Start(ctx); err != nil {
		s.close()
		return nil, err
	}

	if cfg.Control.Socket != "" {
		if err := s.startControl(ctx, cfg.Control.Socket); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *server) startMetrics(address string) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	s.dispatcher.Metrics = bridge.NewMetrics(registry)

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	s.metrics = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	s.metricsAddress = listener.Addr().String()
	go func() {
		if err := s.metrics.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server failed", "error", err)
		}
	}()
	s.logger.Info("metrics enabled", "address", s.metricsAddress)
	return nil
}

// startControl serves the control socket and returns once it accepts
// connections.
func (s *server) startControl(ctx context.Context, socketPath string) error {
	control := service.NewSocketServer(socketPath, s.logger)
	bridge.RegisterControlActions(control, s.dispatcher)

	controlContext, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() {
		done <- control.Serve(controlContext)
	}()
	select {
	case <-control.Ready():
	case err := <-done:
		cancel()
		return fmt.Errorf("control socket %s: %w", socketPath, err)
	}
	s.cancelControl = cancel
	s.controlDone = done
	s.logger.Info("control socket enabled", "path", socketPath)
	return nil
}

// Ready is closed once the bridge is connected and the scene loaded.
func (s *server) Ready() <-chan struct{} { return s.dispatcher.Ready() }

// Done is closed when the bridge has stopped.
func (s *server) Done() <-chan struct{} { return s.dispatcher.Done() }

// Wait blocks until the bridge stops on its own and returns why.
func (s *server) Wait() error { return s.dispatcher.Wait() }

// Close stops the bridge and its surfaces. It returns the bridge's
// fatal error, if it stopped on one.
func (s *server) Close() error {
	err := s.dispatcher.Stop()
	s.close()
	return err
}

func (s *server) close() {
	if s.cancelControl != nil {
		s.cancelControl()
		if err := <-s.controlDone; err != nil {
			s.logger.Warn("control socket", "error", err)
		}
		s.cancelControl = nil
	}
	if s.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		s.metrics.Shutdown(ctx)
		cancel()
		s.metrics = nil
	}
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			s.logger.Warn("closing journal", "error", err)
		}
		s.journal = nil
	}
}
