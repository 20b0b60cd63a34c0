// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/oddrunner/simbridge/coordinate"
	"github.com/oddrunner/simbridge/lib/config"
)

// SceneManager owns the simulator connection, the loaded scene and its
// origin.
type SceneManager struct {
	settings config.SimulatorConfig
	dial     Dialer
	probe    Prober
	logger   *slog.Logger

	engine      Engine
	scene       string
	origin      coordinate.Origin
	loads       int
	resets      int
	originReady bool
}

// NewSceneManager creates a manager that is not yet connected. A nil
// dial uses SimulatorDialer and a nil probe uses TCPProber.
func NewSceneManager(settings config.SimulatorConfig, dial Dialer, probe Prober, logger *slog.Logger) *SceneManager {
	if logger == nil {
		logger = slog.Default()
	}
	if dial == nil {
		dial = SimulatorDialer(logger)
	}
	if probe == nil {
		probe = TCPProber
	}
	return &SceneManager{
		settings: settings,
		dial:     dial,
		probe:    probe,
		logger:   logger,
	}
}

// SetupConnection connects to the simulator, or resets the running
// simulation when a connection already exists. A missing endpoint
// setting or a simulator nobody is listening for is fatal.
func (m *SceneManager) SetupConnection(ctx context.Context) error {
	if m.engine != nil {
		if err := m.engine.Reset(ctx); err != nil {
			return fmt.Errorf("resetting simulation: %w", err)
		}
		return nil
	}

	host, port, err := m.settings.RequireEndpoint()
	if err != nil {
		return Fatal(err)
	}
	if err := m.probe(ctx, host, port); err != nil {
		return Fatal(fmt.Errorf("no simulator at %s:%d (is it running in API-only mode?): %w", host, port, err))
	}
	engine, err := m.dial(ctx, host, port)
	if err != nil {
		return Fatal(fmt.Errorf("connecting to simulator at %s:%d: %w", host, port, err))
	}
	m.engine = engine
	m.logger.Info("connected to simulator", "host", host, "port", port)
	return nil
}

// LoadConfiguredScene loads the scene named in the configuration.
func (m *SceneManager) LoadConfiguredScene(ctx context.Context) error {
	scene, err := m.settings.RequireScene()
	if err != nil {
		return Fatal(err)
	}
	return m.LoadScene(ctx, scene)
}

// LoadScene makes name the active scene. A scene that is already
// loaded is reset in place rather than reloaded. The origin is
// recomputed either way.
func (m *SceneManager) LoadScene(ctx context.Context, name string) error {
	if m.engine == nil {
		return ErrNotConnected
	}

	current, err := m.engine.CurrentScene(ctx)
	if err != nil {
		return fmt.Errorf("querying current scene: %w", err)
	}
	if current == name {
		if err := m.engine.Reset(ctx); err != nil {
			return fmt.Errorf("resetting scene %q: %w", name, err)
		}
		m.resets++
		m.logger.Info("scene reset", "scene", name)
	} else {
		if err := m.engine.LoadScene(ctx, name); err != nil {
			return fmt.Errorf("loading scene %q: %w", name, err)
		}
		m.loads++
		m.logger.Info("scene loaded", "scene", name, "previous", current)
	}
	m.scene = name

	gps, err := m.engine.MapToGPS(ctx, coordinate.Transform{})
	if err != nil {
		m.originReady = false
		return fmt.Errorf("reading scene origin: %w", err)
	}
	m.origin = coordinate.OriginFromGPS(gps.Northing, gps.Easting)
	m.originReady = true
	m.logger.Debug("scene origin",
		"northing", m.origin.Northing,
		"easting", m.origin.Easting,
	)
	return nil
}

// Terminate stops the simulation and returns reason marked fatal.
func (m *SceneManager) Terminate(ctx context.Context, reason error) error {
	m.logger.Error("terminating bridge", "error", reason)
	if m.engine != nil {
		if err := m.engine.Stop(ctx); err != nil {
			m.logger.Warn("stopping simulation failed", "error", err)
		}
	}
	return Fatal(reason)
}

// Close stops the simulation and closes the connection. It is safe to
// call when never connected.
func (m *SceneManager) Close(ctx context.Context) error {
	if m.engine == nil {
		return nil
	}
	engine := m.engine
	m.engine = nil
	m.originReady = false
	return errors.Join(engine.Stop(ctx), engine.Close())
}

// Engine returns the connected simulator, or nil.
func (m *SceneManager) Engine() Engine { return m.engine }

// Connected reports whether SetupConnection has succeeded.
func (m *SceneManager) Connected() bool { return m.engine != nil }

// Scene returns the last scene loaded or reset.
func (m *SceneManager) Scene() string { return m.scene }

// Origin returns the origin of the current scene and whether one has
// been computed.
func (m *SceneManager) Origin() (coordinate.Origin, bool) { return m.origin, m.originReady }

// Loads and Resets count scene loads and in-place resets.
func (m *SceneManager) Loads() int  { return m.loads }
func (m *SceneManager) Resets() int { return m.resets }
