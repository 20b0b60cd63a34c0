// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "simbridge.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Channels.BasePort != 5555 {
		t.Errorf("base_port = %d, want 5555", cfg.Channels.BasePort)
	}
	if want := []string{"Sedan", "SUV", "Jeep", "Hatchback"}; !slices.Equal(cfg.Presets.Vehicles, want) {
		t.Errorf("vehicles = %v, want %v", cfg.Presets.Vehicles, want)
	}
	if len(cfg.Presets.Pedestrians) != 9 || cfg.Presets.Pedestrians[0] != "Bob" || cfg.Presets.Pedestrians[8] != "Zoe" {
		t.Errorf("pedestrians = %v", cfg.Presets.Pedestrians)
	}
	if cfg.Startup.Timeout != 120*time.Second || cfg.Startup.PollInterval != time.Second {
		t.Errorf("startup = %+v", cfg.Startup)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoadWithEnvironmentReadsSimulatorVariables(t *testing.T) {
	cfg, err := LoadWithEnvironment("", map[string]string{
		"LGSVL__SIMULATOR_HOST": "10.0.0.5",
		"LGSVL__SIMULATOR_PORT": "8181",
		"LGSVL__MAP":            "BorregasAve",
		"LGSVL__VEHICLE_0":      "Lexus2016RXHybrid (Autoware)",
	})
	if err != nil {
		t.Fatalf("LoadWithEnvironment: %v", err)
	}

	host, port, err := cfg.Simulator.RequireEndpoint()
	if err != nil || host != "10.0.0.5" || port != 8181 {
		t.Fatalf("RequireEndpoint() = %q, %d, %v", host, port, err)
	}
	if scene, err := cfg.Simulator.RequireScene(); err != nil || scene != "BorregasAve" {
		t.Fatalf("RequireScene() = %q, %v", scene, err)
	}
	if ego, err := cfg.Simulator.RequireEgoVehicle(); err != nil || ego != "Lexus2016RXHybrid (Autoware)" {
		t.Fatalf("RequireEgoVehicle() = %q, %v", ego, err)
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, `
simulator:
  host: file-host
  port: 8080
  scene: CubeTown
channels:
  base_port: 6000
presets:
  vehicles: [BoxTruck]
startup:
  timeout: 30s
  poll_interval: 250ms
`)

	cfg, err := LoadWithEnvironment(path, map[string]string{
		"LGSVL__SIMULATOR_HOST":  "env-host",
		"SIMBRIDGE_PEDESTRIANS": "Bob,Zoe",
	})
	if err != nil {
		t.Fatalf("LoadWithEnvironment: %v", err)
	}

	if cfg.Simulator.Host != "env-host" {
		t.Errorf("host = %q, want env-host", cfg.Simulator.Host)
	}
	if cfg.Simulator.Port != 8080 || cfg.Simulator.Scene != "CubeTown" {
		t.Errorf("file values lost: %+v", cfg.Simulator)
	}
	if cfg.Channels.BasePort != 6000 || cfg.Channels.BindHost != "*" {
		t.Errorf("channels = %+v", cfg.Channels)
	}
	if !slices.Equal(cfg.Presets.Vehicles, []string{"BoxTruck"}) {
		t.Errorf("vehicles = %v", cfg.Presets.Vehicles)
	}
	if !slices.Equal(cfg.Presets.Pedestrians, []string{"Bob", "Zoe"}) {
		t.Errorf("pedestrians = %v", cfg.Presets.Pedestrians)
	}
	if cfg.Startup.Timeout != 30*time.Second || cfg.Startup.PollInterval != 250*time.Millisecond {
		t.Errorf("startup = %+v", cfg.Startup)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "simulator:\n  hostname: typo\n")
	if _, err := LoadWithEnvironment(path, map[string]string{}); err == nil {
		t.Fatal("unknown key was accepted")
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeConfig(t, "")
	cfg, err := LoadWithEnvironment(path, map[string]string{})
	if err != nil {
		t.Fatalf("LoadWithEnvironment: %v", err)
	}
	if cfg.Channels.BasePort != 5555 {
		t.Fatalf("defaults lost for empty file: %+v", cfg.Channels)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadWithEnvironment(filepath.Join(t.TempDir(), "absent.yaml"), map[string]string{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("error = %v, want os.ErrNotExist", err)
	}
}

func TestLoadUsesConfigVariable(t *testing.T) {
	path := writeConfig(t, "channels:\n  bind_host: 127.0.0.1\n")
	t.Setenv(FileEnvironmentVariable, path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Channels.BindHost != "127.0.0.1" {
		t.Fatalf("bind_host = %q, want 127.0.0.1", cfg.Channels.BindHost)
	}
}

func TestRequireReportsMissingSettings(t *testing.T) {
	var simulator SimulatorConfig

	if _, _, err := simulator.RequireEndpoint(); !errors.Is(err, ErrMissingSetting) || !strings.Contains(err.Error(), "LGSVL__SIMULATOR_HOST") {
		t.Fatalf("RequireEndpoint() error = %v", err)
	}
	simulator.Host = "localhost"
	if _, _, err := simulator.RequireEndpoint(); !errors.Is(err, ErrMissingSetting) || !strings.Contains(err.Error(), "LGSVL__SIMULATOR_PORT") {
		t.Fatalf("RequireEndpoint() error = %v", err)
	}
	if _, err := simulator.RequireScene(); !errors.Is(err, ErrMissingSetting) {
		t.Fatalf("RequireScene() error = %v", err)
	}
	if _, err := simulator.RequireEgoVehicle(); !errors.Is(err, ErrMissingSetting) {
		t.Fatalf("RequireEgoVehicle() error = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"base port too high", func(c *Config) { c.Channels.BasePort = 65530 }, "base_port"},
		{"base port zero", func(c *Config) { c.Channels.BasePort = 0 }, "base_port"},
		{"empty bind host", func(c *Config) { c.Channels.BindHost = "" }, "bind_host"},
		{"empty vehicle palette", func(c *Config) { c.Presets.Vehicles = nil }, "presets.vehicles"},
		{"blank pedestrian", func(c *Config) { c.Presets.Pedestrians = []string{"Bob", ""} }, "presets.pedestrians[1]"},
		{"zero timeout", func(c *Config) { c.Startup.Timeout = 0 }, "startup.timeout"},
		{"poll slower than timeout", func(c *Config) { c.Startup.PollInterval = time.Hour }, "poll_interval"},
		{"simulator port", func(c *Config) { c.Simulator.Port = 70000 }, "simulator.port"},
		{"no runner", func(c *Config) { c.Runner.Command = nil }, "runner.command"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := Default()
			test.modify(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() accepted an invalid config")
			}
			if !strings.Contains(err.Error(), test.want) {
				t.Fatalf("Validate() = %v, want mention of %q", err, test.want)
			}
		})
	}
}
