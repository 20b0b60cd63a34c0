// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// FileEnvironmentVariable names the config file when --config is not
// given.
const FileEnvironmentVariable = "SIMBRIDGE_CONFIG"

// ErrMissingSetting is wrapped by the Require methods when a setting
// needed by the current operation is empty.
var ErrMissingSetting = errors.New("required setting is missing")

// Config is the complete simbridge configuration.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" env:"SIMBRIDGE_LOG_LEVEL"`

	Simulator SimulatorConfig `yaml:"simulator"`
	Channels  ChannelsConfig  `yaml:"channels"`
	Presets   PresetsConfig   `yaml:"presets"`
	Startup   StartupConfig   `yaml:"startup"`
	Control   ControlConfig   `yaml:"control"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Journal   JournalConfig   `yaml:"journal"`
	Runner    RunnerConfig    `yaml:"runner"`
}

// SimulatorConfig locates the simulation engine and names what to load
// into it.
type SimulatorConfig struct {
	Host string `yaml:"host" env:"LGSVL__SIMULATOR_HOST"`
	Port int    `yaml:"port" env:"LGSVL__SIMULATOR_PORT"`

	// Scene is the map loaded on every Initialize.
	Scene string `yaml:"scene" env:"LGSVL__MAP"`

	// EgoVehicle is the vehicle configuration spawned for the ego.
	EgoVehicle string `yaml:"ego_vehicle" env:"LGSVL__VEHICLE_0"`
}

// ChannelsConfig places the ten request channels.
type ChannelsConfig struct {
	// BindHost is the interface the channels listen on; "*" is all.
	BindHost string `yaml:"bind_host" env:"SIMBRIDGE_BIND_HOST"`

	// BasePort is the Initialize channel's port. The other nine follow
	// consecutively.
	BasePort int `yaml:"base_port" env:"SIMBRIDGE_BASE_PORT"`
}

// PresetsConfig lists the agent presets handed out round-robin to
// non-ego spawns.
type PresetsConfig struct {
	Vehicles    []string `yaml:"vehicles" env:"SIMBRIDGE_NPC_VEHICLES" envSeparator:","`
	Pedestrians []string `yaml:"pedestrians" env:"SIMBRIDGE_PEDESTRIANS" envSeparator:","`
}

// StartupConfig bounds how long `simbridge run` waits for the bridge.
type StartupConfig struct {
	Timeout      time.Duration `yaml:"timeout" env:"SIMBRIDGE_STARTUP_TIMEOUT"`
	PollInterval time.Duration `yaml:"poll_interval" env:"SIMBRIDGE_STARTUP_POLL_INTERVAL"`
}

// ControlConfig enables the status socket when Socket is set.
type ControlConfig struct {
	Socket string `yaml:"socket" env:"SIMBRIDGE_CONTROL_SOCKET"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `yaml:"addr" env:"SIMBRIDGE_METRICS_ADDR"`
}

// JournalConfig enables the traffic journal when Path is set.
type JournalConfig struct {
	Path string `yaml:"path" env:"SIMBRIDGE_JOURNAL"`
}

// RunnerConfig is the scenario runner launched by `simbridge run`.
// The scenario argument and launch_rviz flag are appended to Command.
type RunnerConfig struct {
	Command    []string `yaml:"command"`
	LaunchRviz bool     `yaml:"launch_rviz" env:"SIMBRIDGE_LAUNCH_RVIZ"`
}

// Default returns the built-in configuration. The simulator section is
// empty: it has no sensible default.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Channels: ChannelsConfig{
			BindHost: "*",
			BasePort: 5555,
		},
		Presets: PresetsConfig{
			Vehicles: []string{"Sedan", "SUV", "Jeep", "Hatchback"},
			Pedestrians: []string{
				"Bob", "EntrepreneurFemale", "Howard", "Johny", "Pamela",
				"Presley", "Robin", "Stephen", "Zoe",
			},
		},
		Startup: StartupConfig{
			Timeout:      120 * time.Second,
			PollInterval: time.Second,
		},
		Runner: RunnerConfig{
			Command: []string{
				"ros2", "launch", "scenario_test_runner", "scenario_test_runner.launch.py",
			},
		},
	}
}

// Load builds the configuration from defaults, the file at path (or
// $SIMBRIDGE_CONFIG when path is empty; no file when both are empty)
// and the process environment.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(FileEnvironmentVariable)
	}
	return LoadWithEnvironment(path, nil)
}

// LoadWithEnvironment is Load with an explicit environment. A nil map
// reads the process environment. The SIMBRIDGE_CONFIG lookup is not
// repeated here: path is used as given.
func LoadWithEnvironment(path string, environment map[string]string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environment}); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	return cfg, nil
}

// loadFile merges the YAML file at path into c.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// Validate checks the configuration for structural errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Simulator.Port < 0 || c.Simulator.Port > 65535 {
		errs = append(errs, fmt.Errorf("simulator.port %d is out of range", c.Simulator.Port))
	}
	if c.Channels.BindHost == "" {
		errs = append(errs, errors.New("channels.bind_host is required"))
	}
	// The last of the ten channels must still be a valid port.
	if c.Channels.BasePort < 1 || c.Channels.BasePort+9 > 65535 {
		errs = append(errs, fmt.Errorf("channels.base_port %d leaves no room for ten channels", c.Channels.BasePort))
	}
	errs = append(errs, validatePalette("presets.vehicles", c.Presets.Vehicles)...)
	errs = append(errs, validatePalette("presets.pedestrians", c.Presets.Pedestrians)...)
	if c.Startup.Timeout <= 0 {
		errs = append(errs, errors.New("startup.timeout must be positive"))
	}
	if c.Startup.PollInterval <= 0 {
		errs = append(errs, errors.New("startup.poll_interval must be positive"))
	} else if c.Startup.PollInterval > c.Startup.Timeout && c.Startup.Timeout > 0 {
		errs = append(errs, errors.New("startup.poll_interval exceeds startup.timeout"))
	}
	if len(c.Runner.Command) == 0 || c.Runner.Command[0] == "" {
		errs = append(errs, errors.New("runner.command is required"))
	}

	return errors.Join(errs...)
}

func validatePalette(name string, palette []string) []error {
	if len(palette) == 0 {
		return []error{fmt.Errorf("%s must not be empty", name)}
	}
	var errs []error
	for index, preset := range palette {
		if preset == "" {
			errs = append(errs, fmt.Errorf("%s[%d] is empty", name, index))
		}
	}
	return errs
}

// RequireEndpoint returns the simulator host and port, or an error
// naming the missing setting.
func (s SimulatorConfig) RequireEndpoint() (string, int, error) {
	if s.Host == "" {
		return "", 0, missing("simulator.host", "LGSVL__SIMULATOR_HOST")
	}
	if s.Port == 0 {
		return "", 0, missing("simulator.port", "LGSVL__SIMULATOR_PORT")
	}
	return s.Host, s.Port, nil
}

// RequireScene returns the configured scene name.
func (s SimulatorConfig) RequireScene() (string, error) {
	if s.Scene == "" {
		return "", missing("simulator.scene", "LGSVL__MAP")
	}
	return s.Scene, nil
}

// RequireEgoVehicle returns the configured ego vehicle preset.
func (s SimulatorConfig) RequireEgoVehicle() (string, error) {
	if s.EgoVehicle == "" {
		return "", missing("simulator.ego_vehicle", "LGSVL__VEHICLE_0")
	}
	return s.EgoVehicle, nil
}

func missing(key, variable string) error {
	return fmt.Errorf("%s (environment %s): %w", key, variable, ErrMissingSetting)
}
