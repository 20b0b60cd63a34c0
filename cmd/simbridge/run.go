// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"slices"
	"strconv"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/oddrunner/simbridge/bridge"
	"github.com/oddrunner/simbridge/cmd/simbridge/cli"
	"github.com/oddrunner/simbridge/lib/clock"
	"github.com/oddrunner/simbridge/lib/config"
	"github.com/oddrunner/simbridge/lib/process"
	"github.com/oddrunner/simbridge/scenario"
)

// Environment variables set for the scenario runner.
const (
	scenarioEnvironmentVariable = "SIMBRIDGE_SCENARIO"
	mapEnvironmentVariable      = "SIMBRIDGE_MAP"
)

func runCommand() *cli.Command {
	var (
		flags      settings
		parsed     *pflag.FlagSet
		workDir    string
		launchRviz bool
	)
	return &cli.Command{
		Name:    "run",
		Summary: "Run one scenario against the bridge",
		Description: `Fetch a scenario and its HD map, point the scenario at the local map,
start the bridge and run the scenario runner once the bridge is ready.

SCENARIO is a .yaml or .xosc file and MAP an .osm file; either may be a
local path or an http(s) URL. The exit status is the runner's.

Arguments after "--" replace the configured runner command. The
localized scenario path is then only passed in $SIMBRIDGE_SCENARIO.`,
		Usage: "simbridge run [flags] SCENARIO MAP [-- COMMAND...]",
		Flags: func() *pflag.FlagSet {
			set := pflag.NewFlagSet("run", pflag.ContinueOnError)
			flags.register(set)
			set.StringVar(&workDir, "work-dir", os.TempDir(), "directory for downloads and the localized scenario")
			set.BoolVar(&launchRviz, "launch-rviz", false, "start rviz with the scenario runner")
			parsed = set
			return set
		},
		Examples: []cli.Example{
			{
				Description: "Run a published scenario",
				Command:     "simbridge run https://example.com/cut_in.yaml https://example.com/borregas.osm",
			},
			{
				Description: "Run a local scenario with a custom runner",
				Command:     "simbridge run ./cut_in.yaml ./borregas.osm -- ./my-runner --headless",
			},
		},
		Run: func(args []string) error {
			positional, override := splitAtDash(args, parsed.ArgsLenAtDash())
			if len(positional) != 2 {
				return fmt.Errorf("expected SCENARIO and MAP, got %d argument(s)", len(positional))
			}
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			if parsed.Changed("launch-rviz") {
				cfg.Runner.LaunchRviz = launchRviz
			}
			logger, err := newLogger(cfg.LogLevel)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			prepared, err := scenario.Prepare(ctx, scenario.Options{
				Scenario: positional[0],
				Map:      positional[1],
				WorkDir:  workDir,
			})
			if err != nil {
				return err
			}
			logger.Info("scenario prepared",
				"scenario", prepared.ScenarioPath,
				"map", prepared.MapPath,
				"localized", prepared.LocalizedPath,
			)
			return runScenario(ctx, cfg, prepared, override, logger)
		},
	}
}

// runScenario starts the bridge, waits for it to become ready and
// supervises the scenario runner.
func runScenario(ctx context.Context, cfg *config.Config, prepared scenario.Prepared, override []string, logger *slog.Logger) error {
	srv, err := startServer(ctx, cfg, nil, logger)
	if err != nil {
		return err
	}
	defer srv.Close()

	logger.Info("waiting for the bridge", "timeout", cfg.Startup.Timeout)
	err = bridge.WaitReady(ctx, clock.Real(), srv.Ready(), srv.Done(),
		cfg.Startup.Timeout, cfg.Startup.PollInterval)
	if err != nil {
		if errors.Is(err, bridge.ErrExitedBeforeReady) {
			if cause := srv.Wait(); cause != nil {
				return fmt.Errorf("%w: %w", err, cause)
			}
		}
		return err
	}

	argv := runnerArgv(cfg.Runner, override, prepared.LocalizedPath)
	environment := []string{
		scenarioEnvironmentVariable + "=" + prepared.LocalizedPath,
		mapEnvironmentVariable + "=" + prepared.MapPath,
	}
	logger.Info("starting scenario runner", "command", argv)
	return superviseRunner(ctx, argv, environment, srv.Done(), logger)
}

// splitAtDash separates positional arguments from the command given
// after "--". dash is the value of pflag's ArgsLenAtDash.
func splitAtDash(args []string, dash int) (positional, command []string) {
	if dash < 0 || dash > len(args) {
		return args, nil
	}
	return args[:dash], args[dash:]
}

// runnerArgv builds the scenario runner command line: the override
// verbatim when given, otherwise the configured command followed by
// the launch arguments.
func runnerArgv(runner config.RunnerConfig, override []string, localized string) []string {
	if len(override) > 0 {
		return slices.Clone(override)
	}
	return append(slices.Clone(runner.Command),
		"scenario:="+localized,
		"launch_rviz:="+strconv.FormatBool(runner.LaunchRviz),
	)
}

// superviseRunner runs argv to completion and returns its exit status
// as a *process.ExitError. Cancelling ctx forwards SIGTERM to the
// runner. If bridgeDone closes first, the runner is terminated and the
// run fails.
func superviseRunner(ctx context.Context, argv, environment []string, bridgeDone <-chan struct{}, logger *slog.Logger) error {
	if len(argv) == 0 {
		return errors.New("scenario runner command is empty")
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), environment...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting scenario runner: %w", err)
	}

	waited := make(chan error, 1)
	go func() { waited <- cmd.Wait() }()

	select {
	case err := <-waited:
		return runnerStatus(err)
	case <-ctx.Done():
		logger.Info("forwarding termination to the scenario runner")
		cmd.Process.Signal(syscall.SIGTERM)
		return runnerStatus(<-waited)
	case <-bridgeDone:
		logger.Error("bridge stopped while the scenario was running")
		cmd.Process.Signal(syscall.SIGTERM)
		<-waited
		return &process.ExitError{Code: 1, Err: errors.New("bridge stopped before the scenario runner finished")}
	}
}

// runnerStatus converts the runner's wait error into the status
// simbridge exits with. A runner killed by a signal reports 128+signal.
func runnerStatus(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return fmt.Errorf("scenario runner: %w", err)
	}
	code := exitErr.ExitCode()
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		code = 128 + int(status.Signal())
	}
	return &process.ExitError{Code: code, Err: fmt.Errorf("scenario runner: %w", err)}
}
