// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/oddrunner/simbridge/lib/config"
	"github.com/oddrunner/simbridge/lib/logging"
	"github.com/oddrunner/simbridge/lib/process"
)

func TestSplitAtDash(t *testing.T) {
	args := []string{"a.yaml", "b.osm", "runner", "--headless"}

	positional, command := splitAtDash(args, 2)
	if !slices.Equal(positional, []string{"a.yaml", "b.osm"}) {
		t.Errorf("positional = %v", positional)
	}
	if !slices.Equal(command, []string{"runner", "--headless"}) {
		t.Errorf("command = %v", command)
	}

	positional, command = splitAtDash(args[:2], -1)
	if len(positional) != 2 || command != nil {
		t.Errorf("without dash: positional = %v, command = %v", positional, command)
	}
}

func TestRunnerArgvAppendsLaunchArguments(t *testing.T) {
	runner := config.Default().Runner
	argv := runnerArgv(runner, nil, "/tmp/localized_cut_in.yaml")
	want := []string{
		"ros2", "launch", "scenario_test_runner", "scenario_test_runner.launch.py",
		"scenario:=/tmp/localized_cut_in.yaml", "launch_rviz:=false",
	}
	if !slices.Equal(argv, want) {
		t.Fatalf("argv = %v, want %v", argv, want)
	}

	runner.LaunchRviz = true
	argv = runnerArgv(runner, nil, "/tmp/s.yaml")
	if argv[len(argv)-1] != "launch_rviz:=true" {
		t.Errorf("last argument = %q, want launch_rviz:=true", argv[len(argv)-1])
	}
	if len(config.Default().Runner.Command) != 4 {
		t.Error("runnerArgv modified the configured command")
	}
}

func TestRunnerArgvOverride(t *testing.T) {
	argv := runnerArgv(config.Default().Runner, []string{"./my-runner", "--headless"}, "/tmp/s.yaml")
	if !slices.Equal(argv, []string{"./my-runner", "--headless"}) {
		t.Fatalf("argv = %v", argv)
	}
}

func TestSuperviseRunnerPropagatesExitStatus(t *testing.T) {
	err := superviseRunner(context.Background(), []string{"sh", "-c", "exit 3"}, nil, make(chan struct{}), logging.Discard())
	if code := process.Code(err); code != 3 {
		t.Fatalf("exit code = %d (err %v), want 3", code, err)
	}

	err = superviseRunner(context.Background(), []string{"true"}, nil, make(chan struct{}), logging.Discard())
	if err != nil {
		t.Fatalf("successful runner: %v", err)
	}
}

func TestSuperviseRunnerPassesEnvironment(t *testing.T) {
	output := filepath.Join(t.TempDir(), "scenario")
	environment := []string{scenarioEnvironmentVariable + "=/tmp/localized_s.yaml"}
	script := `printf %s "$SIMBRIDGE_SCENARIO" > "` + output + `"`

	if err := superviseRunner(context.Background(), []string{"sh", "-c", script}, environment, make(chan struct{}), logging.Discard()); err != nil {
		t.Fatalf("superviseRunner: %v", err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "/tmp/localized_s.yaml" {
		t.Errorf("SIMBRIDGE_SCENARIO = %q", data)
	}
}

func TestSuperviseRunnerStopsWhenBridgeDies(t *testing.T) {
	bridgeDone := make(chan struct{})
	close(bridgeDone)

	start := time.Now()
	err := superviseRunner(context.Background(), []string{"sleep", "30"}, nil, bridgeDone, logging.Discard())
	if time.Since(start) > 10*time.Second {
		t.Fatal("runner was not terminated")
	}
	if code := process.Code(err); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(err.Error(), "bridge stopped") {
		t.Errorf("error = %v", err)
	}
}

func TestSuperviseRunnerForwardsTermination(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	err := superviseRunner(ctx, []string{"sleep", "30"}, nil, make(chan struct{}), logging.Discard())
	if code := process.Code(err); code != 143 {
		t.Fatalf("exit code = %d (err %v), want 143", code, err)
	}
}

func TestSuperviseRunnerMissingBinary(t *testing.T) {
	err := superviseRunner(context.Background(), []string{"/nonexistent/runner"}, nil, make(chan struct{}), logging.Discard())
	if err == nil {
		t.Fatal("expected an error")
	}
	var exitErr *process.ExitError
	if errors.As(err, &exitErr) {
		t.Errorf("start failure reported as exit status %d", exitErr.Code)
	}
}

func TestRunCommandRequiresTwoArguments(t *testing.T) {
	err := rootCommand().Execute([]string{"run", "only.yaml"})
	if err == nil || !strings.Contains(err.Error(), "expected SCENARIO and MAP") {
		t.Fatalf("err = %v", err)
	}
}
