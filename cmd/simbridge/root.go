// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/oddrunner/simbridge/cmd/simbridge/cli"
	"github.com/oddrunner/simbridge/lib/version"
)

func rootCommand() *cli.Command {
	return &cli.Command{
		Name:    "simbridge",
		Summary: "Scenario simulator bridge for the SVL simulator",
		Description: `simbridge lets a scenario runner drive the SVL simulator.

It binds ten request/reply channels (ports 5555-5564 by default), one
per request kind, and turns each request into simulator commands:
loading the scene, spawning and moving agents and stepping time.`,
		Subcommands: []*cli.Command{
			serveCommand(),
			runCommand(),
			statusCommand(),
			journalCommand(),
			versionCommand(),
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			version.Print("simbridge")
			return nil
		},
	}
}
