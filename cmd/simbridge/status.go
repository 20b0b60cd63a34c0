// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/oddrunner/simbridge/bridge"
	"github.com/oddrunner/simbridge/cmd/simbridge/cli"
	"github.com/oddrunner/simbridge/lib/config"
	"github.com/oddrunner/simbridge/lib/service"
)

func statusCommand() *cli.Command {
	var (
		configPath    string
		controlSocket string
		timeout       time.Duration
	)
	return &cli.Command{
		Name:    "status",
		Summary: "Show the state of a running bridge",
		Description: `Query a running bridge over its control socket and print the session,
the scene, the registered entities and per-channel request counts.

The bridge must have been started with a control socket.`,
		Usage: "simbridge status [flags]",
		Flags: func() *pflag.FlagSet {
			set := pflag.NewFlagSet("status", pflag.ContinueOnError)
			set.StringVarP(&configPath, "config", "c", "", "configuration file naming the control socket")
			set.StringVar(&controlSocket, "control-socket", "", "control socket path (default from configuration)")
			set.DurationVar(&timeout, "timeout", 5*time.Second, "give up after this long")
			return set
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			socketPath := controlSocket
			if socketPath == "" {
				cfg, err := config.Load(configPath)
				if err != nil {
					return err
				}
				socketPath = cfg.Control.Socket
			}
			if socketPath == "" {
				return errors.New("no control socket: pass --control-socket or set SIMBRIDGE_CONTROL_SOCKET")
			}

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			status, err := bridge.FetchStatus(ctx, service.NewClient(socketPath))
			if err != nil {
				return err
			}
			renderStatus(os.Stdout, status, term.IsTerminal(int(os.Stdout.Fd())))
			return nil
		},
	}
}

// renderStatus writes a human-readable report of status to w. Colors
// are used only when color is set.
func renderStatus(w io.Writer, status *bridge.Status, color bool) {
	renderer := lipgloss.NewRenderer(w)
	if color {
		renderer.SetColorProfile(termenv.ANSI256)
	} else {
		renderer.SetColorProfile(termenv.Ascii)
	}
	heading := renderer.NewStyle().Bold(true)
	label := renderer.NewStyle().Foreground(lipgloss.Color("245"))
	good := renderer.NewStyle().Foreground(lipgloss.Color("42"))
	bad := renderer.NewStyle().Foreground(lipgloss.Color("203"))

	flag := func(ok bool, yes, no string) string {
		if ok {
			return good.Render(yes)
		}
		return bad.Render(no)
	}
	field := func(name, value string) {
		fmt.Fprintf(w, "  %s %s\n", label.Render(fmt.Sprintf("%-16s", name)), value)
	}

	fmt.Fprintln(w, heading.Render("Session"))
	sessionID := status.SessionID
	if sessionID == "" {
		sessionID = "-"
	}
	field("id", sessionID)
	field("initialized", flag(status.Initialized, "yes", "no"))
	field("realtime factor", formatFloat(status.RealtimeFactor))
	field("step time", formatFloat(status.StepTime)+" s")
	field("sim time", formatFloat(status.SimTime)+" s")
	field("ros time", fmt.Sprintf("%s s (started at %s)",
		formatFloat(status.CurrentRosTime), formatFloat(status.InitialRosTime)))
	fmt.Fprintln(w)

	fmt.Fprintln(w, heading.Render("Simulator"))
	field("connected", flag(status.Connected, "yes", "no"))
	scene := status.Scene
	if scene == "" {
		scene = "-"
	}
	field("scene", scene)
	field("loads / resets", fmt.Sprintf("%d / %d", status.SceneLoads, status.SceneResets))
	field("origin", fmt.Sprintf("N %s  E %s",
		formatFloat(status.OriginNorthing), formatFloat(status.OriginEasting)))
	if status.UpdatedAt != 0 {
		field("updated", time.Unix(0, status.UpdatedAt).UTC().Format(time.RFC3339))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, heading.Render(fmt.Sprintf("Entities (%d)", len(status.Entities))))
	if len(status.Entities) > 0 {
		rows := make([][]string, 0, len(status.Entities))
		for _, entity := range status.Entities {
			rows = append(rows, []string{entity.Name, entity.Kind, entity.Preset, entity.Handle})
		}
		fmt.Fprintln(w, newTable(renderer, []string{"NAME", "KIND", "PRESET", "HANDLE"}, rows))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, heading.Render("Channels"))
	rows := make([][]string, 0, len(status.Channels))
	for _, channel := range status.Channels {
		supported := "yes"
		if !channel.Supported {
			supported = "stub"
		}
		rows = append(rows, []string{
			channel.Kind,
			channel.Address,
			supported,
			strconv.FormatUint(channel.Requests, 10),
			strconv.FormatUint(channel.Failures, 10),
		})
	}
	fmt.Fprintln(w, newTable(renderer, []string{"KIND", "ADDRESS", "SUPPORTED", "REQUESTS", "FAILURES"}, rows))
}

func newTable(renderer *lipgloss.Renderer, headers []string, rows [][]string) string {
	header := renderer.NewStyle().Bold(true).Padding(0, 1)
	cell := renderer.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(renderer.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		String()
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
