// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestExecuteDispatchesToSubcommand(t *testing.T) {
	var called string
	var received []string
	root := &Command{
		Name:   "simbridge",
		Output: &bytes.Buffer{},
		Subcommands: []*Command{
			{Name: "serve", Run: func(args []string) error { called = "serve"; return nil }},
			{Name: "status", Run: func(args []string) error {
				called = "status"
				received = args
				return nil
			}},
		},
	}

	if err := root.Execute([]string{"status", "extra"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if called != "status" {
		t.Errorf("dispatched to %q, want status", called)
	}
	if len(received) != 1 || received[0] != "extra" {
		t.Errorf("args = %v, want [extra]", received)
	}
}

func TestExecuteParsesFlags(t *testing.T) {
	var port int
	var positional []string
	command := &Command{
		Name: "serve",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("serve", pflag.ContinueOnError)
			flags.IntVar(&port, "base-port", 5555, "first channel port")
			return flags
		},
		Run: func(args []string) error {
			positional = args
			return nil
		},
	}

	if err := command.Execute([]string{"scenario.yaml", "--base-port", "6000", "--", "echo", "-n"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if port != 6000 {
		t.Errorf("port = %d, want 6000", port)
	}
	want := []string{"scenario.yaml", "echo", "-n"}
	if strings.Join(positional, " ") != strings.Join(want, " ") {
		t.Errorf("args = %v, want %v", positional, want)
	}
}

func TestExecuteSuggestsCommand(t *testing.T) {
	root := &Command{
		Name:   "simbridge",
		Output: &bytes.Buffer{},
		Subcommands: []*Command{
			{Name: "serve", Run: func([]string) error { return nil }},
			{Name: "journal", Run: func([]string) error { return nil }},
		},
	}

	err := root.Execute([]string{"jornal"})
	if err == nil || !strings.Contains(err.Error(), `did you mean "journal"`) {
		t.Fatalf("error = %v, want a journal suggestion", err)
	}
	err = root.Execute([]string{"xyzzy-plugh"})
	if err == nil || strings.Contains(err.Error(), "did you mean") {
		t.Fatalf("error = %v, want no suggestion", err)
	}
}

func TestExecuteSuggestsFlag(t *testing.T) {
	command := &Command{
		Name: "serve",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("serve", pflag.ContinueOnError)
			flags.String("metrics-addr", "", "")
			return flags
		},
		Run: func([]string) error { return nil },
	}

	err := command.Execute([]string{"--metric-addr", ":9100"})
	if err == nil || !strings.Contains(err.Error(), "did you mean --metrics-addr?") {
		t.Fatalf("error = %v", err)
	}
}

func TestHelpListsSubcommandsAndFlags(t *testing.T) {
	var help bytes.Buffer
	root := &Command{
		Name:   "simbridge",
		Output: &help,
		Subcommands: []*Command{
			{
				Name:    "serve",
				Summary: "Serve the request channels",
				Flags: func() *pflag.FlagSet {
					flags := pflag.NewFlagSet("serve", pflag.ContinueOnError)
					flags.String("bind-host", "*", "interface to bind")
					return flags
				},
				Run: func([]string) error { return nil },
			},
		},
	}

	if err := root.Execute([]string{"--help"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(help.String(), "Serve the request channels") {
		t.Errorf("root help missing summary:\n%s", help.String())
	}

	help.Reset()
	if err := root.Execute([]string{"serve", "--help"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(help.String(), "--bind-host") || !strings.Contains(help.String(), "simbridge serve") {
		t.Errorf("serve help:\n%s", help.String())
	}
}

func TestSubcommandRequired(t *testing.T) {
	root := &Command{
		Name:        "simbridge",
		Output:      &bytes.Buffer{},
		Subcommands: []*Command{{Name: "serve", Run: func([]string) error { return nil }}},
	}
	if err := root.Execute(nil); err == nil {
		t.Fatal("Execute with no arguments succeeded")
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "abc", 3},
		{"serve", "serve", 0},
		{"serve", "sreve", 2},
		{"status", "stats", 1},
		{"kitten", "sitting", 3},
	}
	for _, test := range tests {
		if got := levenshtein(test.a, test.b); got != test.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
		}
	}
}
