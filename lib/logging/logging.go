// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package logging builds the structured logger used by simbridge.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

// ParseLevel converts a level name (debug, info, warn, error) into a
// slog.Level. Matching is case-insensitive; "warning" is accepted.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", name)
	}
}

// New returns a logger writing to stderr. When stderr is a terminal the
// output is slog text for people; otherwise it is JSON lines so that CI
// and log shippers can parse it.
func New(level slog.Level) *slog.Logger {
	return NewWithWriter(os.Stderr, level, term.IsTerminal(int(os.Stderr.Fd())))
}

// NewWithWriter is New with an explicit destination and format choice.
func NewWithWriter(output io.Writer, level slog.Level, human bool) *slog.Logger {
	options := &slog.HandlerOptions{Level: level}
	if human {
		return slog.New(slog.NewTextHandler(output, options))
	}
	return slog.New(slog.NewJSONHandler(output, options))
}

// Discard returns a logger that drops everything. Tests use it to keep
// output quiet.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}
