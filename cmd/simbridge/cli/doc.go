// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the small command tree behind the simbridge binary.
//
// A [Command] has a name, help text, an optional pflag set and either a
// Run function or subcommands. Execute dispatches on the first
// positional argument, parses flags and calls Run with what is left.
// Unknown commands and flags get an edit-distance suggestion.
package cli
