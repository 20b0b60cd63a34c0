// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package process is the top-level error boundary of the simbridge
// binary. Deep code never calls os.Exit: configuration and connection
// failures travel up as errors, and main() hands the final error to
// [Exit], which decides the status code. An error that carries its own
// status (a scenario runner that exited 3, for example) implements
// ExitCode() and that code is propagated verbatim.
package process
