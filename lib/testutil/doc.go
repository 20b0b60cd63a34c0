// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern so that a test waiting on a goroutine fails instead of hanging.
// [SocketDir] returns a short temporary directory for Unix sockets,
// whose paths are limited to 108 bytes.
//
// All helpers call t.Fatalf on failure.
package testutil
