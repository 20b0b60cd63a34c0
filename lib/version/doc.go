// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build version information for simbridge.
//
// Values are injected at build time via -ldflags, for example:
//
//	go build -ldflags "-X github.com/oddrunner/simbridge/lib/version.GitCommit=$(git rev-parse --short HEAD)"
package version
