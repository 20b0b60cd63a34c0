// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil holds small network helpers shared by the bridge and
// its command-line tools: a TCP reachability probe used before dialing
// the simulator, and classification of errors that signal an ordinary
// connection teardown.
package netutil
