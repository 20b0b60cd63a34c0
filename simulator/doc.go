// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package simulator is a client for the SVL simulator's websocket
// command API.
//
// The simulator accepts one JSON command per text message,
// {"command": name, "arguments": {...}}, and answers each with either
// {"result": value} or {"error": message}. Commands are strictly
// sequential on a connection: [Client] serializes them so a reply is
// always matched to the command that produced it.
//
// Agent states are exchanged in simulator axes ([coordinate.AgentState]);
// translating from the scenario runner's world frame is the caller's
// job.
package simulator
