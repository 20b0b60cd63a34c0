// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package transport provides the request/reply channels the scenario
// runner talks to.
//
// An [Endpoint] is one bound channel with strict alternation: every
// [Endpoint.Receive] must be followed by exactly one [Endpoint.Reply]
// before the next receive. A [Binder] creates endpoints from addresses.
//
// The production implementation, [ZMQBinder], binds ZeroMQ REP sockets
// (go-zeromq/zmq4, pure Go, no libzmq). [MemoryBinder] provides
// in-process endpoints for tests; the test side drives them with
// [MemoryEndpoint.Request]. [ZMQClient] is the matching REQ side, used
// by tooling and tests to talk to a running bridge.
package transport
