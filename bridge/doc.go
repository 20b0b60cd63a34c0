// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package bridge connects a scenario runner to the SVL simulator.
//
// The runner drives the simulation through ten request/reply channels,
// one per [simapi.Kind]. A [Dispatcher] binds them, waits on all ten at
// once and hands every request to a single goroutine that runs the
// matching [Bridge] handler and sends exactly one reply. Because only
// that goroutine ever touches the [Session], the [Registry] and the
// simulator connection, handlers need no locking.
//
// Failures come in two tiers. An ordinary failure (an unknown entity, a
// simulator command error, a request before Initialize) is reported in
// the reply as success=false and the loop continues. A configuration or
// connection failure (no simulator host, no listening simulator, no ego
// vehicle preset) is wrapped with [Fatal]; the dispatcher stops the
// simulation, replies with the failure and returns the error, which the
// binary turns into a non-zero exit.
//
// Scenario positions are translated into simulator axes relative to the
// scene origin with package coordinate. The origin is recomputed every
// time a scene is loaded or reset.
package bridge
