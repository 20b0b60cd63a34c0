// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// The bridge supervisor polls for readiness once per second for up to
// two minutes. Tests cannot afford to wait that long, so code that
// sleeps or waits on timers takes a Clock. Real() wraps the time
// package; Fake() returns a FakeClock whose time only moves when
// Advance is called.
//
// A test that drives a goroutine blocked in After or Sleep calls
// WaitForTimers first, so that the Advance cannot race ahead of the
// goroutine registering its timer:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go waitForSomething(fake)
//	fake.WaitForTimers(1)
//	fake.Advance(time.Second)
package clock
