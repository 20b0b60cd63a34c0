// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oddrunner/simbridge/lib/clock"
)

// ErrStartupTimeout is returned by WaitReady when the bridge does not
// become ready in time.
var ErrStartupTimeout = errors.New("bridge did not become ready")

// ErrExitedBeforeReady is returned by WaitReady when the bridge stops
// before becoming ready.
var ErrExitedBeforeReady = errors.New("bridge exited before becoming ready")

// WaitReady polls ready every interval until it is closed, done is
// closed, ctx is cancelled or timeout elapses on clk.
func WaitReady(ctx context.Context, clk clock.Clock, ready, done <-chan struct{}, timeout, interval time.Duration) error {
	deadline := clk.Now().Add(timeout)
	for {
		select {
		case <-ready:
			return nil
		default:
		}
		select {
		case <-done:
			return ErrExitedBeforeReady
		default:
		}
		if !clk.Now().Before(deadline) {
			return fmt.Errorf("%w within %s", ErrStartupTimeout, timeout)
		}

		select {
		case <-ready:
			return nil
		case <-done:
			return ErrExitedBeforeReady
		case <-ctx.Done():
			return ctx.Err()
		case <-clk.After(interval):
		}
	}
}
