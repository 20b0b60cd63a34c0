// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"
)

// DefaultProbeTimeout bounds a reachability probe. A simulator that
// takes longer than this to accept a TCP connection is treated as
// absent.
const DefaultProbeTimeout = 2 * time.Second

// ProbeTCP reports whether something accepts TCP connections at
// host:port. The probe connection is closed immediately. A timeout of
// zero uses DefaultProbeTimeout.
func ProbeTCP(ctx context.Context, host string, port int, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	address := net.JoinHostPort(host, strconv.Itoa(port))

	dialer := net.Dialer{Timeout: timeout}
	connection, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("probing %s: %w", address, err)
	}
	connection.Close()
	return nil
}
