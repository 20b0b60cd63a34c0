// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
)

// ErrClosed is returned by Receive and Reply once an endpoint is
// closed. It wraps net.ErrClosed so shutdown paths can treat it like a
// closed listener.
var ErrClosed = fmt.Errorf("transport: endpoint closed: %w", net.ErrClosed)

// ErrOutOfOrder is returned when Receive and Reply do not alternate.
var ErrOutOfOrder = errors.New("transport: receive and reply must alternate")

// Endpoint is one bound request/reply channel.
type Endpoint interface {
	// Receive blocks until the next request arrives. It returns
	// ErrClosed after Close, or when the context the endpoint was bound
	// with is cancelled.
	Receive() ([]byte, error)

	// Reply answers the request returned by the last Receive.
	Reply(response []byte) error

	// Address is the address the endpoint was bound to.
	Address() string

	// Close unbinds the endpoint and unblocks a pending Receive.
	Close() error
}

// Binder creates endpoints. The endpoint lives until Close or until
// ctx is cancelled.
type Binder interface {
	Bind(ctx context.Context, address string) (Endpoint, error)
}

// TCPAddress formats a ZeroMQ TCP endpoint address. Host "*" binds
// every interface.
func TCPAddress(host string, port int) string {
	return "tcp://" + net.JoinHostPort(host, strconv.Itoa(port))
}
