// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-zeromq/zmq4"
)

// Compile-time interface checks.
var (
	_ Binder   = ZMQBinder{}
	_ Endpoint = (*ZMQEndpoint)(nil)
)

// ZMQBinder binds ZeroMQ REP sockets.
type ZMQBinder struct{}

// Bind listens on address (for example "tcp://*:5555").
func (ZMQBinder) Bind(ctx context.Context, address string) (Endpoint, error) {
	socket := zmq4.NewRep(ctx)
	if err := socket.Listen(address); err != nil {
		socket.Close()
		return nil, fmt.Errorf("binding %s: %w", address, err)
	}
	return &ZMQEndpoint{socket: socket, address: address}, nil
}

// ZMQEndpoint is a bound REP socket. The REP pattern routes each reply
// back to the peer that sent the preceding request.
type ZMQEndpoint struct {
	socket  zmq4.Socket
	address string

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error

	// awaitingReply enforces alternation locally, so a misuse is
	// reported instead of surfacing as a socket state error.
	awaitingReply atomic.Bool
}

func (e *ZMQEndpoint) Receive() ([]byte, error) {
	if e.awaitingReply.Load() {
		return nil, ErrOutOfOrder
	}
	message, err := e.socket.Recv()
	if err != nil {
		if e.closed.Load() {
			return nil, ErrClosed
		}
		return nil, fmt.Errorf("receiving on %s: %w", e.address, err)
	}
	e.awaitingReply.Store(true)
	return message.Bytes(), nil
}

func (e *ZMQEndpoint) Reply(response []byte) error {
	if !e.awaitingReply.Swap(false) {
		return ErrOutOfOrder
	}
	if err := e.socket.Send(zmq4.NewMsg(response)); err != nil {
		if e.closed.Load() {
			return ErrClosed
		}
		return fmt.Errorf("replying on %s: %w", e.address, err)
	}
	return nil
}

func (e *ZMQEndpoint) Address() string { return e.address }

func (e *ZMQEndpoint) Close() error {
	e.closeOnce.Do(func() {
		e.closed.Store(true)
		e.closeErr = e.socket.Close()
	})
	return e.closeErr
}

// ZMQClient is the REQ side of a channel.
type ZMQClient struct {
	mu     sync.Mutex
	socket zmq4.Socket
}

// DialZMQ connects a REQ socket to address.
func DialZMQ(ctx context.Context, address string) (*ZMQClient, error) {
	socket := zmq4.NewReq(ctx)
	if err := socket.Dial(address); err != nil {
		socket.Close()
		return nil, fmt.Errorf("dialing %s: %w", address, err)
	}
	return &ZMQClient{socket: socket}, nil
}

// Request sends one request and waits for its reply.
func (c *ZMQClient) Request(request []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.socket.Send(zmq4.NewMsg(request)); err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	reply, err := c.socket.Recv()
	if err != nil {
		return nil, fmt.Errorf("receiving reply: %w", err)
	}
	return reply.Bytes(), nil
}

// Close disconnects the client.
func (c *ZMQClient) Close() error {
	return c.socket.Close()
}
