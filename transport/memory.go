// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Compile-time interface checks.
var (
	_ Binder   = (*MemoryBinder)(nil)
	_ Endpoint = (*MemoryEndpoint)(nil)
)

// MemoryBinder creates in-process endpoints for tests. Binding the same
// address twice fails, like a port already in use.
type MemoryBinder struct {
	mu        sync.Mutex
	endpoints map[string]*MemoryEndpoint
	failOn    map[string]error
}

// NewMemoryBinder creates an empty binder.
func NewMemoryBinder() *MemoryBinder {
	return &MemoryBinder{
		endpoints: make(map[string]*MemoryEndpoint),
		failOn:    make(map[string]error),
	}
}

// FailBind makes the next Bind of address return err.
func (b *MemoryBinder) FailBind(address string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failOn[address] = err
}

func (b *MemoryBinder) Bind(ctx context.Context, address string) (Endpoint, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err, ok := b.failOn[address]; ok {
		delete(b.failOn, address)
		return nil, fmt.Errorf("binding %s: %w", address, err)
	}
	if existing, ok := b.endpoints[address]; ok && !existing.isClosed() {
		return nil, fmt.Errorf("binding %s: address already in use", address)
	}

	endpoint := &MemoryEndpoint{
		address:  address,
		requests: make(chan memoryExchange),
		closed:   make(chan struct{}),
	}
	b.endpoints[address] = endpoint
	go func() {
		select {
		case <-ctx.Done():
			endpoint.Close()
		case <-endpoint.closed:
		}
	}()
	return endpoint, nil
}

// Endpoint returns the endpoint bound at address, or nil.
func (b *MemoryBinder) Endpoint(address string) *MemoryEndpoint {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.endpoints[address]
}

// Addresses lists every address bound so far, sorted.
func (b *MemoryBinder) Addresses() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	addresses := make([]string, 0, len(b.endpoints))
	for address := range b.endpoints {
		addresses = append(addresses, address)
	}
	slices.Sort(addresses)
	return addresses
}

type memoryExchange struct {
	request []byte
	reply   chan []byte
}

// MemoryEndpoint is an in-process Endpoint. Requests are delivered
// with Request, which blocks until the server side replies.
type MemoryEndpoint struct {
	address  string
	requests chan memoryExchange

	closeOnce sync.Once
	closed    chan struct{}

	mu      sync.Mutex
	current *memoryExchange
}

func (e *MemoryEndpoint) Receive() ([]byte, error) {
	e.mu.Lock()
	pending := e.current != nil
	e.mu.Unlock()
	if pending {
		return nil, ErrOutOfOrder
	}

	select {
	case exchange := <-e.requests:
		e.mu.Lock()
		e.current = &exchange
		e.mu.Unlock()
		return exchange.request, nil
	case <-e.closed:
		return nil, ErrClosed
	}
}

func (e *MemoryEndpoint) Reply(response []byte) error {
	e.mu.Lock()
	exchange := e.current
	e.current = nil
	e.mu.Unlock()
	if exchange == nil {
		return ErrOutOfOrder
	}
	if e.isClosed() {
		return ErrClosed
	}
	exchange.reply <- slices.Clone(response)
	return nil
}

func (e *MemoryEndpoint) Address() string { return e.address }

func (e *MemoryEndpoint) Close() error {
	e.closeOnce.Do(func() { close(e.closed) })
	return nil
}

func (e *MemoryEndpoint) isClosed() bool {
	select {
	case <-e.closed:
		return true
	default:
		return false
	}
}

// Request sends request to the server side and waits for its reply.
func (e *MemoryEndpoint) Request(ctx context.Context, request []byte) ([]byte, error) {
	exchange := memoryExchange{
		request: slices.Clone(request),
		reply:   make(chan []byte, 1),
	}
	select {
	case e.requests <- exchange:
	case <-e.closed:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case reply := <-exchange.reply:
		return reply, nil
	case <-e.closed:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
