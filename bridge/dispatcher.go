// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oddrunner/simbridge/lib/clock"
	"github.com/oddrunner/simbridge/lib/journal"
	"github.com/oddrunner/simbridge/lib/netutil"
	"github.com/oddrunner/simbridge/simapi"
	"github.com/oddrunner/simbridge/transport"
)

// shutdownTimeout bounds the simulator stop and close at shutdown,
// after the serving context is gone.
const shutdownTimeout = 5 * time.Second

// JournalWriter receives every request/reply exchange.
// *journal.Writer is the production implementation.
type JournalWriter interface {
	Append(session, kind string, request, response []byte) (journal.Record, error)
}

// Dispatcher binds the ten request channels and serves them with a
// Bridge.
type Dispatcher struct {
	// Bridge serves the requests. Required.
	Bridge *Bridge

	// Binder creates the channel endpoints. If nil, ZeroMQ REP sockets
	// are bound.
	Binder transport.Binder

	// BindHost and BasePort place the channels; the channel for kind k
	// listens on BasePort+k. Defaults are "*" and 5555.
	BindHost string
	BasePort int

	// Metrics and Journal are optional.
	Metrics *Metrics
	Journal JournalWriter

	// Logger receives structured log output. If nil, slog.Default() is
	// used.
	Logger *slog.Logger

	// Clock times handlers and stamps snapshots. If nil, the real clock
	// is used.
	Clock clock.Clock

	endpoints []boundEndpoint
	counters  map[simapi.Kind]*channelCounters
	status    atomic.Pointer[Status]

	cancel context.CancelFunc
	ready  chan struct{}
	done   chan struct{}
	err    error
}

type boundEndpoint struct {
	kind     simapi.Kind
	endpoint transport.Endpoint
}

// inbound is one received request on its way to the dispatch
// goroutine. The receiver waits for replied before receiving again.
type inbound struct {
	bound   boundEndpoint
	payload []byte
	err     error
	replied chan struct{}
}

func (d *Dispatcher) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

func (d *Dispatcher) clock() clock.Clock {
	if d.Clock != nil {
		return d.Clock
	}
	return clock.Real()
}

// Start binds every channel and starts serving in the background. The
// bridge connects to the simulator and loads the configured scene
// before the first request is handled; Ready is closed once that is
// done. A bind failure is fatal and leaves nothing bound.
func (d *Dispatcher) Start(ctx context.Context) error {
	if d.Bridge == nil {
		return errors.New("dispatcher: Bridge is required")
	}
	binder := d.Binder
	if binder == nil {
		binder = transport.ZMQBinder{}
	}
	host := d.BindHost
	if host == "" {
		host = "*"
	}
	basePort := d.BasePort
	if basePort == 0 {
		basePort = simapi.DefaultBasePort
	}

	ctx, d.cancel = context.WithCancel(ctx)
	d.ready = make(chan struct{})
	d.done = make(chan struct{})
	d.counters = make(map[simapi.Kind]*channelCounters)

	for _, kind := range simapi.Kinds() {
		address := transport.TCPAddress(host, kind.Port(basePort))
		endpoint, err := binder.Bind(ctx, address)
		if err != nil {
			d.closeEndpoints()
			d.cancel()
			close(d.done)
			return Fatal(fmt.Errorf("binding %v channel: %w", kind, err))
		}
		d.endpoints = append(d.endpoints, boundEndpoint{kind: kind, endpoint: endpoint})
		d.counters[kind] = &channelCounters{}
		d.logger().Debug("channel bound", "kind", kind, "address", address)
	}
	d.publish()

	go func() {
		defer close(d.done)
		d.err = d.run(ctx)
	}()
	return nil
}

// Ready is closed once the bridge is connected and the scene loaded.
func (d *Dispatcher) Ready() <-chan struct{} { return d.ready }

// Done is closed when the dispatcher has stopped.
func (d *Dispatcher) Done() <-chan struct{} { return d.done }

// Wait blocks until the dispatcher stops and returns the fatal error
// that stopped it, or nil after Stop or context cancellation.
func (d *Dispatcher) Wait() error {
	if d.done == nil {
		return nil
	}
	<-d.done
	return d.err
}

// Stop shuts the dispatcher down and waits for it.
func (d *Dispatcher) Stop() error {
	if d.cancel != nil {
		d.cancel()
	}
	return d.Wait()
}

// Status returns the latest snapshot, or nil before Start.
func (d *Dispatcher) Status() *Status {
	return d.status.Load()
}

func (d *Dispatcher) closeEndpoints() {
	for _, bound := range d.endpoints {
		if err := bound.endpoint.Close(); err != nil {
			d.logger().Debug("closing channel", "kind", bound.kind, "error", err)
		}
	}
}

func (d *Dispatcher) run(ctx context.Context) error {
	inbox := make(chan inbound)
	receiveContext, stopReceivers := context.WithCancel(ctx)
	var receivers sync.WaitGroup
	for _, bound := range d.endpoints {
		receivers.Add(1)
		go func() {
			defer receivers.Done()
			d.receive(receiveContext, bound, inbox)
		}()
	}
	defer func() {
		stopReceivers()
		d.closeEndpoints()
		receivers.Wait()

		shutdownContext, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := d.Bridge.Close(shutdownContext); err != nil {
			d.logger().Warn("closing simulator connection", "error", err)
		}
		d.publish()
		d.logger().Info("bridge stopped")
	}()

	if err := d.Bridge.Start(ctx); err != nil {
		return d.Bridge.Terminate(ctx, err)
	}
	d.publish()
	close(d.ready)
	d.logger().Info("bridge ready", "channels", len(d.endpoints), "scene", d.Bridge.Scene().Scene())

	for {
		select {
		case <-ctx.Done():
			return nil
		case request := <-inbox:
			err := d.dispatch(ctx, request)
			close(request.replied)
			if err != nil {
				return err
			}
		}
	}
}

// receive performs the blocking receives for one channel. It hands
// every request to the dispatch goroutine and waits for the reply
// before receiving again.
func (d *Dispatcher) receive(ctx context.Context, bound boundEndpoint, inbox chan<- inbound) {
	for {
		payload, err := bound.endpoint.Receive()
		if err != nil && (ctx.Err() != nil || netutil.IsExpectedCloseError(err)) {
			return
		}
		request := inbound{
			bound:   bound,
			payload: payload,
			err:     err,
			replied: make(chan struct{}),
		}
		select {
		case inbox <- request:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
		select {
		case <-request.replied:
		case <-ctx.Done():
			return
		}
	}
}

// dispatch serves one request and sends its reply. It returns an error
// only when the bridge must stop.
func (d *Dispatcher) dispatch(ctx context.Context, request inbound) error {
	kind := request.bound.kind
	if request.err != nil {
		return d.Bridge.Terminate(ctx, fmt.Errorf("receiving on %v channel: %w", kind, request.err))
	}

	started := d.clock().Now()
	response, fatal := d.Bridge.Handle(ctx, kind, request.payload)
	if fatal != nil {
		response = simapi.Failed(fatal.Error())
	}
	encoded := response.Marshal()
	replyErr := request.bound.endpoint.Reply(encoded)
	elapsed := d.clock().Now().Sub(started)

	counters := d.counters[kind]
	counters.requests++
	if !response.Result.Success {
		counters.failures++
	}
	d.Metrics.ObserveRequest(kind, response, elapsed)
	d.Metrics.SetEntities(d.entityCount())
	d.record(kind, request.payload, encoded)
	d.publish()

	d.logger().Debug("request handled",
		"kind", kind,
		"success", response.Result.Success,
		"description", response.Result.Description,
		"elapsed", elapsed,
	)

	if fatal != nil {
		return d.Bridge.Terminate(ctx, fatal)
	}
	if replyErr != nil {
		d.logger().Warn("sending reply failed", "kind", kind, "error", replyErr)
	}
	return nil
}

func (d *Dispatcher) entityCount() int {
	count := d.Bridge.Registry().Len()
	if _, ok := d.Bridge.Registry().Ego(); ok {
		count++
	}
	return count
}

func (d *Dispatcher) record(kind simapi.Kind, request, response []byte) {
	if d.Journal == nil {
		return
	}
	if _, err := d.Journal.Append(d.Bridge.Session().ID, kind.String(), request, response); err != nil {
		d.logger().Warn("journal append failed", "kind", kind, "error", err)
	}
}

// publish stores a fresh snapshot. Called from the goroutine that owns
// the bridge state.
func (d *Dispatcher) publish() {
	status := d.Bridge.snapshot()
	for _, bound := range d.endpoints {
		status.Channels = append(status.Channels,
			channelStatus(bound.kind, bound.endpoint.Address(), *d.counters[bound.kind]))
	}
	status.UpdatedAt = d.clock().Now().UnixNano()
	d.status.Store(status)
}
