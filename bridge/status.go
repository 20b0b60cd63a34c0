// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"errors"

	"github.com/oddrunner/simbridge/lib/service"
	"github.com/oddrunner/simbridge/simapi"
)

// Status is an immutable snapshot of the bridge, published after every
// handled request.
type Status struct {
	SessionID      string  `cbor:"session_id"`
	Initialized    bool    `cbor:"initialized"`
	Connected      bool    `cbor:"connected"`
	Scene          string  `cbor:"scene"`
	SceneLoads     int     `cbor:"scene_loads"`
	SceneResets    int     `cbor:"scene_resets"`
	OriginNorthing float64 `cbor:"origin_northing"`
	OriginEasting  float64 `cbor:"origin_easting"`

	SimTime        float64 `cbor:"sim_time"`
	InitialRosTime float64 `cbor:"initial_ros_time"`
	CurrentRosTime float64 `cbor:"current_ros_time"`
	RealtimeFactor float64 `cbor:"realtime_factor"`
	StepTime       float64 `cbor:"step_time"`

	Entities []EntityStatus  `cbor:"entities"`
	Channels []ChannelStatus `cbor:"channels"`

	// UpdatedAt is Unix nanoseconds.
	UpdatedAt int64 `cbor:"updated_at"`
}

// EntityStatus describes one registered entity.
type EntityStatus struct {
	Name   string `cbor:"name"`
	Kind   string `cbor:"kind"`
	Preset string `cbor:"preset"`
	Handle string `cbor:"handle"`
}

// ChannelStatus counts the traffic on one request channel.
type ChannelStatus struct {
	Kind      string `cbor:"kind"`
	Address   string `cbor:"address"`
	Supported bool   `cbor:"supported"`
	Requests  uint64 `cbor:"requests"`
	Failures  uint64 `cbor:"failures"`
}

type channelCounters struct {
	requests uint64
	failures uint64
}

// snapshot captures the bridge state. Called from the dispatch
// goroutine only.
func (b *Bridge) snapshot() *Status {
	origin, _ := b.scene.Origin()
	status := &Status{
		SessionID:      b.session.ID,
		Initialized:    b.session.Initialized,
		Connected:      b.scene.Connected(),
		Scene:          b.scene.Scene(),
		SceneLoads:     b.scene.Loads(),
		SceneResets:    b.scene.Resets(),
		OriginNorthing: origin.Northing,
		OriginEasting:  origin.Easting,
		SimTime:        b.session.SimTime,
		InitialRosTime: b.session.InitialRosTime,
		CurrentRosTime: b.session.CurrentRosTime,
		RealtimeFactor: b.session.RealtimeFactor,
		StepTime:       b.session.StepTime,
	}
	for _, entity := range b.registry.Entities() {
		status.Entities = append(status.Entities, EntityStatus{
			Name:   entity.Name,
			Kind:   entity.Kind.String(),
			Preset: entity.Preset,
			Handle: entity.Handle,
		})
	}
	return status
}

// RegisterControlActions adds the "status" action, which returns the
// latest snapshot, to a control socket server.
func RegisterControlActions(server *service.SocketServer, dispatcher *Dispatcher) {
	server.Handle("status", func(ctx context.Context, raw []byte) (any, error) {
		status := dispatcher.Status()
		if status == nil {
			return nil, errors.New("bridge has not started")
		}
		return status, nil
	})
}

// FetchStatus calls the "status" action through client.
func FetchStatus(ctx context.Context, client *service.Client) (*Status, error) {
	var status Status
	if err := client.Call(ctx, "status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func channelStatus(kind simapi.Kind, address string, counters channelCounters) ChannelStatus {
	return ChannelStatus{
		Kind:      kind.String(),
		Address:   address,
		Supported: kind.Supported(),
		Requests:  counters.requests,
		Failures:  counters.failures,
	}
}
