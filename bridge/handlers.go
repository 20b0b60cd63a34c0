// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oddrunner/simbridge/coordinate"
	"github.com/oddrunner/simbridge/lib/config"
	"github.com/oddrunner/simbridge/simapi"
)

// HandlerFunc serves one request. Ordinary failures are reported in the
// returned Response; a non-nil error is always fatal.
type HandlerFunc func(ctx context.Context, request []byte) (simapi.Response, error)

// Options configures a Bridge.
type Options struct {
	Simulator config.SimulatorConfig
	Presets   config.PresetsConfig

	// Dial and Probe default to SimulatorDialer and TCPProber.
	Dial  Dialer
	Probe Prober

	// Logger receives structured log output. If nil, slog.Default() is
	// used.
	Logger *slog.Logger
}

// Bridge holds the session state and serves the ten request kinds.
// It is not safe for concurrent use: the Dispatcher calls it from a
// single goroutine.
type Bridge struct {
	settings config.SimulatorConfig
	presets  config.PresetsConfig
	logger   *slog.Logger

	scene    *SceneManager
	session  Session
	registry *Registry
	table    map[simapi.Kind]HandlerFunc
}

// New creates a Bridge that is not yet connected.
func New(options Options) *Bridge {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bridge{
		settings: options.Simulator,
		presets:  options.Presets,
		logger:   logger,
		scene:    NewSceneManager(options.Simulator, options.Dial, options.Probe, logger),
		registry: NewRegistry(),
	}
	b.table = b.handlers()
	return b
}

// handlers is the fixed kind-to-handler table.
func (b *Bridge) handlers() map[simapi.Kind]HandlerFunc {
	return map[simapi.Kind]HandlerFunc{
		simapi.KindInitialize:            b.initialize,
		simapi.KindUpdateFrame:           b.updateFrame,
		simapi.KindUpdateSensorFrame:     b.notImplemented(simapi.KindUpdateSensorFrame),
		simapi.KindSpawnVehicleEntity:    b.spawnVehicle,
		simapi.KindSpawnPedestrianEntity: b.spawnPedestrian,
		simapi.KindSpawnMiscObjectEntity: b.notImplemented(simapi.KindSpawnMiscObjectEntity),
		simapi.KindDespawnEntity:         b.despawn,
		simapi.KindUpdateEntityStatus:    b.updateEntityStatus,
		simapi.KindAttachLidarSensor:     b.notImplemented(simapi.KindAttachLidarSensor),
		simapi.KindAttachDetectionSensor: b.notImplemented(simapi.KindAttachDetectionSensor),
	}
}

// Start connects to the simulator and loads the configured scene. Every
// failure here is fatal.
func (b *Bridge) Start(ctx context.Context) error {
	if err := b.scene.SetupConnection(ctx); err != nil {
		return Fatal(err)
	}
	if err := b.scene.LoadConfiguredScene(ctx); err != nil {
		return Fatal(err)
	}
	return nil
}

// Handle runs the handler for kind.
func (b *Bridge) Handle(ctx context.Context, kind simapi.Kind, request []byte) (simapi.Response, error) {
	handler, ok := b.table[kind]
	if !ok {
		return simapi.Failed(fmt.Sprintf("no handler for %v", kind)), nil
	}
	return handler(ctx, request)
}

// SoftReset clears the session and forgets every entity. The simulator
// connection is kept.
func (b *Bridge) SoftReset() {
	b.session.SoftReset()
	b.registry.Reset()
}

// Terminate stops the simulation and returns reason marked fatal.
func (b *Bridge) Terminate(ctx context.Context, reason error) error {
	return b.scene.Terminate(ctx, reason)
}

// Close stops the simulation and closes the simulator connection.
func (b *Bridge) Close(ctx context.Context) error {
	return b.scene.Close(ctx)
}

// Session returns a copy of the current session.
func (b *Bridge) Session() Session { return b.session }

// Registry returns the entity registry.
func (b *Bridge) Registry() *Registry { return b.registry }

// Scene returns the scene manager.
func (b *Bridge) Scene() *SceneManager { return b.scene }

func malformed(kind simapi.Kind, err error) simapi.Response {
	return simapi.Failed(fmt.Sprintf("malformed %s request: %v", kind.Operation(), err))
}

// failure turns err into a reply, or passes it up when it is fatal.
func failure(err error) (simapi.Response, error) {
	if IsFatal(err) {
		return simapi.Response{}, err
	}
	return simapi.Failed(err.Error()), nil
}

func (b *Bridge) initialize(ctx context.Context, raw []byte) (simapi.Response, error) {
	var request simapi.InitializeRequest
	if err := request.Unmarshal(raw); err != nil {
		return malformed(simapi.KindInitialize, err), nil
	}

	b.SoftReset()
	if err := b.scene.SetupConnection(ctx); err != nil {
		return failure(err)
	}
	if err := b.scene.LoadConfiguredScene(ctx); err != nil {
		return failure(err)
	}
	b.session.Begin(request.RealtimeFactor, request.StepTime)

	description := fmt.Sprintf("succeed to initialize simulation, realtime factor %v, step time %v seconds.",
		request.RealtimeFactor, request.StepTime)
	b.logger.Info("simulation initialized",
		"session", b.session.ID,
		"scene", b.scene.Scene(),
		"realtime_factor", request.RealtimeFactor,
		"step_time", request.StepTime,
	)
	return simapi.Succeeded(description), nil
}

func (b *Bridge) updateFrame(ctx context.Context, raw []byte) (simapi.Response, error) {
	var request simapi.UpdateFrameRequest
	if err := request.Unmarshal(raw); err != nil {
		return malformed(simapi.KindUpdateFrame, err), nil
	}
	if !b.session.Initialized {
		return simapi.Failed("simulator have not initialized yet."), nil
	}
	engine := b.scene.Engine()
	if engine == nil {
		return simapi.Failed(ErrNotConnected.Error()), nil
	}

	b.session.RecordFrame(request.CurrentTime, request.CurrentRosTime.Seconds())
	events, err := engine.Run(ctx, b.session.StepTime)
	if err != nil {
		return simapi.Failed(fmt.Sprintf("running simulation: %v", err)), nil
	}
	b.logger.Debug("frame updated",
		"sim_time", b.session.SimTime,
		"ros_time", b.session.ElapsedRosTime(),
		"events", events,
	)
	return simapi.Succeeded("succeed to update frame"), nil
}

func (b *Bridge) notImplemented(kind simapi.Kind) HandlerFunc {
	return func(ctx context.Context, raw []byte) (simapi.Response, error) {
		if _, err := simapi.DecodeRequest(kind, raw); err != nil {
			return malformed(kind, err), nil
		}
		// Sensor frames arrive every step; the others once per scenario.
		if kind == simapi.KindUpdateSensorFrame {
			b.logger.Debug("request kind not implemented", "kind", kind)
		} else {
			b.logger.Warn("request kind not implemented", "kind", kind)
		}
		return simapi.NotImplemented(kind), nil
	}
}

func (b *Bridge) spawnVehicle(ctx context.Context, raw []byte) (simapi.Response, error) {
	var request simapi.SpawnVehicleEntityRequest
	if err := request.Unmarshal(raw); err != nil {
		return malformed(simapi.KindSpawnVehicleEntity, err), nil
	}
	engine := b.scene.Engine()
	if engine == nil {
		return simapi.Failed(ErrNotConnected.Error()), nil
	}

	name := request.Parameters.Name
	state := coordinate.InitialAgentState(request.Parameters.BoundingBox.Center)
	var (
		entity Entity
		err    error
	)
	if request.IsEgo || name == EgoName {
		preset, presetErr := b.settings.RequireEgoVehicle()
		if presetErr != nil {
			return simapi.Response{}, Fatal(presetErr)
		}
		entity, err = b.registry.SpawnEgo(ctx, engine, name, preset, state)
	} else {
		entity, err = b.registry.SpawnAgent(ctx, engine, name, KindNPC, b.presets.Vehicles, state)
	}
	if err != nil {
		return failure(err)
	}
	return b.spawned(entity), nil
}

func (b *Bridge) spawnPedestrian(ctx context.Context, raw []byte) (simapi.Response, error) {
	var request simapi.SpawnPedestrianEntityRequest
	if err := request.Unmarshal(raw); err != nil {
		return malformed(simapi.KindSpawnPedestrianEntity, err), nil
	}
	engine := b.scene.Engine()
	if engine == nil {
		return simapi.Failed(ErrNotConnected.Error()), nil
	}

	state := coordinate.InitialAgentState(request.Parameters.BoundingBox.Center)
	entity, err := b.registry.SpawnAgent(ctx, engine, request.Parameters.Name, KindPedestrian, b.presets.Pedestrians, state)
	if err != nil {
		return failure(err)
	}
	return b.spawned(entity), nil
}

func (b *Bridge) spawned(entity Entity) simapi.Response {
	b.logger.Info("entity spawned",
		"name", entity.Name,
		"kind", entity.Kind,
		"preset", entity.Preset,
		"uid", entity.Handle,
	)
	return simapi.Succeeded(fmt.Sprintf("spawned %v %q as %s", entity.Kind, entity.Name, entity.Preset))
}

func (b *Bridge) despawn(ctx context.Context, raw []byte) (simapi.Response, error) {
	var request simapi.DespawnEntityRequest
	if err := request.Unmarshal(raw); err != nil {
		return malformed(simapi.KindDespawnEntity, err), nil
	}
	if _, known := b.registry.Lookup(request.Name); !known {
		return simapi.Failed(fmt.Sprintf("despawning %q: %v", request.Name, ErrUnknownEntity)), nil
	}
	engine := b.scene.Engine()
	if engine == nil {
		return simapi.Failed(ErrNotConnected.Error()), nil
	}

	entity, err := b.registry.Despawn(ctx, engine, request.Name)
	if err != nil {
		return failure(err)
	}
	b.logger.Info("entity despawned", "name", entity.Name, "kind", entity.Kind)
	return simapi.Succeeded(fmt.Sprintf("successfully despawned agent %s", request.Name)), nil
}

func (b *Bridge) updateEntityStatus(ctx context.Context, raw []byte) (simapi.Response, error) {
	var request simapi.UpdateEntityStatusRequest
	if err := request.Unmarshal(raw); err != nil {
		return malformed(simapi.KindUpdateEntityStatus, err), nil
	}
	engine := b.scene.Engine()
	_, hasEgo := b.registry.Ego()
	origin, hasOrigin := b.scene.Origin()
	if engine == nil || !hasEgo || !hasOrigin {
		return simapi.Failed(""), nil
	}

	for _, status := range request.Status {
		state := origin.AgentState(status.Pose, status.ActionStatus.Twist)
		if err := b.registry.UpdateStatus(ctx, engine, status.Name, state); err != nil {
			return failure(err)
		}
	}
	return simapi.Succeeded(""), nil
}
