// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/oddrunner/simbridge/coordinate"
	"github.com/oddrunner/simbridge/lib/config"
	"github.com/oddrunner/simbridge/lib/logging"
	"github.com/oddrunner/simbridge/simapi"
	"github.com/oddrunner/simbridge/simulator"
)

var errEngine = errors.New("engine refused")

type fakeAgent struct {
	preset    string
	agentType simulator.AgentType
	state     coordinate.AgentState
}

// fakeEngine is an in-memory simulator. It is locked because the
// dispatcher tests inspect it from the test goroutine.
type fakeEngine struct {
	mu sync.Mutex

	scene   string
	gps     simulator.GPSData
	nextUID int
	agents  map[string]*fakeAgent
	calls   []string
	runs    []float64
	stops   int
	closed  bool

	failLoad   error
	failReset  error
	failRun    error
	failAdd    error
	failRemove error
	failSet    error
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		gps:    simulator.GPSData{Northing: 4140310.25, Easting: 587079.5},
		agents: make(map[string]*fakeAgent),
	}
}

func (e *fakeEngine) record(call string) {
	e.calls = append(e.calls, call)
}

func (e *fakeEngine) CurrentScene(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record("current_scene")
	return e.scene, nil
}

func (e *fakeEngine) LoadScene(ctx context.Context, scene string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record("load_scene " + scene)
	if e.failLoad != nil {
		return e.failLoad
	}
	e.scene = scene
	clear(e.agents)
	return nil
}

func (e *fakeEngine) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record("reset")
	if e.failReset != nil {
		return e.failReset
	}
	clear(e.agents)
	return nil
}

func (e *fakeEngine) Stop(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record("stop")
	e.stops++
	return nil
}

func (e *fakeEngine) Run(ctx context.Context, timeLimit float64) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record("run")
	if e.failRun != nil {
		return 0, e.failRun
	}
	e.runs = append(e.runs, timeLimit)
	return 0, nil
}

func (e *fakeEngine) AddAgent(ctx context.Context, preset string, agentType simulator.AgentType, state coordinate.AgentState) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record("add_agent " + preset)
	if e.failAdd != nil {
		return "", e.failAdd
	}
	e.nextUID++
	uid := fmt.Sprintf("uid-%d", e.nextUID)
	e.agents[uid] = &fakeAgent{preset: preset, agentType: agentType, state: state}
	return uid, nil
}

func (e *fakeEngine) RemoveAgent(ctx context.Context, uid string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record("remove_agent " + uid)
	if e.failRemove != nil {
		return e.failRemove
	}
	if _, ok := e.agents[uid]; !ok {
		return fmt.Errorf("no agent %s", uid)
	}
	delete(e.agents, uid)
	return nil
}

func (e *fakeEngine) SetAgentState(ctx context.Context, uid string, state coordinate.AgentState) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record("set_state " + uid)
	if e.failSet != nil {
		return e.failSet
	}
	agent, ok := e.agents[uid]
	if !ok {
		return fmt.Errorf("no agent %s", uid)
	}
	agent.state = state
	return nil
}

func (e *fakeEngine) MapToGPS(ctx context.Context, transform coordinate.Transform) (simulator.GPSData, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record("map_to_gps")
	return e.gps, nil
}

func (e *fakeEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

func (e *fakeEngine) agent(uid string) (fakeAgent, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	agent, ok := e.agents[uid]
	if !ok {
		return fakeAgent{}, false
	}
	return *agent, true
}

func (e *fakeEngine) callLog() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.calls...)
}

func (e *fakeEngine) count(call string) int {
	count := 0
	for _, recorded := range e.callLog() {
		if recorded == call {
			count++
		}
	}
	return count
}

func (e *fakeEngine) stopCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stops
}

func (e *fakeEngine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

func testSettings() config.SimulatorConfig {
	return config.SimulatorConfig{
		Host:       "sim.test",
		Port:       8181,
		Scene:      "BorregasAve",
		EgoVehicle: "Lexus2016RXHybrid",
	}
}

func testPresets() config.PresetsConfig {
	return config.PresetsConfig{
		Vehicles:    []string{"Sedan", "SUV", "Jeep", "Hatchback"},
		Pedestrians: []string{"Bob", "Zoe"},
	}
}

// newTestBridge returns a bridge wired to engine. dials counts
// connection attempts.
func newTestBridge(t *testing.T, engine *fakeEngine, settings config.SimulatorConfig) (*Bridge, *int) {
	t.Helper()
	dials := new(int)
	b := New(Options{
		Simulator: settings,
		Presets:   testPresets(),
		Dial: func(ctx context.Context, host string, port int) (Engine, error) {
			*dials++
			return engine, nil
		},
		Probe:  func(ctx context.Context, host string, port int) error { return nil },
		Logger: logging.Discard(),
	})
	return b, dials
}

// call runs request through the bridge and fails on a fatal error.
func call(t *testing.T, b *Bridge, request simapi.Request) simapi.Response {
	t.Helper()
	response, err := b.Handle(context.Background(), request.Kind(), request.Marshal())
	if err != nil {
		t.Fatalf("%v: unexpected fatal error: %v", request.Kind(), err)
	}
	return response
}

func initialize(t *testing.T, b *Bridge) {
	t.Helper()
	response := call(t, b, &simapi.InitializeRequest{RealtimeFactor: 1, StepTime: 0.02})
	if !response.Result.Success {
		t.Fatalf("Initialize failed: %q", response.Result.Description)
	}
}

func spawnVehicle(name string, isEgo bool, center coordinate.Vector) *simapi.SpawnVehicleEntityRequest {
	return &simapi.SpawnVehicleEntityRequest{
		Parameters: simapi.VehicleParameters{
			Name:        name,
			BoundingBox: simapi.BoundingBox{Center: center, Dimensions: coordinate.Vector{X: 4.5, Y: 1.8, Z: 1.5}},
		},
		IsEgo: isEgo,
	}
}

func spawnPedestrian(name string) *simapi.SpawnPedestrianEntityRequest {
	return &simapi.SpawnPedestrianEntityRequest{
		Parameters: simapi.PedestrianParameters{Name: name},
	}
}
