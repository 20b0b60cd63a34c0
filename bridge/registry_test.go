// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/oddrunner/simbridge/coordinate"
	"github.com/oddrunner/simbridge/simulator"
)

func TestRegistryEgoRouting(t *testing.T) {
	ctx := context.Background()
	engine := newFakeEngine()
	registry := NewRegistry()

	ego, err := registry.SpawnEgo(ctx, engine, "hero", "Lexus", coordinate.AgentState{})
	if err != nil {
		t.Fatalf("SpawnEgo: %v", err)
	}
	agent, _ := engine.agent(ego.Handle)
	if agent.agentType != simulator.AgentTypeEgo {
		t.Errorf("agent type = %v, want ego", agent.agentType)
	}

	for _, name := range []string{"ego", "hero"} {
		entity, ok := registry.Lookup(name)
		if !ok || entity.Handle != ego.Handle {
			t.Errorf("Lookup(%q) = %+v, %v; want the ego", name, entity, ok)
		}
	}

	_, err = registry.SpawnAgent(ctx, engine, "ego", KindNPC, []string{"Sedan"}, coordinate.AgentState{})
	if !errors.Is(err, ErrDuplicateEntity) {
		t.Errorf("NPC named ego: error = %v, want ErrDuplicateEntity", err)
	}
	_, err = registry.SpawnEgo(ctx, engine, "other", "Lexus", coordinate.AgentState{})
	if !errors.Is(err, ErrDuplicateEntity) {
		t.Errorf("second ego: error = %v, want ErrDuplicateEntity", err)
	}
}

func TestRegistryUnknownNames(t *testing.T) {
	ctx := context.Background()
	engine := newFakeEngine()
	registry := NewRegistry()

	if _, err := registry.Despawn(ctx, engine, "ghost"); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("Despawn: error = %v, want ErrUnknownEntity", err)
	}
	if _, err := registry.Despawn(ctx, engine, EgoName); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("Despawn ego: error = %v, want ErrUnknownEntity", err)
	}
	if err := registry.UpdateStatus(ctx, engine, "ghost", coordinate.AgentState{}); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("UpdateStatus: error = %v, want ErrUnknownEntity", err)
	}
	if len(engine.callLog()) != 0 {
		t.Errorf("engine was called: %v", engine.callLog())
	}
}

func TestRegistryFailedSpawnIsNotRegistered(t *testing.T) {
	ctx := context.Background()
	engine := newFakeEngine()
	engine.failAdd = errEngine
	registry := NewRegistry()

	if _, err := registry.SpawnAgent(ctx, engine, "npc1", KindNPC, []string{"Sedan"}, coordinate.AgentState{}); !errors.Is(err, errEngine) {
		t.Fatalf("error = %v, want the engine error", err)
	}
	if registry.Len() != 0 {
		t.Errorf("failed spawn registered")
	}
	if _, err := registry.SpawnAgent(ctx, engine, "npc2", KindNPC, nil, coordinate.AgentState{}); err == nil {
		t.Error("spawn with an empty palette succeeded")
	}
}

func TestRegistryEntitiesAndReset(t *testing.T) {
	ctx := context.Background()
	engine := newFakeEngine()
	registry := NewRegistry()
	palette := []string{"Bob"}

	for _, name := range []string{"zed", "alice", "mike"} {
		if _, err := registry.SpawnAgent(ctx, engine, name, KindPedestrian, palette, coordinate.AgentState{}); err != nil {
			t.Fatalf("SpawnAgent(%s): %v", name, err)
		}
	}
	if _, err := registry.SpawnEgo(ctx, engine, "ego", "Lexus", coordinate.AgentState{}); err != nil {
		t.Fatalf("SpawnEgo: %v", err)
	}

	var names []string
	for _, entity := range registry.Entities() {
		names = append(names, entity.Name)
	}
	if want := []string{"ego", "alice", "mike", "zed"}; !slices.Equal(names, want) {
		t.Errorf("Entities = %v, want %v", names, want)
	}

	calls := len(engine.callLog())
	registry.Reset()
	if registry.Len() != 0 || len(registry.Entities()) != 0 {
		t.Error("Reset left entities behind")
	}
	if len(engine.callLog()) != calls {
		t.Error("Reset called the engine")
	}
}
