// Copyright 2026 The Simbridge Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/oddrunner/simbridge/coordinate"
	"github.com/oddrunner/simbridge/simulator"
)

// EgoName always addresses the ego slot, whatever name the ego was
// spawned under.
const EgoName = "ego"

// EntityKind is what an entity was spawned as.
type EntityKind int

const (
	KindEgo EntityKind = iota
	KindNPC
	KindPedestrian
)

func (k EntityKind) String() string {
	switch k {
	case KindEgo:
		return "ego"
	case KindNPC:
		return "npc"
	case KindPedestrian:
		return "pedestrian"
	}
	return fmt.Sprintf("EntityKind(%d)", int(k))
}

func (k EntityKind) agentType() (simulator.AgentType, error) {
	switch k {
	case KindEgo:
		return simulator.AgentTypeEgo, nil
	case KindNPC:
		return simulator.AgentTypeNPC, nil
	case KindPedestrian:
		return simulator.AgentTypePedestrian, nil
	}
	return 0, fmt.Errorf("no agent type for %v", k)
}

// Entity is a spawned agent. Poses are pushed to the simulator and
// never cached here.
type Entity struct {
	Name   string
	Kind   EntityKind
	Handle string
	Preset string
}

// Registry maps scenario entity names to simulator agents: at most one
// ego plus any number of named NPCs and pedestrians.
type Registry struct {
	ego    *Entity
	agents map[string]Entity
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{agents: make(map[string]Entity)}
}

// Len counts non-ego entities.
func (r *Registry) Len() int { return len(r.agents) }

// Ego returns the ego entity if one is spawned.
func (r *Registry) Ego() (Entity, bool) {
	if r.ego == nil {
		return Entity{}, false
	}
	return *r.ego, true
}

// Lookup resolves name the way despawn and status updates do.
func (r *Registry) Lookup(name string) (Entity, bool) {
	if r.isEgo(name) {
		return r.Ego()
	}
	entity, ok := r.agents[name]
	return entity, ok
}

func (r *Registry) isEgo(name string) bool {
	return name == EgoName || (r.ego != nil && r.ego.Name == name)
}

// SpawnEgo adds the ego vehicle with the given preset.
func (r *Registry) SpawnEgo(ctx context.Context, engine AgentEngine, name, preset string, state coordinate.AgentState) (Entity, error) {
	if r.ego != nil {
		return Entity{}, fmt.Errorf("spawning ego %q: %w (ego is %q)", name, ErrDuplicateEntity, r.ego.Name)
	}
	if _, taken := r.agents[name]; taken {
		return Entity{}, fmt.Errorf("spawning ego %q: %w", name, ErrDuplicateEntity)
	}
	if name == "" {
		name = EgoName
	}
	uid, err := engine.AddAgent(ctx, preset, simulator.AgentTypeEgo, state)
	if err != nil {
		return Entity{}, fmt.Errorf("spawning ego %q: %w", name, err)
	}
	r.ego = &Entity{Name: name, Kind: KindEgo, Handle: uid, Preset: preset}
	return *r.ego, nil
}

// SpawnAgent adds a non-ego entity. Presets are handed out round-robin
// from palette, indexed by the number of non-ego entities already
// registered.
func (r *Registry) SpawnAgent(ctx context.Context, engine AgentEngine, name string, kind EntityKind, palette []string, state coordinate.AgentState) (Entity, error) {
	if kind == KindEgo {
		return Entity{}, errors.New("use SpawnEgo for the ego")
	}
	if name == "" {
		return Entity{}, fmt.Errorf("spawning %v: name is empty", kind)
	}
	if r.isEgo(name) {
		return Entity{}, fmt.Errorf("spawning %v %q: name is reserved for the ego: %w", kind, name, ErrDuplicateEntity)
	}
	if _, taken := r.agents[name]; taken {
		return Entity{}, fmt.Errorf("spawning %v %q: %w", kind, name, ErrDuplicateEntity)
	}
	if len(palette) == 0 {
		return Entity{}, fmt.Errorf("spawning %v %q: no presets configured", kind, name)
	}
	agentType, err := kind.agentType()
	if err != nil {
		return Entity{}, err
	}

	preset := palette[len(r.agents)%len(palette)]
	uid, err := engine.AddAgent(ctx, preset, agentType, state)
	if err != nil {
		return Entity{}, fmt.Errorf("spawning %v %q: %w", kind, name, err)
	}
	entity := Entity{Name: name, Kind: kind, Handle: uid, Preset: preset}
	r.agents[name] = entity
	return entity, nil
}

// Despawn removes name from the simulator and the registry. The entry
// is kept when the simulator refuses the removal.
func (r *Registry) Despawn(ctx context.Context, engine AgentEngine, name string) (Entity, error) {
	entity, ok := r.Lookup(name)
	if !ok {
		return Entity{}, fmt.Errorf("despawning %q: %w", name, ErrUnknownEntity)
	}
	if err := engine.RemoveAgent(ctx, entity.Handle); err != nil {
		return Entity{}, fmt.Errorf("despawning %q: %w", name, err)
	}
	if entity.Kind == KindEgo {
		r.ego = nil
	} else {
		delete(r.agents, entity.Name)
	}
	return entity, nil
}

// UpdateStatus pushes state, already in simulator axes, to name.
func (r *Registry) UpdateStatus(ctx context.Context, engine AgentEngine, name string, state coordinate.AgentState) error {
	entity, ok := r.Lookup(name)
	if !ok {
		return fmt.Errorf("updating %q: %w", name, ErrUnknownEntity)
	}
	if err := engine.SetAgentState(ctx, entity.Handle, state); err != nil {
		return fmt.Errorf("updating %q: %w", name, err)
	}
	return nil
}

// Reset forgets every entity without touching the simulator.
func (r *Registry) Reset() {
	r.ego = nil
	clear(r.agents)
}

// Entities lists the ego first, then the rest sorted by name.
func (r *Registry) Entities() []Entity {
	entities := make([]Entity, 0, len(r.agents)+1)
	if r.ego != nil {
		entities = append(entities, *r.ego)
	}
	start := len(entities)
	for _, entity := range r.agents {
		entities = append(entities, entity)
	}
	slices.SortFunc(entities[start:], func(a, b Entity) int {
		return strings.Compare(a.Name, b.Name)
	})
	return entities
}
