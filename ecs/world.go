package ecs

import (
	"fmt"

	"github.com/milk9111/arena/ecs/component"
)

// System updates a world once per tick.
type System interface {
	Update(w *World)
}

// World owns entities and their components.
type World struct {
	entities entityStore
	stores   map[component.ComponentID]*sparseSet
	events   EventQueue
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	return &World{stores: make(map[component.ComponentID]*sparseSet)}
}

// CreateEntity allocates a new entity.
func (w *World) CreateEntity() Entity {
	return w.entities.create()
}

// DestroyEntity releases an entity and every component attached to it. It
// does not touch children; see DespawnRecursive.
func (w *World) DestroyEntity(e Entity) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	for _, s := range w.stores {
		s.remove(e)
	}
	return w.entities.destroy(e)
}

// IsAlive reports whether an entity handle is valid.
func (w *World) IsAlive(e Entity) bool {
	if w == nil {
		return false
	}
	return w.entities.isAlive(e)
}

// Entities returns every live entity in index order.
func (w *World) Entities() []Entity {
	if w == nil {
		return nil
	}
	return w.entities.list()
}

// AddComponent attaches or replaces the component of the given kind.
func (w *World) AddComponent(e Entity, kind component.Kind, value any) error {
	if w == nil || kind == nil || kind.ID() == 0 {
		return component.ErrInvalidComponentKind
	}
	if value == nil {
		return component.ErrNilComponent
	}
	if !w.entities.isAlive(e) {
		return fmt.Errorf("%w: %s", component.ErrEntityNotAlive, e)
	}
	s := w.stores[kind.ID()]
	if s == nil {
		s = &sparseSet{}
		w.stores[kind.ID()] = s
	}
	s.set(e, value)
	return nil
}

func (w *World) RemoveComponent(e Entity, kind component.Kind) bool {
	if w == nil || kind == nil {
		return false
	}
	return w.stores[kind.ID()].remove(e)
}

func (w *World) HasComponent(e Entity, kind component.Kind) bool {
	if w == nil || kind == nil || !w.entities.isAlive(e) {
		return false
	}
	return w.stores[kind.ID()].has(e)
}

func (w *World) GetComponent(e Entity, kind component.Kind) (any, bool) {
	if w == nil || kind == nil || !w.entities.isAlive(e) {
		return nil, false
	}
	return w.stores[kind.ID()].get(e)
}

// Query returns live entities carrying every listed kind. The smallest store
// drives the iteration, so results follow that store's dense order.
func (w *World) Query(kinds ...component.Kind) []Entity {
	if w == nil || len(kinds) == 0 {
		return nil
	}
	var smallest *sparseSet
	for _, k := range kinds {
		s := w.stores[k.ID()]
		if s.len() == 0 {
			return nil
		}
		if smallest == nil || s.len() < smallest.len() {
			smallest = s
		}
	}
	out := make([]Entity, 0, smallest.len())
	for _, e := range smallest.dense {
		if !w.entities.isAlive(e) {
			continue
		}
		match := true
		for _, k := range kinds {
			if !w.stores[k.ID()].has(e) {
				match = false
				break
			}
		}
		if match {
			out = append(out, e)
		}
	}
	return out
}

// First returns the first live entity carrying kind.
func (w *World) First(kind component.Kind) (Entity, bool) {
	if w == nil || kind == nil {
		return 0, false
	}
	s := w.stores[kind.ID()]
	if s == nil {
		return 0, false
	}
	for _, e := range s.dense {
		if w.entities.isAlive(e) {
			return e, true
		}
	}
	return 0, false
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}
