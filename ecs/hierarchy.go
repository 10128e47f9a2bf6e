package ecs

import (
	"errors"

	"github.com/milk9111/arena/ecs/component"
)

var ErrHierarchyCycle = errors.New("ecs: parent would create a cycle")

// Parent links a child to the entity that owns it.
type Parent struct {
	Entity Entity
}

// Children lists the entities owned by a parent, in insertion order.
type Children struct {
	Entities []Entity
}

var (
	ParentComponent   = component.NewComponent[Parent]()
	ChildrenComponent = component.NewComponent[Children]()
)

// SetParent attaches child under parent, detaching it from any previous
// parent first.
func SetParent(w *World, child, parent Entity) error {
	if !w.IsAlive(child) || !w.IsAlive(parent) {
		return component.ErrEntityNotAlive
	}
	for p := parent; p.Valid(); {
		if p == child {
			return ErrHierarchyCycle
		}
		next, ok := Get(w, p, ParentComponent)
		if !ok {
			break
		}
		p = next.Entity
	}
	if old, ok := Get(w, child, ParentComponent); ok {
		if old.Entity == parent {
			return nil
		}
		detach(w, old.Entity, child)
	}
	if err := Add(w, child, ParentComponent, Parent{Entity: parent}); err != nil {
		return err
	}
	kids, _ := Get(w, parent, ChildrenComponent)
	kids.Entities = append(append([]Entity(nil), kids.Entities...), child)
	return Add(w, parent, ChildrenComponent, kids)
}

// ChildrenOf returns the live children of e.
func ChildrenOf(w *World, e Entity) []Entity {
	kids, ok := Get(w, e, ChildrenComponent)
	if !ok {
		return nil
	}
	out := make([]Entity, 0, len(kids.Entities))
	for _, c := range kids.Entities {
		if w.IsAlive(c) {
			out = append(out, c)
		}
	}
	return out
}

// ParentOf returns e's parent, if any.
func ParentOf(w *World, e Entity) (Entity, bool) {
	p, ok := Get(w, e, ParentComponent)
	if !ok || !w.IsAlive(p.Entity) {
		return 0, false
	}
	return p.Entity, true
}

// DespawnRecursive destroys root and everything it owns. Children are
// released depth-first from the owned Children lists; the root is detached
// from its own parent. It returns the number of destroyed entities.
func DespawnRecursive(w *World, root Entity) int {
	if !w.IsAlive(root) {
		return 0
	}
	if p, ok := ParentOf(w, root); ok {
		detach(w, p, root)
	}
	destroyed := 0
	stack := []Entity{root}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if kids, ok := Get(w, e, ChildrenComponent); ok {
			stack = append(stack, kids.Entities...)
		}
		if w.DestroyEntity(e) {
			destroyed++
		}
	}
	return destroyed
}

func detach(w *World, parent, child Entity) {
	kids, ok := Get(w, parent, ChildrenComponent)
	if !ok {
		return
	}
	out := make([]Entity, 0, len(kids.Entities))
	for _, c := range kids.Entities {
		if c != child {
			out = append(out, c)
		}
	}
	_ = Add(w, parent, ChildrenComponent, Children{Entities: out})
}
