package mapload

import (
	"errors"
	"fmt"

	"github.com/milk9111/arena/ecs"
	"github.com/milk9111/arena/ecs/component"
	"github.com/milk9111/arena/scene"
	"github.com/milk9111/arena/state"
	"go.uber.org/zap"
)

// Instances enumerates the entities of a scene instance.
type Instances interface {
	InstanceEntities(id scene.InstanceID) ([]ecs.Entity, error)
}

// Walker tags the entities of an in-flight map load and hands mesh nodes to
// the synthesizer. It is polled once per tick and is safe to run any number
// of times over the same graph.
type Walker struct {
	instances Instances
	synth     *Synthesizer
	maxTicks  int
	log       *zap.Logger
}

// NewWalker builds a walker. maxTicks bounds how many unresolved passes a
// load may take; 0 means no bound.
func NewWalker(instances Instances, synth *Synthesizer, maxTicks int, log *zap.Logger) *Walker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Walker{instances: instances, synth: synth, maxTicks: maxTicks, log: log}
}

var (
	pending  = state.Progress{Done: 0, Total: 1}
	resolved = state.Progress{Done: 1, Total: 1}
)

// Walk runs one pass over m's instance. Progress is 1/1 only when the pass
// saw the instance entities, exactly one root is tagged and no mesh node is
// left waiting; otherwise 0/1. A returned error is fatal to the load and is
// also recorded in m.Err.
func (wk *Walker) Walk(w *ecs.World, m *MapData) (state.Progress, error) {
	if m == nil {
		return pending, ErrNoActiveMap
	}
	if m.Err != nil {
		return pending, m.Err
	}

	ents, err := wk.instances.InstanceEntities(m.Instance)
	if errors.Is(err, scene.ErrNotReady) {
		return wk.unresolved(m)
	}
	if err != nil {
		return wk.fail(m, err)
	}

	for _, e := range ents {
		if !w.IsAlive(e) {
			continue
		}
		if _, hasParent := ecs.ParentOf(w, e); !hasParent {
			if err := wk.tagRoot(w, m, e); err != nil {
				return wk.fail(m, err)
			}
		}
		if !ecs.Has(w, e, component.MapObjectComponent) {
			_ = ecs.Add(w, e, component.MapObjectComponent, component.MapObject{})
		}
	}

	waiting := 0
	for _, e := range ents {
		if !w.IsAlive(e) {
			continue
		}
		meta, ok := ecs.Get(w, e, component.NodeExtrasComponent)
		if !ok {
			continue
		}
		children := ecs.ChildrenOf(w, e)
		if len(children) == 0 {
			continue
		}
		name, named := ecs.Get(w, e, component.NameComponent)
		for _, child := range children {
			if !ecs.Has(w, child, component.MeshRefComponent) {
				continue
			}
			nodeName := name.Value
			if !named {
				nodeName = child.String()
			}
			if !wk.synth.Synthesize(w, child, meta.Extras, nodeName) {
				waiting++
			}
		}
	}

	if len(m.Roots) != 1 || waiting > 0 {
		return wk.unresolved(m)
	}
	if !m.Loaded {
		m.Loaded = true
		wk.log.Debug("map loaded",
			zap.String("name", m.Name),
			zap.Int("entities", len(ents)),
			zap.Int("ticks", m.Ticks),
		)
	}
	return resolved, nil
}

// tagRoot claims e as the map root. Claiming the same entity again is a
// no-op; a second distinct root is an error.
func (wk *Walker) tagRoot(w *ecs.World, m *MapData, e ecs.Entity) error {
	for _, r := range m.Roots {
		if r == e {
			return nil
		}
	}
	if len(m.Roots) > 0 {
		return fmt.Errorf("%w: %s already has root %s, found %s", ErrDuplicateRoot, m.Name, m.Roots[0], e)
	}
	if err := ecs.Add(w, e, component.NameComponent, component.Name{Value: m.RootName()}); err != nil {
		return err
	}
	if err := ecs.Add(w, e, component.MapRootComponent, component.MapRoot{}); err != nil {
		return err
	}
	m.Roots = append(m.Roots, e)
	return nil
}

func (wk *Walker) unresolved(m *MapData) (state.Progress, error) {
	m.Ticks++
	if wk.maxTicks > 0 && m.Ticks > wk.maxTicks {
		return wk.fail(m, fmt.Errorf("%w: %s unresolved after %d ticks", ErrLoadStalled, m.Name, wk.maxTicks))
	}
	return pending, nil
}

func (wk *Walker) fail(m *MapData, err error) (state.Progress, error) {
	m.Err = err
	wk.log.Error("map load failed", zap.String("name", m.Name), zap.Error(err))
	return pending, err
}
