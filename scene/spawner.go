package scene

import (
	"fmt"

	"github.com/milk9111/arena/ecs"
	"github.com/milk9111/arena/ecs/component"
	"go.uber.org/zap"
)

// InstanceID identifies one instantiation of a scene asset in a world.
type InstanceID uint64

type instance struct {
	handle   Handle
	spawned  bool
	err      error
	entities []ecs.Entity
}

// Spawner turns loaded scene assets into entities. It runs as a system so
// instantiation always happens at a tick boundary.
type Spawner struct {
	assets    *AssetServer
	log       *zap.Logger
	next      InstanceID
	instances map[InstanceID]*instance
}

func NewSpawner(assets *AssetServer, log *zap.Logger) *Spawner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Spawner{
		assets:    assets,
		log:       log.Named("spawner"),
		instances: make(map[InstanceID]*instance),
	}
}

// Spawn queues an instance of h. Entities appear on a later Update.
func (s *Spawner) Spawn(h Handle) InstanceID {
	s.next++
	s.instances[s.next] = &instance{handle: h}
	return s.next
}

// Update publishes finished loads and instantiates every pending instance
// whose asset is ready.
func (s *Spawner) Update(w *ecs.World) {
	s.assets.Poll()
	for id, inst := range s.instances {
		if inst.spawned || inst.err != nil {
			continue
		}
		sc, err := s.assets.Scene(inst.handle)
		if IsTransient(err) {
			continue
		}
		if err != nil {
			inst.err = err
			continue
		}
		if err := s.instantiate(w, id, inst, sc); err != nil {
			inst.err = fmt.Errorf("%w: instantiate: %w", ErrLoadFailed, err)
			removed := s.discard(w, inst)
			s.log.Error("scene instantiate failed",
				zap.Uint64("instance", uint64(id)),
				zap.Int("discarded", removed),
				zap.Error(err),
			)
		}
	}
}

func (s *Spawner) instantiate(w *ecs.World, id InstanceID, inst *instance, sc *Scene) error {
	tag := component.SceneInstance{ID: uint64(id)}
	root := w.CreateEntity()
	inst.entities = append(inst.entities, root)
	if err := ecs.Add(w, root, component.NameComponent, component.Name{Value: sc.Name}); err != nil {
		return err
	}
	if err := ecs.Add(w, root, component.TransformComponent, component.IdentityTransform()); err != nil {
		return err
	}
	if err := ecs.Add(w, root, component.SceneInstanceComponent, tag); err != nil {
		return err
	}

	spawned := make(map[int]bool, len(sc.Nodes))
	var spawnNode func(idx int, parent ecs.Entity) error
	spawnNode = func(idx int, parent ecs.Entity) error {
		if idx < 0 || idx >= len(sc.Nodes) {
			return fmt.Errorf("node index %d out of range", idx)
		}
		if spawned[idx] {
			return fmt.Errorf("%w: node %d reached twice", ErrNodeGraph, idx)
		}
		spawned[idx] = true
		node := sc.Nodes[idx]
		e := w.CreateEntity()
		inst.entities = append(inst.entities, e)
		if node.Name != "" {
			if err := ecs.Add(w, e, component.NameComponent, component.Name{Value: node.Name}); err != nil {
				return err
			}
		}
		if err := ecs.Add(w, e, component.TransformComponent, node.Transform); err != nil {
			return err
		}
		if err := ecs.Add(w, e, component.SceneInstanceComponent, tag); err != nil {
			return err
		}
		if node.HasExtras {
			if err := ecs.Add(w, e, component.NodeExtrasComponent, component.NodeExtras{Extras: node.Extras}); err != nil {
				return err
			}
		}
		if err := ecs.SetParent(w, e, parent); err != nil {
			return err
		}

		for _, p := range node.Primitives {
			if p < 0 || p >= len(sc.Meshes) {
				return fmt.Errorf("node %q: primitive %d out of range", node.Name, p)
			}
			prim := w.CreateEntity()
			inst.entities = append(inst.entities, prim)
			if err := ecs.Add(w, prim, component.TransformComponent, component.IdentityTransform()); err != nil {
				return err
			}
			if err := ecs.Add(w, prim, component.SceneInstanceComponent, tag); err != nil {
				return err
			}
			if err := ecs.Add(w, prim, component.MeshRefComponent, component.MeshRef{Handle: sc.Meshes[p]}); err != nil {
				return err
			}
			if err := ecs.SetParent(w, prim, e); err != nil {
				return err
			}
		}
		for _, c := range node.Children {
			if err := spawnNode(c, e); err != nil {
				return err
			}
		}
		return nil
	}

	for _, r := range sc.Roots {
		if err := spawnNode(r, root); err != nil {
			return err
		}
	}
	inst.spawned = true
	s.log.Debug("scene instantiated",
		zap.Uint64("instance", uint64(id)),
		zap.String("scene", sc.Name),
		zap.Int("entities", len(inst.entities)),
	)
	return nil
}

// discard destroys whatever a failed instantiation managed to create.
func (s *Spawner) discard(w *ecs.World, inst *instance) int {
	removed := 0
	for _, e := range inst.entities {
		if w.DestroyEntity(e) {
			removed++
		}
	}
	inst.entities = nil
	return removed
}

// InstanceEntities lists the entities of an instance. It returns ErrNotReady
// until the instance exists and an ErrLoadFailed error once it never will.
func (s *Spawner) InstanceEntities(id InstanceID) ([]ecs.Entity, error) {
	inst, ok := s.instances[id]
	if !ok {
		return nil, ErrUnknownInstance
	}
	if inst.err != nil {
		return nil, inst.err
	}
	if !inst.spawned {
		return nil, ErrNotReady
	}
	return inst.entities, nil
}

// Despawn forgets an instance. Its entities are owned by whoever tagged them
// and are not touched here.
func (s *Spawner) Despawn(id InstanceID) {
	delete(s.instances, id)
}

// Load forwards to the asset server so a Spawner alone can serve a map load.
func (s *Spawner) Load(path string) Handle {
	return s.assets.Load(path)
}

// Unload forwards to the asset server.
func (s *Spawner) Unload(h Handle) {
	s.assets.Unload(h)
}

func (s *Spawner) Assets() *AssetServer {
	return s.assets
}
