package mapload

import (
	"path/filepath"
	"testing"

	"github.com/milk9111/arena/catalog"
	"github.com/milk9111/arena/ecs"
	"github.com/milk9111/arena/ecs/component"
	"github.com/milk9111/arena/scene"
	"github.com/milk9111/arena/scene/scenetest"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fixture struct {
	w       *ecs.World
	spawner *scene.Spawner
	walker  *Walker
	m       *MapData
	logs    *observer.ObservedLogs
	log     *zap.Logger
}

func selection(t *testing.T, b *scenetest.Builder) catalog.MapSelection {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, b.SaveGLB(filepath.Join(dir, "map.glb")))
	return catalog.MapSelection{
		Name: "Warehouse",
		Path: dir,
		Meta: catalog.Meta{
			Name:         "Warehouse",
			Map:          catalog.MapSpec{Gltf: &catalog.GltfSpec{Path: "map.glb"}},
			AmbientLight: catalog.AmbientLightSpec{Color: "#336699", Brightness: 0.3},
			Sky:          catalog.SkySpec{Preset: "red_sunset", Size: 1000, DayLength: 600, Active: true},
		},
	}
}

// newFixture spawns b as a map; the scene is loaded but not yet
// instantiated, so the first Walk sees nothing.
func newFixture(t *testing.T, b *scenetest.Builder, maxTicks int) *fixture {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	log := zap.New(core)

	w := ecs.NewWorld()
	assets := scene.NewAssetServer("", log)
	spawner := scene.NewSpawner(assets, log)
	m, err := Spawn(w, selection(t, b), spawner, log)
	require.NoError(t, err)
	assets.Wait()

	synth := NewSynthesizer(assets.Meshes(), DefaultDensity, log)
	return &fixture{
		w:       w,
		spawner: spawner,
		walker:  NewWalker(spawner, synth, maxTicks, log),
		m:       m,
		logs:    logs,
		log:     log,
	}
}

// instantiate lets the spawner create the instance entities.
func (f *fixture) instantiate(t *testing.T) []ecs.Entity {
	t.Helper()
	f.spawner.Update(f.w)
	ents, err := f.spawner.InstanceEntities(f.m.Instance)
	require.NoError(t, err)
	return ents
}

func (f *fixture) warnings() []observer.LoggedEntry {
	return f.logs.FilterMessage("skipping node metadata").All()
}

func field(e observer.LoggedEntry, key string) string {
	for _, f := range e.Context {
		if f.Key == key {
			if f.String != "" {
				return f.String
			}
			if err, ok := f.Interface.(error); ok {
				return err.Error()
			}
		}
	}
	return ""
}

// byName finds the live entity with the given Name.
func byName(t *testing.T, w *ecs.World, name string) ecs.Entity {
	t.Helper()
	for _, e := range w.Entities() {
		if n, ok := ecs.Get(w, e, component.NameComponent); ok && n.Value == name {
			return e
		}
	}
	t.Fatalf("no entity named %q", name)
	return 0
}

// meshChild returns the primitive entity under the named node.
func meshChild(t *testing.T, w *ecs.World, node string) ecs.Entity {
	t.Helper()
	for _, c := range ecs.ChildrenOf(w, byName(t, w, node)) {
		if ecs.Has(w, c, component.MeshRefComponent) {
			return c
		}
	}
	t.Fatalf("node %q has no mesh child", node)
	return 0
}

// fakeScenes serves a fixed entity list for graphs the spawner cannot
// produce.
type fakeScenes struct {
	ents      []ecs.Entity
	err       error
	despawned []scene.InstanceID
	unloaded  []scene.Handle
}

func (f *fakeScenes) Load(string) scene.Handle            { return 1 }
func (f *fakeScenes) Unload(h scene.Handle)               { f.unloaded = append(f.unloaded, h) }
func (f *fakeScenes) Spawn(scene.Handle) scene.InstanceID { return 7 }
func (f *fakeScenes) Despawn(id scene.InstanceID)         { f.despawned = append(f.despawned, id) }
func (f *fakeScenes) InstanceEntities(scene.InstanceID) ([]ecs.Entity, error) {
	return f.ents, f.err
}
