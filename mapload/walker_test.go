package mapload

import (
	"errors"
	"slices"
	"testing"

	"github.com/milk9111/arena/ecs"
	"github.com/milk9111/arena/ecs/component"
	"github.com/milk9111/arena/extras"
	"github.com/milk9111/arena/geometry"
	"github.com/milk9111/arena/scene"
	"github.com/milk9111/arena/scene/scenetest"
	"github.com/milk9111/arena/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestWalkArena(t *testing.T) {
	f := newFixture(t, scenetest.Arena(), 0)

	p, err := f.walker.Walk(f.w, f.m)
	require.NoError(t, err)
	assert.Equal(t, state.Progress{Done: 0, Total: 1}, p, "instance not spawned yet")
	assert.False(t, f.m.Loaded)

	ents := f.instantiate(t)
	p, err = f.walker.Walk(f.w, f.m)
	require.NoError(t, err)
	assert.Equal(t, state.Progress{Done: 1, Total: 1}, p)
	assert.True(t, f.m.Loaded)

	roots := f.w.Query(component.MapRootComponent.Kind())
	require.Len(t, roots, 1)
	assert.Equal(t, []ecs.Entity{roots[0]}, f.m.Roots)
	name, _ := ecs.Get(f.w, roots[0], component.NameComponent)
	assert.Equal(t, "Arena Map(Warehouse)", name.Value)

	for _, e := range ents {
		assert.True(t, ecs.Has(f.w, e, component.MapObjectComponent), "entity %s untagged", e)
	}

	floor := meshChild(t, f.w, "Floor")
	assert.Equal(t, []ecs.Entity{floor}, PhysicsEntities(f.w))
	body, _ := ecs.Get(f.w, floor, component.RigidBodyComponent)
	assert.Equal(t, extras.RigidBodyStatic, body.Kind)
	col, _ := ecs.Get(f.w, floor, component.ColliderComponent)
	assert.Equal(t, extras.ColliderSolid, col.Kind)
	assert.Equal(t, DefaultDensity, col.Density)
	assert.Len(t, col.Shape.Vertices, 8)
	assert.Len(t, col.Shape.Triangles, 12)
	dbg, _ := ecs.Get(f.w, floor, component.DebugColliderComponent)
	assert.Equal(t, ColliderDebugColor, dbg.Color)
	assert.True(t, ecs.Has(f.w, floor, component.BulletHolesComponent))

	trigger := meshChild(t, f.w, "Trigger")
	col, ok := ecs.Get(f.w, trigger, component.ColliderComponent)
	require.True(t, ok)
	assert.Equal(t, extras.ColliderSensor, col.Kind)
	assert.False(t, ecs.Has(f.w, trigger, component.RigidBodyComponent))
	dbg, _ = ecs.Get(f.w, trigger, component.DebugColliderComponent)
	assert.Equal(t, uint8(255), dbg.Color.G, "extras colour overrides the default")
	assert.Equal(t, uint8(0), dbg.Color.R)

	crate := meshChild(t, f.w, "Crate")
	assert.False(t, ecs.Has(f.w, crate, component.ColliderComponent))
	assert.False(t, ecs.Has(f.w, crate, component.PhysicsSynthesizedComponent))

	assert.Empty(t, f.warnings())
}

func tagSnapshot(w *ecs.World) map[string][]ecs.Entity {
	snap := map[string][]ecs.Entity{
		"root":   w.Query(component.MapRootComponent.Kind()),
		"object": w.Query(component.MapObjectComponent.Kind()),
		"body":   w.Query(component.RigidBodyComponent.Kind()),
		"shape":  w.Query(component.ColliderComponent.Kind()),
		"debug":  w.Query(component.DebugColliderComponent.Kind()),
		"done":   w.Query(component.PhysicsSynthesizedComponent.Kind()),
	}
	for _, v := range snap {
		slices.Sort(v)
	}
	return snap
}

func TestWalkIsIdempotent(t *testing.T) {
	b := scenetest.Arena()
	m := b.Cube("Bad")
	b.Roots(b.Node("Bad", m, map[string]any{"rigid_body": "Floaty"}))

	f := newFixture(t, b, 0)
	f.instantiate(t)

	_, err := f.walker.Walk(f.w, f.m)
	require.NoError(t, err)
	once := tagSnapshot(f.w)
	entities := len(f.w.Entities())
	warned := len(f.warnings())
	require.Equal(t, 1, warned)

	for i := 0; i < 5; i++ {
		p, err := f.walker.Walk(f.w, f.m)
		require.NoError(t, err)
		assert.Equal(t, state.Progress{Done: 1, Total: 1}, p)
	}
	assert.Equal(t, once, tagSnapshot(f.w))
	assert.Len(t, f.w.Entities(), entities)
	assert.Len(t, f.warnings(), warned, "no repeated warnings")
	assert.Len(t, f.w.Query(component.MapRootComponent.Kind()), 1)
}

func TestWalkUnparseableMetadata(t *testing.T) {
	cases := []struct {
		name     string
		extras   map[string]any
		field    string
		body     bool
		collider bool
		debug    bool
	}{
		{"bad_rigid_body", map[string]any{"rigid_body": "Wobbly", "collider": "Solid"}, extras.FieldRigidBody, false, true, true},
		{"bad_collider", map[string]any{"rigid_body": "Dynamic", "collider": "Jelly"}, extras.FieldCollider, true, false, false},
		{"lowercase_kind", map[string]any{"collider": "solid"}, extras.FieldCollider, false, false, false},
		{"numeric_kind", map[string]any{"rigid_body": 3.0}, extras.FieldRigidBody, false, false, false},
		{"bad_colour", map[string]any{"debug_color": "#zzz"}, extras.FieldDebugColor, false, false, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b := scenetest.New()
			bad := b.Node("Broken", b.Cube("Broken"), c.extras)
			good := b.Node("Sibling", b.Cube("Sibling"), map[string]any{"rigid_body": "Static", "collider": "Solid"})
			b.Roots(bad, good)

			f := newFixture(t, b, 0)
			f.instantiate(t)
			p, err := f.walker.Walk(f.w, f.m)
			require.NoError(t, err)
			assert.Equal(t, state.Progress{Done: 1, Total: 1}, p, "bad metadata never blocks the load")

			warns := f.warnings()
			require.Len(t, warns, 1)
			assert.Equal(t, "Broken", field(warns[0], "node"))
			assert.Equal(t, c.field, field(warns[0], "field"))

			broken := meshChild(t, f.w, "Broken")
			assert.Equal(t, c.body, ecs.Has(f.w, broken, component.RigidBodyComponent))
			assert.Equal(t, c.collider, ecs.Has(f.w, broken, component.ColliderComponent))
			assert.Equal(t, c.debug, ecs.Has(f.w, broken, component.DebugColliderComponent))

			sibling := meshChild(t, f.w, "Sibling")
			assert.Contains(t, PhysicsEntities(f.w), sibling)
		})
	}
}

func TestWalkGeometryFailures(t *testing.T) {
	b := scenetest.New()
	packed := b.Mesh("Packed", [][3]uint16{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, []uint16{0, 1, 2})
	loose := b.Mesh("Loose", scenetest.CubePositions, nil)
	b.Roots(
		b.Node("Packed", packed, map[string]any{"rigid_body": "Static", "collider": "Solid"}),
		b.Node("Loose", loose, map[string]any{"collider": "Solid", "debug_color": "red"}),
		b.Node("Sibling", b.Cube("Sibling"), map[string]any{"rigid_body": "Dynamic", "collider": "Solid"}),
	)

	f := newFixture(t, b, 0)
	f.instantiate(t)
	p, err := f.walker.Walk(f.w, f.m)
	require.NoError(t, err)
	assert.Equal(t, state.Progress{Done: 1, Total: 1}, p)

	warns := f.warnings()
	require.Len(t, warns, 2)
	nodes := []string{field(warns[0], "node"), field(warns[1], "node")}
	assert.ElementsMatch(t, []string{"Packed", "Loose"}, nodes)
	for _, w := range warns {
		assert.Equal(t, "mesh", field(w, "field"))
	}

	pk := meshChild(t, f.w, "Packed")
	assert.True(t, ecs.Has(f.w, pk, component.RigidBodyComponent), "body survives a bad mesh")
	assert.False(t, ecs.Has(f.w, pk, component.ColliderComponent))

	lo := meshChild(t, f.w, "Loose")
	assert.False(t, ecs.Has(f.w, lo, component.ColliderComponent))
	dbg, ok := ecs.Get(f.w, lo, component.DebugColliderComponent)
	require.True(t, ok, "debug colour is independent of the collider")
	assert.Equal(t, uint8(255), dbg.Color.R)

	assert.Equal(t, []ecs.Entity{meshChild(t, f.w, "Sibling")}, PhysicsEntities(f.w))
}

func TestWalkNodeNameFallsBackToEntity(t *testing.T) {
	b := scenetest.New()
	b.Roots(b.Node("", b.Cube("Anon"), map[string]any{"collider": "Nope"}))

	f := newFixture(t, b, 0)
	f.instantiate(t)
	_, err := f.walker.Walk(f.w, f.m)
	require.NoError(t, err)

	warns := f.warnings()
	require.Len(t, warns, 1)
	child := f.w.Query(component.MeshRefComponent.Kind())[0]
	assert.Equal(t, child.String(), field(warns[0], "node"))
}

func TestWalkProgressNeedsSingleRoot(t *testing.T) {
	w := ecs.NewWorld()
	root := w.CreateEntity()
	child := w.CreateEntity()
	require.NoError(t, ecs.SetParent(w, child, root))

	fake := &fakeScenes{ents: []ecs.Entity{child}}
	wk := NewWalker(fake, NewSynthesizer(geometry.NewStore(), 0, nil), 0, zaptest.NewLogger(t))
	m := &MapData{Name: "Fake", Instance: 7}

	p, err := wk.Walk(w, m)
	require.NoError(t, err)
	assert.Equal(t, state.Progress{Done: 0, Total: 1}, p, "no root observed")
	assert.False(t, m.Loaded)

	fake.ents = []ecs.Entity{root, child}
	p, err = wk.Walk(w, m)
	require.NoError(t, err)
	assert.Equal(t, state.Progress{Done: 1, Total: 1}, p)
	assert.True(t, m.Loaded)
}

func TestWalkDuplicateRoot(t *testing.T) {
	w := ecs.NewWorld()
	a, b := w.CreateEntity(), w.CreateEntity()
	fake := &fakeScenes{ents: []ecs.Entity{a, b}}
	wk := NewWalker(fake, NewSynthesizer(geometry.NewStore(), 0, nil), 0, zaptest.NewLogger(t))
	m := &MapData{Name: "Fake", Instance: 7}

	p, err := wk.Walk(w, m)
	require.ErrorIs(t, err, ErrDuplicateRoot)
	assert.Equal(t, state.Progress{Done: 0, Total: 1}, p)
	require.ErrorIs(t, m.Err, ErrDuplicateRoot)
	assert.Equal(t, []ecs.Entity{a}, m.Roots, "first root is not overwritten")
	assert.False(t, ecs.Has(w, b, component.MapRootComponent))

	_, err = wk.Walk(w, m)
	require.ErrorIs(t, err, ErrDuplicateRoot, "failure is sticky")
}

func TestWalkStallBudget(t *testing.T) {
	w := ecs.NewWorld()
	fake := &fakeScenes{err: scene.ErrNotReady}
	wk := NewWalker(fake, NewSynthesizer(geometry.NewStore(), 0, nil), 3, zaptest.NewLogger(t))
	m := &MapData{Name: "Slow", Instance: 7}

	for i := 0; i < 3; i++ {
		p, err := wk.Walk(w, m)
		require.NoError(t, err)
		assert.Equal(t, state.Progress{Done: 0, Total: 1}, p)
	}
	_, err := wk.Walk(w, m)
	require.ErrorIs(t, err, ErrLoadStalled)
	require.ErrorIs(t, m.Err, ErrLoadStalled)
}

func TestWalkFailedAsset(t *testing.T) {
	w := ecs.NewWorld()
	boom := errors.New("truncated file")
	fake := &fakeScenes{err: errors.Join(scene.ErrLoadFailed, boom)}
	wk := NewWalker(fake, NewSynthesizer(geometry.NewStore(), 0, nil), 0, zaptest.NewLogger(t))
	m := &MapData{Name: "Broken", Instance: 7}

	_, err := wk.Walk(w, m)
	require.ErrorIs(t, err, scene.ErrLoadFailed)
	require.ErrorIs(t, err, boom)
}

// lateMeshes hides every mesh until ready is set.
type lateMeshes struct {
	store *geometry.Store
	ready bool
}

func (l *lateMeshes) Get(h geometry.MeshHandle) (*geometry.Mesh, bool) {
	if !l.ready {
		return nil, false
	}
	return l.store.Get(h)
}

func TestWalkWaitsForMeshes(t *testing.T) {
	f := newFixture(t, scenetest.Arena(), 0)
	late := &lateMeshes{store: f.spawner.Assets().Meshes()}
	f.walker = NewWalker(f.spawner, NewSynthesizer(late, 250, f.log), 0, f.log)
	f.instantiate(t)

	p, err := f.walker.Walk(f.w, f.m)
	require.NoError(t, err)
	assert.Equal(t, state.Progress{Done: 0, Total: 1}, p)
	assert.Empty(t, f.w.Query(component.ColliderComponent.Kind()))
	assert.False(t, f.m.Loaded)

	late.ready = true
	p, err = f.walker.Walk(f.w, f.m)
	require.NoError(t, err)
	assert.Equal(t, state.Progress{Done: 1, Total: 1}, p)
	col, _ := ecs.Get(f.w, meshChild(t, f.w, "Floor"), component.ColliderComponent)
	assert.Equal(t, 250.0, col.Density)
}

func TestWalkMissingFile(t *testing.T) {
	f := newFixture(t, scenetest.Arena(), 0)
	// point a second record at a file that does not exist
	m := &MapData{Name: "Gone", Instance: f.spawner.Spawn(f.spawner.Load("/nonexistent/gone.glb#Scene0"))}
	f.spawner.Assets().Wait()
	f.spawner.Update(f.w)

	_, err := f.walker.Walk(f.w, m)
	require.ErrorIs(t, err, scene.ErrLoadFailed)
}
