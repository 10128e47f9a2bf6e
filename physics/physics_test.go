package physics

import (
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/arena/config"
	"github.com/milk9111/arena/ecs"
	"github.com/milk9111/arena/ecs/component"
	"github.com/milk9111/arena/extras"
	"github.com/milk9111/arena/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func cube(t *testing.T) geometry.TriMesh {
	t.Helper()
	m := geometry.NewMesh("cube").SetPositions([][3]float32{
		{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
		{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
	})
	m.Indices = geometry.IndicesU32([]uint32{
		0, 2, 1, 0, 3, 2,
		4, 5, 6, 4, 6, 7,
		0, 1, 5, 0, 5, 4,
		3, 7, 6, 3, 6, 2,
		0, 4, 7, 0, 7, 3,
		1, 2, 6, 1, 6, 5,
	})
	tm, err := geometry.ExtractTriMesh(m)
	require.NoError(t, err)
	return tm
}

func spawnCollider(t *testing.T, w *ecs.World, kind extras.ColliderKind, body *extras.RigidBodyKind) ecs.Entity {
	t.Helper()
	e := w.CreateEntity()
	require.NoError(t, ecs.Add(w, e, component.TransformComponent, component.IdentityTransform()))
	require.NoError(t, ecs.Add(w, e, component.ColliderComponent, component.Collider{Kind: kind, Shape: cube(t), Density: 400}))
	if body != nil {
		require.NoError(t, ecs.Add(w, e, component.RigidBodyComponent, component.RigidBody{Kind: *body}))
	}
	return e
}

func newSystem(t *testing.T) *System {
	return NewSystem(config.Defaults().Physics, 60, zaptest.NewLogger(t))
}

func TestCubeProjectsToGroundPlane(t *testing.T) {
	w := ecs.NewWorld()
	static := extras.RigidBodyStatic
	e := spawnCollider(t, w, extras.ColliderSolid, &static)

	s := newSystem(t)
	s.Update(w)

	require.Equal(t, 1, s.Len())
	shapes := s.Shapes(e)
	// top and bottom faces keep their area, the four sides are edge-on
	assert.Len(t, shapes, 12)
	info := s.entities[e]
	assert.Equal(t, 4, info.polys)
	assert.Equal(t, 8, info.segments)

	body, ok := s.Body(e)
	require.True(t, ok)
	assert.Same(t, s.Space().StaticBody, body)
	for _, sh := range shapes {
		owner, ok := s.Owner(sh)
		require.True(t, ok)
		assert.Equal(t, e, owner)
		assert.False(t, sh.Sensor())
	}

	// realised once
	s.Update(w)
	assert.Len(t, s.Shapes(e), 12)
}

func TestSensorAndDynamic(t *testing.T) {
	w := ecs.NewWorld()
	dynamic := extras.RigidBodyDynamic
	sensor := spawnCollider(t, w, extras.ColliderSensor, nil)
	box := spawnCollider(t, w, extras.ColliderSolid, &dynamic)

	s := newSystem(t)
	s.Update(w)

	for _, sh := range s.Shapes(sensor) {
		assert.True(t, sh.Sensor())
	}
	body, ok := s.Body(box)
	require.True(t, ok)
	assert.Equal(t, cp.BODY_DYNAMIC, body.GetType())
	// two 2x2 faces at density 400
	assert.InDelta(t, 2*4*400, body.Mass(), 1e-6)
}

func TestKinematicBody(t *testing.T) {
	w := ecs.NewWorld()
	kin := extras.RigidBodyKinematicVelocity
	e := spawnCollider(t, w, extras.ColliderSolid, &kin)

	s := newSystem(t)
	s.Update(w)
	body, ok := s.Body(e)
	require.True(t, ok)
	assert.Equal(t, cp.BODY_KINEMATIC, body.GetType())

	body.SetVelocity(60, 0)
	s.Update(w)
	tr, _ := ecs.Get(w, e, component.TransformComponent)
	assert.InDelta(t, 1, tr.Translation.X(), 1e-3, "one step at 60Hz moves one unit")
	assert.InDelta(t, 0, tr.Translation.Z(), 1e-6)
}

func TestRemovedCollidersLeaveTheSpace(t *testing.T) {
	w := ecs.NewWorld()
	dynamic := extras.RigidBodyDynamic
	a := spawnCollider(t, w, extras.ColliderSolid, nil)
	b := spawnCollider(t, w, extras.ColliderSolid, &dynamic)

	s := newSystem(t)
	s.Update(w)
	require.Equal(t, 2, s.Len())
	shapes := s.Shapes(a)

	w.DestroyEntity(a)
	ecs.Remove(w, b, component.ColliderComponent)
	s.Update(w)

	assert.Equal(t, 0, s.Len())
	_, ok := s.Owner(shapes[0])
	assert.False(t, ok)
	count := 0
	s.Space().EachShape(func(*cp.Shape) { count++ })
	assert.Zero(t, count)
}

func TestWorldMatrixFollowsParents(t *testing.T) {
	w := ecs.NewWorld()
	parent := w.CreateEntity()
	child := w.CreateEntity()
	pt := component.IdentityTransform()
	pt.Translation = mgl32.Vec3{10, 0, 5}
	ct := component.IdentityTransform()
	ct.Translation = mgl32.Vec3{1, 2, 3}
	require.NoError(t, ecs.Add(w, parent, component.TransformComponent, pt))
	require.NoError(t, ecs.Add(w, child, component.TransformComponent, ct))
	require.NoError(t, ecs.SetParent(w, child, parent))

	got := project(WorldMatrix(w, child), mgl32.Vec3{})
	assert.InDelta(t, 11, got.X, 1e-5)
	assert.InDelta(t, 8, got.Y, 1e-5)
}

func TestShapeColor(t *testing.T) {
	w := ecs.NewWorld()
	static := extras.RigidBodyStatic
	painted := spawnCollider(t, w, extras.ColliderSolid, &static)
	red := color.NRGBA{R: 255, A: 255}
	require.NoError(t, ecs.Add(w, painted, component.DebugColliderComponent, component.DebugCollider{Color: red}))
	sensor := spawnCollider(t, w, extras.ColliderSensor, nil)
	plain := spawnCollider(t, w, extras.ColliderSolid, nil)

	s := newSystem(t)
	s.Update(w)

	assert.Equal(t, red, s.shapeColor(w, s.Shapes(painted)[0]))
	assert.Equal(t, sensorShapeColor, s.shapeColor(w, s.Shapes(sensor)[0]))
	assert.Equal(t, fallbackShapeColor, s.shapeColor(w, s.Shapes(plain)[0]))
	assert.Equal(t, fallbackShapeColor, s.shapeColor(w, nil))
	assert.Equal(t, red, toNRGBA(toFColor(red)))
}

func TestCameraToScreen(t *testing.T) {
	x, y := Camera{X: 10, Y: -5, Zoom: 2}.toScreen(cp.Vector{X: 12, Y: 0})
	assert.Equal(t, 4.0, x)
	assert.Equal(t, 10.0, y)
}

func TestGravityDriftsAlongGroundPlaneZ(t *testing.T) {
	w := ecs.NewWorld()
	dynamic := extras.RigidBodyDynamic
	e := spawnCollider(t, w, extras.ColliderSolid, &dynamic)

	cfg := config.Defaults().Physics
	cfg.Gravity = 10
	s := NewSystem(cfg, 60, zaptest.NewLogger(t))

	for range 30 {
		s.Update(w)
	}
	tr, _ := ecs.Get(w, e, component.TransformComponent)
	assert.Greater(t, tr.Translation.Z(), float32(0), "space Y maps to world Z")
	assert.InDelta(t, 0, tr.Translation.X(), 1e-6)
	assert.InDelta(t, 0, tr.Translation.Y(), 1e-6, "height is never touched")
}
