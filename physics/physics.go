// Package physics realises synthesized colliders in a chipmunk space. Map
// geometry is 3D; the space works on the ground plane, so every triangle is
// projected onto world X/Z.
package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/arena/config"
	"github.com/milk9111/arena/ecs"
	"github.com/milk9111/arena/ecs/component"
	"github.com/milk9111/arena/extras"
	"go.uber.org/zap"
)

const (
	collisionTypeSolid cp.CollisionType = iota + 1
	collisionTypeSensor
)

// degenerateArea is the projected area below which a triangle is treated as
// edge-on and becomes a segment.
const degenerateArea = 1e-6

type bodyInfo struct {
	body     *cp.Body
	shapes   []*cp.Shape
	polys    int
	segments int
	owned    bool // body is ours, not the space's static body
	start    cp.Vector
	origin   mgl32.Vec3
}

// System mirrors Collider components into a cp.Space and steps it.
type System struct {
	space *cp.Space
	dt    float64
	log   *zap.Logger

	entities map[ecs.Entity]*bodyInfo
	owners   map[*cp.Shape]ecs.Entity
}

// NewSystem builds a space from cfg. tickRate is the number of steps per
// second.
func NewSystem(cfg config.PhysicsConfig, tickRate int, log *zap.Logger) *System {
	if log == nil {
		log = zap.NewNop()
	}
	if tickRate <= 0 {
		tickRate = 60
	}
	space := cp.NewSpace()
	space.Iterations = uint(max(cfg.Iterations, 1))
	// the space's Y axis is world Z, so this drifts bodies across the floor
	space.SetGravity(cp.Vector{X: 0, Y: cfg.Gravity})
	return &System{
		space:    space,
		dt:       1.0 / float64(tickRate),
		log:      log.Named("physics"),
		entities: make(map[ecs.Entity]*bodyInfo),
		owners:   make(map[*cp.Shape]ecs.Entity),
	}
}

func (s *System) Space() *cp.Space {
	if s == nil {
		return nil
	}
	return s.space
}

func (s *System) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	s.cleanupEntities(w)
	s.syncEntities(w)
	s.space.Step(s.dt)
	s.syncTransforms(w)
}

// Body returns the body backing e, if e has been realised.
func (s *System) Body(e ecs.Entity) (*cp.Body, bool) {
	info, ok := s.entities[e]
	if !ok {
		return nil, false
	}
	return info.body, true
}

// Shapes returns the shapes realised for e.
func (s *System) Shapes(e ecs.Entity) []*cp.Shape {
	if info, ok := s.entities[e]; ok {
		return info.shapes
	}
	return nil
}

// Owner returns the entity a shape was built for.
func (s *System) Owner(shape *cp.Shape) (ecs.Entity, bool) {
	e, ok := s.owners[shape]
	return e, ok
}

// Len is the number of realised entities.
func (s *System) Len() int {
	return len(s.entities)
}

func (s *System) syncEntities(w *ecs.World) {
	for _, e := range w.Query(component.ColliderComponent.Kind()) {
		if _, ok := s.entities[e]; ok {
			continue
		}
		col, _ := ecs.Get(w, e, component.ColliderComponent)
		if col.Shape.Empty() {
			continue
		}
		kind := extras.RigidBodyStatic
		if rb, ok := ecs.Get(w, e, component.RigidBodyComponent); ok {
			kind = rb.Kind
		}
		info := s.createBodyInfo(w, e, col, kind)
		if len(info.shapes) == 0 {
			s.log.Warn("collider has no area on the ground plane", zap.Stringer("entity", e))
		}
		s.entities[e] = info
	}
}

func (s *System) createBodyInfo(w *ecs.World, e ecs.Entity, col component.Collider, kind extras.RigidBodyKind) *bodyInfo {
	info := &bodyInfo{}
	switch {
	case kind == extras.RigidBodyDynamic:
		info.body = cp.NewBody(0, 0)
		info.owned = true
	case kind.Kinematic():
		info.body = cp.NewKinematicBody()
		info.owned = true
	default:
		info.body = s.space.StaticBody
	}
	if info.owned {
		s.space.AddBody(info.body)
	}

	world := WorldMatrix(w, e)
	verts := make([]cp.Vector, len(col.Shape.Vertices))
	for i, v := range col.Shape.Vertices {
		verts[i] = project(world, v)
	}

	for _, tri := range col.Shape.Triangles {
		a, b, c := verts[tri[0]], verts[tri[1]], verts[tri[2]]
		var shape *cp.Shape
		area := b.Sub(a).Cross(c.Sub(a)) / 2
		switch {
		case math.Abs(area) > degenerateArea:
			// cp wants counter-clockwise convex polygons
			if area < 0 {
				b, c = c, b
			}
			shape = cp.NewPolyShapeRaw(info.body, 3, []cp.Vector{a, b, c}, 0)
			info.polys++
		default:
			p, q, ok := longestEdge(a, b, c)
			if !ok {
				continue
			}
			shape = cp.NewSegment(info.body, p, q, 0)
			info.segments++
		}
		if col.Kind == extras.ColliderSensor {
			shape.SetSensor(true)
			shape.SetCollisionType(collisionTypeSensor)
		} else {
			shape.SetCollisionType(collisionTypeSolid)
		}
		shape.SetDensity(col.Density)
		shape.SetFriction(0.7)
		s.space.AddShape(shape)
		info.shapes = append(info.shapes, shape)
		s.owners[shape] = e
	}

	if kind == extras.RigidBodyDynamic && info.body.Mass() <= 0 {
		// flat on the ground plane, nothing to derive a mass from
		info.body.SetMass(1)
		info.body.SetMoment(1)
	}
	info.start = info.body.Position()
	if t, ok := ecs.Get(w, e, component.TransformComponent); ok {
		info.origin = t.Translation
	}
	s.log.Debug("collider realised",
		zap.Stringer("entity", e),
		zap.Stringer("body", kind),
		zap.Int("polys", info.polys),
		zap.Int("segments", info.segments),
	)
	return info
}

// syncTransforms moves dynamic and kinematic entities by the distance their
// body travelled on the ground plane.
func (s *System) syncTransforms(w *ecs.World) {
	for e, info := range s.entities {
		if !info.owned {
			continue
		}
		t, ok := ecs.Get(w, e, component.TransformComponent)
		if !ok {
			continue
		}
		d := info.body.Position().Sub(info.start)
		t.Translation = mgl32.Vec3{
			info.origin.X() + float32(d.X),
			info.origin.Y(),
			info.origin.Z() + float32(d.Y),
		}
		_ = ecs.Add(w, e, component.TransformComponent, t)
	}
}

// cleanupEntities drops bodies whose entity died or lost its collider.
func (s *System) cleanupEntities(w *ecs.World) {
	for e, info := range s.entities {
		if w.IsAlive(e) && ecs.Has(w, e, component.ColliderComponent) {
			continue
		}
		s.removeEntity(e, info)
	}
}

func (s *System) removeEntity(e ecs.Entity, info *bodyInfo) {
	for _, shape := range info.shapes {
		s.space.RemoveShape(shape)
		delete(s.owners, shape)
	}
	if info.owned {
		s.space.RemoveBody(info.body)
	}
	delete(s.entities, e)
}

// Reset removes every realised body.
func (s *System) Reset() {
	for e, info := range s.entities {
		s.removeEntity(e, info)
	}
}

// WorldMatrix composes e's transform with those of its ancestors.
func WorldMatrix(w *ecs.World, e ecs.Entity) mgl32.Mat4 {
	m := mgl32.Ident4()
	seen := 0
	for cur, ok := e, true; ok; cur, ok = ecs.ParentOf(w, cur) {
		if t, has := ecs.Get(w, cur, component.TransformComponent); has {
			m = t.Matrix().Mul4(m)
		}
		if seen++; seen > 1<<16 {
			break
		}
	}
	return m
}

func project(m mgl32.Mat4, v mgl32.Vec3) cp.Vector {
	p := mgl32.TransformCoordinate(v, m)
	return cp.Vector{X: float64(p.X()), Y: float64(p.Z())}
}

// longestEdge returns the two furthest apart corners of a flat triangle.
func longestEdge(a, b, c cp.Vector) (cp.Vector, cp.Vector, bool) {
	p, q, best := a, b, a.DistanceSq(b)
	if d := b.DistanceSq(c); d > best {
		p, q, best = b, c, d
	}
	if d := a.DistanceSq(c); d > best {
		p, q, best = a, c, d
	}
	return p, q, best > degenerateArea
}
