package mapload

import (
	"image/color"

	"github.com/milk9111/arena/ecs"
	"github.com/milk9111/arena/ecs/component"
	"github.com/milk9111/arena/extras"
	"github.com/milk9111/arena/geometry"
	"go.uber.org/zap"
)

// DefaultDensity is the collider density applied when none is configured.
const DefaultDensity = 400.0

// ColliderDebugColor is the debug colour of a freshly attached collider.
var ColliderDebugColor = color.NRGBA{R: 255, G: 165, B: 0, A: 255}

// MeshSource resolves mesh handles. *geometry.Store implements it.
type MeshSource interface {
	Get(h geometry.MeshHandle) (*geometry.Mesh, bool)
}

// Synthesizer attaches physics components to mesh nodes from their group's
// metadata.
type Synthesizer struct {
	meshes  MeshSource
	density float64
	log     *zap.Logger
}

func NewSynthesizer(meshes MeshSource, density float64, log *zap.Logger) *Synthesizer {
	if density <= 0 {
		density = DefaultDensity
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Synthesizer{meshes: meshes, density: density, log: log}
}

// Synthesize applies ex to child. It returns false without touching child
// when the child's mesh is not available yet; the caller retries on a later
// tick. Bad metadata or geometry is logged and only drops the affected
// attachment. A synthesized child is marked and skipped from then on.
func (s *Synthesizer) Synthesize(w *ecs.World, child ecs.Entity, ex extras.Extras, nodeName string) bool {
	if ecs.Has(w, child, component.PhysicsSynthesizedComponent) {
		return true
	}
	desc := ex.Decode()

	var mesh *geometry.Mesh
	if desc.Collider.OK() {
		ref, ok := ecs.Get(w, child, component.MeshRefComponent)
		if !ok {
			return false
		}
		if mesh, ok = s.meshes.Get(ref.Handle); !ok {
			return false
		}
	}

	if desc.RigidBody.Present {
		if desc.RigidBody.Err != nil {
			s.warn(nodeName, extras.FieldRigidBody, ex.RigidBody, desc.RigidBody.Err)
		} else {
			_ = ecs.Add(w, child, component.RigidBodyComponent, component.RigidBody{Kind: desc.RigidBody.Value})
		}
	}

	if desc.Collider.Present {
		if desc.Collider.Err != nil {
			s.warn(nodeName, extras.FieldCollider, ex.Collider, desc.Collider.Err)
		} else if shape, err := geometry.ExtractTriMesh(mesh); err != nil {
			s.warn(nodeName, "mesh", &mesh.Name, err)
		} else {
			_ = ecs.Add(w, child, component.ColliderComponent, component.Collider{
				Kind:    desc.Collider.Value,
				Shape:   shape,
				Density: s.density,
			})
			_ = ecs.Add(w, child, component.DebugColliderComponent, component.DebugCollider{Color: ColliderDebugColor})
			_ = ecs.Add(w, child, component.BulletHolesComponent, component.BulletHoles{})
		}
	}

	if desc.DebugColor.Present {
		if desc.DebugColor.Err != nil {
			s.warn(nodeName, extras.FieldDebugColor, ex.DebugColor, desc.DebugColor.Err)
		} else {
			_ = ecs.Add(w, child, component.DebugColliderComponent, component.DebugCollider{Color: desc.DebugColor.Value})
		}
	}

	_ = ecs.Add(w, child, component.PhysicsSynthesizedComponent, component.PhysicsSynthesized{})
	return true
}

func (s *Synthesizer) warn(node, field string, value *string, err error) {
	v := ""
	if value != nil {
		v = *value
	}
	s.log.Warn("skipping node metadata",
		zap.String("node", node),
		zap.String("field", field),
		zap.String("value", v),
		zap.Error(err),
	)
}

// PhysicsEntities returns the entities that carry both a rigid body and a
// collider.
func PhysicsEntities(w *ecs.World) []ecs.Entity {
	return w.Query(component.RigidBodyComponent.Kind(), component.ColliderComponent.Kind())
}
