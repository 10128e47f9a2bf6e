package component

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/arena/extras"
	"github.com/milk9111/arena/geometry"
)

// RigidBody asks the physics world for a body of the given kind.
type RigidBody struct {
	Kind extras.RigidBodyKind
}

var RigidBodyComponent = NewComponent[RigidBody]()

// Collider is a triangle-mesh collision shape. Density drives the mass of
// dynamic bodies.
type Collider struct {
	Kind    extras.ColliderKind
	Shape   geometry.TriMesh
	Density float64
}

var ColliderComponent = NewComponent[Collider]()

// DebugCollider is the colour debug drawing uses for an entity's shapes.
type DebugCollider struct {
	Color color.NRGBA
}

var DebugColliderComponent = NewComponent[DebugCollider]()

// BulletHoles collects impact points on a collider surface.
type BulletHoles struct {
	Points []mgl32.Vec3
}

var BulletHolesComponent = NewComponent[BulletHoles]()
