package component

import "github.com/go-gl/mathgl/mgl32"

// Transform is an entity's placement relative to its parent.
type Transform struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
}

func IdentityTransform() Transform {
	return Transform{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}
}

// Matrix returns translation * rotation * scale.
func (t Transform) Matrix() mgl32.Mat4 {
	scale := t.Scale
	if scale == (mgl32.Vec3{}) {
		scale = mgl32.Vec3{1, 1, 1}
	}
	rot := t.Rotation
	if rot == (mgl32.Quat{}) {
		rot = mgl32.QuatIdent()
	}
	return mgl32.Translate3D(t.Translation.X(), t.Translation.Y(), t.Translation.Z()).
		Mul4(rot.Mat4()).
		Mul4(mgl32.Scale3D(scale.X(), scale.Y(), scale.Z()))
}

var TransformComponent = NewComponent[Transform]()
