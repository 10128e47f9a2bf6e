package extras

// RigidBodyKind selects how the physics world moves a body.
type RigidBodyKind int

const (
	RigidBodyStatic RigidBodyKind = iota + 1
	RigidBodyDynamic
	RigidBodyKinematicPosition
	RigidBodyKinematicVelocity
)

var rigidBodyNames = map[string]RigidBodyKind{
	"Static":                 RigidBodyStatic,
	"Dynamic":                RigidBodyDynamic,
	"Kinematic":              RigidBodyKinematicPosition,
	"KinematicPositionBased": RigidBodyKinematicPosition,
	"KinematicVelocityBased": RigidBodyKinematicVelocity,
}

func (k RigidBodyKind) String() string {
	switch k {
	case RigidBodyStatic:
		return "Static"
	case RigidBodyDynamic:
		return "Dynamic"
	case RigidBodyKinematicPosition:
		return "KinematicPositionBased"
	case RigidBodyKinematicVelocity:
		return "KinematicVelocityBased"
	default:
		return "Unknown"
	}
}

func (k RigidBodyKind) Kinematic() bool {
	return k == RigidBodyKinematicPosition || k == RigidBodyKinematicVelocity
}

// ColliderKind selects whether a shape produces contacts or only overlap
// events.
type ColliderKind int

const (
	ColliderSolid ColliderKind = iota + 1
	ColliderSensor
)

var colliderNames = map[string]ColliderKind{
	"Solid":  ColliderSolid,
	"Sensor": ColliderSensor,
}

func (k ColliderKind) String() string {
	switch k {
	case ColliderSolid:
		return "Solid"
	case ColliderSensor:
		return "Sensor"
	default:
		return "Unknown"
	}
}
