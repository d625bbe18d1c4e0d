package actor

import "github.com/go-gl/mathgl/mgl64"

// BodyType represents the type of rigid body
type BodyType int

const (
	// BodyTypeDynamic bodies are affected by forces, gravity and the solver
	// They have finite mass and can move freely
	BodyTypeDynamic BodyType = iota

	// BodyTypeStatic bodies are immovable and have infinite mass
	// They are not affected by forces or gravity (e.g., ground, walls)
	BodyTypeStatic

	// BodyTypeKinematic bodies move with the velocity they are given
	// Forces and gravity are ignored
	BodyTypeKinematic
)

func (t BodyType) String() string {
	switch t {
	case BodyTypeDynamic:
		return "dynamic"
	case BodyTypeStatic:
		return "static"
	case BodyTypeKinematic:
		return "kinematic"
	default:
		return "unknown"
	}
}

// ParseBodyType is the inverse of BodyType.String.
func ParseBodyType(s string) (BodyType, bool) {
	switch s {
	case "dynamic":
		return BodyTypeDynamic, true
	case "static":
		return BodyTypeStatic, true
	case "kinematic":
		return BodyTypeKinematic, true
	}
	return BodyTypeDynamic, false
}

// Velocity pairs a linear velocity (m/s) and an angular velocity (rad/s).
type Velocity struct {
	Linear  mgl64.Vec3
	Angular mgl64.Vec3
}

// LinearVelocity creates a velocity with no angular part.
func LinearVelocity(x, y, z float64) Velocity {
	return Velocity{Linear: mgl64.Vec3{x, y, z}}
}

// IsZero reports whether both parts are zero.
func (v Velocity) IsZero() bool {
	return v.Linear == (mgl64.Vec3{}) && v.Angular == (mgl64.Vec3{})
}

// Force pairs a linear force (N) and a torque (N⋅m).
type Force struct {
	Linear  mgl64.Vec3
	Angular mgl64.Vec3
}

// LinearForce creates a force with no torque.
func LinearForce(x, y, z float64) Force {
	return Force{Linear: mgl64.Vec3{x, y, z}}
}

// Torque creates a pure torque.
func Torque(x, y, z float64) Force {
	return Force{Angular: mgl64.Vec3{x, y, z}}
}

// Add returns the component-wise sum of f and other.
func (f Force) Add(other Force) Force {
	return Force{
		Linear:  f.Linear.Add(other.Linear),
		Angular: f.Angular.Add(other.Angular),
	}
}

// IsZero reports whether both parts are zero.
func (f Force) IsZero() bool {
	return f.Linear == (mgl64.Vec3{}) && f.Angular == (mgl64.Vec3{})
}

// Inertia is the local inertia of a body: Linear is its mass, Angular its
// inertia tensor in body space.
type Inertia struct {
	Linear  float64
	Angular mgl64.Mat3
}

// AxisLocks flags, per rotation axis (x, y, z), that the solver must not
// drive the angular velocity on that axis.
type AxisLocks [3]bool

// AllAxes returns locks set identically on all three axes.
func AllAxes(locked bool) AxisLocks {
	return AxisLocks{locked, locked, locked}
}

// Handle identifies a body inside a World. The zero value never refers to a body.
type Handle struct {
	index      uint32
	generation uint32
}

// NewHandle is used by the World to issue handles; index is 0-based.
func NewHandle(index, generation uint32) Handle {
	return Handle{index: index + 1, generation: generation}
}

// IsValid reports whether the handle was issued by a World.
// It says nothing about the body still existing.
func (h Handle) IsValid() bool {
	return h.index != 0
}

// Index returns the 0-based slot index.
func (h Handle) Index() uint32 {
	return h.index - 1
}

// Generation returns the slot generation the handle was issued for.
func (h Handle) Generation() uint32 {
	return h.generation
}
