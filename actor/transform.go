package actor

import "github.com/go-gl/mathgl/mgl64"

// Transform represents a rigid placement in 3D space (rotation + translation).
// InverseRotation caches Rotation.Inverse() and is kept in sync by SetIsometry.
type Transform struct {
	Position        mgl64.Vec3
	Rotation        mgl64.Quat
	InverseRotation mgl64.Quat
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position:        mgl64.Vec3{0, 0, 0},
		Rotation:        mgl64.QuatIdent(),
		InverseRotation: mgl64.QuatIdent(),
	}
}

// NewTransformAt creates a transform at position with the given rotation
func NewTransformAt(position mgl64.Vec3, rotation mgl64.Quat) Transform {
	t := Transform{Position: position}
	t.SetIsometry(position, rotation)
	return t
}

// SetIsometry overwrites translation and rotation only.
func (t *Transform) SetIsometry(position mgl64.Vec3, rotation mgl64.Quat) {
	if rotation == (mgl64.Quat{}) {
		rotation = mgl64.QuatIdent()
	}
	t.Position = position
	t.Rotation = rotation
	t.InverseRotation = rotation.Inverse()
}

// ToWorld maps a body-local point into world space.
func (t Transform) ToWorld(local mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(local).Add(t.Position)
}
