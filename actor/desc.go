package actor

import "github.com/go-gl/mathgl/mgl64"

// RigidBodyDesc holds the initial parameters of a body, consumed once by
// World.CreateBody.
type RigidBodyDesc struct {
	Transform         Transform
	GravityEnabled    bool
	BodyType          BodyType
	Velocity          Velocity
	AngularInertia    mgl64.Mat3
	Mass              float64
	LocalCenterOfMass mgl64.Vec3

	LinearDamping  float64
	AngularDamping float64
}

// NewRigidBodyDesc returns a descriptor for a dynamic body of mass 1 at the origin.
func NewRigidBodyDesc() RigidBodyDesc {
	return RigidBodyDesc{
		Transform: NewTransform(),
		BodyType:  BodyTypeDynamic,
		Mass:      1.0,
	}
}
