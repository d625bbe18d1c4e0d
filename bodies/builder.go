package bodies

import (
	"github.com/akmonengine/feathersync/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// DefaultMass is the mass given by NewBuilder.
const DefaultMass = 1.2

// Builder is the recommended way to create a PhysicsBody.
//
//	body := bodies.NewBuilder(actor.BodyTypeDynamic).
//		GravityEnabled(true).
//		Velocity(actor.LinearVelocity(1, 1, 1)).
//		AngularInertia(mgl64.Diag3(mgl64.Vec3{3, 3, 3})).
//		Mass(1.3).
//		Build()
type Builder struct {
	gravityEnabled     bool
	bodyStatus         actor.BodyType
	velocity           actor.Velocity
	angularInertia     mgl64.Mat3
	mass               float64
	localCenterOfMass  mgl64.Vec3
	rotationsKinematic actor.AxisLocks
}

// NewBuilder starts a body of the given status with gravity disabled, zero
// velocity and inertia, DefaultMass, centre of mass at the origin and no
// rotation locks.
func NewBuilder(status actor.BodyType) Builder {
	return Builder{
		bodyStatus: status,
		mass:       DefaultMass,
	}
}

func (b Builder) GravityEnabled(gravityEnabled bool) Builder {
	b.gravityEnabled = gravityEnabled
	return b
}

func (b Builder) BodyStatus(status actor.BodyType) Builder {
	b.bodyStatus = status
	return b
}

func (b Builder) Velocity(velocity actor.Velocity) Builder {
	b.velocity = velocity
	return b
}

func (b Builder) AngularInertia(angularInertia mgl64.Mat3) Builder {
	b.angularInertia = angularInertia
	return b
}

func (b Builder) Mass(mass float64) Builder {
	b.mass = mass
	return b
}

func (b Builder) LocalCenterOfMass(localCenterOfMass mgl64.Vec3) Builder {
	b.localCenterOfMass = localCenterOfMass
	return b
}

func (b Builder) RotationsKinematic(rotationsKinematic actor.AxisLocks) Builder {
	b.rotationsKinematic = rotationsKinematic
	return b
}

// LockRotations sets all three rotation axes kinematic, or none.
func (b Builder) LockRotations(lockRotations bool) Builder {
	b.rotationsKinematic = actor.AllAxes(lockRotations)
	return b
}

// Build returns a PhysicsBody with no engine handle and no pending force.
func (b Builder) Build() PhysicsBody {
	return PhysicsBody{
		GravityEnabled:     b.gravityEnabled,
		BodyStatus:         b.bodyStatus,
		Velocity:           b.velocity,
		AngularInertia:     b.angularInertia,
		Mass:               b.mass,
		LocalCenterOfMass:  b.localCenterOfMass,
		RotationsKinematic: b.rotationsKinematic,
	}
}
