package bodies

import (
	"errors"

	"github.com/akmonengine/feathersync/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrHandleAlreadySet is returned when a PhysicsBody is bound to a second engine body.
var ErrHandleAlreadySet = errors.New("bodies: engine handle already set")

// BodyWriter is the part of an engine body written before a step.
type BodyWriter interface {
	EnableGravity(enabled bool)
	SetStatus(status actor.BodyType)
	SetVelocity(velocity actor.Velocity)
	SetAngularInertia(inertia mgl64.Mat3)
	SetMass(mass float64)
	SetLocalCenterOfMass(centerOfMass mgl64.Vec3)
	// ApplyForce applies force during the next step only.
	ApplyForce(force actor.Force)
	SetRotationsKinematic(locks actor.AxisLocks)
}

// BodyReader is the part of an engine body read after a step.
type BodyReader interface {
	GravityEnabled() bool
	Status() actor.BodyType
	Velocity() actor.Velocity
	LocalInertia() actor.Inertia
}

// EngineBody is both sides of the contract. *actor.RigidBody implements it.
type EngineBody interface {
	BodyWriter
	BodyReader
}

var _ EngineBody = (*actor.RigidBody)(nil)

// PhysicsBody represents an engine rigid body on the entity side and holds
// everything needed to keep both in sync.
//
// The physical fields mirror the engine: after ApplyToEngine they hold the
// last intended state, after UpdateFromEngine the last simulated state.
type PhysicsBody struct {
	handle             actor.Handle
	GravityEnabled     bool
	BodyStatus         actor.BodyType
	Velocity           actor.Velocity
	AngularInertia     mgl64.Mat3
	Mass               float64
	LocalCenterOfMass  mgl64.Vec3
	RotationsKinematic actor.AxisLocks
	externalForces     actor.Force
}

// Handle returns the engine handle, if the body was created in the engine.
func (b *PhysicsBody) Handle() (actor.Handle, bool) {
	return b.handle, b.handle.IsValid()
}

// SetHandle binds the component to its engine body. It can succeed only once.
func (b *PhysicsBody) SetHandle(handle actor.Handle) error {
	if b.handle.IsValid() {
		return ErrHandleAlreadySet
	}
	b.handle = handle
	return nil
}

// CheckExternalForce returns the force accumulated since the last push,
// without consuming it.
func (b *PhysicsBody) CheckExternalForce() actor.Force {
	return b.externalForces
}

// ApplyExternalForce adds force to the accumulator. It reaches the engine,
// once, on the next ApplyToEngine.
func (b *PhysicsBody) ApplyExternalForce(force actor.Force) *PhysicsBody {
	b.externalForces = b.externalForces.Add(force)
	return b
}

// ToBodyDesc returns the creation descriptor for this body. Placement is
// left to the caller.
func (b *PhysicsBody) ToBodyDesc() actor.RigidBodyDesc {
	desc := actor.NewRigidBodyDesc()
	desc.GravityEnabled = b.GravityEnabled
	desc.BodyType = b.BodyStatus
	desc.Velocity = b.Velocity
	desc.AngularInertia = b.AngularInertia
	desc.Mass = b.Mass
	desc.LocalCenterOfMass = b.LocalCenterOfMass
	return desc
}

// ApplyToEngine pushes the component into rigidBody.
// Note: the accumulated force is drained and applied after mass and inertia
// were written, so the engine sees it with the parameters of this call.
func (b *PhysicsBody) ApplyToEngine(rigidBody BodyWriter) *PhysicsBody {
	rigidBody.EnableGravity(b.GravityEnabled)
	rigidBody.SetStatus(b.BodyStatus)
	rigidBody.SetVelocity(b.Velocity)
	rigidBody.SetAngularInertia(b.AngularInertia)
	rigidBody.SetMass(b.Mass)
	rigidBody.SetLocalCenterOfMass(b.LocalCenterOfMass)
	rigidBody.ApplyForce(b.drainExternalForce())
	rigidBody.SetRotationsKinematic(b.RotationsKinematic)
	return b
}

// UpdateFromEngine pulls the simulated state of rigidBody. The centre of
// mass and rotation locks stay locally authoritative.
func (b *PhysicsBody) UpdateFromEngine(rigidBody BodyReader) *PhysicsBody {
	// These two rarely change engine side, but a status transition can
	b.GravityEnabled = rigidBody.GravityEnabled()
	b.BodyStatus = rigidBody.Status()

	b.Velocity = rigidBody.Velocity()

	localInertia := rigidBody.LocalInertia()
	b.AngularInertia = localInertia.Angular
	b.Mass = localInertia.Linear
	return b
}

func (b *PhysicsBody) drainExternalForce() actor.Force {
	value := b.externalForces
	b.externalForces = actor.Force{}
	return value
}
