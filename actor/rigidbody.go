package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type Material struct {
	mass float64

	LinearDamping  float64 // 0.0 - 1.0, typical: 0.01
	AngularDamping float64 // 0.0 - 1.0, typical: 0.05
}

func (material Material) GetMass() float64 {
	return material.mass
}

// inverseMass is 0 for masses the integrator cannot divide by (<= 0, NaN, Inf).
func (material Material) inverseMass() float64 {
	if material.mass <= 0 || math.IsNaN(material.mass) || math.IsInf(material.mass, 0) {
		return 0
	}
	return 1.0 / material.mass
}

// RigidBody represents a rigid body in the physics simulation
type RigidBody struct {
	// Spatial properties
	PreviousTransform Transform
	Transform         Transform

	// Linear motion, of the centre of mass (m/s)
	LinearVelocity mgl64.Vec3

	// Angular motion (rad/s)
	AngularVelocity mgl64.Vec3
	// Inertia tensor in local space
	InertiaLocal        mgl64.Mat3
	InverseInertiaLocal mgl64.Mat3

	localCenterOfMass  mgl64.Vec3
	gravityEnabled     bool
	rotationsKinematic AxisLocks

	accumulatedForce  mgl64.Vec3
	accumulatedTorque mgl64.Vec3

	IsSleeping bool
	SleepTimer float64

	// Physical properties
	Material Material
	BodyType BodyType
}

// NewRigidBodyFromDesc creates a rigid body from a creation descriptor.
func NewRigidBodyFromDesc(desc RigidBodyDesc) *RigidBody {
	transform := desc.Transform
	transform.SetIsometry(transform.Position, transform.Rotation)

	rb := &RigidBody{
		PreviousTransform: transform,
		Transform:         transform,
		LinearVelocity:    desc.Velocity.Linear,
		AngularVelocity:   desc.Velocity.Angular,
		localCenterOfMass: desc.LocalCenterOfMass,
		gravityEnabled:    desc.GravityEnabled,
		BodyType:          desc.BodyType,
		Material: Material{
			mass:           desc.Mass,
			LinearDamping:  desc.LinearDamping,
			AngularDamping: desc.AngularDamping,
		},
	}
	rb.SetAngularInertia(desc.AngularInertia)

	return rb
}

func (rb *RigidBody) TrySleep(dt float64, timethreshold float64, velocityThreshold float64) {
	if rb.BodyType == BodyTypeStatic || rb.IsSleeping {
		return
	}

	if rb.LinearVelocity.Len() < velocityThreshold && rb.AngularVelocity.Len() < velocityThreshold {
		rb.SleepTimer += dt
		if rb.SleepTimer >= timethreshold {
			rb.Sleep()
		}
	} else {
		rb.SleepTimer = 0.0
	}
}

func (rb *RigidBody) Sleep() {
	rb.IsSleeping = true
	rb.SleepTimer = 0.0

	rb.ClearForces()
	rb.LinearVelocity = mgl64.Vec3{}
	rb.AngularVelocity = mgl64.Vec3{}
}

func (rb *RigidBody) Awake() {
	rb.IsSleeping = false
	rb.SleepTimer = 0.0
}

// Integrate advances the body by dt. Accumulated forces are read but not
// cleared: the World clears them once the whole step is done.
func (rb *RigidBody) Integrate(dt float64, gravity mgl64.Vec3) {
	if rb.BodyType == BodyTypeStatic || rb.IsSleeping {
		return
	}

	rb.PreviousTransform = rb.Transform

	if rb.BodyType == BodyTypeDynamic {
		// ========== LINEAR ==========
		inverseMass := rb.Material.inverseMass()
		if rb.gravityEnabled && inverseMass > 0 {
			rb.LinearVelocity = rb.LinearVelocity.Add(gravity.Mul(dt))
		}
		rb.LinearVelocity = rb.LinearVelocity.Add(rb.accumulatedForce.Mul(inverseMass * dt))
		rb.LinearVelocity = rb.LinearVelocity.Mul(math.Exp(-rb.Material.LinearDamping * dt))

		// ========== ANGULAR ==========
		angularAccel := rb.GetInverseInertiaWorld().Mul3x1(rb.accumulatedTorque)
		rb.AngularVelocity = rb.AngularVelocity.Add(rb.freeAxes(angularAccel.Mul(dt)))

		damping := math.Exp(-rb.Material.AngularDamping * dt)
		for axis, locked := range rb.rotationsKinematic {
			if !locked {
				rb.AngularVelocity[axis] *= damping
			}
		}
	}

	// Move the centre of mass, then rotate the body around it
	centerOfMass := rb.Transform.ToWorld(rb.localCenterOfMass).Add(rb.LinearVelocity.Mul(dt))

	omegaQuat := mgl64.Quat{V: rb.AngularVelocity, W: 0}
	qDot := omegaQuat.Mul(rb.Transform.Rotation).Scale(0.5)
	rotation := rb.Transform.Rotation.Add(qDot.Scale(dt)).Normalize()

	rb.Transform.SetIsometry(centerOfMass.Sub(rotation.Rotate(rb.localCenterOfMass)), rotation)
}

// freeAxes zeroes the components of v on the axes whose rotation is kinematic.
func (rb *RigidBody) freeAxes(v mgl64.Vec3) mgl64.Vec3 {
	for axis, locked := range rb.rotationsKinematic {
		if locked {
			v[axis] = 0
		}
	}
	return v
}

// ApplyForce accumulates a one-shot force and torque, consumed by the next
// World step.
func (rb *RigidBody) ApplyForce(force Force) {
	if rb.BodyType == BodyTypeStatic || force.IsZero() {
		return
	}

	rb.Awake()
	rb.accumulatedForce = rb.accumulatedForce.Add(force.Linear)
	rb.accumulatedTorque = rb.accumulatedTorque.Add(force.Angular)
}

// AddForce in N
func (rb *RigidBody) AddForce(force mgl64.Vec3) {
	rb.ApplyForce(Force{Linear: force})
}

// AddTorque in N⋅m
func (rb *RigidBody) AddTorque(torque mgl64.Vec3) {
	rb.ApplyForce(Force{Angular: torque})
}

// AccumulatedForce returns the force and torque waiting for the next step.
func (rb *RigidBody) AccumulatedForce() Force {
	return Force{Linear: rb.accumulatedForce, Angular: rb.accumulatedTorque}
}

func (rb *RigidBody) ClearForces() {
	rb.accumulatedForce = mgl64.Vec3{0, 0, 0}
	rb.accumulatedTorque = mgl64.Vec3{0, 0, 0}
}

func (rb *RigidBody) EnableGravity(enabled bool) {
	if rb.gravityEnabled != enabled {
		rb.gravityEnabled = enabled
		rb.Awake()
	}
}

func (rb *RigidBody) GravityEnabled() bool {
	return rb.gravityEnabled
}

func (rb *RigidBody) SetStatus(status BodyType) {
	if rb.BodyType != status {
		rb.BodyType = status
		rb.Awake()
	}
}

func (rb *RigidBody) Status() BodyType {
	return rb.BodyType
}

func (rb *RigidBody) SetVelocity(velocity Velocity) {
	if rb.LinearVelocity == velocity.Linear && rb.AngularVelocity == velocity.Angular {
		return
	}

	rb.LinearVelocity = velocity.Linear
	rb.AngularVelocity = velocity.Angular
	rb.Awake()
}

func (rb *RigidBody) Velocity() Velocity {
	return Velocity{Linear: rb.LinearVelocity, Angular: rb.AngularVelocity}
}

// SetAngularInertia sets the local inertia tensor. A singular tensor gives a
// zero inverse: the body then ignores torques.
func (rb *RigidBody) SetAngularInertia(inertia mgl64.Mat3) {
	rb.InertiaLocal = inertia
	rb.InverseInertiaLocal = inertia.Inv()
}

func (rb *RigidBody) SetMass(mass float64) {
	rb.Material.mass = mass
}

func (rb *RigidBody) SetLocalCenterOfMass(centerOfMass mgl64.Vec3) {
	rb.localCenterOfMass = centerOfMass
}

func (rb *RigidBody) LocalCenterOfMass() mgl64.Vec3 {
	return rb.localCenterOfMass
}

func (rb *RigidBody) SetRotationsKinematic(locks AxisLocks) {
	rb.rotationsKinematic = locks
}

func (rb *RigidBody) RotationsKinematic() AxisLocks {
	return rb.rotationsKinematic
}

// LocalInertia reports mass and inertia tensor in body space.
func (rb *RigidBody) LocalInertia() Inertia {
	return Inertia{Linear: rb.Material.mass, Angular: rb.InertiaLocal}
}

// SetTransform teleports the body, waking it if the placement changed.
func (rb *RigidBody) SetTransform(transform Transform) {
	if rb.Transform.Position == transform.Position && rb.Transform.Rotation == transform.Rotation {
		return
	}

	rb.Transform.SetIsometry(transform.Position, transform.Rotation)
	rb.PreviousTransform = rb.Transform
	rb.Awake()
}

// GetInertiaWorld returns the inertia tensor in world space
func (rb *RigidBody) GetInertiaWorld() mgl64.Mat3 {
	// I_world = R * I_local * R^T
	R := rb.Transform.Rotation.Mat4().Mat3()
	return R.Mul3(rb.InertiaLocal).Mul3(R.Transpose())
}

// GetInverseInertiaWorld returns the inverse inertia tensor in world space
func (rb *RigidBody) GetInverseInertiaWorld() mgl64.Mat3 {
	if rb.BodyType != BodyTypeDynamic {
		return mgl64.Mat3{0, 0, 0, 0, 0, 0, 0, 0, 0}
	}

	// I_world^(-1) = R * I_local^(-1) * R^T
	R := rb.Transform.Rotation.Mat4().Mat3()
	return R.Mul3(rb.InverseInertiaLocal).Mul3(R.Transpose())
}
