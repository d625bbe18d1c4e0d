package feathersync

import (
	"errors"
	"math"
	"testing"

	"github.com/akmonengine/feathersync/actor"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap/zaptest"
)

func newTestWorld(t *testing.T) *World {
	config := DefaultConfig()
	config.SleepTimeThreshold = 0
	return NewWorld(config, zaptest.NewLogger(t))
}

func dynamicDesc(mass float64) actor.RigidBodyDesc {
	desc := actor.NewRigidBodyDesc()
	desc.Mass = mass
	desc.AngularInertia = mgl64.Ident3()
	return desc
}

// =============================================================================
// Handle Tests
// =============================================================================

func TestWorld_CreateBody(t *testing.T) {
	world := newTestWorld(t)

	a := world.CreateBody(dynamicDesc(1))
	b := world.CreateBody(dynamicDesc(2))

	if a == b {
		t.Fatal("CreateBody returned the same handle twice")
	}
	if world.Len() != 2 {
		t.Errorf("Len() = %d, want 2", world.Len())
	}

	body, err := world.Body(b)
	if err != nil {
		t.Fatalf("Body() error = %v", err)
	}
	if body.Material.GetMass() != 2 {
		t.Errorf("GetMass() = %v, want 2", body.Material.GetMass())
	}
}

func TestWorld_ZeroHandle(t *testing.T) {
	world := newTestWorld(t)
	world.CreateBody(dynamicDesc(1))

	if _, err := world.Body(actor.Handle{}); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("Body(zero handle) error = %v, want ErrInvalidHandle", err)
	}
}

func TestWorld_RemoveBody(t *testing.T) {
	world := newTestWorld(t)
	a := world.CreateBody(dynamicDesc(1))
	b := world.CreateBody(dynamicDesc(1))

	if err := world.RemoveBody(a); err != nil {
		t.Fatalf("RemoveBody() error = %v", err)
	}

	if world.Len() != 1 {
		t.Errorf("Len() = %d, want 1", world.Len())
	}
	if _, err := world.Body(a); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("Body(removed) error = %v, want ErrInvalidHandle", err)
	}
	if err := world.RemoveBody(a); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("RemoveBody(removed) error = %v, want ErrInvalidHandle", err)
	}
	if _, err := world.Body(b); err != nil {
		t.Errorf("Body(kept) error = %v", err)
	}
}

func TestWorld_SlotReuseBumpsGeneration(t *testing.T) {
	world := newTestWorld(t)
	old := world.CreateBody(dynamicDesc(1))
	if err := world.RemoveBody(old); err != nil {
		t.Fatal(err)
	}

	reused := world.CreateBody(dynamicDesc(3))

	if reused.Index() != old.Index() {
		t.Errorf("Index() = %d, want reused slot %d", reused.Index(), old.Index())
	}
	if reused.Generation() == old.Generation() {
		t.Error("a reused slot must carry a new generation")
	}
	if _, err := world.Body(old); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("stale handle resolved: %v", err)
	}
}

// =============================================================================
// Step Tests
// =============================================================================

func TestWorld_Step_Gravity(t *testing.T) {
	world := newTestWorld(t)
	desc := dynamicDesc(1)
	desc.GravityEnabled = true
	handle := world.CreateBody(desc)

	world.Step(0.5)

	body, _ := world.Body(handle)
	if math.Abs(body.LinearVelocity.Y()-(-9.81*0.5)) > 1e-12 {
		t.Errorf("LinearVelocity.Y = %v, want %v", body.LinearVelocity.Y(), -9.81*0.5)
	}
}

func TestWorld_Step_NonPositiveDt(t *testing.T) {
	world := newTestWorld(t)
	desc := dynamicDesc(1)
	desc.Velocity = actor.LinearVelocity(1, 0, 0)
	handle := world.CreateBody(desc)

	world.Step(0)
	world.Step(-1)

	body, _ := world.Body(handle)
	if body.Transform.Position != (mgl64.Vec3{}) {
		t.Errorf("Position = %v, want origin", body.Transform.Position)
	}
}

func TestWorld_Step_NonPositiveDtConsumesForces(t *testing.T) {
	world := newTestWorld(t)
	handle := world.CreateBody(dynamicDesc(1))
	body, _ := world.Body(handle)

	body.ApplyForce(actor.LinearForce(3, 0, 0))
	world.Step(0)

	if !body.AccumulatedForce().IsZero() {
		t.Fatalf("AccumulatedForce() = %v after a zero step", body.AccumulatedForce())
	}

	world.Step(1)
	if body.LinearVelocity != (mgl64.Vec3{}) {
		t.Errorf("LinearVelocity = %v, the force should not reach a later step", body.LinearVelocity)
	}
}

func TestWorld_Step_ForceLastsOneStep(t *testing.T) {
	tests := []struct {
		name     string
		substeps int
	}{
		{name: "single step", substeps: 1},
		{name: "four substeps", substeps: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			world := newTestWorld(t)
			world.Substeps = tt.substeps
			handle := world.CreateBody(dynamicDesc(2))
			body, _ := world.Body(handle)

			body.ApplyForce(actor.LinearForce(4, 0, 0))
			world.Step(1)

			// Δv = F/m · dt whatever the substep count
			if math.Abs(body.LinearVelocity.X()-2) > 1e-12 {
				t.Errorf("LinearVelocity.X = %v, want 2", body.LinearVelocity.X())
			}
			if !body.AccumulatedForce().IsZero() {
				t.Errorf("AccumulatedForce() = %v after Step", body.AccumulatedForce())
			}

			world.Step(1)
			if math.Abs(body.LinearVelocity.X()-2) > 1e-12 {
				t.Errorf("LinearVelocity.X = %v after a force-free step, want 2", body.LinearVelocity.X())
			}
		})
	}
}

func TestWorld_Step_ParallelWorkers(t *testing.T) {
	world := newTestWorld(t)
	world.Workers = 4

	handles := make([]actor.Handle, 100)
	for i := range handles {
		desc := dynamicDesc(1)
		desc.Velocity = actor.LinearVelocity(float64(i), 0, 0)
		handles[i] = world.CreateBody(desc)
	}

	world.Step(0.5)

	for i, handle := range handles {
		body, _ := world.Body(handle)
		if math.Abs(body.Transform.Position.X()-float64(i)*0.5) > 1e-12 {
			t.Errorf("body %d at %v, want x = %v", i, body.Transform.Position, float64(i)*0.5)
		}
	}
}

func TestWorld_Step_Sleep(t *testing.T) {
	config := DefaultConfig()
	world := NewWorld(config, zaptest.NewLogger(t))
	handle := world.CreateBody(dynamicDesc(1))
	body, _ := world.Body(handle)

	world.Step(DEFAULT_SLEEP_TIME)

	if !body.IsSleeping {
		t.Fatal("a body at rest should fall asleep after the sleep time")
	}

	body.ApplyForce(actor.LinearForce(1, 0, 0))
	if body.IsSleeping {
		t.Error("ApplyForce should wake the body")
	}
}
