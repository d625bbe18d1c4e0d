package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/akmonengine/feathersync/actor"
	"github.com/akmonengine/feathersync/bodies"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// Scene lists the bodies to spawn at start-up.
type Scene struct {
	Bodies []BodySpec `yaml:"bodies"`
}

// BodySpec describes one body. Omitted fields keep the builder defaults.
type BodySpec struct {
	Name            string     `yaml:"name"`
	Type            string     `yaml:"type"`
	Mass            *float64   `yaml:"mass,omitempty"`
	Gravity         bool       `yaml:"gravity"`
	Velocity        [3]float64 `yaml:"velocity"`
	AngularVelocity [3]float64 `yaml:"angular_velocity"`
	// Inertia is the diagonal of the local inertia tensor
	Inertia [3]float64 `yaml:"inertia"`
	// Shape derives mass and inertia when they are omitted
	Shape         *ShapeSpec `yaml:"shape,omitempty"`
	Density       float64    `yaml:"density"`
	CenterOfMass  [3]float64 `yaml:"center_of_mass"`
	LockRotations [3]bool    `yaml:"lock_rotations"`

	Position [3]float64 `yaml:"position"`
	// Rotation holds Euler angles in degrees, applied X then Y then Z
	Rotation [3]float64 `yaml:"rotation"`

	// Force is applied once, on the first tick
	Force  [3]float64 `yaml:"force"`
	Torque [3]float64 `yaml:"torque"`
}

// ShapeSpec names exactly one solid.
type ShapeSpec struct {
	Box      *[3]float64   `yaml:"box,omitempty"`
	Sphere   *float64      `yaml:"sphere,omitempty"`
	Cylinder *CylinderSpec `yaml:"cylinder,omitempty"`
}

type CylinderSpec struct {
	Radius     float64 `yaml:"radius"`
	HalfHeight float64 `yaml:"half_height"`
}

func (s ShapeSpec) shape() (actor.Shape, error) {
	var shapes []actor.Shape
	if s.Box != nil {
		shapes = append(shapes, &actor.Box{HalfExtents: mgl64.Vec3(*s.Box)})
	}
	if s.Sphere != nil {
		shapes = append(shapes, &actor.Sphere{Radius: *s.Sphere})
	}
	if s.Cylinder != nil {
		shapes = append(shapes, &actor.Cylinder{Radius: s.Cylinder.Radius, HalfHeight: s.Cylinder.HalfHeight})
	}

	if len(shapes) != 1 {
		return nil, fmt.Errorf("%w: shape needs exactly one of box, sphere, cylinder", ErrInvalidConfig)
	}
	return shapes[0], nil
}

// DecodeScene reads a YAML scene.
func DecodeScene(r io.Reader) (*Scene, error) {
	var s Scene
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode scene: %w", err)
	}

	for i, b := range s.Bodies {
		if _, ok := actor.ParseBodyType(b.bodyType()); !ok {
			return nil, fmt.Errorf("%w: bodies[%d] (%s): unknown type %q", ErrInvalidConfig, i, b.Name, b.Type)
		}
		if b.Shape == nil {
			continue
		}
		if _, err := b.Shape.shape(); err != nil {
			return nil, fmt.Errorf("bodies[%d] (%s): %w", i, b.Name, err)
		}
		if b.Mass == nil && b.Density <= 0 {
			return nil, fmt.Errorf("%w: bodies[%d] (%s): shape needs a mass or a positive density", ErrInvalidConfig, i, b.Name)
		}
	}
	return &s, nil
}

// LoadScene reads the scene file at path.
func LoadScene(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open scene: %w", err)
	}
	defer f.Close()

	return DecodeScene(f)
}

func (b BodySpec) bodyType() string {
	if b.Type == "" {
		return actor.BodyTypeDynamic.String()
	}
	return b.Type
}

// Body builds the PhysicsBody described by b, with its initial force queued.
// A shape fills in the mass and inertia that b leaves out.
func (b BodySpec) Body() bodies.PhysicsBody {
	status, _ := actor.ParseBodyType(b.bodyType())

	inertia := mgl64.Diag3(mgl64.Vec3(b.Inertia))
	mass := b.Mass
	if b.Shape != nil {
		if shape, err := b.Shape.shape(); err == nil {
			props := actor.MassProperties(shape, b.Density)
			if mass != nil {
				props = actor.Inertia{Linear: *mass, Angular: shape.ComputeInertia(*mass)}
			}
			mass = &props.Linear
			if b.Inertia == ([3]float64{}) {
				inertia = props.Angular
			}
		}
	}

	builder := bodies.NewBuilder(status).
		GravityEnabled(b.Gravity).
		Velocity(actor.Velocity{
			Linear:  mgl64.Vec3(b.Velocity),
			Angular: mgl64.Vec3(b.AngularVelocity),
		}).
		AngularInertia(inertia).
		LocalCenterOfMass(mgl64.Vec3(b.CenterOfMass)).
		RotationsKinematic(actor.AxisLocks(b.LockRotations))
	if mass != nil {
		builder = builder.Mass(*mass)
	}

	body := builder.Build()
	body.ApplyExternalForce(actor.Force{
		Linear:  mgl64.Vec3(b.Force),
		Angular: mgl64.Vec3(b.Torque),
	})
	return body
}

// Transform returns the initial placement described by b.
func (b BodySpec) Transform() actor.Transform {
	rotation := mgl64.AnglesToQuat(
		mgl64.DegToRad(b.Rotation[0]),
		mgl64.DegToRad(b.Rotation[1]),
		mgl64.DegToRad(b.Rotation[2]),
		mgl64.XYZ,
	)
	return actor.NewTransformAt(mgl64.Vec3(b.Position), rotation)
}
