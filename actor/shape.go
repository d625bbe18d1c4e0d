package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Shape gives the mass properties of a solid of uniform density, centred on
// the body origin. It is not used for collisions.
type Shape interface {
	// ComputeMass calculates the mass of the shape given a density
	ComputeMass(density float64) float64
	// ComputeInertia returns the local inertia tensor for the given mass
	ComputeInertia(mass float64) mgl64.Mat3
}

// Box is defined by its half-extents (half-width, half-height, half-depth)
type Box struct {
	HalfExtents mgl64.Vec3
}

// ComputeMass calculates mass data for the box
func (b *Box) ComputeMass(density float64) float64 {
	// Volume = 8 * hx * hy * hz (full dimensions are 2*halfExtents)
	volume := 8.0 * b.HalfExtents.X() * b.HalfExtents.Y() * b.HalfExtents.Z()

	return density * volume
}

func (b *Box) ComputeInertia(mass float64) mgl64.Mat3 {
	x := b.HalfExtents.X() * 2
	y := b.HalfExtents.Y() * 2
	z := b.HalfExtents.Z() * 2

	// I = (m/12) * (dimension1² + dimension2²)
	factor := mass / 12.0

	return mgl64.Diag3(mgl64.Vec3{
		factor * (y*y + z*z),
		factor * (x*x + z*z),
		factor * (x*x + y*y),
	})
}

type Sphere struct {
	Radius float64
}

// ComputeMass calculates mass data for the sphere
func (s *Sphere) ComputeMass(density float64) float64 {
	// Volume of sphere = (4/3) * π * r³
	volume := (4.0 / 3.0) * math.Pi * math.Pow(s.Radius, 3)

	return density * volume
}

func (s *Sphere) ComputeInertia(mass float64) mgl64.Mat3 {
	// I = (2/5) * m * r², the same on every axis
	i := (2.0 / 5.0) * mass * s.Radius * s.Radius

	return mgl64.Diag3(mgl64.Vec3{i, i, i})
}

// Cylinder is a solid cylinder whose axis is the local Y axis.
type Cylinder struct {
	Radius     float64
	HalfHeight float64
}

func (c *Cylinder) ComputeMass(density float64) float64 {
	volume := math.Pi * c.Radius * c.Radius * 2 * c.HalfHeight

	return density * volume
}

func (c *Cylinder) ComputeInertia(mass float64) mgl64.Mat3 {
	h := c.HalfHeight * 2
	r2 := c.Radius * c.Radius
	side := mass * (3*r2 + h*h) / 12.0

	return mgl64.Diag3(mgl64.Vec3{side, mass * r2 / 2.0, side})
}

// MassProperties returns the mass and local inertia of shape filled with density.
func MassProperties(shape Shape, density float64) Inertia {
	mass := shape.ComputeMass(density)
	return Inertia{Linear: mass, Angular: shape.ComputeInertia(mass)}
}
