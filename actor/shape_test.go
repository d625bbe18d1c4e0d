package actor

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// Helper function pour comparer les matrices 3x3
func mat3Equal(a, b mgl64.Mat3, tolerance float64) bool {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(a.At(i, j)-b.At(i, j)) >= tolerance {
				return false
			}
		}
	}
	return true
}

// ========== INERTIA MATRIX TESTS ==========
func TestBoxComputeInertia(t *testing.T) {
	tests := []struct {
		name         string
		box          *Box
		mass         float64
		expectedDiag mgl64.Vec3 // diagonal elements (ix, iy, iz)
	}{
		{
			name:         "unit cube",
			box:          &Box{HalfExtents: mgl64.Vec3{1, 1, 1}},
			mass:         12.0,                // m/12 = 1.0
			expectedDiag: mgl64.Vec3{8, 8, 8}, // (2*2 + 2*2, 2*2 + 2*2, 2*2 + 2*2)
		},
		{
			name:         "rectangular box 2x3x4",
			box:          &Box{HalfExtents: mgl64.Vec3{2, 3, 4}},
			mass:         12.0,
			expectedDiag: mgl64.Vec3{100, 80, 52}, // (m/12)*(6²+8²), (m/12)*(4²+8²), (m/12)*(4²+6²)
		},
		{
			name:         "thin box",
			box:          &Box{HalfExtents: mgl64.Vec3{0.1, 5, 0.1}},
			mass:         60.0,
			expectedDiag: mgl64.Vec3{500.2, 0.4, 500.2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.box.ComputeInertia(tt.mass)

			if !mat3Equal(result, mgl64.Diag3(tt.expectedDiag), 1e-6) {
				t.Errorf("ComputeInertia() = %v, want diagonal %v", result, tt.expectedDiag)
			}
		})
	}
}

func TestSphereComputeInertia(t *testing.T) {
	tests := []struct {
		name      string
		sphere    *Sphere
		mass      float64
		expectedI float64
	}{
		{name: "unit sphere", sphere: &Sphere{Radius: 1.0}, mass: 5.0, expectedI: 2},
		{name: "sphere radius 2", sphere: &Sphere{Radius: 2.0}, mass: 10.0, expectedI: 16},
		{name: "small sphere", sphere: &Sphere{Radius: 0.5}, mass: 1.0, expectedI: 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.sphere.ComputeInertia(tt.mass)
			expected := mgl64.Diag3(mgl64.Vec3{tt.expectedI, tt.expectedI, tt.expectedI})

			if !mat3Equal(result, expected, 1e-9) {
				t.Errorf("ComputeInertia() = %v, want %v", result, expected)
			}
		})
	}
}

func TestCylinderComputeInertia(t *testing.T) {
	cylinder := &Cylinder{Radius: 1, HalfHeight: 1.5}

	result := cylinder.ComputeInertia(12)

	// side: 12 * (3 + 9) / 12, axis: 12 * 1 / 2
	expected := mgl64.Diag3(mgl64.Vec3{12, 6, 12})
	if !mat3Equal(result, expected, 1e-9) {
		t.Errorf("ComputeInertia() = %v, want %v", result, expected)
	}
}

// ========== MASS TESTS ==========
func TestShapeComputeMass(t *testing.T) {
	tests := []struct {
		name     string
		shape    Shape
		density  float64
		expected float64
	}{
		{name: "box", shape: &Box{HalfExtents: mgl64.Vec3{1, 2, 3}}, density: 2, expected: 96},
		{name: "sphere", shape: &Sphere{Radius: 1}, density: 3, expected: 4 * math.Pi},
		{name: "cylinder", shape: &Cylinder{Radius: 1, HalfHeight: 0.5}, density: 1, expected: math.Pi},
		{name: "zero density", shape: &Sphere{Radius: 1}, density: 0, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if mass := tt.shape.ComputeMass(tt.density); !almostEqual(mass, tt.expected, 1e-9) {
				t.Errorf("ComputeMass() = %v, want %v", mass, tt.expected)
			}
		})
	}
}

func TestMassProperties(t *testing.T) {
	box := &Box{HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5}}

	inertia := MassProperties(box, 12)

	if !almostEqual(inertia.Linear, 12, 1e-12) {
		t.Errorf("Linear = %v, want 12", inertia.Linear)
	}
	if !mat3Equal(inertia.Angular, mgl64.Diag3(mgl64.Vec3{2, 2, 2}), 1e-12) {
		t.Errorf("Angular = %v, want diag(2, 2, 2)", inertia.Angular)
	}
}
