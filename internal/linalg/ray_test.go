package linalg

import (
	"math"
	"testing"
)

func TestRayGetParametersRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		origin Vec3
		dir    Vec3
		radius float64
	}{
		{"along x-axis", Vec3{3_000_000, 0, 0}, Vec3{-1, 0, 0}, 1_000_000},
		{"offset ray", Vec3{0, 3_000_000, 500_000}, Vec3{0, -1, 0}, 1_737_400},
		{"diagonal", Vec3{1_000_000, 1_000_000, 1_000_000}, Vec3{-1, -1, -1}, 1_737_400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRay(tt.origin, tt.dir)

			if math.Abs(r.Dir.Length()-1) > 1e-12 {
				t.Fatalf("ray direction not normalised: |d| = %v", r.Dir.Length())
			}

			tMin, tMax, ok := r.GetParameters(tt.radius)
			if !ok {
				t.Fatalf("expected intersection with radius %v", tt.radius)
			}
			if tMin > tMax {
				t.Fatalf("tMin %v > tMax %v", tMin, tMax)
			}

			for _, tv := range []float64{tMin, tMax} {
				p := r.At(tv)
				got := p.Length()
				if math.Abs(got-tt.radius) > 1e-6*tt.radius {
					t.Errorf("|r.At(%v)| = %v, want %v", tv, got, tt.radius)
				}
			}
		})
	}
}

func TestRayMissesSphere(t *testing.T) {
	r := NewRay(Vec3{5_000_000, 0, 0}, Vec3{0, 1, 0})
	if _, _, ok := r.GetParameters(1_000_000); ok {
		t.Fatalf("expected a miss for a ray tangent far outside the sphere")
	}
}

func TestAffineInverseRoundTrip(t *testing.T) {
	a := Affine{A: 500_000, B: 30, C: 0, D: 4_000_000, E: 0, F: -30}
	inv := a.Inverse()

	pix := Vec2{U: 12.5, V: 87.25}
	mapped := a.Apply(pix)
	back := inv.Apply(mapped)

	if math.Abs(back.U-pix.U) > 1e-9 || math.Abs(back.V-pix.V) > 1e-9 {
		t.Errorf("Inverse().Apply(Apply(p)) = %+v, want %+v", back, pix)
	}
}

func TestDCMTransposeIsInverse(t *testing.T) {
	m := FromEulerZYX(0.4, -0.2, 0.9)
	v := Vec3{1, 2, 3}

	rotated := m.MulVec(v)
	back := m.Transpose().MulVec(rotated)

	if back.Sub(v).Length() > 1e-9 {
		t.Errorf("DCM transpose did not invert rotation: got %+v, want %+v", back, v)
	}
}
