package linalg

import "math"

// DCM is a 3x3 direction cosine matrix stored row-major. It rotates a
// vector from a body frame into a reference frame (or vice-versa for its
// transpose).
type DCM [9]float64

// Identity returns the identity rotation.
func Identity() DCM {
	return DCM{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// MulVec applies the rotation to v.
func (m DCM) MulVec(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		m[3]*v.X + m[4]*v.Y + m[5]*v.Z,
		m[6]*v.X + m[7]*v.Y + m[8]*v.Z,
	}
}

// Transpose returns the inverse rotation (valid because DCMs are orthonormal).
func (m DCM) Transpose() DCM {
	return DCM{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

// Mul composes two rotations: (a.Mul(b)).MulVec(v) == a.MulVec(b.MulVec(v)).
func (a DCM) Mul(b DCM) DCM {
	var out DCM
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += a[r*3+k] * b[k*3+c]
			}
			out[r*3+c] = sum
		}
	}
	return out
}

// FromEulerZYX builds a rotation from yaw (Z), pitch (Y), roll (X) angles in
// radians, applied in that order — a convenience used to build camera poses
// in tests.
func FromEulerZYX(yaw, pitch, roll float64) DCM {
	cz, sz := math.Cos(yaw), math.Sin(yaw)
	cy, sy := math.Cos(pitch), math.Sin(pitch)
	cx, sx := math.Cos(roll), math.Sin(roll)

	rz := DCM{cz, -sz, 0, sz, cz, 0, 0, 0, 1}
	ry := DCM{cy, 0, sy, 0, 1, 0, -sy, 0, cy}
	rx := DCM{1, 0, 0, 0, cx, -sx, 0, sx, cx}

	return rz.Mul(ry).Mul(rx)
}
