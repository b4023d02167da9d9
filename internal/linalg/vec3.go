// Package linalg implements the small vector, matrix and ray primitives the
// renderer is built on. Their contracts are trivial (addition, dot products,
// matrix-vector products) so there is nothing to abstract behind an
// interface; every type here is a plain value with pure-function methods.
package linalg

import "math"

// Vec3 is a point or direction in the camera / body-centric Cartesian frame.
type Vec3 struct {
	X, Y, Z float64
}

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Scale(s float64) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }

func (a Vec3) Dot(b Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

// LengthSquared returns |v|^2, avoiding the sqrt when only the square is needed.
func (a Vec3) LengthSquared() float64 { return a.Dot(a) }

func (a Vec3) Length() float64 { return math.Sqrt(a.LengthSquared()) }

// Normalize returns a unit vector in the direction of a. The zero vector is
// returned unchanged (there is no meaningful direction to normalize to).
func (a Vec3) Normalize() Vec3 {
	l := a.Length()
	if l == 0 {
		return a
	}
	return a.Scale(1 / l)
}
