package linalg

import "fmt"

// Affine is a 6-parameter 2-D affine transform in GDAL's convention:
//
//	map.U = A + B*pix.U + C*pix.V
//	map.V = D + E*pix.U + F*pix.V
//
// It maps continuous pixel coordinates to projected map coordinates. The
// rasters in this module build it with (0,0) at the outer corner of the
// first pixel, so integer coordinates are pixel corners, not pixel centres.
type Affine struct {
	A, B, C, D, E, F float64
}

// IdentityAffine returns the no-op affine transform.
func IdentityAffine() Affine { return Affine{A: 0, B: 1, C: 0, D: 0, E: 0, F: 1} }

// Apply maps a pixel coordinate to a map coordinate.
func (t Affine) Apply(pix Vec2) Vec2 {
	return Vec2{
		U: t.A + t.B*pix.U + t.C*pix.V,
		V: t.D + t.E*pix.U + t.F*pix.V,
	}
}

// Inverse returns the transform mapping map coordinates back to pixel
// coordinates. It panics if the transform is singular — a malformed raster
// affine is a configuration error, not a recoverable one.
func (t Affine) Inverse() Affine {
	det := t.B*t.F - t.C*t.E
	if det == 0 {
		panic(fmt.Sprintf("linalg: singular affine transform %+v", t))
	}
	invDet := 1 / det
	b := t.F * invDet
	c := -t.C * invDet
	e := -t.E * invDet
	f := t.B * invDet
	a := -(b*t.A + c*t.D)
	d := -(e*t.A + f*t.D)
	return Affine{A: a, B: b, C: c, D: d, E: e, F: f}
}
