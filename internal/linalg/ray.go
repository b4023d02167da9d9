package linalg

import "math"

// Ray is a unit-direction ray with a few quantities pre-computed once at
// construction since every downstream use (minimum distance, sphere
// intersection) needs them repeatedly (§3, §4.6).
type Ray struct {
	Origin Vec3
	Dir    Vec3

	pd float64 // Origin.Dot(Dir)
	pd2 float64 // pd*pd
	p2 float64 // Origin.LengthSquared()
}

// NewRay builds a ray from an origin and a (not necessarily unit) direction.
func NewRay(origin, direction Vec3) Ray {
	d := direction.Normalize()
	pd := origin.Dot(d)
	return Ray{
		Origin: origin,
		Dir:    d,
		pd:     pd,
		pd2:    pd * pd,
		p2:     origin.LengthSquared(),
	}
}

// At evaluates the ray position at parameter t.
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Dir.Scale(t))
}

// MinDistance is the ray's closest approach to the origin of the frame
// (the body centre), used to cheaply reject rays that miss the outer sphere.
func (r Ray) MinDistance() float64 {
	return math.Sqrt(math.Max(0, r.p2-r.pd2))
}

// GetParameters solves t^2 + 2(p.d)t + (|p|^2 - r^2) = 0 for the two
// intersections of the ray with the sphere of radius r centred at the
// origin. ok is false when the ray misses the sphere entirely.
func (r Ray) GetParameters(radius float64) (tMin, tMax float64, ok bool) {
	delta := r.pd2 - r.p2 + radius*radius
	if delta < 0 {
		return 0, 0, false
	}
	s := math.Sqrt(delta)
	tMin = -r.pd - s
	tMax = -r.pd + s
	return tMin, tMax, true
}
