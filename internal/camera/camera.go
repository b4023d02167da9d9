// Package camera implements the pinhole and thin-lens ray generators of
// §4.5. Rather than a class hierarchy, a Camera is a capability record: a
// pose, intrinsics-derived scale, a ray-generating function, and two
// capability flags the renderer dispatches its second-phase work on
// (hasAntiAliasing, hasDefocusBlur).
package camera

import (
	"math"
	"math/rand/v2"

	"github.com/arcadia-render/atlas/internal/linalg"
)

// Camera generates view rays for fractional pixel coordinates. Pose is
// mutable (the façade may reposition it between renders); intrinsics are
// fixed at construction.
type Camera struct {
	width, height int
	position      linalg.Vec3
	dcm           linalg.DCM

	scale float64 // tan(fov/2)

	// Thin-lens intrinsics. Zero for a pinhole camera, which never reads
	// them — kept as plain fields rather than a side table so Camera stays
	// a single flat, race-free value type.
	focalLength float64 // mm
	sensorSize  float64 // mm
	pixSize     float64 // mm/px
	aperture    float64 // mm

	// HasAntiAliasing is true when a centre ray and SSAA sub-pixel samples
	// are meaningfully different rays — true for both camera kinds, since
	// sub-pixel offset changes the pinhole projection too (§4.5, §4.8).
	HasAntiAliasing bool
	// HasDefocusBlur is true only for the thin-lens model; the renderer's
	// POST_DEFOCUS phase is skipped entirely when this is false.
	HasDefocusBlur bool

	getRay func(c *Camera, u, v float64, center bool, rng *rand.Rand) linalg.Ray
}

func (c *Camera) Width() int  { return c.width }
func (c *Camera) Height() int { return c.height }

func (c *Camera) Position() linalg.Vec3     { return c.position }
func (c *Camera) SetPosition(p linalg.Vec3) { c.position = p }
func (c *Camera) DCM() linalg.DCM           { return c.dcm }
func (c *Camera) SetDCM(m linalg.DCM)       { c.dcm = m }

// PixelCoordinates recovers (u,v) from a row-major linear pixel id.
func (c *Camera) PixelCoordinates(id int) (u, v int) {
	v = id / c.width
	u = id - v*c.width
	return
}

// GetRay generates the view ray for fractional pixel coordinate (u,v).
// When center is true it returns the single deterministic centre-of-pixel
// ray; when false it draws a stochastic sample (sub-pixel jitter, and for
// a thin-lens camera, an aperture sample) using rng, which must be owned
// by a single worker (§4.2 "no thread-local state": the renderer threads a
// per-worker *rand.Rand through instead).
func (c *Camera) GetRay(u, v float64, center bool, rng *rand.Rand) linalg.Ray {
	return c.getRay(c, u, v, center, rng)
}

// pinholeDirection computes the shared pinhole projection formula used by
// both camera kinds' centred ray (§4.5).
func pinholeDirection(c *Camera, u, v float64) linalg.Vec3 {
	x := (1 - 2*(u+0.5)/float64(c.width)) * c.scale
	y := (1 - 2*(v+0.5)/float64(c.height)) * c.scale
	return linalg.Vec3{X: x, Y: y, Z: 1.0}
}

const twoPi = 2 * math.Pi
