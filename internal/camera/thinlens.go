package camera

import (
	"math"
	"math/rand/v2"

	"github.com/arcadia-render/atlas/internal/linalg"
)

// NewThinLens builds a defocus-capable camera from focal length, sensor
// size and f-stop (all in mm for the first two, dimensionless for fstop),
// matching the upstream "RealCamera" intrinsics (§4.5).
func NewThinLens(width, height int, focalLengthMM, sensorSizeMM, fstop float64, position linalg.Vec3, dcm linalg.DCM) *Camera {
	fov := 2 * math.Atan(sensorSizeMM/(2*focalLengthMM))

	res := float64(width)
	if height > width {
		res = float64(height)
	}

	return &Camera{
		width:           width,
		height:          height,
		position:        position,
		dcm:             dcm,
		scale:           math.Tan(0.5 * fov),
		focalLength:     focalLengthMM,
		sensorSize:      sensorSizeMM,
		pixSize:         sensorSizeMM / res,
		aperture:        focalLengthMM / fstop,
		HasAntiAliasing: true,
		HasDefocusBlur:  true,
		getRay:          thinLensGetRay,
	}
}

func thinLensGetRay(c *Camera, u, v float64, center bool, rng *rand.Rand) linalg.Ray {
	if center {
		direction := pinholeDirection(c, u, v)
		return linalg.NewRay(c.position, c.dcm.MulVec(direction))
	}

	r := c.aperture * math.Sqrt(rng.Float64())
	th := twoPi * rng.Float64()
	lensPoint := linalg.Vec3{X: r * math.Cos(th), Y: r * math.Sin(th), Z: 0}

	origin := c.position.Add(c.dcm.MulVec(lensPoint).Scale(1e-3))

	x := -0.5*(c.sensorSize-c.pixSize) + (u+rng.Float64()-0.5)*c.pixSize
	y := -0.5*(c.sensorSize-c.pixSize) + (v+rng.Float64()-0.5)*c.pixSize
	pixSample := linalg.Vec3{X: x, Y: y, Z: c.focalLength}

	direction := pixSample.Sub(lensPoint)
	return linalg.NewRay(origin, c.dcm.MulVec(direction))
}
