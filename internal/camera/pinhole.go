package camera

import (
	"math"
	"math/rand/v2"

	"github.com/arcadia-render/atlas/internal/linalg"
)

// NewPinhole builds a pinhole camera: width/height in pixels, fovRad the
// full field of view in radians, position and dcm the camera's pose.
func NewPinhole(width, height int, fovRad float64, position linalg.Vec3, dcm linalg.DCM) *Camera {
	return &Camera{
		width:           width,
		height:          height,
		position:        position,
		dcm:             dcm,
		scale:           math.Tan(0.5 * fovRad),
		HasAntiAliasing: true,
		HasDefocusBlur:  false,
		getRay:          pinholeGetRay,
	}
}

func pinholeGetRay(c *Camera, u, v float64, center bool, rng *rand.Rand) linalg.Ray {
	direction := pinholeDirection(c, u, v)
	return linalg.NewRay(c.position, c.dcm.MulVec(direction))
}
