package camera

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/arcadia-render/atlas/internal/linalg"
)

func TestPinholeCentreRayPointsForward(t *testing.T) {
	c := NewPinhole(100, 100, math.Pi/2, linalg.Vec3{}, linalg.Identity())
	r := c.GetRay(49.5, 49.5, true, nil)

	if r.Dir.Sub(linalg.Vec3{X: 0, Y: 0, Z: 1}).Length() > 1e-9 {
		t.Errorf("centre ray direction = %+v, want +Z", r.Dir)
	}
	if !c.HasAntiAliasing || c.HasDefocusBlur {
		t.Errorf("pinhole capability flags wrong: aa=%v defocus=%v", c.HasAntiAliasing, c.HasDefocusBlur)
	}
}

func TestPinholeCornersDivergeFromCentre(t *testing.T) {
	c := NewPinhole(100, 100, math.Pi/2, linalg.Vec3{}, linalg.Identity())
	centre := c.GetRay(49.5, 49.5, true, nil)
	corner := c.GetRay(0, 0, true, nil)

	if corner.Dir.Sub(centre.Dir).Length() < 1e-3 {
		t.Errorf("corner ray should diverge from the centre ray")
	}
}

func TestThinLensCentreMatchesPinholeFormula(t *testing.T) {
	pos := linalg.Vec3{X: 1, Y: 2, Z: 3}
	c := NewThinLens(64, 64, 50, 36, 8, pos, linalg.Identity())

	r := c.GetRay(10, 20, true, nil)
	if r.Origin.Sub(pos).Length() > 1e-12 {
		t.Errorf("centred thin-lens ray should originate at the camera position")
	}
	if !c.HasDefocusBlur {
		t.Error("thin-lens camera must report HasDefocusBlur")
	}
}

func TestThinLensOffCentreStaysNearAxis(t *testing.T) {
	c := NewThinLens(64, 64, 50, 36, 2.0, linalg.Vec3{}, linalg.Identity())
	rng := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 20; i++ {
		r := c.GetRay(32, 32, false, rng)
		if r.Origin.Length() > c.aperture*1e-3+1e-9 {
			t.Errorf("sample %d: origin %.6f exceeds aperture radius in meters", i, r.Origin.Length())
		}
	}
}
