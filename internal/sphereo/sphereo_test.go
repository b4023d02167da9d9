package sphereo

import (
	"math"
	"testing"

	"github.com/arcadia-render/atlas/internal/linalg"
)

func TestSphericalRoundTrip(t *testing.T) {
	tests := []struct {
		name          string
		r, lon, lat   float64
	}{
		{"equator prime meridian", 1_737_400, 0, 0},
		{"equator 90E", 1_737_400, 90, 0},
		{"mid-lat", 1_800_000, -37.5, 28.2},
		{"near pole", 1_737_400, 123.4, 89.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := FromSpherical(tt.r, tt.lon, tt.lat)
			r, lon, lat := ToSpherical(p)

			if math.Abs(r-tt.r) > 1e-6 {
				t.Errorf("r = %v, want %v", r, tt.r)
			}
			if math.Abs(lon-tt.lon) > 1e-6 {
				t.Errorf("lon = %v, want %v", lon, tt.lon)
			}
			if math.Abs(lat-tt.lat) > 1e-6 {
				t.Errorf("lat = %v, want %v", lat, tt.lat)
			}
		})
	}
}

func TestToSphericalZero(t *testing.T) {
	r, lon, lat := ToSpherical(linalg.Vec3{})
	if r != 0 || lon != 0 || lat != 0 {
		t.Errorf("ToSpherical(0) = (%v,%v,%v), want zeros", r, lon, lat)
	}
}
