package raster

import (
	"math"
	"testing"

	"github.com/arcadia-render/atlas/internal/sphereo"
)

func TestEquirectangularRoundTrip(t *testing.T) {
	p := equirectangularProjection{datum: sphereo.MoonDatum}

	tests := []struct{ lon, lat float64 }{
		{0, 0},
		{45, 20},
		{-120, -60},
	}
	for _, tt := range tests {
		x, y := p.FromGeographic(tt.lon, tt.lat)
		lon, lat := p.ToGeographic(x, y)
		if math.Abs(lon-tt.lon) > 1e-9 || math.Abs(lat-tt.lat) > 1e-9 {
			t.Errorf("FromGeographic/ToGeographic(%v,%v) round trip = (%v,%v)", tt.lon, tt.lat, lon, lat)
		}
	}
}

func TestPolarStereographicRoundTrip(t *testing.T) {
	for _, southPole := range []bool{false, true} {
		p := polarStereographicProjection{datum: sphereo.MoonDatum, southPole: southPole}
		tests := []struct{ lon, lat float64 }{
			{10, 80},
			{-170, 89},
			{90, 60},
		}
		for _, tt := range tests {
			lat := tt.lat
			if southPole {
				lat = -lat
			}
			x, y := p.FromGeographic(tt.lon, lat)
			lon, gotLat := p.ToGeographic(x, y)
			if math.Abs(normalizeLon(lon-tt.lon)) > 1e-6 || math.Abs(gotLat-lat) > 1e-6 {
				t.Errorf("southPole=%v round trip(%v,%v) = (%v,%v)", southPole, tt.lon, lat, lon, gotLat)
			}
		}
	}
}

func TestIdentityProjection(t *testing.T) {
	var p identityProjection
	lon, lat := p.ToGeographic(12.5, -4.2)
	if lon != 12.5 || lat != -4.2 {
		t.Fatalf("identity projection altered coordinates: (%v,%v)", lon, lat)
	}
}

func normalizeLon(d float64) float64 {
	for d > 180 {
		d -= 360
	}
	for d < -180 {
		d += 360
	}
	return d
}
