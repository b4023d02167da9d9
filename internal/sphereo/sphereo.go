// Package sphereo implements the body-centric spherical geographic CRS
// (§6): a spherical datum, degrees, longitude-first, reference meridian at
// zero. It plays the same role for the renderer that internal/coord's
// WGS84/web-Mercator conversions play for the teacher's map tiler, just
// specialised to one sphere instead of an ellipsoid pyramid.
package sphereo

import (
	"math"

	"github.com/arcadia-render/atlas/internal/linalg"
)

// Datum carries the one parameter a spherical body needs: its mean radius.
type Datum struct {
	MeanRadius float64
}

// MoonDatum is the default body (§6): mean radius 1,737,400 m.
var MoonDatum = Datum{MeanRadius: 1_737_400}

// ToSpherical converts a Cartesian point to (radius, longitude, latitude)
// with longitude/latitude in degrees and longitude first.
func ToSpherical(p linalg.Vec3) (r, lonDeg, latDeg float64) {
	r = p.Length()
	if r == 0 {
		return 0, 0, 0
	}
	lonDeg = math.Atan2(p.Y, p.X) * 180 / math.Pi
	latDeg = math.Asin(clamp(p.Z/r, -1, 1)) * 180 / math.Pi
	return r, lonDeg, latDeg
}

// FromSpherical is the inverse of ToSpherical.
func FromSpherical(r, lonDeg, latDeg float64) linalg.Vec3 {
	lon := lonDeg * math.Pi / 180
	lat := latDeg * math.Pi / 180
	cosLat := math.Cos(lat)
	return linalg.Vec3{
		X: r * cosLat * math.Cos(lon),
		Y: r * cosLat * math.Sin(lon),
		Z: r * math.Sin(lat),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
