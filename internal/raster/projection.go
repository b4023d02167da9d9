package raster

import (
	"math"
	"os"
	"strings"

	"github.com/arcadia-render/atlas/internal/coord"
	"github.com/arcadia-render/atlas/internal/sphereo"
)

// Projection converts between a raster's native (projected) CRS and the
// body-centric geographic CRS (§4.2: "per-thread projected↔geographic
// transformer instances"). Implementations must be safe to build once per
// worker and call without locking — they hold no mutable state.
type Projection interface {
	ToGeographic(x, y float64) (lonDeg, latDeg float64)
	FromGeographic(lonDeg, latDeg float64) (x, y float64)
}

// identityProjection treats the raster's native coordinates as already
// being geographic degrees (longitude, latitude) — the common case for a
// global equirectangular lunar mosaic with no embedded GeoTIFF tags.
type identityProjection struct{}

func (identityProjection) ToGeographic(x, y float64) (float64, float64)   { return x, y }
func (identityProjection) FromGeographic(lon, lat float64) (float64, float64) { return lon, lat }

// equirectangularProjection implements a plate carrée projection centred on
// a standard parallel, the most common lunar basemap projection (LROC WAC,
// Kaguya mosaics). x/y are in metres on the body's mean sphere.
type equirectangularProjection struct {
	datum       sphereo.Datum
	stdParallel float64 // radians
	centralLon  float64 // radians
}

func (p equirectangularProjection) ToGeographic(x, y float64) (lonDeg, latDeg float64) {
	cosP := math.Cos(p.stdParallel)
	lon := p.centralLon + x/(p.datum.MeanRadius*cosP)
	lat := y / p.datum.MeanRadius
	return lon * 180 / math.Pi, lat * 180 / math.Pi
}

func (p equirectangularProjection) FromGeographic(lonDeg, latDeg float64) (x, y float64) {
	cosP := math.Cos(p.stdParallel)
	lon := lonDeg * math.Pi / 180
	lat := latDeg * math.Pi / 180
	x = (lon - p.centralLon) * p.datum.MeanRadius * cosP
	y = lat * p.datum.MeanRadius
	return
}

// polarStereographicProjection covers the polar DEM mosaics (LOLA/Kaguya
// south/north pole products) commonly shipped for lunar terrain work.
type polarStereographicProjection struct {
	datum    sphereo.Datum
	southPole bool
}

func (p polarStereographicProjection) ToGeographic(x, y float64) (lonDeg, latDeg float64) {
	r := math.Hypot(x, y)
	if r == 0 {
		if p.southPole {
			return 0, -90
		}
		return 0, 90
	}
	c := 2 * math.Atan2(r, 2*p.datum.MeanRadius)
	var lat float64
	if p.southPole {
		lat = -math.Asin(math.Cos(c))
		lonDeg = math.Atan2(x, y) * 180 / math.Pi
	} else {
		lat = math.Asin(math.Cos(c))
		lonDeg = math.Atan2(x, -y) * 180 / math.Pi
	}
	latDeg = lat * 180 / math.Pi
	return
}

func (p polarStereographicProjection) FromGeographic(lonDeg, latDeg float64) (x, y float64) {
	lon := lonDeg * math.Pi / 180
	lat := latDeg * math.Pi / 180
	var colat float64
	if p.southPole {
		colat = math.Pi/2 + lat
	} else {
		colat = math.Pi/2 - lat
	}
	r := 2 * p.datum.MeanRadius * math.Tan(colat/2)
	if p.southPole {
		x = r * math.Sin(lon)
		y = r * math.Cos(lon)
	} else {
		x = r * math.Sin(lon)
		y = -r * math.Cos(lon)
	}
	return
}

// coordProjection adapts an internal/coord.Projection (built for the
// terrestrial EPSG codes a sidecar or GeoTIFF tag can name) to the
// Projection interface here. Its "WGS84" output is consumed as lon/lat
// degrees directly — the lunar body reuses the same projected-to-
// geographic math, only the sphere radius differs, and that radius only
// enters through sphereo's separate ToSpherical/FromSpherical step.
type coordProjection struct {
	inner coord.Projection
}

func (p coordProjection) ToGeographic(x, y float64) (lonDeg, latDeg float64) {
	return p.inner.ToWGS84(x, y)
}

func (p coordProjection) FromGeographic(lonDeg, latDeg float64) (x, y float64) {
	return p.inner.FromWGS84(lonDeg, latDeg)
}

// resolveProjectionForEPSG adapts a GeoTIFF-tag-derived EPSG code to a
// Projection via internal/coord.ForEPSG, when that code names one of the
// projections the pack's raster tooling already understands.
func resolveProjectionForEPSG(epsg int) (Projection, bool) {
	if epsg == 0 {
		return nil, false
	}
	if inner := coord.ForEPSG(epsg); inner != nil {
		return coordProjection{inner: inner}, true
	}
	return nil, false
}

// resolveProjection builds the Projection for a raster: an EPSG code named
// directly by the GeoTIFF's own tags takes priority, then a .prj sidecar
// naming a recognised lunar projection, otherwise identity (§4.2
// Non-goals: "No online re-projection of rasters; coordinate reference
// systems are consumed as-is" — this is sidecar *parsing*, not reprojection).
func resolveProjection(epsg int, prjPath string, datum sphereo.Datum) Projection {
	if p, ok := resolveProjectionForEPSG(epsg); ok {
		return p
	}
	if prjPath == "" {
		return identityProjection{}
	}
	data, err := os.ReadFile(prjPath)
	if err != nil {
		return identityProjection{}
	}
	text := strings.ToLower(string(data))

	switch {
	case strings.Contains(text, "polar_stereographic") || strings.Contains(text, "stereographic"):
		return polarStereographicProjection{datum: datum, southPole: strings.Contains(text, "south")}
	case strings.Contains(text, "equirectangular") || strings.Contains(text, "plate_carree") || strings.Contains(text, "plate carree"):
		return equirectangularProjection{datum: datum, stdParallel: 0, centralLon: 0}
	default:
		return identityProjection{}
	}
}
