package raster

import (
	"math"

	"github.com/arcadia-render/atlas/internal/linalg"
)

// geoTransform is the pixel<->map<->geographic machinery shared by every
// Source this package builds: one forward/inverse affine transform plus
// one projected<->geographic transformer per worker thread, so concurrent
// samplers never share mutable state. raster.File (GeoTIFF) and
// raster.WebPFile (WebP + world-file sidecar) both embed it rather than
// each carrying their own copy of this geometry.
type geoTransform struct {
	width, height int

	affine    linalg.Affine
	invAffine linalg.Affine

	transformers []Projection // length == nThreads, indexed by worker id
}

func newGeoTransform(width, height int, affine linalg.Affine, proj Projection, nThreads int) geoTransform {
	if nThreads < 1 {
		nThreads = 1
	}
	transformers := make([]Projection, nThreads)
	for i := range transformers {
		transformers[i] = proj
	}
	return geoTransform{
		width: width, height: height,
		affine: affine, invAffine: affine.Inverse(),
		transformers: transformers,
	}
}

func (g *geoTransform) Width() int  { return g.width }
func (g *geoTransform) Height() int { return g.height }

// PixelToMap applies the forward affine transform. Integer pixel
// coordinates are pixel corners, not centres: the centre of pixel (i,j) is
// at (i+0.5, j+0.5).
func (g *geoTransform) PixelToMap(pix linalg.Vec2) linalg.Vec2 { return g.affine.Apply(pix) }

// MapToPixel applies the precomputed inverse affine transform.
func (g *geoTransform) MapToPixel(m linalg.Vec2) linalg.Vec2 { return g.invAffine.Apply(m) }

// SphericalToPixel composes map2pix with the worker's geographic->projected
// transform.
func (g *geoTransform) SphericalToPixel(lonDeg, latDeg float64, workerID int) linalg.Vec2 {
	x, y := g.transformers[workerID].FromGeographic(lonDeg, latDeg)
	return g.MapToPixel(linalg.Vec2{U: x, V: y})
}

// PixelToSpherical composes pix2map with the worker's projected->geographic
// transform.
func (g *geoTransform) PixelToSpherical(pix linalg.Vec2, workerID int) (lonDeg, latDeg float64) {
	m := g.PixelToMap(pix)
	return g.transformers[workerID].ToGeographic(m.U, m.V)
}

// GeographicBounds returns the lon/lat axis-aligned hull of the raster's
// four pixel corners, using worker 0's transformer (bounds never change
// across threads — the transformer is read-only).
func (g *geoTransform) GeographicBounds() GeographicBounds {
	corners := []linalg.Vec2{
		{U: 0, V: 0},
		{U: float64(g.width), V: 0},
		{U: 0, V: float64(g.height)},
		{U: float64(g.width), V: float64(g.height)},
	}
	b := GeographicBounds{MinLon: math.Inf(1), MaxLon: math.Inf(-1), MinLat: math.Inf(1), MaxLat: math.Inf(-1)}
	for _, c := range corners {
		lon, lat := g.PixelToSpherical(c, 0)
		b.MinLon = math.Min(b.MinLon, lon)
		b.MaxLon = math.Max(b.MaxLon, lon)
		b.MinLat = math.Min(b.MinLat, lat)
		b.MaxLat = math.Max(b.MaxLat, lat)
	}
	return b
}

// IsWithinGeographicBounds performs the inclusive point-in-rectangle test
// of §4.2.
func (g *geoTransform) IsWithinGeographicBounds(lonDeg, latDeg float64) bool {
	return g.GeographicBounds().Contains(lonDeg, latDeg)
}
