package raster

import "github.com/arcadia-render/atlas/internal/linalg"

// Source is anything RasterManager (§4.3) can route a geographic query to:
// a GeoTIFF File or a WebP orthophoto tile with a world-file sidecar
// (WebPFile). Both embed geoTransform for the pixel<->map<->geographic
// machinery and differ only in how their bands get decoded.
type Source interface {
	Path() string
	Width() int
	Height() int
	Resolution() float64
	BandCount() int
	Band(i int) *Band
	UnloadBands()
	IsWithinGeographicBounds(lonDeg, latDeg float64) bool
	SphericalToPixel(lonDeg, latDeg float64, workerID int) linalg.Vec2
	Close() error
}

var (
	_ Source = (*File)(nil)
	_ Source = (*WebPFile)(nil)
)
