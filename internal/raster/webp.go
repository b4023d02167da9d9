package raster

import (
	"fmt"
	"image"
	"os"

	"github.com/arcadia-render/atlas/internal/linalg"
	"github.com/arcadia-render/atlas/internal/sphereo"
	"github.com/gen2brain/webp"
)

// WebPFile wraps one WebP-encoded orthophoto tile, georeferenced by a .wld
// world-file sidecar (no TIFF-style embedded tags to fall back on). Unlike
// File, the image is decoded eagerly at Open time into a single pre-
// populated Band — Band.Load's "already loaded" short-circuit means the
// band never touches a *File reader, so this needs no lazy reload path of
// its own. Grounded on the teacher's gen2brain/webp-backed decode helper,
// now wired into DOM ingestion instead of sitting unused.
type WebPFile struct {
	path string
	geo  geoInfo

	geoTransform

	band Band
}

// OpenWebP decodes a WebP orthophoto tile and locates its .wld sidecar
// (§4.2 georeferencing, extended to a generic world-file for non-TIFF
// sources). The whole image is decoded up front: WebP gives no strip/tile
// layout to read bands lazily from, so there is nothing to gain by
// deferring it the way File does.
func OpenWebP(path string, nThreads int, datum sphereo.Datum) (*WebPFile, error) {
	if nThreads < 1 {
		nThreads = 1
	}

	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer fh.Close()

	img, err := webp.Decode(fh)
	if err != nil {
		return nil, fmt.Errorf("gio: decoding webp %s: %w", path, err)
	}

	wldPath := findTFW(path)
	if wldPath == "" {
		return nil, fmt.Errorf("%s: no georeferencing found (expected a .wld sidecar)", path)
	}
	w, err := parseTFW(wldPath)
	if err != nil {
		return nil, err
	}
	geo := w.toGeoInfo()

	affine := linalg.Affine{
		A: geo.OriginX, B: geo.PixelSizeX, C: 0,
		D: geo.OriginY, E: 0, F: -geo.PixelSizeY,
	}
	proj := resolveProjection(geo.EPSG, findPRJ(path), datum)

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	data := make([]float32, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			data[y*width+x] = float32(webpGrayValue(img, bounds.Min.X+x, bounds.Min.Y+y))
		}
	}

	return &WebPFile{
		path:         path,
		geo:          geo,
		geoTransform: newGeoTransform(width, height, affine, proj, nThreads),
		band: Band{
			width:  width,
			height: height,
			scale:  1,
			offset: 0,
			data:   data,
		},
	}, nil
}

// webpGrayValue extracts a [0,255] luminance value from a decoded WebP
// image at (x,y) for DOM albedo sampling.
func webpGrayValue(img image.Image, x, y int) float64 {
	r, g, b, _ := img.At(x, y).RGBA()
	// RGBA() returns 16-bit-scaled components; average and rescale to 8-bit.
	return float64(r+g+b) / 3 / 257
}

func (w *WebPFile) Path() string   { return w.path }
func (w *WebPFile) BandCount() int { return 1 }

func (w *WebPFile) Band(i int) *Band {
	if i != 0 {
		panic(fmt.Sprintf("raster: WebPFile has 1 band, requested index %d", i))
	}
	return &w.band
}

// Resolution mirrors File.Resolution: the larger of the x/y pixel sizes.
func (w *WebPFile) Resolution() float64 {
	if w.geo.PixelSizeX > w.geo.PixelSizeY {
		return w.geo.PixelSizeX
	}
	return w.geo.PixelSizeY
}

// UnloadBands is a no-op: the band is decoded once at Open time from an
// already-closed file handle, so there is no reader to re-load it from.
func (w *WebPFile) UnloadBands() {}

// Close is a no-op: decoding happens eagerly in OpenWebP, which closes its
// own file handle before returning.
func (w *WebPFile) Close() error { return nil }
