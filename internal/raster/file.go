package raster

import (
	"bytes"
	"fmt"
	"os"

	"github.com/arcadia-render/atlas/internal/linalg"
	"github.com/arcadia-render/atlas/internal/sphereo"
)

// GeographicBounds is the lon/lat axis-aligned hull of a raster's four
// corners (§4.2).
type GeographicBounds struct {
	MinLon, MaxLon float64
	MinLat, MaxLat float64
}

func (b GeographicBounds) Contains(lonDeg, latDeg float64) bool {
	return lonDeg >= b.MinLon && lonDeg <= b.MaxLon && latDeg >= b.MinLat && latDeg <= b.MaxLat
}

// File wraps one memory-mapped raster dataset (§4.2): its affine pixel↔map
// transform, a band per raster channel, and one projected↔geographic
// transformer slot per worker thread. Every slot holds the same Projection
// value rather than a separate instance; Projection implementations keep no
// mutable state, so concurrent samplers share none. The pixel↔map↔geographic machinery
// itself lives in the embedded geoTransform, shared with WebPFile.
type File struct {
	path string

	data []byte
	f    ifd
	geo  geoInfo

	geoTransform

	bands []Band
}

// Open opens a raster file by memory-mapping it, parses its TIFF structure
// and georeferencing, and fills nThreads transformer slots with the one
// resolved Projection (§4.2: "transformer count equals configured thread count").
// Bands are registered but not loaded; call Band(i).Load() to materialise.
func Open(path string, nThreads int, datum sphereo.Datum) (*File, error) {
	if nThreads < 1 {
		nThreads = 1
	}

	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer fh.Close()

	fi, err := fh.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.Size() == 0 {
		return nil, fmt.Errorf("%s: empty file", path)
	}

	data, err := mmapFile(fh.Fd(), int(fi.Size()))
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}

	ifds, bo, err := parseTIFF(bytes.NewReader(data))
	if err != nil {
		munmapFile(data)
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(ifds) == 0 {
		munmapFile(data)
		return nil, fmt.Errorf("%s: no IFDs found", path)
	}

	first := ifds[0]
	first.byteOrder = bo
	if first.TileWidth == 0 || first.TileHeight == 0 {
		if len(first.StripOffsets) == 0 {
			munmapFile(data)
			return nil, fmt.Errorf("%s: no tile or strip layout found", path)
		}
	}

	switch first.Compression {
	case 0, 1, 5, 8, 32946:
		// none, LZW, deflate/zlib
	default:
		munmapFile(data)
		return nil, fmt.Errorf("%s: unsupported compression %d for a float raster", path, first.Compression)
	}

	geo := parseGeoInfo(&first)
	if geo.PixelSizeX == 0 && geo.PixelSizeY == 0 {
		if tfwPath := findTFW(path); tfwPath != "" {
			w, err := parseTFW(tfwPath)
			if err != nil {
				munmapFile(data)
				return nil, err
			}
			geo = w.toGeoInfo()
		}
	}
	if geo.PixelSizeX == 0 {
		munmapFile(data)
		return nil, fmt.Errorf("%s: no georeferencing found (no GeoTIFF tags or .tfw sidecar)", path)
	}

	affine := linalg.Affine{
		A: geo.OriginX, B: geo.PixelSizeX, C: 0,
		D: geo.OriginY, E: 0, F: -geo.PixelSizeY,
	}

	proj := resolveProjection(geo.EPSG, findPRJ(path), datum)

	file := &File{
		path:         path,
		data:         data,
		f:            first,
		geo:          geo,
		geoTransform: newGeoTransform(int(first.Width), int(first.Height), affine, proj, nThreads),
	}

	numBands := int(first.SamplesPerPixel)
	if numBands < 1 {
		numBands = 1
	}
	file.bands = make([]Band, numBands)
	for i := range file.bands {
		file.bands[i] = Band{
			reader:    file,
			index:     i,
			width:     file.Width(),
			height:    file.Height(),
			scale:     1,
			offset:    0,
			noData:    first.NoData,
			hasNoData: first.HasNoData,
		}
	}

	return file, nil
}

func (r *File) Close() error {
	if r.data != nil {
		err := munmapFile(r.data)
		r.data = nil
		return err
	}
	return nil
}

func (r *File) Path() string      { return r.path }
func (r *File) BandCount() int    { return len(r.bands) }
func (r *File) Band(i int) *Band { return &r.bands[i] }

// Resolution returns the raster's lowest-accuracy pixel dimension — the
// larger of the x/y pixel sizes (§4.2 RasterFile doc: "the one which
// expresses the lowest accuracy").
func (r *File) Resolution() float64 {
	if r.geo.PixelSizeX > r.geo.PixelSizeY {
		return r.geo.PixelSizeX
	}
	return r.geo.PixelSizeY
}

func (r *File) LoadBands() error {
	for i := range r.bands {
		if err := r.bands[i].Load(); err != nil {
			return err
		}
	}
	return nil
}

func (r *File) UnloadBands() {
	for i := range r.bands {
		r.bands[i].Unload()
	}
}

func (r *File) AnyBandLoaded() bool {
	for i := range r.bands {
		if r.bands[i].IsLoaded() {
			return true
		}
	}
	return false
}
