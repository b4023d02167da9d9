// Package manager implements RasterManager (§4.3): a set of overlapping
// raster files covering a region, routed by geographic point, with
// dwell-based band eviction between frames.
package manager

import (
	"math"
	"sync"

	"github.com/arcadia-render/atlas/internal/raster"
)

// Interpolation selects how Manager.GetData resolves a fractional pixel
// coordinate into a sample.
type Interpolation int

const (
	NearestNeighbour Interpolation = iota
	Bilinear
)

// NoData is the sentinel Manager.GetData returns when no file claims the
// query point, or when a bilinear sample's contributing pixels include a
// no-data value (§4.3: "do not mix real and no-data").
const NoData = math.MaxFloat64

// Manager is a RasterManager: an ordered sequence of raster.Source, queried
// by geographic point. Files are tried in order; the first one whose
// bounds contain the point answers the query (§4.3). A Source may be a
// GeoTIFF raster.File or a WebP raster.WebPFile — Manager itself is
// agnostic to which.
type Manager struct {
	mu sync.Mutex

	files   []raster.Source
	used    []int64 // per-file read counter, incremented under mu
	touched []bool  // per-file "queried since last cleanup" flag
	missed  []int   // per-file consecutive cleanup cycles without a touch

	bandIndex int // which band of each file this manager samples (0 for single-band DEM/DOM)
}

// New builds a Manager over the given files, all sampling band bandIndex.
func New(files []raster.Source, bandIndex int) *Manager {
	return &Manager{
		files:     files,
		used:      make([]int64, len(files)),
		touched:   make([]bool, len(files)),
		missed:    make([]int, len(files)),
		bandIndex: bandIndex,
	}
}

// Files returns the underlying raster sources, for aggregation by DEM/DOM.
func (m *Manager) Files() []raster.Source { return m.files }

// LowestResolution returns the coarsest pixel size across all files — used
// by World to size the ray-marching step (§4.6 ground-sampling distance).
func (m *Manager) LowestResolution() float64 {
	res := 0.0
	for _, f := range m.files {
		if r := f.Resolution(); r > res {
			res = r
		}
	}
	return res
}

// GetData resolves a geographic point to a band sample (§4.3). Returns
// NoData if no file claims the point, or if interpolation collapses to
// no-data.
func (m *Manager) GetData(lonDeg, latDeg float64, interp Interpolation, workerID int) float64 {
	for i, f := range m.files {
		if !f.IsWithinGeographicBounds(lonDeg, latDeg) {
			continue
		}

		m.mu.Lock()
		m.used[i]++
		m.touched[i] = true
		m.missed[i] = 0

		band := f.Band(m.bandIndex)
		if !band.IsLoaded() {
			if err := band.Load(); err != nil {
				m.mu.Unlock()
				continue
			}
		}
		m.mu.Unlock()

		pix := f.SphericalToPixel(lonDeg, latDeg, workerID)
		if interp == Bilinear {
			if v, ok := bilinearSample(f, m.bandIndex, pix.U, pix.V); ok {
				return v
			}
			return NoData
		}

		u := int(math.Floor(pix.U))
		v := int(math.Floor(pix.V))
		if u < 0 || u >= f.Width() || v < 0 || v >= f.Height() {
			continue
		}
		val := band.GetUV(u, v)
		if nd, has := band.NoDataValue(); has && val == nd {
			return NoData
		}
		return val
	}
	return NoData
}

// UsedCount returns how many times file i has answered a query, for
// diagnostics and tests.
func (m *Manager) UsedCount(i int) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.used[i]
}

// Cleanup unloads the bands of any file that has gone `threshold`
// consecutive cleanup cycles without being touched (§4.3). Called once
// between frames.
func (m *Manager) Cleanup(threshold int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, f := range m.files {
		if m.touched[i] {
			m.touched[i] = false
			m.missed[i] = 0
			continue
		}
		m.missed[i]++
		if m.missed[i] >= threshold {
			f.UnloadBands()
			m.missed[i] = 0
		}
	}
}

// bilinearSample interpolates band bandIndex of f at fractional pixel
// coordinate (u,v). It returns ok=false when any of the four enclosing
// pixels is out of range or equals the band's no-data value.
func bilinearSample(f raster.Source, bandIndex int, u, v float64) (float64, bool) {
	band := f.Band(bandIndex)

	u -= 0.5
	v -= 0.5
	u0 := int(math.Floor(u))
	v0 := int(math.Floor(v))
	fu := u - float64(u0)
	fv := v - float64(v0)

	w, h := f.Width(), f.Height()
	if u0 < 0 || v0 < 0 || u0+1 >= w || v0+1 >= h {
		return 0, false
	}

	get := func(uu, vv int) (float64, bool) {
		if band.IsNoDataUV(uu, vv) {
			return 0, false
		}
		return band.GetUV(uu, vv), true
	}

	v00, ok00 := get(u0, v0)
	v10, ok10 := get(u0+1, v0)
	v01, ok01 := get(u0, v0+1)
	v11, ok11 := get(u0+1, v0+1)
	if !ok00 || !ok10 || !ok01 || !ok11 {
		return 0, false
	}

	top := v00*(1-fu) + v10*fu
	bottom := v01*(1-fu) + v11*fu
	return top*(1-fv) + bottom*fv, true
}
