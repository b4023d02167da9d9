package manager

import (
	"fmt"
	"math"

	"github.com/arcadia-render/atlas/internal/raster"
	"github.com/arcadia-render/atlas/internal/sphereo"
)

// DEM is a RasterManager specialised to elevation data (§4.4). Altitude
// extrema are computed once at construction, which requires loading every
// file's elevation band — a one-time cost the renderer pays before the
// first ray is cast so World can build the bounding sphere.
type DEM struct {
	*Manager
	Datum sphereo.Datum

	minAltitude float64
	maxAltitude float64
}

// NewDEM builds a DEM over the given elevation files (band 0 of each).
func NewDEM(files []raster.Source, datum sphereo.Datum) (*DEM, error) {
	m := New(files, 0)

	minAlt := math.Inf(1)
	maxAlt := math.Inf(-1)
	for _, f := range files {
		band := f.Band(0)
		if err := band.Load(); err != nil {
			return nil, fmt.Errorf("loading elevation band of %s: %w", f.Path(), err)
		}
		if band.Min() < minAlt {
			minAlt = band.Min()
		}
		if band.Max() > maxAlt {
			maxAlt = band.Max()
		}
	}
	if math.IsInf(minAlt, 1) {
		minAlt, maxAlt = 0, 0
	}

	return &DEM{
		Manager:     m,
		Datum:       datum,
		minAltitude: minAlt,
		maxAltitude: maxAlt,
	}, nil
}

func (d *DEM) MinAltitude() float64 { return d.minAltitude }
func (d *DEM) MaxAltitude() float64 { return d.maxAltitude }
func (d *DEM) MeanRadius() float64  { return d.Datum.MeanRadius }
func (d *DEM) MinRadius() float64   { return d.Datum.MeanRadius + d.minAltitude }
func (d *DEM) MaxRadius() float64   { return d.Datum.MeanRadius + d.maxAltitude }

// GetAltitude samples the elevation at (lonDeg,latDeg), returning NoData
// (manager.NoData) on a miss.
func (d *DEM) GetAltitude(lonDeg, latDeg float64, interp Interpolation, workerID int) float64 {
	return d.GetData(lonDeg, latDeg, interp, workerID)
}
