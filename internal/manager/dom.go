package manager

import "github.com/arcadia-render/atlas/internal/raster"

// DOM is a RasterManager specialised to reflectance/orthophoto data.
// GetColor clamps a negative sample to zero; the image writer applies the
// final normalisation (§4.4: "DOM's getColor returns max(getData, 0)
// normalised later by the image writer").
type DOM struct {
	*Manager
}

// NewDOM builds a DOM over the given orthophoto files (band 0 of each).
// files may mix GeoTIFF (raster.File) and WebP (raster.WebPFile) sources.
func NewDOM(files []raster.Source) *DOM {
	return &DOM{Manager: New(files, 0)}
}

func (d *DOM) GetColor(lonDeg, latDeg float64, interp Interpolation, workerID int) float64 {
	v := d.GetData(lonDeg, latDeg, interp, workerID)
	if v == NoData {
		return NoData
	}
	if v < 0 {
		return 0
	}
	return v
}
