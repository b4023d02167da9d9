package raster

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// GeoTIFF GeoKey IDs.
const (
	gkGeographicTypeGeoKey  = 2048
	gkProjectedCSTypeGeoKey = 3072
)

// geoInfo holds the georeferencing a raster carries: the affine origin (the
// outer corner of the upper-left pixel, not its centre) and pixel size, and
// (when present) the EPSG code of its projected
// CRS. A raster with no embedded GeoTIFF tags falls back to a TFW sidecar
// (§4.2: "Construction reads dataset geometry, the affine transform").
type geoInfo struct {
	EPSG       int
	OriginX    float64
	OriginY    float64
	PixelSizeX float64
	PixelSizeY float64
}

func parseGeoInfo(f *ifd) geoInfo {
	var info geoInfo

	if len(f.ModelPixelScale) >= 2 {
		info.PixelSizeX = f.ModelPixelScale[0]
		info.PixelSizeY = f.ModelPixelScale[1]
	}

	if len(f.ModelTiepoint) >= 6 {
		info.OriginX = f.ModelTiepoint[3] - f.ModelTiepoint[0]*info.PixelSizeX
		info.OriginY = f.ModelTiepoint[4] + f.ModelTiepoint[1]*info.PixelSizeY
	}

	info.EPSG = parseEPSG(f.GeoKeys)
	return info
}

func parseEPSG(geoKeys []uint16) int {
	if len(geoKeys) < 4 {
		return 0
	}
	numKeys := int(geoKeys[3])
	for i := 0; i < numKeys; i++ {
		base := 4 + i*4
		if base+3 >= len(geoKeys) {
			break
		}
		keyID := geoKeys[base]
		valueOffset := geoKeys[base+3]
		switch keyID {
		case gkProjectedCSTypeGeoKey, gkGeographicTypeGeoKey:
			if valueOffset > 0 {
				return int(valueOffset)
			}
		}
	}
	return 0
}

// tfw holds the six parameters of a TIFF World File sidecar.
type tfw struct {
	PixelSizeX float64
	RotationY  float64
	RotationX  float64
	PixelSizeY float64
	OriginX    float64
	OriginY    float64
}

func parseTFW(path string) (*tfw, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading TFW %s: %w", path, err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) < 6 {
		return nil, fmt.Errorf("TFW %s: expected 6 lines, got %d", path, len(lines))
	}

	vals := make([]float64, 6)
	for i := 0; i < 6; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(lines[i]), 64)
		if err != nil {
			return nil, fmt.Errorf("TFW %s line %d: %w", path, i+1, err)
		}
		vals[i] = v
	}

	w := &tfw{
		PixelSizeX: vals[0],
		RotationY:  vals[1],
		RotationX:  vals[2],
		PixelSizeY: vals[3],
		OriginX:    vals[4],
		OriginY:    vals[5],
	}
	if w.RotationX != 0 || w.RotationY != 0 {
		return nil, fmt.Errorf("TFW %s: rotated world files are not supported", path)
	}
	return w, nil
}

// findTFW looks for a world-file sidecar next to a raster: the
// TIFF-specific .tfw/.tifw extensions, or the generic .wld extension used
// by formats with no TIFF-style convention of their own (WebP DOM tiles).
func findTFW(rasterPath string) string {
	ext := filepath.Ext(rasterPath)
	base := rasterPath[:len(rasterPath)-len(ext)]
	for _, c := range []string{".tfw", ".TFW", ".tifw", ".TIFW", ".wld", ".WLD"} {
		p := base + c
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// toGeoInfo converts TFW parameters into geoInfo. The TFW origin names the
// centre of the upper-left pixel; the rest of the package expects the
// corner, so it is shifted by half a pixel.
func (w *tfw) toGeoInfo() geoInfo {
	return geoInfo{
		PixelSizeX: math.Abs(w.PixelSizeX),
		PixelSizeY: math.Abs(w.PixelSizeY),
		OriginX:    w.OriginX - math.Abs(w.PixelSizeX)/2,
		OriginY:    w.OriginY + math.Abs(w.PixelSizeY)/2,
	}
}

// findPRJ looks for a .prj sidecar (WKT or proj-string) next to the raster.
func findPRJ(tiffPath string) string {
	ext := filepath.Ext(tiffPath)
	base := tiffPath[:len(tiffPath)-len(ext)]
	for _, c := range []string{".prj", ".PRJ"} {
		p := base + c
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
