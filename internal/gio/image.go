// Package gio implements the export/import formats of spec.md §6:
// grayscale image maps, ground-control-point text files, and the binary
// ray-traced-info dump.
package gio

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"os"

	"github.com/arcadia-render/atlas/internal/manager"
	"github.com/arcadia-render/atlas/internal/renderer"
	"github.com/arcadia-render/atlas/internal/world"
)

// ValueFunc maps a RenderedPixel to a normalised scalar in [0,1]; the three
// image kinds of §6 differ only in this function.
type ValueFunc func(rp renderer.RenderedPixel) float64

// DOMValue resamples the DOM at each hit sample's persisted (lon,lat) and
// averages the result, normalised by 255 (§6 "already in [0,255] domain,
// thus normalised by 255*n"). The trace itself does not carry albedo —
// the binary dump (§6) persists only t/r/lon/lat, so the optical image
// has to be regenerated the same way whether the pixels came from a live
// render or gio.ImportRayTracedInfo, mirroring the original
// generateImageOptical's second pass over World.sampleDOM after tracing.
func DOMValue(w *world.World, workerID int) ValueFunc {
	return func(rp renderer.RenderedPixel) float64 {
		var sum float64
		var n int
		for _, d := range rp.Data {
			if math.IsInf(d.T, 1) {
				continue
			}
			v := w.SampleDOM(d.LonDeg, d.LatDeg, workerID)
			if v == manager.NoData {
				continue
			}
			sum += v
			n++
		}
		if n == 0 {
			return 0
		}
		return clamp01(sum / (255.0 * float64(n)))
	}
}

// DEMValue normalises a DEM pixel's hit radius into (r-minR)/(maxR-minR)
// (§6). minR/maxR come from the World/DEM that produced the render.
func DEMValue(minR, maxR float64) ValueFunc {
	span := maxR - minR
	return func(rp renderer.RenderedPixel) float64 {
		if !rp.Hit() || span <= 0 {
			return 0
		}
		return clamp01((rp.MeanRadius() - minR) / span)
	}
}

// DepthValue maps (maxT-t)/(maxT-minT) so near is bright (§6).
func DepthValue(minT, maxT float64) ValueFunc {
	span := maxT - minT
	return func(rp renderer.RenderedPixel) float64 {
		t := rp.CentreT()
		if math.IsInf(t, 1) || span <= 0 {
			return 0
		}
		return clamp01((maxT - t) / span)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// WriteGray8 writes an 8-bit grayscale PNG of width x height pixels, value
// scaled by 255.999 per §6.
func WriteGray8(w io.Writer, width, height int, pixels []renderer.RenderedPixel, f ValueFunc) error {
	if len(pixels) != width*height {
		return fmt.Errorf("gio: %d pixels does not match %dx%d", len(pixels), width, height)
	}
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i, rp := range pixels {
		v := f(rp) * 255.999
		img.Pix[i] = uint8(v)
	}
	return png.Encode(w, img)
}

// WriteGray16 writes a 16-bit grayscale PNG, value scaled by 65535.999.
func WriteGray16(w io.Writer, width, height int, pixels []renderer.RenderedPixel, f ValueFunc) error {
	if len(pixels) != width*height {
		return fmt.Errorf("gio: %d pixels does not match %dx%d", len(pixels), width, height)
	}
	img := image.NewGray16(image.Rect(0, 0, width, height))
	for i, rp := range pixels {
		v := uint16(f(rp) * 65535.999)
		img.Pix[2*i] = uint8(v >> 8)
		img.Pix[2*i+1] = uint8(v)
	}
	return png.Encode(w, img)
}

// WriteGray8File/WriteGray16File are WriteGray8/WriteGray16 convenience
// wrappers over a destination path.
func WriteGray8File(path string, width, height int, pixels []renderer.RenderedPixel, f ValueFunc) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("gio: creating %s: %w", path, err)
	}
	defer file.Close()
	return WriteGray8(file, width, height, pixels, f)
}

func WriteGray16File(path string, width, height int, pixels []renderer.RenderedPixel, f ValueFunc) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("gio: creating %s: %w", path, err)
	}
	defer file.Close()
	return WriteGray16(file, width, height, pixels, f)
}
