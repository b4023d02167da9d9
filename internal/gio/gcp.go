package gio

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arcadia-render/atlas/internal/renderer"
)

// WriteGCP writes a ground-control-points text file (§6): one line per
// sampled pixel, "u<d>v<d>lon<d>lat<d>", only for pixels with a finite
// centre t, every stride-th pixel in both dimensions. The field separator
// is ", " for a .csv path and " " for a .txt path (§6); any other
// extension is a configuration error, matching the original generateGCPs'
// refusal to guess a delimiter for an unrecognised output format.
func WriteGCP(path string, width, height int, pixels []renderer.RenderedPixel, stride int) error {
	if stride < 1 {
		stride = 1
	}
	if len(pixels) != width*height {
		return fmt.Errorf("gio: %d pixels does not match %dx%d", len(pixels), width, height)
	}

	var sep string
	switch ext := filepath.Ext(path); {
	case strings.EqualFold(ext, ".csv"):
		sep = ", "
	case strings.EqualFold(ext, ".txt"):
		sep = " "
	default:
		return fmt.Errorf("gio: %s: unsupported GCP extension %q (want .csv or .txt)", path, ext)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("gio: creating %s: %w", path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	defer w.Flush()

	for v := 0; v < height; v += stride {
		for u := 0; u < width; u += stride {
			rp := pixels[v*width+u]
			if !rp.Hit() {
				continue
			}
			lonDeg, latDeg := rp.CentreCoord()
			if _, err := fmt.Fprintf(w, "%d%s%d%s%g%s%g%s\n", u, sep, v, sep, lonDeg, sep, latDeg, sep); err != nil {
				return fmt.Errorf("gio: writing %s: %w", path, err)
			}
		}
	}
	return nil
}
