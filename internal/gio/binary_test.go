package gio

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/arcadia-render/atlas/internal/camera"
	"github.com/arcadia-render/atlas/internal/linalg"
	"github.com/arcadia-render/atlas/internal/renderer"
)

func TestRayTracedInfoRoundTrip(t *testing.T) {
	cam := camera.NewPinhole(4, 3, math.Pi/3, linalg.Vec3{X: 1, Y: 2, Z: 3}, linalg.Identity())

	pixels := make([]renderer.RenderedPixel, 12)
	for i := range pixels {
		rp := renderer.NewRenderedPixel(uint32(i))
		rp.AddSample(renderer.PixelData{T: float64(i), R: 1737400 + float64(i), LonDeg: float64(i), LatDeg: -float64(i)})
		pixels[i] = rp
	}

	path := filepath.Join(t.TempDir(), "dump.bin")
	if err := ExportRayTracedInfo(path, cam, pixels); err != nil {
		t.Fatalf("export: %v", err)
	}

	// A fresh camera with the same resolution but a different pose; import
	// must restore position/DCM and reproduce the pixel buffer.
	cam2 := camera.NewPinhole(4, 3, math.Pi/3, linalg.Vec3{}, linalg.Identity())
	got, err := ImportRayTracedInfo(path, cam2)
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	if cam2.Position().Sub(linalg.Vec3{X: 1, Y: 2, Z: 3}).Length() > 1e-12 {
		t.Errorf("position not restored: %+v", cam2.Position())
	}

	if len(got) != len(pixels) {
		t.Fatalf("got %d pixels, want %d", len(got), len(pixels))
	}
	for i, rp := range got {
		want := pixels[i]
		if rp.ID != want.ID || rp.Data[0].T != want.Data[0].T || rp.Data[0].R != want.Data[0].R {
			t.Errorf("pixel %d round-trip mismatch: got %+v, want %+v", i, rp.Data[0], want.Data[0])
		}
	}
}

func TestImportRayTracedInfoRejectsResolutionMismatch(t *testing.T) {
	cam := camera.NewPinhole(4, 3, math.Pi/3, linalg.Vec3{}, linalg.Identity())
	pixels := []renderer.RenderedPixel{renderer.NewRenderedPixel(0)}

	path := filepath.Join(t.TempDir(), "dump.bin")
	if err := ExportRayTracedInfo(path, cam, pixels); err != nil {
		t.Fatalf("export: %v", err)
	}

	wrongRes := camera.NewPinhole(8, 6, math.Pi/3, linalg.Vec3{}, linalg.Identity())
	if _, err := ImportRayTracedInfo(path, wrongRes); err == nil {
		t.Error("expected an error importing into a differently-sized camera")
	}
}

func TestWriteGCPSkipsMisses(t *testing.T) {
	pixels := make([]renderer.RenderedPixel, 4)
	pixels[0] = renderer.NewRenderedPixel(0)
	pixels[0].AddSample(renderer.PixelData{T: 10, LonDeg: 1, LatDeg: 2})
	pixels[1] = renderer.NewRenderedPixel(1)
	pixels[1].AddSample(renderer.PixelData{T: math.Inf(1)})
	pixels[2] = renderer.NewRenderedPixel(2)
	pixels[2].AddSample(renderer.PixelData{T: 20, LonDeg: 3, LatDeg: 4})
	pixels[3] = renderer.NewRenderedPixel(3)
	pixels[3].AddSample(renderer.PixelData{T: math.Inf(1)})

	path := filepath.Join(t.TempDir(), "gcp.txt")
	if err := WriteGCP(path, 2, 2, pixels, 1); err != nil {
		t.Fatalf("WriteGCP: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading gcp file: %v", err)
	}
	lines := splitNonEmpty(string(data))
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2 (misses skipped): %q", len(lines), string(data))
	}
}

func splitNonEmpty(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}
