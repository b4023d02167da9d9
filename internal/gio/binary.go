package gio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/arcadia-render/atlas/internal/camera"
	"github.com/arcadia-render/atlas/internal/linalg"
	"github.com/arcadia-render/atlas/internal/renderer"
)

// ExportRayTracedInfo writes the little-endian binary dump of §6
// ("Ray-traced info binary dump"): camera intrinsics/pose, then every
// pixel's sample list.
func ExportRayTracedInfo(path string, cam *camera.Camera, pixels []renderer.RenderedPixel) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("gio: creating %s: %w", path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)

	if err := binary.Write(w, binary.LittleEndian, uint32(cam.Width())); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(cam.Height())); err != nil {
		return err
	}

	pos := cam.Position()
	posArr := [3]float64{pos.X, pos.Y, pos.Z}
	if err := binary.Write(w, binary.LittleEndian, posArr); err != nil {
		return err
	}

	dcm := cam.DCM()
	if err := binary.Write(w, binary.LittleEndian, [9]float64(dcm)); err != nil {
		return err
	}

	if err := binary.Write(w, binary.LittleEndian, uint64(len(pixels))); err != nil {
		return err
	}

	for _, rp := range pixels {
		if err := binary.Write(w, binary.LittleEndian, rp.ID); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint64(len(rp.Data))); err != nil {
			return err
		}
		for _, d := range rp.Data {
			if err := binary.Write(w, binary.LittleEndian, d.T); err != nil {
				return err
			}
			if err := binary.Write(w, binary.LittleEndian, d.R); err != nil {
				return err
			}
			if err := binary.Write(w, binary.LittleEndian, d.LonDeg); err != nil {
				return err
			}
			if err := binary.Write(w, binary.LittleEndian, d.LatDeg); err != nil {
				return err
			}
		}
	}

	return w.Flush()
}

// ImportRayTracedInfo reads the dump written by ExportRayTracedInfo,
// validating camWidth/camHeight against cam and, on success, restoring
// the camera's pose/DCM and returning the rendered pixel buffer (§6:
// "restores pose+DCM on the camera, fills the renderer buffer").
func ImportRayTracedInfo(path string, cam *camera.Camera) ([]renderer.RenderedPixel, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gio: opening %s: %w", path, err)
	}
	defer file.Close()

	r := bufio.NewReader(file)

	var width, height uint32
	if err := binary.Read(r, binary.LittleEndian, &width); err != nil {
		return nil, fmt.Errorf("gio: reading camWidth: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &height); err != nil {
		return nil, fmt.Errorf("gio: reading camHeight: %w", err)
	}
	if int(width) != cam.Width() || int(height) != cam.Height() {
		return nil, fmt.Errorf("gio: dump resolution %dx%d does not match camera %dx%d", width, height, cam.Width(), cam.Height())
	}

	var posArr [3]float64
	if err := binary.Read(r, binary.LittleEndian, &posArr); err != nil {
		return nil, fmt.Errorf("gio: reading camPosition: %w", err)
	}

	var dcmArr [9]float64
	if err := binary.Read(r, binary.LittleEndian, &dcmArr); err != nil {
		return nil, fmt.Errorf("gio: reading camDCM: %w", err)
	}

	var nPixels uint64
	if err := binary.Read(r, binary.LittleEndian, &nPixels); err != nil {
		return nil, fmt.Errorf("gio: reading nPixels: %w", err)
	}

	pixels := make([]renderer.RenderedPixel, nPixels)
	for i := range pixels {
		var id uint32
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			return nil, fmt.Errorf("gio: reading pixelId %d: %w", i, err)
		}
		var nSamples uint64
		if err := binary.Read(r, binary.LittleEndian, &nSamples); err != nil {
			return nil, fmt.Errorf("gio: reading nSamples for pixel %d: %w", id, err)
		}

		rp := renderer.NewRenderedPixel(id)
		for s := uint64(0); s < nSamples; s++ {
			var t, rad, lonDeg, latDeg float64
			if err := readFloats(r, &t, &rad, &lonDeg, &latDeg); err != nil {
				return nil, fmt.Errorf("gio: reading sample %d of pixel %d: %w", s, id, err)
			}
			rp.AddSample(renderer.PixelData{T: t, R: rad, LonDeg: lonDeg, LatDeg: latDeg})
		}
		pixels[i] = rp
	}

	cam.SetPosition(linalg.Vec3{X: posArr[0], Y: posArr[1], Z: posArr[2]})
	cam.SetDCM(linalg.DCM(dcmArr))

	return pixels, nil
}

func readFloats(r io.Reader, vals ...*float64) error {
	for _, v := range vals {
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return nil
}
