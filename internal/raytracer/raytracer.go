// Package raytracer implements the RayTracer façade (§4.9 / §2 item 8):
// the single entry point gluing a Camera, a World and a Renderer together,
// plus the closed-form altitude probe and the export/import operations.
// Orchestration follows the teacher's cmd/geotiff2pmtiles/main.go pattern
// of assembling long-lived components once and driving them through a
// small number of top-level calls.
package raytracer

import (
	"fmt"
	"math"

	"github.com/arcadia-render/atlas/internal/camera"
	"github.com/arcadia-render/atlas/internal/gio"
	"github.com/arcadia-render/atlas/internal/linalg"
	"github.com/arcadia-render/atlas/internal/logging"
	"github.com/arcadia-render/atlas/internal/manager"
	"github.com/arcadia-render/atlas/internal/renderer"
	"github.com/arcadia-render/atlas/internal/world"
)

// RayTracer owns every long-lived component of a rendering session: the
// world (DEM/DOM), the renderer (pool + scheduling options), and the
// currently attached camera.
type RayTracer struct {
	World    *world.World
	Renderer *renderer.Renderer
	Log      *logging.Logger

	cam *camera.Camera

	rasterUsageThreshold int
}

// New assembles a RayTracer from an already-built World and Renderer.
func New(w *world.World, r *renderer.Renderer, rasterUsageThreshold int, log *logging.Logger) *RayTracer {
	if log == nil {
		log = logging.New(logging.Minimal)
	}
	return &RayTracer{World: w, Renderer: r, Log: log, rasterUsageThreshold: rasterUsageThreshold}
}

// AttachCamera sets the camera a subsequent Run renders through.
func (rt *RayTracer) AttachCamera(cam *camera.Camera) { rt.cam = cam }

// Run executes one full render (§4.9 "run()"): enforces a camera is
// attached, evicts dwell-expired raster bands, derives the ray-march step
// from the camera's field of view, and drives the renderer through its
// four phases.
func (rt *RayTracer) Run(fovRad float64) ([]renderer.RenderedPixel, error) {
	if rt.cam == nil {
		return nil, fmt.Errorf("raytracer: no camera attached")
	}

	rt.World.Cleanup(rt.rasterUsageThreshold)
	rt.World.ComputeRayResolution(rt.cam, fovRad)

	rt.Log.Minimalf("rendering %dx%d, dt=%.3fm", rt.cam.Width(), rt.cam.Height(), rt.World.RayResolution())
	pixels := rt.Renderer.Render(rt.cam, rt.World)
	rt.Log.Minimalf("render complete: status=%v", rt.Renderer.Status())
	return pixels, nil
}

// GetAltitude shoots a single ray from pos toward the body centre (along
// -pos/|pos|) and returns the closed-form altitude |pos| - DEM(lon,lat) at
// the hit's spherical coordinate — independent of the marched t (§4.9).
func (rt *RayTracer) GetAltitude(pos linalg.Vec3, workerID int, maxErr float64) (float64, bool) {
	r := pos.Length()
	if r == 0 {
		return 0, false
	}
	dir := pos.Scale(-1 / r)
	ray := linalg.NewRay(pos, dir)

	hit := rt.World.TraceRay(ray, 0, math.Inf(1), workerID, maxErr)
	if !hit.Hit() {
		return 0, false
	}

	alt := rt.World.SampleDEM(hit.LonDeg, hit.LatDeg, workerID)
	if alt == manager.NoData {
		return 0, false
	}
	return r - (rt.World.MeanRadius() + alt), true
}

// GetAltitudeAt is a convenience wrapper computing altitude above a
// geographic point directly rather than via a ray cast, used by callers
// that already have (lon,lat) rather than a Cartesian position.
func (rt *RayTracer) GetAltitudeAt(lonDeg, latDeg float64, workerID int) (float64, bool) {
	alt := rt.World.SampleDEM(lonDeg, latDeg, workerID)
	if alt == manager.NoData {
		return 0, false
	}
	return alt, true
}

// ExportRayTracedInfo persists the last Run's output (§6).
func (rt *RayTracer) ExportRayTracedInfo(path string) error {
	if rt.cam == nil {
		return fmt.Errorf("raytracer: no camera attached")
	}
	return gio.ExportRayTracedInfo(path, rt.cam, rt.Renderer.Pixels())
}

// ImportRayTracedInfo restores a previously exported render, validating
// resolution and setting the renderer's status to COMPLETED (§6).
func (rt *RayTracer) ImportRayTracedInfo(path string) error {
	if rt.cam == nil {
		return fmt.Errorf("raytracer: no camera attached")
	}
	pixels, err := gio.ImportRayTracedInfo(path, rt.cam)
	if err != nil {
		return err
	}
	rt.Renderer.ImportRenderedPixels(pixels)
	return nil
}

// ExportGCP writes a ground-control-points file sampling every stride-th
// pixel of the last render (§6).
func (rt *RayTracer) ExportGCP(path string, stride int) error {
	if rt.cam == nil {
		return fmt.Errorf("raytracer: no camera attached")
	}
	return gio.WriteGCP(path, rt.cam.Width(), rt.cam.Height(), rt.Renderer.Pixels(), stride)
}
