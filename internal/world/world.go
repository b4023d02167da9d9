// Package world implements World (§4.6 / §2 item 7): it owns the DEM and
// DOM raster managers, derives the ray-march step from the camera's
// ground-sampling distance, and runs traceRay — the bounded search for a
// view ray's first intersection with the DEM surface.
package world

import (
	"math"

	"github.com/arcadia-render/atlas/internal/camera"
	"github.com/arcadia-render/atlas/internal/linalg"
	"github.com/arcadia-render/atlas/internal/manager"
	"github.com/arcadia-render/atlas/internal/sphereo"
)

// PixelData is the result of a single ray trace (§3): t is the ray
// parameter at the hit (+Inf on a miss), and (R, LonDeg, LatDeg) is the hit
// point in spherical coordinates — undefined and must not be read when T
// is +Inf.
type PixelData struct {
	T       float64
	R       float64
	LonDeg  float64
	LatDeg  float64
}

// Hit reports whether the trace found a finite intersection.
func (p PixelData) Hit() bool { return !math.IsInf(p.T, 1) }

// Miss is the canonical no-intersection result.
var Miss = PixelData{T: math.Inf(1)}

// refinementCap bounds findImpactLocation's bisection iterations so a
// pathological maxErr (too small relative to float64 precision at lunar
// distances) can never loop indefinitely (§4.6 "a fixed iteration cap").
const refinementCap = 40

// World owns the DEM and DOM and the derived ray-march step (§4.6).
type World struct {
	DEM *manager.DEM
	DOM *manager.DOM

	datum sphereo.Datum
	interp manager.Interpolation

	dt float64 // ray-march step, set by ComputeRayResolution
}

// New builds a World over the given DEM/DOM.
func New(dem *manager.DEM, dom *manager.DOM, datum sphereo.Datum) *World {
	return &World{DEM: dem, DOM: dom, datum: datum, interp: manager.NearestNeighbour}
}

func (w *World) RayResolution() float64    { return w.dt }
func (w *World) SetRayResolution(dt float64) { w.dt = dt }

func (w *World) MinRadius() float64 { return w.DEM.MinRadius() }
func (w *World) MaxRadius() float64 { return w.DEM.MaxRadius() }
func (w *World) MeanRadius() float64 { return w.DEM.MeanRadius() }

// ComputeRayResolution sets dt to roughly half the camera's ground
// sampling distance at mean radius, clamped to at least one DEM pixel of
// lateral displacement (§4.6). Interpolation is enabled when the camera
// resolves finer detail than the DEM stores.
func (w *World) ComputeRayResolution(cam *camera.Camera, fovRad float64) {
	gsd := computeGSD(cam, fovRad, w.MeanRadius())
	demRes := w.DEM.LowestResolution()

	dt := 0.5 * gsd
	if dt < demRes {
		dt = demRes
	}
	w.dt = dt

	if gsd < demRes {
		w.interp = manager.Bilinear
	} else {
		w.interp = manager.NearestNeighbour
	}
}

// computeGSD approximates the ground sampling distance: the angular size
// of one pixel times the mean radius (small-angle, nadir-looking
// approximation — the same one the camera's own FOV/resolution pair
// implies).
func computeGSD(cam *camera.Camera, fovRad, meanRadius float64) float64 {
	res := cam.Width()
	if cam.Height() > res {
		res = cam.Height()
	}
	anglePerPixel := fovRad / float64(res)
	return anglePerPixel * meanRadius
}

// Cleanup evicts dwell-expired bands from both the DEM and DOM managers
// (§4.3); the façade calls this once between frames, never mid-render.
func (w *World) Cleanup(threshold int) {
	w.DEM.Cleanup(threshold)
	w.DOM.Cleanup(threshold)
}

// SampleDEM returns the DEM altitude at (lonDeg,latDeg) using worker
// workerID's transformer, or manager.NoData on a miss.
func (w *World) SampleDEM(lonDeg, latDeg float64, workerID int) float64 {
	return w.DEM.GetAltitude(lonDeg, latDeg, w.interp, workerID)
}

// SampleDOM returns the DOM albedo at (lonDeg,latDeg), clamped to
// non-negative, or manager.NoData on a miss.
func (w *World) SampleDOM(lonDeg, latDeg float64, workerID int) float64 {
	return w.DOM.GetColor(lonDeg, latDeg, w.interp, workerID)
}

// TraceRay searches [tMin,tMax] for the ray's first intersection with the
// DEM surface (§4.6).
func (w *World) TraceRay(ray linalg.Ray, tMin, tMax float64, workerID int, maxErr float64) PixelData {
	maxRadius := w.MaxRadius()

	if ray.MinDistance() > maxRadius {
		return Miss
	}

	outerMin, outerMax, ok := ray.GetParameters(maxRadius)
	if !ok {
		return Miss
	}

	tStart := math.Max(tMin, outerMin)
	// §9: a march starting at a raw tvals[0] can be negative even when the
	// physically meaningful search begins at the camera; clamp to zero.
	tStart = math.Max(0, tStart)
	tEnd := math.Min(tMax, outerMax)
	if tStart > tEnd {
		return Miss
	}

	meanRadius := w.MeanRadius()
	dt := w.dt
	if dt <= 0 {
		dt = 1
	}

	prevT := tStart
	havePrev := false

	for t := tStart; t <= tEnd; t += dt {
		pos := ray.At(t)
		r, lon, lat := sphereo.ToSpherical(pos)

		h := w.SampleDEM(lon, lat, workerID)
		if h == manager.NoData {
			prevT, havePrev = t, true
			continue
		}

		if r <= meanRadius+h {
			lo, hi := prevT, t
			if !havePrev {
				lo = t
			}
			return w.findImpactLocation(ray, lo, hi, workerID, maxErr)
		}

		prevT, havePrev = t, true
	}

	return Miss
}

// findImpactLocation bisects the signed excursion r(t) − (meanRadius+h(t))
// between lo (outside or equal) and hi (inside) until it is within maxErr
// metres of zero or the iteration cap is hit (§4.6). A negative maxErr
// accepts the coarse sample hi outright.
func (w *World) findImpactLocation(ray linalg.Ray, lo, hi float64, workerID int, maxErr float64) PixelData {
	excursion := func(t float64) (signed float64, r, lon, lat float64) {
		pos := ray.At(t)
		r, lon, lat = sphereo.ToSpherical(pos)
		h := w.SampleDEM(lon, lat, workerID)
		if h == manager.NoData {
			h = 0
		}
		return r - (w.MeanRadius() + h), r, lon, lat
	}

	if maxErr < 0 {
		_, r, lon, lat := excursion(hi)
		return PixelData{T: hi, R: r, LonDeg: lon, LatDeg: lat}
	}

	fLo, _, _, _ := excursion(lo)
	fHi, r, lon, lat := excursion(hi)

	if fLo > 0 && fHi > 0 {
		// Both endpoints are above the surface: accept the coarse hit
		// rather than bisecting a sign-consistent interval.
		return PixelData{T: hi, R: r, LonDeg: lon, LatDeg: lat}
	}

	t := hi
	for i := 0; i < refinementCap; i++ {
		mid := 0.5 * (lo + hi)
		fMid, rMid, lonMid, latMid := excursion(mid)
		t, r, lon, lat = mid, rMid, lonMid, latMid

		if math.Abs(fMid) <= maxErr {
			break
		}

		if (fMid > 0) == (fLo > 0) {
			lo, fLo = mid, fMid
		} else {
			hi, fHi = mid, fMid
		}
	}

	return PixelData{T: t, R: r, LonDeg: lon, LatDeg: lat}
}
