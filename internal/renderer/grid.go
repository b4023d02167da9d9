package renderer

import "math"

// screenGrid is a coarse probe grid superimposed on the camera's pixel
// raster (§4.8 "Setup"): width x height probes, each holding the outer- and
// inner-sphere t-bounds computed from a centred pinhole ray. It also
// decides tracing orientation via isRowAdaptiveRendering (§4.8 "Adaptive"),
// grounded on the upstream ScreenGrid's column-major rayDistances layout.
type screenGrid struct {
	width, height int

	// rayDistances holds, for every probe, the probe's sphere-bound tMax
	// (setupProbeGrid stores the same value it stores as tMax) or +Inf when
	// the probe ray misses the outer sphere, stored column-major (v + u*height) to match
	// the per-column/per-row excursion scan below.
	rayDistances []float64

	tMin []float64
	tMax []float64
}

func newScreenGrid(width, height int) *screenGrid {
	n := width * height
	g := &screenGrid{width: width, height: height}
	g.rayDistances = make([]float64, n)
	g.tMin = make([]float64, n)
	g.tMax = make([]float64, n)
	for i := range g.rayDistances {
		g.rayDistances[i] = math.Inf(1)
	}
	return g
}

func (g *screenGrid) index(u, v int) int { return v + u*g.height }

func (g *screenGrid) set(u, v int, dist, tMin, tMax float64) {
	i := g.index(u, v)
	g.rayDistances[i] = dist
	g.tMin[i] = tMin
	g.tMax[i] = tMax
}

// bounds returns the probe's stored (tMin,tMax) at grid coordinate (u,v).
func (g *screenGrid) bounds(u, v int) (tMin, tMax float64) {
	i := g.index(u, v)
	return g.tMin[i], g.tMax[i]
}

// getGPixelGridCoordinates recovers (ug,vg) from a linear grid id, row-
// major, gid = ug + vg*width (§9(d): the upstream version subtracts two always-positive uint32
// values with no bound on gid, an overflow risk if gid ever exceeded
// width*height — this version rejects such a gid outright instead).
func (g *screenGrid) getGPixelGridCoordinates(gid int) (ug, vg int, ok bool) {
	if gid < 0 || gid >= g.width*g.height {
		return 0, 0, false
	}
	vg = gid / g.width
	ug = gid - vg*g.width
	return ug, vg, true
}

// isRowAdaptiveRendering compares the mean per-column vs per-row excursion
// (max-min finite ray distance) of the probe grid, and reports whether rows
// vary more than columns — the orientation generateAdaptiveRenderTasks
// should march along (§4.8).
func (g *screenGrid) isRowAdaptiveRendering() bool {
	var cMeanDist, rMeanDist float64

	for u := 0; u < g.width; u++ {
		dMin, dMax := math.Inf(1), math.Inf(-1)
		for v := 0; v < g.height; v++ {
			dj := g.rayDistances[g.index(u, v)]
			if !math.IsInf(dj, 1) {
				dMin = math.Min(dMin, dj)
				dMax = math.Max(dMax, dj)
			}
		}
		if dMax > 0 {
			cMeanDist += dMax - dMin
		}
	}

	for v := 0; v < g.height; v++ {
		dMin, dMax := math.Inf(1), math.Inf(-1)
		for u := 0; u < g.width; u++ {
			dj := g.rayDistances[g.index(u, v)]
			if !math.IsInf(dj, 1) {
				dMin = math.Min(dMin, dj)
				dMax = math.Max(dMax, dj)
			}
		}
		if dMax > 0 {
			rMeanDist += dMax - dMin
		}
	}

	cMeanDist /= float64(g.width)
	rMeanDist /= float64(g.height)

	return rMeanDist > cMeanDist
}

// bilinearBounds interpolates the four enclosing probes' (tMin,tMax) at a
// fractional grid position, for the "basic" phase-1 strategy (§4.8).
func (g *screenGrid) bilinearBounds(gu, gv float64) (tMin, tMax float64) {
	u0 := int(math.Floor(gu))
	v0 := int(math.Floor(gv))
	u1, v1 := u0+1, v0+1

	u0 = clampInt(u0, 0, g.width-1)
	u1 = clampInt(u1, 0, g.width-1)
	v0 = clampInt(v0, 0, g.height-1)
	v1 = clampInt(v1, 0, g.height-1)

	fu := gu - math.Floor(gu)
	fv := gv - math.Floor(gv)

	lerp := func(vals []float64) float64 {
		a := vals[g.index(u0, v0)]*(1-fu) + vals[g.index(u1, v0)]*fu
		b := vals[g.index(u0, v1)]*(1-fu) + vals[g.index(u1, v1)]*fu
		return a*(1-fv) + b*fv
	}

	return lerp(g.tMin), lerp(g.tMax)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
