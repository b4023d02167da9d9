// Package renderer implements Renderer (§4.8 / §2 item 6): the four-phase
// scheduling core that turns a Camera and a World into an ordered array of
// RenderedPixel, splitting work across a pool.Pool and adaptively tightening
// each ray's search interval from its neighbours' results.
package renderer

import "math"

// TaskedPixel is one unit of work handed to the pool: a pixel id and a set
// of (u,v) sub-pixel sample coordinates sharing a common search interval
// (§4.8 "basic"/"adaptive" phase 1, and the SSAA/defocus re-queue phases).
type TaskedPixel struct {
	ID       uint32
	TMin     float64
	TMax     float64
	U, V     []float64
}

// NewTaskedPixel builds a TaskedPixel with nSamples copies of the same
// centre sample, ready for updateSSAACoordinates or stochastic defocus
// sampling to perturb in place.
func NewTaskedPixel(id uint32, u, v, tMin, tMax float64, nSamples int) TaskedPixel {
	tp := TaskedPixel{ID: id, TMin: tMin, TMax: tMax, U: make([]float64, nSamples), V: make([]float64, nSamples)}
	for i := range tp.U {
		tp.U[i] = u
		tp.V[i] = v
	}
	return tp
}

// updateSSAACoordinates perturbs tp's u/v samples in place into the n=4/8/16
// sub-pixel offset pattern (§4.8 table). n must be one of those three sizes;
// any other value leaves tp unmodified, matching the upstream "unsupported
// sample count" rejection.
func updateSSAACoordinates(tp *TaskedPixel) {
	n := len(tp.U)
	u0, v0 := tp.U[0], tp.V[0]

	switch n {
	case 4:
		tp.U[0] = u0 - 0.25
		tp.U[1] = u0 + 0.25
		tp.U[2] = tp.U[0]
		tp.U[3] = tp.U[1]
		tp.V[0] = v0 - 0.25
		tp.V[1] = tp.V[0]
		tp.V[2] = v0 + 0.25
		tp.V[3] = tp.V[2]

	case 8:
		tp.U[0] = u0 - 0.25
		tp.U[1] = tp.U[0]
		tp.U[2] = tp.U[0]
		tp.U[5] = u0 + 0.25
		tp.U[6] = tp.U[5]
		tp.U[7] = tp.U[5]

		tp.V[0] = v0 - 0.25
		tp.V[2] = v0 + 0.25
		tp.V[3] = tp.V[0]
		tp.V[4] = tp.V[2]
		tp.V[5] = tp.V[0]
		tp.V[7] = tp.V[2]

	case 16:
		u := u0 - 0.375
		v := v0 - 0.375
		cnt := 0
		for i := 0; i < 4; i++ {
			for j := 0; j < 4; j++ {
				tp.U[cnt] = u + 0.25*float64(j)
				tp.V[cnt] = v + 0.25*float64(i)
				cnt++
			}
		}
	}
}

// PixelData is one sample's trace result: t is the ray parameter (+Inf on
// a miss), r/lon/lat are the hit's body-centric spherical coordinate (NaN
// on a miss). DOM albedo is not sampled here — the optical image writer
// resamples the DOM from (lon,lat) at export time instead, the same
// two-pass shape the original implementation uses (trace first, sample
// DOM per output pixel afterwards).
type PixelData struct {
	T      float64
	R      float64
	LonDeg float64
	LatDeg float64
}

// RenderedPixel is the accumulated result for one output pixel: every
// sample traced for it, plus the min/max t seen across those samples.
type RenderedPixel struct {
	ID   uint32
	Data []PixelData
	TMin float64
	TMax float64
}

// NewRenderedPixel starts an empty accumulator, mirroring the upstream
// constructor's tMin=+Inf/tMax=-Inf sentinels so the first AddSample always
// updates both bounds.
func NewRenderedPixel(id uint32) RenderedPixel {
	return RenderedPixel{ID: id, TMin: math.Inf(1), TMax: math.Inf(-1)}
}

// AddSample appends d and widens [TMin,TMax] to include it.
func (rp *RenderedPixel) AddSample(d PixelData) {
	rp.Data = append(rp.Data, d)
	if d.T < rp.TMin {
		rp.TMin = d.T
	}
	if d.T > rp.TMax {
		rp.TMax = d.T
	}
}

// CentreT is the first sample's t — the single deterministic centre ray
// traced in phase 1, before any SSAA/defocus re-queue replaces it.
func (rp RenderedPixel) CentreT() float64 {
	if len(rp.Data) == 0 {
		return math.Inf(1)
	}
	return rp.Data[0].T
}

// Hit reports whether the centre sample found a surface intersection.
func (rp RenderedPixel) Hit() bool { return !math.IsInf(rp.CentreT(), 1) }

// CentreCoord returns the centre sample's hit coordinate; callers must
// check Hit first, since a traced miss stores NaN here and a pixel with no
// samples returns (0, 0).
func (rp RenderedPixel) CentreCoord() (lonDeg, latDeg float64) {
	if len(rp.Data) == 0 {
		return 0, 0
	}
	return rp.Data[0].LonDeg, rp.Data[0].LatDeg
}

// MeanDistance sums the finite t of every sample, skipping misses in the
// sum, and divides by the total sample count, so each miss counts as zero
// (§9: the upstream accumulator starts from an uninitialised local; this
// one starts from Go's zero value, so an all-miss pixel correctly reports
// zero rather than garbage).
func (rp RenderedPixel) MeanDistance() float64 {
	if len(rp.Data) == 0 {
		return 0
	}
	var sum float64
	for _, d := range rp.Data {
		if !math.IsInf(d.T, 1) {
			sum += d.T
		}
	}
	return sum / float64(len(rp.Data))
}

// MeanRadius averages the finite R of every sample, skipping misses —
// the DEM altitude-map source (§6 "DEM image maps altitude into
// (r-minR)/(maxR-minR)").
func (rp RenderedPixel) MeanRadius() float64 {
	if len(rp.Data) == 0 {
		return 0
	}
	var sum float64
	var n int
	for _, d := range rp.Data {
		if !math.IsNaN(d.R) {
			sum += d.R
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
