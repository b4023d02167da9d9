package renderer

// SSAAOptions configures Phase 2a re-sampling (§4.8), grounded on the
// upstream SSAAOptions defaults (4 samples, active, threshold 3, margin 1).
type SSAAOptions struct {
	Active    bool
	NSamples  int     // one of 4, 8, 16
	Threshold float64 // flag a pixel when a neighbour's |Δt| exceeds Threshold*dt
}

// DefaultSSAAOptions mirrors the upstream SSAAOptions defaults.
func DefaultSSAAOptions() SSAAOptions {
	return SSAAOptions{Active: true, NSamples: 4, Threshold: 3.0}
}

// DefocusOptions configures Phase 2b stochastic lens sampling.
type DefocusOptions struct {
	NSamples int
}

// DefaultDefocusOptions mirrors a conservative upstream-style default.
func DefaultDefocusOptions() DefocusOptions {
	return DefocusOptions{NSamples: 8}
}

// Options configures a Renderer (§4.8), grounded on the upstream
// RenderingOptions (grid 128x128, adaptive tracing on).
type Options struct {
	GridWidth, GridHeight int
	AdaptiveTracing       bool
	BatchSize             int // pixels per pool task; default 64
	ProbeMargin           float64 // adaptive-tracing tMax tightening margin
	MaxErr                float64 // World.TraceRay bisection tolerance, metres
	SSAA                  SSAAOptions
	Defocus               DefocusOptions
}

// DefaultOptions mirrors the upstream RenderingOptions defaults.
func DefaultOptions() Options {
	return Options{
		GridWidth:       128,
		GridHeight:      128,
		AdaptiveTracing: true,
		BatchSize:       64,
		ProbeMargin:     1.0,
		MaxErr:          1.0,
		SSAA:            DefaultSSAAOptions(),
		Defocus:         DefaultDefocusOptions(),
	}
}
