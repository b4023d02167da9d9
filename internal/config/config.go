// Package config loads the JSON settings document recognised by the
// raytrace CLI (spec.md §6 "Configuration"), grounded on the teacher's
// main.go practice of assembling a typed config struct ahead of the
// pipeline it drives, with encoding/json replacing flag parsing for the
// nested per-component option groups the RenderingOptions/WorldOptions/
// RayTracerOptions split in original_source/include/atlas/settings.h
// calls for.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// SSAA mirrors original_source's SSAAOptions (§4.8, §6).
type SSAA struct {
	Active    bool    `json:"active"`
	NSamples  int     `json:"nSamples"`
	Threshold float64 `json:"threshold"`
}

// Defocus configures Phase 2b re-sampling.
type Defocus struct {
	NSamples int `json:"nSamples"`
}

// World lists the raster datasets and the dwell-based eviction threshold
// (§4.3, §4.4, §6 "world.demFiles", "world.domFiles", "rasterUsageThreshold").
type World struct {
	DEMFiles             []string `json:"demFiles"`
	DOMFiles             []string `json:"domFiles"`
	RasterUsageThreshold int      `json:"rasterUsageThreshold"`
	// MinRes is decoded from the settings file (supplements
	// original_source's WorldOptions.minRes, dropped from spec.md's
	// distillation); nothing in this module reads it, so it does not affect
	// the ray-march step.
	MinRes float64 `json:"minRes"`
}

// Renderer configures the tracing/AA/defocus pipeline (§4.8, §6).
type Renderer struct {
	GridWidth             int     `json:"gridWidth"`
	GridHeight            int     `json:"gridHeight"`
	AdaptiveTracing       bool    `json:"adaptiveTracing"`
	BatchSize             int     `json:"batchSize"`
	ProbeMargin           float64 `json:"probeMargin"`
	MaxErr                float64 `json:"maxErr"`
	SSAA                  SSAA    `json:"ssaa"`
	Defocus               Defocus `json:"defocus"`
}

// Config is the root settings document (§6 "Configuration").
type Config struct {
	NThreads int      `json:"nThreads"`
	LogLevel string   `json:"logLevel"`
	World    World    `json:"world"`
	Renderer Renderer `json:"renderer"`
}

// Default returns a Config populated with the documented defaults
// (§6, original_source/include/atlas/settings.h).
func Default() Config {
	return Config{
		NThreads: 1,
		LogLevel: "MINIMAL",
		World: World{
			RasterUsageThreshold: 2,
			MinRes:               1,
		},
		Renderer: Renderer{
			GridWidth:       128,
			GridHeight:      128,
			AdaptiveTracing: true,
			BatchSize:       64,
			ProbeMargin:     1.0,
			MaxErr:          1.0,
			SSAA:            SSAA{Active: true, NSamples: 4, Threshold: 3.0},
			Defocus:         Defocus{NSamples: 8},
		},
	}
}

// Load reads and decodes a JSON settings document at path, starting from
// Default so an omitted field keeps its documented default rather than
// zeroing out.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.NThreads < 1 {
		return Config{}, fmt.Errorf("config %s: nThreads must be >= 1, got %d", path, cfg.NThreads)
	}
	return cfg, nil
}
