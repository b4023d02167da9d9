// Command raytrace renders a lunar view from a configuration file
// describing the DEM/DOM coverage, camera pose, and rendering options,
// and exports the result as grayscale PNGs, a GCP file, and/or a binary
// ray-traced-info dump (§4.9, §6).
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"runtime/pprof"
	"strings"

	"github.com/arcadia-render/atlas/internal/camera"
	"github.com/arcadia-render/atlas/internal/config"
	"github.com/arcadia-render/atlas/internal/gio"
	"github.com/arcadia-render/atlas/internal/linalg"
	"github.com/arcadia-render/atlas/internal/logging"
	"github.com/arcadia-render/atlas/internal/manager"
	"github.com/arcadia-render/atlas/internal/raster"
	"github.com/arcadia-render/atlas/internal/raytracer"
	"github.com/arcadia-render/atlas/internal/renderer"
	"github.com/arcadia-render/atlas/internal/sphereo"
	"github.com/arcadia-render/atlas/internal/world"
)

func main() {
	var (
		configPath string
		width      int
		height     int
		fovDeg     float64
		posX       float64
		posY       float64
		posZ       float64
		outPrefix  string
		gcpStride  int
		gcpPath    string
		dumpPath   string
		cpuProfile string
	)

	flag.StringVar(&configPath, "config", "", "JSON settings file (required)")
	flag.IntVar(&width, "width", 1024, "Output image width in pixels")
	flag.IntVar(&height, "height", 1024, "Output image height in pixels")
	flag.Float64Var(&fovDeg, "fov", 30, "Full field of view in degrees")
	flag.Float64Var(&posX, "pos-x", 0, "Camera position X, metres, body-centric")
	flag.Float64Var(&posY, "pos-y", 0, "Camera position Y, metres, body-centric")
	flag.Float64Var(&posZ, "pos-z", 2_000_000, "Camera position Z, metres, body-centric")
	flag.StringVar(&outPrefix, "out", "render", "Output file prefix")
	flag.IntVar(&gcpStride, "gcp-stride", 0, "Ground-control-point sampling stride (0 = disabled)")
	flag.StringVar(&gcpPath, "gcp", "", "Ground-control-points output path (.csv or .txt)")
	flag.StringVar(&dumpPath, "dump", "", "Binary ray-traced-info output path")
	flag.StringVar(&cpuProfile, "cpuprofile", "", "Write CPU profile to file")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: raytrace -config <settings.json> [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Render a lunar view against a DEM/DOM raster coverage.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if configPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if cpuProfile != "" {
		f, err := os.Create(cpuProfile)
		if err != nil {
			log.Fatalf("Creating CPU profile: %v", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatalf("Starting CPU profile: %v", err)
		}
		defer pprof.StopCPUProfile()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Loading config: %v", err)
	}
	logger := logging.New(logging.ParseLevel(cfg.LogLevel))

	if len(cfg.World.DEMFiles) == 0 {
		log.Fatal("config: world.demFiles must list at least one raster file")
	}

	datum := sphereo.MoonDatum

	demFiles, err := openSources(cfg.World.DEMFiles, cfg.NThreads, datum)
	if err != nil {
		log.Fatalf("Opening DEM files: %v", err)
	}
	defer closeAll(demFiles)

	domFiles, err := openSources(cfg.World.DOMFiles, cfg.NThreads, datum)
	if err != nil {
		log.Fatalf("Opening DOM files: %v", err)
	}
	defer closeAll(domFiles)

	dem, err := manager.NewDEM(demFiles, datum)
	if err != nil {
		log.Fatalf("Building DEM: %v", err)
	}
	dom := manager.NewDOM(domFiles)

	w := world.New(dem, dom, datum)

	fovRad := fovDeg * math.Pi / 180
	cam := camera.NewPinhole(width, height, fovRad, linalg.Vec3{X: posX, Y: posY, Z: posZ}, linalg.Identity())

	rendererOpts := renderer.Options{
		GridWidth:       cfg.Renderer.GridWidth,
		GridHeight:      cfg.Renderer.GridHeight,
		AdaptiveTracing: cfg.Renderer.AdaptiveTracing,
		BatchSize:       cfg.Renderer.BatchSize,
		ProbeMargin:     cfg.Renderer.ProbeMargin,
		MaxErr:          cfg.Renderer.MaxErr,
		SSAA: renderer.SSAAOptions{
			Active:    cfg.Renderer.SSAA.Active,
			NSamples:  cfg.Renderer.SSAA.NSamples,
			Threshold: cfg.Renderer.SSAA.Threshold,
		},
		Defocus: renderer.DefocusOptions{NSamples: cfg.Renderer.Defocus.NSamples},
	}
	rend := renderer.New(cfg.NThreads, rendererOpts)

	rt := raytracer.New(w, rend, cfg.World.RasterUsageThreshold, logger)
	rt.AttachCamera(cam)

	pixels, err := rt.Run(fovRad)
	if err != nil {
		log.Fatalf("Render: %v", err)
	}

	if err := gio.WriteGray16File(outPrefix+"_depth.png", width, height, pixels, gio.DepthValue(0, maxFiniteT(pixels))); err != nil {
		log.Fatalf("Writing depth map: %v", err)
	}
	if err := gio.WriteGray8File(outPrefix+"_dem.png", width, height, pixels, gio.DEMValue(dem.MinRadius(), dem.MaxRadius())); err != nil {
		log.Fatalf("Writing DEM map: %v", err)
	}
	if len(domFiles) > 0 {
		if err := gio.WriteGray8File(outPrefix+"_dom.png", width, height, pixels, gio.DOMValue(w, 0)); err != nil {
			log.Fatalf("Writing DOM map: %v", err)
		}
	}

	if gcpPath != "" {
		stride := gcpStride
		if stride < 1 {
			stride = 1
		}
		if err := gio.WriteGCP(gcpPath, width, height, pixels, stride); err != nil {
			log.Fatalf("Writing GCP file: %v", err)
		}
	}

	if dumpPath != "" {
		if err := rt.ExportRayTracedInfo(dumpPath); err != nil {
			log.Fatalf("Exporting ray-traced info: %v", err)
		}
	}

	logger.Minimalf("done")
}

// openSources opens each path as a raster.Source, dispatching by extension:
// ".webp" routes through raster.OpenWebP (a WebP orthophoto tile with a
// .wld sidecar), everything else through raster.Open (GeoTIFF).
func openSources(paths []string, nThreads int, datum sphereo.Datum) ([]raster.Source, error) {
	files := make([]raster.Source, 0, len(paths))
	for _, p := range paths {
		var (
			src raster.Source
			err error
		)
		if strings.EqualFold(filepath.Ext(p), ".webp") {
			src, err = raster.OpenWebP(p, nThreads, datum)
		} else {
			src, err = raster.Open(p, nThreads, datum)
		}
		if err != nil {
			for _, opened := range files {
				opened.Close()
			}
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		files = append(files, src)
	}
	return files, nil
}

func closeAll(files []raster.Source) {
	for _, f := range files {
		f.Close()
	}
}

func maxFiniteT(pixels []renderer.RenderedPixel) float64 {
	max := 0.0
	for _, p := range pixels {
		if p.Hit() && p.CentreT() > max {
			max = p.CentreT()
		}
	}
	return max
}
