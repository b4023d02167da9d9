// Command altitude reports the DEM altitude at one or more geographic
// points against a raster coverage, without running a full render — the
// narrow-purpose counterpart to cmd/raytrace, in the spirit of the
// teacher's cmd/debug single-purpose inspection tool.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/arcadia-render/atlas/internal/manager"
	"github.com/arcadia-render/atlas/internal/raster"
	"github.com/arcadia-render/atlas/internal/sphereo"
)

func main() {
	var demFiles string

	flag.StringVar(&demFiles, "dem", "", "Comma-separated list of DEM GeoTIFF files (required)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: altitude -dem <a.tif,b.tif,...> lon,lat [lon,lat ...]\n\n")
		fmt.Fprintf(os.Stderr, "Report DEM altitude at each lon,lat point (degrees).\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if demFiles == "" || flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	datum := sphereo.MoonDatum

	paths := strings.Split(demFiles, ",")
	files := make([]raster.Source, 0, len(paths))
	for _, p := range paths {
		f, err := raster.Open(p, 1, datum)
		if err != nil {
			log.Fatalf("Opening %s: %v", p, err)
		}
		defer f.Close()
		files = append(files, f)
	}

	dem, err := manager.NewDEM(files, datum)
	if err != nil {
		log.Fatalf("Building DEM: %v", err)
	}

	for _, arg := range flag.Args() {
		lon, lat, err := parseLonLat(arg)
		if err != nil {
			log.Fatalf("Parsing point %q: %v", arg, err)
		}

		alt := dem.GetAltitude(lon, lat, manager.Bilinear, 0)
		if alt == manager.NoData {
			fmt.Printf("%s: no data\n", arg)
			continue
		}
		fmt.Printf("%s: altitude=%.3fm radius=%.3fm\n", arg, alt, datum.MeanRadius+alt)
	}
}

func parseLonLat(s string) (lon, lat float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected lon,lat")
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, err
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, err
	}
	return lon, lat, nil
}
