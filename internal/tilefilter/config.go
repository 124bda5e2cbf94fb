package tilefilter

import (
	"errors"
	"fmt"
	"os"
	"runtime"
)

// DefaultThreshold is the horizontal gap (meters) above which two point
// groups count as separate clusters. Tuned for the USGS 1 km download
// footprints: well above within-tile point spacing, well below the gap
// between two accidentally merged flight tiles.
const DefaultThreshold = 100.0

// Config replaces the script-level shell variables of the original
// pipeline. Validate before running a batch.
type Config struct {
	InputRoot  string
	OutputRoot string
	// Threshold is the horizontal clustering gap T, in the tiles' CRS units.
	Threshold float64
	Workers   int
	// Overwrite allows clobbering existing outputs; without it an existing
	// output is a per-tile conflict failure.
	Overwrite bool
	// SkipExisting resumes an interrupted run by not dispatching tiles whose
	// mirrored output is already present.
	SkipExisting bool
	// IndexPath optionally points at the sampling-geopackage GeoJSON export
	// used for equal-size cluster tie-breaks.
	IndexPath string
	// ReportPath is where the decisions CSV goes. Empty disables the CSV.
	ReportPath string
	// PlotsDir enables QA scatter images for corrected tiles.
	PlotsDir string
	// CacheDir enables the per-tile decision cache.
	CacheDir string
	Quiet    bool
}

func DefaultConfig() Config {
	return Config{
		Threshold: DefaultThreshold,
		Workers:   runtime.NumCPU(),
	}
}

func (c *Config) Validate() error {
	if c.InputRoot == "" {
		return errors.New("input root is required")
	}
	info, err := os.Stat(c.InputRoot)
	if err != nil {
		return fmt.Errorf("input root: %v", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("input root %s is not a directory", c.InputRoot)
	}
	if c.OutputRoot == "" {
		return errors.New("output root is required")
	}
	if c.Threshold <= 0 {
		return fmt.Errorf("threshold must be positive, got %v", c.Threshold)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("worker count must be positive, got %d", c.Workers)
	}
	return nil
}
