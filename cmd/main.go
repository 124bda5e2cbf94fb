package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"

	"github.com/martianxiu/usgs-data-analysis/internal/las"
	"github.com/martianxiu/usgs-data-analysis/internal/notification"
	"github.com/martianxiu/usgs-data-analysis/internal/properties"
	"github.com/martianxiu/usgs-data-analysis/internal/tilefilter"
)

func printBanner() {
	banner := figure.NewFigure("Tile Filter", "", true)
	color.Cyan(banner.String())
	fmt.Println()
}

func main() {
	properties.Load()

	defaults := tilefilter.DefaultConfig()

	in := flag.String("in", "", "input tile root (<root>/<region>/<tile>.las)")
	out := flag.String("out", "", "output root, mirrors the input layout")
	threshold := flag.Float64("threshold", defaults.Threshold, "horizontal gap (m) separating two clusters")
	workers := flag.Int("workers", defaults.Workers, "worker pool size")
	overwrite := flag.Bool("overwrite", false, "allow overwriting existing outputs")
	skipExisting := flag.Bool("skip-existing", false, "resume: skip tiles whose output already exists")
	index := flag.String("index", "", "optional sampling-index GeoJSON for tie-break centroids")
	report := flag.String("report", "", "decisions CSV path (default <out>/decisions.csv)")
	plots := flag.String("plots", "", "optional directory for QA images of corrected tiles")
	cacheDir := flag.String("cache", "", "optional decision cache directory")
	quiet := flag.Bool("quiet", false, "suppress banner and per-tile output")
	flag.Parse()

	// Relative roots resolve against DATA_ROOT when set, so batch scripts
	// can keep using short region paths.
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) || properties.DataRoot() == "" {
			return p
		}
		return filepath.Join(properties.DataRoot(), p)
	}

	cfg := tilefilter.Config{
		InputRoot:    resolve(*in),
		OutputRoot:   resolve(*out),
		Threshold:    *threshold,
		Workers:      *workers,
		Overwrite:    *overwrite,
		SkipExisting: *skipExisting,
		IndexPath:    *index,
		ReportPath:   *report,
		PlotsDir:     *plots,
		CacheDir:     *cacheDir,
		Quiet:        *quiet,
	}
	if cfg.ReportPath == "" && cfg.OutputRoot != "" {
		cfg.ReportPath = filepath.Join(cfg.OutputRoot, "decisions.csv")
	}

	if err := cfg.Validate(); err != nil {
		color.Red("Invalid configuration: %v", err)
		flag.Usage()
		os.Exit(1)
	}

	if !cfg.Quiet {
		printBanner()
		fmt.Printf("Input: %s\nOutput: %s\nThreshold: %.1f, workers: %d\n\n", cfg.InputRoot, cfg.OutputRoot, cfg.Threshold, cfg.Workers)
	}

	// Ctrl-C finishes in-flight tiles, then stops dispatching.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, _, err := tilefilter.Run(ctx, cfg, las.Open)
	if err != nil {
		color.Red("Batch aborted: %v", err)
		notification.SendRunSummary(err.Error(), false)
		os.Exit(1)
	}

	if summary.Failed > 0 {
		color.Yellow("\nDone with failures: %s", summary)
	} else {
		color.Green("\nDone: %s", summary)
	}

	if err := notification.SendRunSummary(summary.String(), summary.Failed == 0); err != nil {
		color.Yellow("Discord notification failed: %v", err)
	}
}
