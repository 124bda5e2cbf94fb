package tilefilter

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gammazero/workerpool"
	"github.com/schollz/progressbar/v3"

	"github.com/martianxiu/usgs-data-analysis/internal/cache"
	"github.com/martianxiu/usgs-data-analysis/internal/las"
	"github.com/martianxiu/usgs-data-analysis/internal/sampling"
)

// Run processes every tile under cfg.InputRoot with a bounded worker pool.
// Per-tile failures never abort the batch; a cancelled context stops
// dispatching but lets in-flight tiles finish. Decisions come back sorted by
// tile path, so the result is identical for any pool width.
func Run(ctx context.Context, cfg Config, open las.Opener) (Summary, []Decision, error) {
	start := time.Now()

	var index *sampling.Index
	if cfg.IndexPath != "" {
		ix, err := sampling.Load(cfg.IndexPath)
		if err != nil {
			return Summary{}, nil, fmt.Errorf("loading sampling index: %v", err)
		}
		index = ix
	}

	tiles, err := enumerate(cfg.InputRoot)
	if err != nil {
		return Summary{}, nil, fmt.Errorf("scanning input root: %v", err)
	}

	var decisions []Decision

	// Resume: remaining = all - already written.
	if cfg.SkipExisting {
		pending := tiles[:0]
		for _, rel := range tiles {
			if _, err := os.Stat(filepath.Join(cfg.OutputRoot, rel)); err == nil {
				decisions = append(decisions, Decision{Tile: filepath.ToSlash(rel), Action: ActionSkipped})
			} else {
				pending = append(pending, rel)
			}
		}
		tiles = pending
	}

	// Pre-create the mirrored region directories before dispatch.
	seen := map[string]bool{}
	for _, rel := range tiles {
		dir := filepath.Join(cfg.OutputRoot, filepath.Dir(rel))
		if !seen[dir] {
			seen[dir] = true
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return Summary{}, nil, fmt.Errorf("creating output dir: %v", err)
			}
		}
	}

	var dcache *cache.FileCache[Decision]
	if cfg.CacheDir != "" {
		dcache = cache.New[Decision](cfg.CacheDir)
	}

	var bar *progressbar.ProgressBar
	if !cfg.Quiet && len(tiles) > 0 {
		bar = progressbar.Default(int64(len(tiles)), "Filtering tiles")
	}

	proc := NewProcessor(cfg, open, index)
	results := make(chan Decision, len(tiles))
	done := make(chan struct{})

	// Single aggregator goroutine owns the decisions slice and the console,
	// so workers never contend on the log.
	go func() {
		defer close(done)
		for d := range results {
			decisions = append(decisions, d)
			if bar != nil {
				bar.Add(1)
			}
			if !cfg.Quiet {
				printDecision(d)
			}
			if d.PlotErr != "" {
				color.Yellow("[%s] QA plot for %s failed: %s", timestamp(), d.Tile, d.PlotErr)
			}
		}
	}()

	wp := workerpool.New(cfg.Workers)
	for _, rel := range tiles {
		rel := rel
		wp.Submit(func() {
			if ctx.Err() != nil {
				results <- Decision{Tile: filepath.ToSlash(rel), Action: ActionSkipped, Error: "canceled before processing"}
				return
			}
			results <- proc.processCached(dcache, rel)
		})
	}
	wp.StopWait()
	close(results)
	<-done

	sort.Slice(decisions, func(i, j int) bool { return decisions[i].Tile < decisions[j].Tile })

	if cfg.ReportPath != "" {
		if err := WriteReport(cfg.ReportPath, decisions); err != nil {
			color.Yellow("[%s] writing decisions report failed: %v", timestamp(), err)
		}
	}

	return summarize(decisions, time.Since(start)), decisions, nil
}

// enumerate lists tile files under root, relative paths sorted for a stable
// dispatch order. Anything under a backup directory is ignored.
func enumerate(root string) ([]string, error) {
	var tiles []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.Contains(strings.ToLower(d.Name()), "backup") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(d.Name()), ".las") {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		tiles = append(tiles, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(tiles)
	return tiles, nil
}

func printDecision(d Decision) {
	ts := timestamp()
	switch d.Action {
	case ActionCorrected:
		color.Cyan("[%s] corrected %s: kept %d of %d points across %d clusters", ts, d.Tile, d.KeptPoints, d.Points, d.Clusters)
	case ActionFailed:
		color.Red("[%s] failed %s: %s", ts, d.Tile, d.Error)
	case ActionSkipped:
		note := "output exists"
		if d.Error != "" {
			note = d.Error
		}
		fmt.Printf("[%s] skipped %s (%s)\n", ts, d.Tile, note)
	default:
		if d.Cached {
			fmt.Printf("[%s] copied %s (%d points, cached)\n", ts, d.Tile, d.Points)
			return
		}
		fmt.Printf("[%s] copied %s (%d points)\n", ts, d.Tile, d.Points)
	}
}

func timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}
