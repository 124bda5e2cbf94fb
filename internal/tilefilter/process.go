package tilefilter

import (
	"fmt"
	"math"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/martianxiu/usgs-data-analysis/internal/cache"
	"github.com/martianxiu/usgs-data-analysis/internal/cluster"
	"github.com/martianxiu/usgs-data-analysis/internal/las"
	"github.com/martianxiu/usgs-data-analysis/internal/sampling"
	"github.com/martianxiu/usgs-data-analysis/output"
)

// Processor runs the split-tile check for individual tiles. It holds no
// mutable state, so one Processor is shared by all workers.
type Processor struct {
	cfg   Config
	open  las.Opener
	index *sampling.Index
}

func NewProcessor(cfg Config, open las.Opener, index *sampling.Index) *Processor {
	return &Processor{cfg: cfg, open: open, index: index}
}

// ProcessTile decides whether the tile at rel (relative to the input root)
// is a merged-download artifact and writes the corrected or pass-through
// output. All failures end up on the Decision; nothing is raised.
func (p *Processor) ProcessTile(rel string) Decision {
	d := Decision{Tile: filepath.ToSlash(rel)}
	src := filepath.Join(p.cfg.InputRoot, rel)
	dst := filepath.Join(p.cfg.OutputRoot, rel)

	if !p.cfg.Overwrite {
		if _, err := os.Stat(dst); err == nil {
			return fail(d, fmt.Errorf("%w: %s", ErrOutputConflict, dst))
		}
	}

	cloud, err := p.open(src)
	if err != nil {
		return fail(d, fmt.Errorf("%w: %v", ErrRead, err))
	}
	defer cloud.Close()

	d.Points = cloud.NumPoints()
	if d.Points == 0 {
		return fail(d, ErrEmptyTile)
	}

	pts, err := cloud.XY()
	if err != nil {
		return fail(d, fmt.Errorf("%w: %v", ErrRead, err))
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fail(d, fmt.Errorf("%w: %v", ErrWrite, err))
	}

	// A tile whose bounding box fits inside one threshold span cannot split
	// into two clusters; no need to run the component search.
	if bboxDiagonal(pts) <= p.cfg.Threshold {
		d.Clusters = 1
		return p.copyThrough(d, cloud, dst)
	}

	comps := cluster.Components(pts, p.cfg.Threshold)
	d.Clusters = len(comps)
	if len(comps) == 1 {
		return p.copyThrough(d, cloud, dst)
	}

	d.Split = true
	keep := p.chooseKept(d.Tile, pts, comps)
	d.KeptPoints = len(keep)
	d.DroppedPoints = d.Points - len(keep)
	if err := cloud.WriteSubset(dst, keep); err != nil {
		return fail(d, fmt.Errorf("%w: %v", ErrWrite, err))
	}
	d.Action = ActionCorrected

	if p.cfg.PlotsDir != "" {
		plot := filepath.Join(p.cfg.PlotsDir, strings.TrimSuffix(rel, filepath.Ext(rel))+".png")
		if err := output.CreateClusterImage(plot, pts, keep, 800); err != nil {
			d.PlotErr = err.Error()
		}
	}
	return d
}

func (p *Processor) copyThrough(d Decision, cloud las.Cloud, dst string) Decision {
	d.KeptPoints = d.Points
	if err := cloud.CopyTo(dst); err != nil {
		return fail(d, fmt.Errorf("%w: %v", ErrWrite, err))
	}
	d.Action = ActionCopied
	return d
}

// chooseKept picks the surviving cluster: largest first, then (for exact
// size ties) the one whose centroid sits closest to the tile's query
// centroid from the sampling index, then the cluster holding the lowest
// original point index. Components arrive ordered by first point index, so
// the last rule is "keep the incumbent".
func (p *Processor) chooseKept(tile string, pts [][2]float64, comps [][]int) []int {
	var nx, ny float64
	nominal := false
	if p.index != nil {
		if c, ok := p.index.Centroid(strings.TrimSuffix(tile, path.Ext(tile))); ok {
			nx, ny, nominal = c[0], c[1], true
		}
	}

	best := 0
	for i := 1; i < len(comps); i++ {
		if len(comps[i]) != len(comps[best]) {
			if len(comps[i]) > len(comps[best]) {
				best = i
			}
			continue
		}
		if !nominal {
			continue
		}
		cx, cy := cluster.Centroid(pts, comps[i])
		bx, by := cluster.Centroid(pts, comps[best])
		if dist2(cx, cy, nx, ny) < dist2(bx, by, nx, ny) {
			best = i
		}
	}
	return comps[best]
}

// processCached wraps ProcessTile with the optional decision cache. A hit is
// honored only when the prior run succeeded and its output is still present.
func (p *Processor) processCached(dc *cache.FileCache[Decision], rel string) Decision {
	if dc == nil {
		return p.ProcessTile(rel)
	}

	key := ""
	if fi, err := os.Stat(filepath.Join(p.cfg.InputRoot, rel)); err == nil {
		key = cache.Key(filepath.ToSlash(rel), fi.Size(), fi.ModTime().UnixNano())
		if d, ok := dc.Get(key); ok && d.Action != ActionFailed {
			if _, err := os.Stat(filepath.Join(p.cfg.OutputRoot, rel)); err == nil {
				d.Cached = true
				return d
			}
		}
	}

	d := p.ProcessTile(rel)
	if key != "" && d.Action != ActionFailed {
		dc.Put(key, d) // best effort; a failed write just means no hit next run
	}
	return d
}

func fail(d Decision, err error) Decision {
	d.Action = ActionFailed
	d.ErrorKind = errorKind(err)
	d.Error = err.Error()
	return d
}

func bboxDiagonal(pts [][2]float64) float64 {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX = math.Min(minX, p[0])
		maxX = math.Max(maxX, p[0])
		minY = math.Min(minY, p[1])
		maxY = math.Max(maxY, p[1])
	}
	return math.Hypot(maxX-minX, maxY-minY)
}

func dist2(x1, y1, x2, y2 float64) float64 {
	dx, dy := x1-x2, y1-y2
	return dx*dx + dy*dy
}
