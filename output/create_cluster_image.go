// Package output renders QA artifacts for manual auditing of corrected
// tiles.
package output

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
)

const margin = 20.0

// CreateClusterImage draws a top-down scatter of a corrected tile: kept
// points in green, discarded points in red. size is the output edge in
// pixels; the point extent is fit inside it preserving aspect ratio.
func CreateClusterImage(path string, pts [][2]float64, keep []int, size int) error {
	if len(pts) == 0 {
		return fmt.Errorf("no points to draw")
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX = math.Min(minX, p[0])
		maxX = math.Max(maxX, p[0])
		minY = math.Min(minY, p[1])
		maxY = math.Max(maxY, p[1])
	}

	extent := math.Max(maxX-minX, maxY-minY)
	if extent == 0 {
		extent = 1
	}
	scale := (float64(size) - 2*margin) / extent

	kept := make([]bool, len(pts))
	for _, i := range keep {
		kept[i] = true
	}

	dc := gg.NewContext(size, size)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	// Discarded first so the kept cluster stays visible where they overlap.
	for pass := 0; pass < 2; pass++ {
		drawKept := pass == 1
		if drawKept {
			dc.SetRGB(0.13, 0.55, 0.13)
		} else {
			dc.SetRGB(0.80, 0.10, 0.10)
		}
		for i, p := range pts {
			if kept[i] != drawKept {
				continue
			}
			x := margin + (p[0]-minX)*scale
			y := float64(size) - margin - (p[1]-minY)*scale // north up
			dc.DrawCircle(x, y, 1.2)
		}
		dc.Fill()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return dc.SavePNG(path)
}
