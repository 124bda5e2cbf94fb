// Package cluster groups 2D points into connected components under a
// horizontal proximity threshold. It is the core of the split-tile check:
// a clean LiDAR tile forms one component, a merged download artifact forms
// two (or more) components separated by a large horizontal gap.
package cluster

import (
	"math"
)

// Components returns the connected components of pts, where two points are
// connected when their horizontal distance is at most maxGap. Each component
// is a list of indices into pts, sorted ascending; components are ordered by
// their smallest point index, so the result is deterministic for a fixed
// input ordering.
//
// Points are bucketed into a uniform grid with cell edge maxGap/sqrt(2), so
// any two points sharing a cell are at most maxGap apart and the whole cell
// collapses into one union-find entry for free. Cells are then linked by
// scanning nearby cells (offsets up to 2 in each axis cover every pair
// within maxGap) and stopping at the first cross-cell pair inside the
// threshold, which keeps the pairwise work proportional to the number of
// cell borders rather than the number of point pairs.
func Components(pts [][2]float64, maxGap float64) [][]int {
	n := len(pts)
	if n == 0 {
		return nil
	}
	if n == 1 {
		return [][]int{{0}}
	}

	cell := maxGap / math.Sqrt2

	type cellKey struct{ ix, iy int64 }
	cellID := make(map[cellKey]int)
	var keys []cellKey
	var members [][]int

	keyOf := func(p [2]float64) cellKey {
		return cellKey{int64(math.Floor(p[0] / cell)), int64(math.Floor(p[1] / cell))}
	}

	for i, p := range pts {
		k := keyOf(p)
		id, ok := cellID[k]
		if !ok {
			id = len(keys)
			cellID[k] = id
			keys = append(keys, k)
			members = append(members, nil)
		}
		members[id] = append(members[id], i)
	}

	uf := newUnionFind(len(keys))
	limit := maxGap * maxGap

	// Half-plane neighbor offsets so each unordered cell pair is visited once.
	var offsets [][2]int64
	for dy := int64(0); dy <= 2; dy++ {
		for dx := int64(-2); dx <= 2; dx++ {
			if dy == 0 && dx <= 0 {
				continue
			}
			offsets = append(offsets, [2]int64{dx, dy})
		}
	}

	for id, k := range keys {
		for _, off := range offsets {
			nk := cellKey{k.ix + off[0], k.iy + off[1]}
			nid, ok := cellID[nk]
			if !ok || uf.find(id) == uf.find(nid) {
				continue
			}
			if anyPairWithin(pts, members[id], members[nid], limit) {
				uf.union(id, nid)
			}
		}
	}

	// Emit components ordered by first point index; member lists are built
	// in point order, so each component comes out sorted.
	compOf := make(map[int]int)
	var comps [][]int
	for i := 0; i < n; i++ {
		root := uf.find(cellID[keyOf(pts[i])])
		c, ok := compOf[root]
		if !ok {
			c = len(comps)
			compOf[root] = c
			comps = append(comps, nil)
		}
		comps[c] = append(comps[c], i)
	}
	return comps
}

func anyPairWithin(pts [][2]float64, a, b []int, limit float64) bool {
	for _, i := range a {
		for _, j := range b {
			dx := pts[i][0] - pts[j][0]
			dy := pts[i][1] - pts[j][1]
			if dx*dx+dy*dy <= limit {
				return true
			}
		}
	}
	return false
}

// Centroid returns the mean X/Y of the given point indices.
func Centroid(pts [][2]float64, idx []int) (float64, float64) {
	var sx, sy float64
	for _, i := range idx {
		sx += pts[i][0]
		sy += pts[i][1]
	}
	n := float64(len(idx))
	return sx / n, sy / n
}

type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.rank[ra] < uf.rank[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	if uf.rank[ra] == uf.rank[rb] {
		uf.rank[ra]++
	}
}
