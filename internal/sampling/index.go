// Package sampling reads the GeoJSON tile index exported from the sampling
// geopackage. The downloader queries one footprint per tile; its centroid is
// the tile's nominal center and breaks ties between equal-size clusters.
package sampling

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// Index maps tile ids ("region/tile_7", no extension) to query centroids.
type Index struct {
	centroids map[string]orb.Point
}

// Load parses a GeoJSON FeatureCollection whose features carry a "tile_id"
// property and a query footprint geometry.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %v", path, err)
	}

	ix := &Index{centroids: make(map[string]orb.Point, len(fc.Features))}
	for _, f := range fc.Features {
		id, ok := f.Properties["tile_id"].(string)
		if !ok || id == "" || f.Geometry == nil {
			continue
		}
		centroid, _ := planar.CentroidArea(f.Geometry)
		ix.centroids[id] = centroid
	}
	if len(ix.centroids) == 0 {
		return nil, fmt.Errorf("no features with a tile_id property in %s", path)
	}
	return ix, nil
}

// Centroid returns the query centroid for a tile id, if indexed.
func (ix *Index) Centroid(tileID string) (orb.Point, bool) {
	p, ok := ix.centroids[tileID]
	return p, ok
}

// Len reports the number of indexed tiles.
func (ix *Index) Len() int {
	return len(ix.centroids)
}
