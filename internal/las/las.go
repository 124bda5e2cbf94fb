// Package las wraps point-cloud file access behind a small Cloud interface
// so the tile-correction logic can be exercised without real LAS fixtures.
// The production implementation is backed by lidario.
package las

import (
	"fmt"
	"io"
	"os"

	"github.com/hongping1224/lidario"
)

// Cloud is one tile's point cloud, opened read-only.
type Cloud interface {
	// NumPoints reports the point count from the header.
	NumPoints() int
	// XY loads the horizontal coordinates of every point, in file order.
	XY() ([][2]float64, error)
	// CopyTo writes an exact byte copy of the source file to path.
	CopyTo(path string) error
	// WriteSubset writes the points at the given indices to path, keeping
	// the source header layout and all per-point attributes.
	WriteSubset(path string, keep []int) error
	Close() error
}

// Opener opens a tile file. The batch driver takes one of these so tests
// can substitute in-memory clouds.
type Opener func(path string) (Cloud, error)

// Open reads a LAS file with lidario.
func Open(path string) (Cloud, error) {
	lf, err := lidario.NewLasFile(path, "r")
	if err != nil {
		return nil, err
	}
	return &lasCloud{path: path, las: lf}, nil
}

type lasCloud struct {
	path string
	las  *lidario.LasFile
}

func (c *lasCloud) NumPoints() int {
	return c.las.Header.NumberPoints
}

func (c *lasCloud) XY() ([][2]float64, error) {
	n := c.las.Header.NumberPoints
	pts := make([][2]float64, n)
	for i := 0; i < n; i++ {
		p, err := c.las.LasPoint(i)
		if err != nil {
			return nil, fmt.Errorf("point %d: %v", i, err)
		}
		d := p.PointData()
		pts[i] = [2]float64{d.X, d.Y}
	}
	return pts, nil
}

func (c *lasCloud) CopyTo(path string) error {
	src, err := os.Open(c.path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return err
	}
	return dst.Close()
}

func (c *lasCloud) WriteSubset(path string, keep []int) error {
	out, err := lidario.InitializeUsingFile(path, c.las)
	if err != nil {
		return err
	}
	for _, i := range keep {
		p, err := c.las.LasPoint(i)
		if err != nil {
			out.Close()
			os.Remove(path)
			return fmt.Errorf("point %d: %v", i, err)
		}
		if err := out.AddLasPoint(p); err != nil {
			out.Close()
			os.Remove(path)
			return err
		}
	}
	return out.Close()
}

func (c *lasCloud) Close() error {
	return c.las.Close()
}
