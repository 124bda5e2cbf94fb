package tilefilter

import (
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// WriteReport writes the per-tile decisions CSV consumed by the dataset
// bookkeeping notebooks.
func WriteReport(path string, decisions []Decision) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return gocsv.MarshalFile(&decisions, f)
}
