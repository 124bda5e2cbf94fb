package tilefilter

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// threeTileInput builds the canonical scenario: one clean tile, one split
// tile (60+20 points, 50 units apart), one corrupt tile.
func threeTileInput(t *testing.T, root string) {
	t.Helper()
	writeTile(t, root, "region_a/tile_a.las", gridBlob(0, 0, 100))
	writeTile(t, root, "region_a/tile_b.las",
		append(gridBlob(0, 0, 60), gridBlob(50, 0, 20)...))
	path := filepath.Join(root, "region_b/tile_c.las")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("truncated garbage"), 0o644))
}

func TestRunThreeTileScenario(t *testing.T) {
	cfg := testConfig(t)
	threeTileInput(t, cfg.InputRoot)

	summary, decisions, err := Run(context.Background(), cfg, openJSONTile)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Corrected)
	assert.Equal(t, 1, summary.Unchanged)
	assert.Equal(t, 1, summary.Failed)
	assert.Zero(t, summary.Skipped)

	require.Len(t, decisions, 3)
	byTile := map[string]Decision{}
	for _, d := range decisions {
		byTile[d.Tile] = d
	}

	a := byTile["region_a/tile_a.las"]
	assert.Equal(t, ActionCopied, a.Action)
	assert.Equal(t, 100, a.Points)

	b := byTile["region_a/tile_b.las"]
	assert.Equal(t, ActionCorrected, b.Action)
	assert.Equal(t, 60, b.KeptPoints)
	assert.Equal(t, 20, b.DroppedPoints)

	c := byTile["region_b/tile_c.las"]
	assert.Equal(t, ActionFailed, c.Action)
	assert.Equal(t, "ReadError", c.ErrorKind)

	// The corrupt tile never produces an output file.
	_, statErr := os.Stat(filepath.Join(cfg.OutputRoot, "region_b/tile_c.las"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunInvariantToWorkerCount(t *testing.T) {
	in := t.TempDir()
	threeTileInput(t, in)
	writeTile(t, in, "region_b/tile_d.las",
		append(gridBlob(0, 0, 35), gridBlob(900, 900, 90)...))

	run := func(workers int) (Summary, []Decision) {
		cfg := Config{
			InputRoot:  in,
			OutputRoot: t.TempDir(),
			Threshold:  10,
			Workers:    workers,
			Quiet:      true,
		}
		s, ds, err := Run(context.Background(), cfg, openJSONTile)
		require.NoError(t, err)
		return s, ds
	}

	s1, d1 := run(1)
	s8, d8 := run(8)

	assert.Equal(t, d1, d8)
	s1.Elapsed, s8.Elapsed = 0, 0
	assert.Equal(t, s1, s8)
}

func TestRunSkipExistingResumes(t *testing.T) {
	cfg := testConfig(t)
	threeTileInput(t, cfg.InputRoot)

	_, _, err := Run(context.Background(), cfg, openJSONTile)
	require.NoError(t, err)

	cfg.SkipExisting = true
	summary, decisions, err := Run(context.Background(), cfg, openJSONTile)
	require.NoError(t, err)

	// Tiles a and b have outputs and are skipped; the corrupt tile has no
	// output, is retried, and fails again.
	assert.Equal(t, 2, summary.Skipped)
	assert.Equal(t, 1, summary.Failed)
	for _, d := range decisions {
		if d.Tile == "region_b/tile_c.las" {
			assert.Equal(t, ActionFailed, d.Action)
		} else {
			assert.Equal(t, ActionSkipped, d.Action)
		}
	}
}

func TestRunConflictsWithoutOverwrite(t *testing.T) {
	cfg := testConfig(t)
	writeTile(t, cfg.InputRoot, "region_a/tile_a.las", gridBlob(0, 0, 10))

	_, _, err := Run(context.Background(), cfg, openJSONTile)
	require.NoError(t, err)

	// Second run without -overwrite or -skip-existing: conflict failure.
	summary, decisions, err := Run(context.Background(), cfg, openJSONTile)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, "OutputConflictError", decisions[0].ErrorKind)

	cfg.Overwrite = true
	summary, _, err = Run(context.Background(), cfg, openJSONTile)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Unchanged)
}

func TestRunIgnoresBackupDirs(t *testing.T) {
	cfg := testConfig(t)
	writeTile(t, cfg.InputRoot, "region_a/tile_a.las", gridBlob(0, 0, 10))
	writeTile(t, cfg.InputRoot, "region_a/backup/tile_old.las", gridBlob(0, 0, 10))
	writeTile(t, cfg.InputRoot, "backup_2024/tile_older.las", gridBlob(0, 0, 10))

	summary, decisions, err := Run(context.Background(), cfg, openJSONTile)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, "region_a/tile_a.las", decisions[0].Tile)
}

func TestRunIgnoresNonTileFiles(t *testing.T) {
	cfg := testConfig(t)
	writeTile(t, cfg.InputRoot, "region_a/tile_a.las", gridBlob(0, 0, 10))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.InputRoot, "region_a/notes.txt"), []byte("x"), 0o644))

	summary, _, err := Run(context.Background(), cfg, openJSONTile)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Total)
}

func TestRunDecisionCache(t *testing.T) {
	cfg := testConfig(t)
	cfg.CacheDir = t.TempDir()
	threeTileInput(t, cfg.InputRoot)

	first, _, err := Run(context.Background(), cfg, openJSONTile)
	require.NoError(t, err)
	require.Equal(t, 1, first.Corrected)

	// Same inputs, outputs still present: the successful tiles come back
	// from the cache with their original actions, the failure is retried.
	second, decisions, err := Run(context.Background(), cfg, openJSONTile)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Corrected)
	assert.Equal(t, 1, second.Unchanged)
	assert.Equal(t, 1, second.Failed)

	for _, d := range decisions {
		if d.Action == ActionFailed {
			assert.False(t, d.Cached)
		} else {
			assert.True(t, d.Cached)
		}
	}
}

func TestRunCanceledContextSkipsTiles(t *testing.T) {
	cfg := testConfig(t)
	threeTileInput(t, cfg.InputRoot)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, decisions, err := Run(ctx, cfg, openJSONTile)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Skipped)
	for _, d := range decisions {
		assert.Equal(t, ActionSkipped, d.Action)
	}
}

func TestRunWritesReport(t *testing.T) {
	cfg := testConfig(t)
	cfg.ReportPath = filepath.Join(cfg.OutputRoot, "decisions.csv")
	threeTileInput(t, cfg.InputRoot)

	_, _, err := Run(context.Background(), cfg, openJSONTile)
	require.NoError(t, err)

	f, err := os.Open(cfg.ReportPath)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4) // header + 3 tiles
	assert.Contains(t, rows[0], "tile")
	assert.Contains(t, rows[0], "action")
}

func TestRunRejectsBadIndexPath(t *testing.T) {
	cfg := testConfig(t)
	cfg.IndexPath = filepath.Join(t.TempDir(), "missing.geojson")
	threeTileInput(t, cfg.InputRoot)

	_, _, err := Run(context.Background(), cfg, openJSONTile)
	assert.Error(t, err)
}
