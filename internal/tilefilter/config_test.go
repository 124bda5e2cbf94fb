package tilefilter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(t *testing.T) Config {
	cfg := DefaultConfig()
	cfg.InputRoot = t.TempDir()
	cfg.OutputRoot = t.TempDir()
	return cfg
}

func TestValidateAcceptsDefaults(t *testing.T) {
	cfg := validConfig(t)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultThreshold, cfg.Threshold)
	assert.Greater(t, cfg.Workers, 0)
}

func TestValidateRejectsMissingInputRoot(t *testing.T) {
	cfg := validConfig(t)
	cfg.InputRoot = ""
	assert.Error(t, cfg.Validate())

	cfg.InputRoot = filepath.Join(t.TempDir(), "does-not-exist")
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsFileAsInputRoot(t *testing.T) {
	cfg := validConfig(t)
	file := filepath.Join(t.TempDir(), "tile.las")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	cfg.InputRoot = file
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsBadThreshold(t *testing.T) {
	cfg := validConfig(t)
	cfg.Threshold = 0
	assert.Error(t, cfg.Validate())
	cfg.Threshold = -5
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsBadWorkers(t *testing.T) {
	cfg := validConfig(t)
	cfg.Workers = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsEmptyOutputRoot(t *testing.T) {
	cfg := validConfig(t)
	cfg.OutputRoot = ""
	assert.Error(t, cfg.Validate())
}
