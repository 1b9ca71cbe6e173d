package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chmdznr/gopf/config"
)

func TestLoad_MissingPathReturnsDefaults(t *testing.T) {
	cfg, err := config.Load("")
	assert.NoError(t, err)
	assert.Equal(t, 100.0, cfg.Sbase)
	assert.Equal(t, 1e-3, cfg.Accuracy)
	assert.Equal(t, 10, cfg.MaxIter)
}

func TestLoad_OverlaysYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "solver.yaml")
	assert.NoError(t, os.WriteFile(path, []byte("sbase: 50\nmaxiter: 20\n"), 0o644))

	cfg, err := config.Load(path)
	assert.NoError(t, err)
	assert.Equal(t, 50.0, cfg.Sbase)
	assert.Equal(t, 20, cfg.MaxIter)
	assert.Equal(t, 1e-3, cfg.Accuracy, "unspecified fields keep the default")
}
