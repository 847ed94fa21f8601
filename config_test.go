package rt_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rt "github.com/novalang/rt"
)

func TestLoadConfigParsesYAML(t *testing.T) {
	path := filepath.Join("testdata", "config.yaml")

	cfg, err := rt.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 1<<16, cfg.ReservedSize)
	assert.Equal(t, 1<<12, cfg.PerStackSize)
	assert.Equal(t, 4, cfg.NumStacks)
	assert.Equal(t, 1<<20, cfg.HeapSize)
	assert.Equal(t, 4096, cfg.NumHeaders)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := rt.LoadConfig(filepath.Join("testdata", "does-not-exist.yaml"))
	assert.Error(t, err)
}
