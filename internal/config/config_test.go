package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMergesOverDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rstracer.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
in_memory = true

[schedule]
silver = 5
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.InMemory)
	assert.Equal(t, uint64(5), cfg.Schedule.Silver)
	assert.Equal(t, Default().Schedule.Gold, cfg.Schedule.Gold)
}

func TestLoadRejectsInvalidExportFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rstracer.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[export]
format = "xml"
`), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestVacuumListOrdersBronzeSilverGold(t *testing.T) {
	v := Vacuum{Bronze: 1, Silver: 2, Gold: 3}
	list := v.List()
	require.Len(t, list, 3)
	assert.Equal(t, "bronze", list[0].Layer)
	assert.Equal(t, "silver", list[1].Layer)
	assert.Equal(t, "gold", list[2].Layer)
}

func TestValidateRejectsZeroBatchSize(t *testing.T) {
	cfg := Default()
	cfg.Request.ConsumerBatchSize = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	cfg := Default()
	cfg.Logger.Level = "LOUD"
	assert.Error(t, cfg.Validate())
}
