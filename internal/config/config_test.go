package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ".", cfg.Dir)
	assert.Equal(t, 100, cfg.CompactAfter)
	assert.False(t, cfg.SyncWrites)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kvlite.yaml")
	raw := "dir: /var/lib/kvlite\ncompact_after: 25\nsync_writes: true\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/kvlite", cfg.Dir)
	assert.Equal(t, 25, cfg.CompactAfter)
	assert.True(t, cfg.SyncWrites)
	// Unset fields keep their defaults.
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kvlite.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dir: [not, a, string"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
