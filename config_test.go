package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.True(t, cfg.Confirmations)
	assert.Equal(t, 2.0, cfg.ExportScale)
	assert.Equal(t, 50, cfg.HistoryLimit)
	assert.Equal(t, 2048, cfg.MaxAssetKB)
	assert.Equal(t, "dracula", cfg.CodeTheme)
	assert.Equal(t, slog.LevelInfo, cfg.slogLevel())
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".codesnaprc")
	require.NoError(t, os.WriteFile(path, []byte(`
# comments are fine
save_directory: snaps
confirmations: false
export_scale: 3
max_asset_kb: 16
history_limit: 10
log_level: debug
code_theme: monokai
`), 0o644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.False(t, cfg.Confirmations)
	assert.Equal(t, 3.0, cfg.ExportScale)
	assert.Equal(t, 10, cfg.HistoryLimit)
	assert.Equal(t, "monokai", cfg.CodeTheme)
	assert.Equal(t, slog.LevelDebug, cfg.slogLevel())
	assert.Equal(t, 16*1024, cfg.AssetPolicy().MaxAssetBytes)
	assert.True(t, filepath.IsAbs(cfg.SaveDirectory))
	assert.Equal(t, "snaps", filepath.Base(cfg.SaveDirectory))
	assert.NotEmpty(t, cfg.LibraryPath, "unset keys keep their defaults")
}

func TestLoadConfigBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".codesnaprc")
	require.NoError(t, os.WriteFile(path, []byte("export_scale: [1, 2"), 0o644))

	cfg, err := loadConfig(path)
	assert.Error(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 2.0, cfg.ExportScale)
}

func TestExpandPath(t *testing.T) {
	assert.Equal(t, filepath.Join("/home/jo", "snaps"), expandPath("~/snaps", "/home/jo"))
	assert.Equal(t, "/home/jo", expandPath("~", "/home/jo"))
	assert.Equal(t, "/abs/path", expandPath("/abs/path", "/home/jo"))
	assert.Empty(t, expandPath("", "/home/jo"))
}

func TestGetSavePath(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, "a.snap", cfg.GetSavePath("a.snap"))

	cfg.SaveDirectory = filepath.Join(t.TempDir(), "out")
	assert.Equal(t, filepath.Join(cfg.SaveDirectory, "a.snap"), cfg.GetSavePath("a.snap"))
	info, err := os.Stat(cfg.SaveDirectory)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	assert.Equal(t, "/tmp/x.snap", cfg.GetSavePath("/tmp/x.snap"))
}
