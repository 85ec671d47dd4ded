package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"codesnap/history"
	"codesnap/snapfile"
)

const configFileName = ".codesnaprc"

type Config struct {
	SaveDirectory string  `yaml:"save_directory"`
	Confirmations bool    `yaml:"confirmations"`
	LibraryPath   string  `yaml:"library_path"`
	ExportScale   float64 `yaml:"export_scale"`
	MaxAssetKB    int     `yaml:"max_asset_kb"`
	HistoryLimit  int     `yaml:"history_limit"`
	LogFile       string  `yaml:"log_file"`
	LogLevel      string  `yaml:"log_level"`
	CodeTheme     string  `yaml:"code_theme"`
}

func defaultConfig(home string) *Config {
	cfg := &Config{
		Confirmations: true,
		ExportScale:   2,
		MaxAssetKB:    snapfile.DefaultMaxAssetBytes / 1024,
		HistoryLimit:  history.DefaultLimit,
		LogLevel:      "info",
		CodeTheme:     "dracula",
	}
	if home != "" {
		cfg.LibraryPath = filepath.Join(home, ".codesnap", "library.db")
	}
	return cfg
}

// defaultConfigPath is ~/.codesnaprc, or "" when there is no home directory.
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, configFileName)
}

// loadConfig reads the config file at path over the defaults. A missing file
// is not an error.
func loadConfig(path string) (*Config, error) {
	home, _ := os.UserHomeDir()
	cfg := defaultConfig(home)
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return defaultConfig(home), fmt.Errorf("config %s: %w", path, err)
	}

	cfg.SaveDirectory = expandPath(cfg.SaveDirectory, home)
	cfg.LibraryPath = expandPath(cfg.LibraryPath, home)
	cfg.LogFile = expandPath(cfg.LogFile, home)
	if cfg.ExportScale <= 0 {
		cfg.ExportScale = 1
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = history.DefaultLimit
	}
	if cfg.MaxAssetKB < 0 {
		cfg.MaxAssetKB = 0
	}
	return cfg, nil
}

// expandPath resolves a leading ~ and makes the path absolute.
func expandPath(value, home string) string {
	if value == "" {
		return ""
	}
	if home != "" && (value == "~" || strings.HasPrefix(value, "~/")) {
		value = filepath.Join(home, strings.TrimPrefix(value, "~"))
	}
	if !filepath.IsAbs(value) {
		if abs, err := filepath.Abs(value); err == nil {
			value = abs
		}
	}
	return value
}

func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" || filepath.IsAbs(filename) {
		return filename
	}
	os.MkdirAll(c.SaveDirectory, 0755)
	return filepath.Join(c.SaveDirectory, filename)
}

// AssetPolicy is the inline asset cap for saved documents. 0 disables it.
func (c *Config) AssetPolicy() snapfile.Policy {
	return snapfile.Policy{MaxAssetBytes: c.MaxAssetKB * 1024}
}

func (c *Config) slogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
