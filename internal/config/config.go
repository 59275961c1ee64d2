// Package config loads the viewer configuration. Every engine knob is
// an explicit field; flags override the file, the file overrides
// defaults, and nothing is global.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kk-code-lab/rview/internal/document"
	"github.com/kk-code-lab/rview/internal/paginate"
	"github.com/kk-code-lab/rview/internal/window"
)

// Config holds the application configuration.
type Config struct {
	ChunkSize           int    `yaml:"chunk_size"`
	VisibleChunks       int    `yaml:"visible_chunks"`
	LinesPerPage        int    `yaml:"lines_per_page"`
	IncludeCover        bool   `yaml:"include_cover"`
	EstimatedLineHeight int    `yaml:"estimated_line_height"`
	LargeFileThreshold  int    `yaml:"large_file_threshold_bytes"`
	VirtualizeChars     int    `yaml:"virtualization_threshold_chars"`
	VirtualizeLines     int    `yaml:"virtualization_threshold_lines"`
	LogLevel            string `yaml:"log_level"`
	LogFile             string `yaml:"log_file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ChunkSize:           window.DefaultChunkSize,
		VisibleChunks:       window.DefaultVisibleChunks,
		LinesPerPage:        paginate.DefaultLinesPerPage,
		EstimatedLineHeight: window.DefaultLineHeight,
		LargeFileThreshold:  document.DefaultLargeFileThreshold,
		VirtualizeChars:     window.DefaultThresholdChars,
		VirtualizeLines:     window.DefaultThresholdLines,
		LogLevel:            "info",
	}
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "rview", "config.yml")
}

// Load reads the config file at path on top of the defaults. A missing
// file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// WindowOptions maps the config onto the scroll engine's options.
func (c Config) WindowOptions() window.Options {
	return window.Options{
		ChunkSize:      c.ChunkSize,
		VisibleChunks:  c.VisibleChunks,
		LineHeight:     c.EstimatedLineHeight,
		ThresholdChars: c.VirtualizeChars,
		ThresholdLines: c.VirtualizeLines,
	}
}

// PaginateOptions maps the config onto the paginator's options.
func (c Config) PaginateOptions() paginate.Options {
	return paginate.Options{
		LinesPerPage: c.LinesPerPage,
		IncludeCover: c.IncludeCover,
	}
}
