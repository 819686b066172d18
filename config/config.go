// Package config handles bake configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/giuliom95/baker2/asset/texture"
	"github.com/giuliom95/baker2/baker"
)

var (
	ErrInvalidResolution = errors.New("config: resolution must be a power of two between 128 and 8192")
	ErrInvalidConfig     = errors.New("config: invalid configuration")
)

// Config holds all bake settings.
type Config struct {
	Bake    BakeConfig    `yaml:"bake"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// BakeConfig holds sampling settings.
type BakeConfig struct {
	Resolution       int     `yaml:"resolution"`        // Width and height of the normal map
	SamplesPerSide   int     `yaml:"samples_per_side"`  // Per-texel sample grid size
	SearchDepth      float32 `yaml:"search_depth"`      // Max cast distance in units of the low-poly normal
	Workers          int     `yaml:"workers"`           // 0 selects the number of CPUs
	ProgressInterval int     `yaml:"progress_interval"` // Triangles between progress reports
}

// OutputConfig holds normal map encoding settings.
type OutputConfig struct {
	Path     string `yaml:"path"`
	Format   string `yaml:"format"`
	BitDepth int    `yaml:"bit_depth"`
	FlipY    bool   `yaml:"flip_y"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Default returns a Config with the default bake settings.
func Default() *Config {
	return &Config{
		Bake: BakeConfig{
			Resolution:       baker.DefaultResolution,
			SamplesPerSide:   baker.DefaultSamplesPerSide,
			SearchDepth:      baker.DefaultSearchDepth,
			Workers:          0,
			ProgressInterval: baker.DefaultProgressInterval,
		},
		Output: OutputConfig{
			Path:     "normals.tiff",
			Format:   texture.Tiff.String(),
			BitDepth: 8,
			FlipY:    true,
		},
		Logging: LoggingConfig{
			Level:      "notice",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
	}
}

// Validate checks that the config describes a bake that can be run.
func (c *Config) Validate() error {
	if !validResolution(c.Bake.Resolution) {
		return fmt.Errorf("%w; got %d", ErrInvalidResolution, c.Bake.Resolution)
	}

	switch {
	case c.Bake.SamplesPerSide < 1:
		return fmt.Errorf("%w: samples_per_side must be at least 1; got %d", ErrInvalidConfig, c.Bake.SamplesPerSide)
	case !(c.Bake.SearchDepth > 0):
		return fmt.Errorf("%w: search_depth must be positive; got %v", ErrInvalidConfig, c.Bake.SearchDepth)
	case c.Bake.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative; got %d", ErrInvalidConfig, c.Bake.Workers)
	case c.Bake.ProgressInterval < 0:
		return fmt.Errorf("%w: progress_interval must not be negative; got %d", ErrInvalidConfig, c.Bake.ProgressInterval)
	case c.Output.Path == "":
		return fmt.Errorf("%w: output path not specified", ErrInvalidConfig)
	case c.Output.BitDepth != 8 && c.Output.BitDepth != 16:
		return fmt.Errorf("%w: bit_depth must be 8 or 16; got %d", ErrInvalidConfig, c.Output.BitDepth)
	}

	format, err := c.OutputFormat()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if format == texture.Bmp && c.Output.BitDepth != 8 {
		return fmt.Errorf("%w: bmp output only supports a bit_depth of 8", ErrInvalidConfig)
	}

	return nil
}

// OutputFormat parses the configured output image format.
func (c *Config) OutputFormat() (texture.Format, error) {
	return texture.ParseFormat(c.Output.Format)
}

// BakeOptions converts the bake section to baker options.
func (c *Config) BakeOptions() baker.Options {
	return baker.Options{
		Width:            c.Bake.Resolution,
		Height:           c.Bake.Resolution,
		SamplesPerSide:   c.Bake.SamplesPerSide,
		SearchDepth:      c.Bake.SearchDepth,
		Workers:          c.Bake.Workers,
		ProgressInterval: c.Bake.ProgressInterval,
	}
}

func validResolution(res int) bool {
	return res >= 128 && res <= 8192 && res&(res-1) == 0
}
