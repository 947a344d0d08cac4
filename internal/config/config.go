// SPDX-License-Identifier: MIT

// Package config loads the shapeletfit settings from the environment and the
// optional YAML basis description.
package config

import (
	"errors"
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
)

// ErrInvalidConfig is returned when a loaded setting is out of range.
var ErrInvalidConfig = errors.New("config: invalid value")

// Config holds all command configuration.
type Config struct {
	Fit     FitConfig
	Model   ModelConfig
	Logging LogConfig
}

// FitConfig describes the synthetic image and the basis to fit.
type FitConfig struct {
	Order      int     `envconfig:"SHAPELET_ORDER" default:"4"`
	GridSize   int     `envconfig:"SHAPELET_GRID_SIZE" default:"32"`
	PixelScale float64 `envconfig:"SHAPELET_PIXEL_SCALE" default:"1"`
	Noise      float64 `envconfig:"SHAPELET_NOISE" default:"0.001"`
	Seed       int64   `envconfig:"SHAPELET_SEED" default:"1"`
	BasisFile  string  `envconfig:"SHAPELET_BASIS_FILE"`
	// PSFSigma > 0 convolves the model with a circular Gaussian PSF.
	PSFSigma float64 `envconfig:"SHAPELET_PSF_SIGMA" default:"0"`
}

// ModelConfig is the ellipse of the synthetic source.
type ModelConfig struct {
	A     float64 `envconfig:"SHAPELET_ELLIPSE_A" default:"4"`
	B     float64 `envconfig:"SHAPELET_ELLIPSE_B" default:"2.5"`
	Theta float64 `envconfig:"SHAPELET_ELLIPSE_THETA" default:"0.3"`
	X     float64 `envconfig:"SHAPELET_CENTER_X" default:"0"`
	Y     float64 `envconfig:"SHAPELET_CENTER_Y" default:"0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// Load reads the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration Load yields on an empty environment.
func Default() *Config {
	return &Config{
		Fit: FitConfig{
			Order:      4,
			GridSize:   32,
			PixelScale: 1,
			Noise:      0.001,
			Seed:       1,
		},
		Model:   ModelConfig{A: 4, B: 2.5, Theta: 0.3},
		Logging: LogConfig{Level: "info"},
	}
}

// Validate checks ranges that envconfig cannot express and reports every
// offending setting at once.
func (c *Config) Validate() error {
	var err error
	check := func(ok bool, format string, args ...interface{}) {
		if !ok {
			err = multierr.Append(err, fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidConfig}, args...)...))
		}
	}
	check(c.Fit.Order >= 0, "SHAPELET_ORDER=%d", c.Fit.Order)
	check(c.Fit.GridSize > 0, "SHAPELET_GRID_SIZE=%d", c.Fit.GridSize)
	check(c.Fit.PixelScale > 0, "SHAPELET_PIXEL_SCALE=%g", c.Fit.PixelScale)
	check(c.Fit.Noise >= 0, "SHAPELET_NOISE=%g", c.Fit.Noise)
	check(c.Fit.PSFSigma >= 0, "SHAPELET_PSF_SIGMA=%g", c.Fit.PSFSigma)
	check(c.Model.A > 0 && c.Model.B > 0, "ellipse axes %g, %g", c.Model.A, c.Model.B)

	return err
}
