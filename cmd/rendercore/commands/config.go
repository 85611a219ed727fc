// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/gogpu/rendercore"
)

// Configuration keys.
const (
	keyBackend      = "backend"
	keyFrames       = "frames"
	keyWidth        = "width"
	keyHeight       = "height"
	keyFrameCount   = "frame_count"
	keyInstances    = "instances"
	keyDebug        = "debug"
	keyLogLevel     = "log_level"
	keyVertexShader = "vertex_shader"
	keyPixelShader  = "pixel_shader"
)

// errConfig marks an invalid configuration value.
var errConfig = errors.New("invalid configuration")

// Config is the driver configuration.
type Config struct {
	// Backend names a registered backend; empty picks the best available.
	Backend string `mapstructure:"backend"`
	// Frames is the number of frames to draw; 0 runs until interrupted.
	Frames     int `mapstructure:"frames"`
	Width      int `mapstructure:"width"`
	Height     int `mapstructure:"height"`
	FrameCount int `mapstructure:"frame_count"`
	// Instances draws that many instanced quads; 0 draws one plain quad.
	Instances int    `mapstructure:"instances"`
	Debug     bool   `mapstructure:"debug"`
	LogLevel  string `mapstructure:"log_level"`
	// VertexShader and PixelShader are SPIR-V files; empty uses the
	// built-in shaders.
	VertexShader string `mapstructure:"vertex_shader"`
	PixelShader  string `mapstructure:"pixel_shader"`
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() Config {
	return Config{
		Frames:     0,
		Width:      1280,
		Height:     720,
		FrameCount: rendercore.DefaultFrameCount,
		LogLevel:   "info",
	}
}

// setDefaults registers DefaultConfig with v.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault(keyBackend, d.Backend)
	v.SetDefault(keyFrames, d.Frames)
	v.SetDefault(keyWidth, d.Width)
	v.SetDefault(keyHeight, d.Height)
	v.SetDefault(keyFrameCount, d.FrameCount)
	v.SetDefault(keyInstances, d.Instances)
	v.SetDefault(keyDebug, d.Debug)
	v.SetDefault(keyLogLevel, d.LogLevel)
	v.SetDefault(keyVertexShader, d.VertexShader)
	v.SetDefault(keyPixelShader, d.PixelShader)
}

// LoadConfig decodes and validates the configuration held by v.
func LoadConfig(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", errConfig, c.Width, c.Height)
	}
	if c.Frames < 0 {
		return fmt.Errorf("%w: frames %d", errConfig, c.Frames)
	}
	if c.FrameCount < 2 || c.FrameCount > rendercore.MaxFrameCount {
		return fmt.Errorf("%w: frame_count %d (want 2..%d)", errConfig, c.FrameCount, rendercore.MaxFrameCount)
	}
	if c.Instances < 0 {
		return fmt.Errorf("%w: instances %d", errConfig, c.Instances)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}
