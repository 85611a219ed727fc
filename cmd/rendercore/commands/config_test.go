// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package commands

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func newTestViper(t *testing.T, file string) *viper.Viper {
	t.Helper()
	v := viper.New()
	setDefaults(v)
	configure(v, file)
	return v
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(newTestViper(t, filepath.Join(t.TempDir(), "none.yaml")))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("config = %+v, want %+v", cfg, DefaultConfig())
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	file := filepath.Join(t.TempDir(), "rendercore.yaml")
	yaml := "backend: noop\nwidth: 640\nheight: 480\nframe_count: 3\ninstances: 16\n"
	if err := os.WriteFile(file, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RENDERCORE_FRAMES", "42")
	t.Setenv("RENDERCORE_LOG_LEVEL", "debug")

	cfg, err := LoadConfig(newTestViper(t, file))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	want := Config{
		Backend:    "noop",
		Frames:     42,
		Width:      640,
		Height:     480,
		FrameCount: 3,
		Instances:  16,
		LogLevel:   "debug",
	}
	if cfg != want {
		t.Errorf("config = %+v, want %+v", cfg, want)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"triple buffering", func(c *Config) { c.FrameCount = 3 }, true},
		{"zero width", func(c *Config) { c.Width = 0 }, false},
		{"negative height", func(c *Config) { c.Height = -1 }, false},
		{"negative frames", func(c *Config) { c.Frames = -1 }, false},
		{"single buffering", func(c *Config) { c.FrameCount = 1 }, false},
		{"four frames", func(c *Config) { c.FrameCount = 4 }, false},
		{"negative instances", func(c *Config) { c.Instances = -3 }, false},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.ok {
				if err != nil {
					t.Errorf("Validate: %v", err)
				}
				return
			}
			if !errors.Is(err, errConfig) {
				t.Errorf("err = %v, want errConfig", err)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger("warn", &buf)
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "key=value") {
		t.Errorf("output = %q", out)
	}

	if l, err := parseLevel("DEBUG"); err != nil || l != slog.LevelDebug {
		t.Errorf("parseLevel(DEBUG) = %v, %v", l, err)
	}
	if _, err := newLogger("verbose", &buf); !errors.Is(err, errConfig) {
		t.Errorf("err = %v, want errConfig", err)
	}
}
