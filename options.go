// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package rendercore

import (
	"log/slog"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rendercore/internal/device"
)

const (
	// DefaultFrameCount is the ring size used when WithFrameCount is not given.
	DefaultFrameCount = 2

	// MaxFrameCount is the largest supported ring size.
	MaxFrameCount = 3
)

// defaultClearColor is the color every back buffer is cleared to.
var defaultClearColor = gputypes.Color{R: 0.125, G: 0.1, B: 0.1, A: 1}

// Option configures an Engine during creation.
//
// Example:
//
//	e := rendercore.New(
//	    rendercore.WithBackend(vulkan.Backend{}),
//	    rendercore.WithFrameCount(3),
//	    rendercore.WithDebug(true),
//	)
type Option func(*options)

// options holds the engine configuration. It is fixed once New returns.
type options struct {
	backend    hal.Backend
	frameCount int
	debug      bool
	clearColor gputypes.Color
	format     gputypes.TextureFormat
	surface    device.SurfaceHandle
	logger     *slog.Logger
}

// defaultOptions returns the default engine options.
func defaultOptions() options {
	return options{
		frameCount: DefaultFrameCount,
		clearColor: defaultClearColor,
		format:     gputypes.TextureFormatRGBA8UnormSrgb,
	}
}

// WithBackend selects the HAL backend the device is created on.
// CreateDevices fails without one.
func WithBackend(b hal.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithFrameCount sets the number of frame slots (2 or 3).
// Values outside that range make CreateDevices fail with ErrFrameCount.
func WithFrameCount(n int) Option {
	return func(o *options) {
		o.frameCount = n
	}
}

// WithDebug enables the validation layer of the backend.
func WithDebug(enabled bool) Option {
	return func(o *options) {
		o.debug = enabled
	}
}

// WithClearColor sets the color the back buffer is cleared to at the
// start of every frame.
func WithClearColor(c gputypes.Color) Option {
	return func(o *options) {
		o.clearColor = c
	}
}

// WithFormat sets the back buffer format. The pipeline renders into the
// same format.
func WithFormat(f gputypes.TextureFormat) Option {
	return func(o *options) {
		if f != gputypes.TextureFormatUndefined {
			o.format = f
		}
	}
}

// WithSurface attaches the engine to a native window. Without a surface
// the engine renders headless and Present only rotates the ring.
func WithSurface(display, window uintptr) Option {
	return func(o *options) {
		o.surface = device.SurfaceHandle{Display: display, Window: window}
	}
}

// WithLogger sets the logger of this engine. Engines without one use the
// package logger (see SetLogger).
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
