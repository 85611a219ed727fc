// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package device

import "errors"

var (
	// ErrNoAdapter is returned when the backend exposes no usable adapter.
	ErrNoAdapter = errors.New("device: no GPU adapter available")

	// ErrNilBackend is returned when CreateDevice is called without a backend.
	ErrNilBackend = errors.New("device: backend is nil")

	// ErrNoDevice is returned when an object is created without a device.
	ErrNoDevice = errors.New("device: device is nil")

	// ErrInvalidSize is returned when a swapchain is requested with a zero dimension.
	ErrInvalidSize = errors.New("device: swapchain width and height must be positive")

	// ErrFrameCount is returned when a swapchain is requested with fewer than two images.
	ErrFrameCount = errors.New("device: swapchain needs at least two images")

	// ErrListState is returned when a command list operation does not match its state.
	ErrListState = errors.New("device: command list in wrong state")

	// ErrFenceValue is returned when a fence is signaled with a value lower than its last signal.
	ErrFenceValue = errors.New("device: fence values must not decrease")
)
