// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package rendercore

import "errors"

var (
	// ErrAlreadyCreated is returned when CreateDevices runs twice on one engine.
	ErrAlreadyCreated = errors.New("rendercore: devices already created")

	// ErrNotCreated is returned when an operation needs CreateDevices first.
	ErrNotCreated = errors.New("rendercore: devices not created")

	// ErrFrameCount is returned for a ring size outside 2..MaxFrameCount.
	ErrFrameCount = errors.New("rendercore: frame count out of range")

	// ErrNoPipeline is returned by CreateCBV when CreatePipelines has not run:
	// the constant-buffer bindings are built against the pipeline's layout.
	ErrNoPipeline = errors.New("rendercore: pipeline not created")

	// ErrNoConstantBuffers is returned when a constant buffer is bound before CreateCBV.
	ErrNoConstantBuffers = errors.New("rendercore: constant buffers not created")
)
