// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package commands

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

func registerGPUBackends(r *gpucontext.Registry[hal.Backend]) {
	if b, ok := hal.GetBackend(gputypes.BackendVulkan); ok {
		r.Register(backendVulkan, func() hal.Backend { return b })
	}
}
