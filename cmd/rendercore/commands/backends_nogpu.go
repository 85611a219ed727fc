// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build nogpu

package commands

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"
)

func registerGPUBackends(*gpucontext.Registry[hal.Backend]) {}
