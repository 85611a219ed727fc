// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package commands

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
	"github.com/gogpu/wgpu/hal/software"
)

// Backend names.
const (
	backendVulkan   = "vulkan"
	backendSoftware = "software"
	backendNoop     = "noop"
)

var errUnknownBackend = errors.New("unknown backend")

// newBackendRegistry returns the backends this build can use, best first:
// native GPU APIs, then the CPU rasterizer, then the backend that draws
// nothing.
func newBackendRegistry() *gpucontext.Registry[hal.Backend] {
	r := gpucontext.NewRegistry[hal.Backend](
		gpucontext.WithPriority(backendVulkan, backendSoftware, backendNoop),
	)
	registerGPUBackends(r)
	r.Register(backendSoftware, func() hal.Backend { return software.API{} })
	r.Register(backendNoop, func() hal.Backend { return noop.API{} })
	return r
}

// selectBackend returns the backend called name, or the best one when
// name is empty.
func selectBackend(r *gpucontext.Registry[hal.Backend], name string) (hal.Backend, string, error) {
	if name == "" {
		name = r.BestName()
	}
	if !r.Has(name) {
		avail := r.Available()
		sort.Strings(avail)
		return nil, "", fmt.Errorf("%w %q (available: %s)", errUnknownBackend, name, strings.Join(avail, ", "))
	}
	return r.Get(name), name, nil
}
