// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package commands

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/wgpu/hal/noop"
	"github.com/gogpu/wgpu/hal/software"
)

func TestBackendRegistry(t *testing.T) {
	r := newBackendRegistry()
	for _, name := range []string{backendSoftware, backendNoop} {
		if !r.Has(name) {
			t.Errorf("backend %q not registered", name)
		}
	}
	// Vulkan only registers when a loader is present.
	best := r.BestName()
	if r.Has(backendVulkan) {
		if best != backendVulkan {
			t.Errorf("best = %q, want vulkan", best)
		}
	} else if best != backendSoftware {
		t.Errorf("best = %q, want software", best)
	}
}

func TestSelectBackend(t *testing.T) {
	r := newBackendRegistry()

	b, name, err := selectBackend(r, backendNoop)
	if err != nil {
		t.Fatalf("selectBackend(noop): %v", err)
	}
	if _, ok := b.(noop.API); !ok || name != backendNoop {
		t.Errorf("got %T %q, want noop.API", b, name)
	}

	b, _, err = selectBackend(r, backendSoftware)
	if err != nil {
		t.Fatalf("selectBackend(software): %v", err)
	}
	if _, ok := b.(software.API); !ok {
		t.Errorf("got %T, want software.API", b)
	}

	if _, name, err := selectBackend(r, ""); err != nil || name != r.BestName() {
		t.Errorf("default backend = %q, %v", name, err)
	}

	_, _, err = selectBackend(r, "d3d12")
	if !errors.Is(err, errUnknownBackend) {
		t.Fatalf("err = %v, want errUnknownBackend", err)
	}
	if !strings.Contains(err.Error(), backendNoop) {
		t.Errorf("error %q does not list the available backends", err)
	}
}
