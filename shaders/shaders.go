// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package shaders holds the built-in WGSL sources of rendercore and builds
// them into the SPIR-V files the engine loads.
package shaders

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/rendercore/internal/shader"
)

//go:embed *.wgsl
var files embed.FS

// Built-in shader sources.
const (
	QuadVertex          = "quad_vs.wgsl"
	QuadInstancedVertex = "quad_instanced_vs.wgsl"
	QuadPixel           = "quad_ps.wgsl"
)

// Entry points of the built-in shaders.
const (
	VertexEntry = "vs_main"
	PixelEntry  = "fs_main"
)

// Source returns the WGSL text of a built-in shader.
func Source(name string) (string, error) {
	data, err := files.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("shaders: %w", err)
	}
	return string(data), nil
}

// Build compiles the named built-in shaders into dir and returns the
// path of each .spv file keyed by source name.
func Build(dir string, names ...string) (map[string]string, error) {
	paths := make(map[string]string, len(names))
	for _, name := range names {
		src, err := Source(name)
		if err != nil {
			return nil, err
		}
		spirv, err := shader.CompileWGSL(src)
		if err != nil {
			return nil, fmt.Errorf("shaders: %s: %w", name, err)
		}
		out := filepath.Join(dir, strings.TrimSuffix(name, ".wgsl")+".spv")
		if err := os.WriteFile(out, spirv, 0o644); err != nil {
			return nil, fmt.Errorf("shaders: write %s: %w", out, err)
		}
		paths[name] = out
	}
	return paths, nil
}
