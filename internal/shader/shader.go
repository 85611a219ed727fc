// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package shader loads precompiled SPIR-V shader binaries and, for tools,
// compiles WGSL to SPIR-V.
package shader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rendercore/internal/cache"
)

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

var (
	// ErrInvalidBinary is returned for data that is not a SPIR-V module.
	ErrInvalidBinary = errors.New("shader: not a SPIR-V binary")

	// ErrEmptySource is returned when compiling empty WGSL.
	ErrEmptySource = errors.New("shader: empty WGSL source")
)

// Stage names the pipeline stage a module is built for.
type Stage string

const (
	StageVertex Stage = "vertex"
	StagePixel  Stage = "pixel"
)

// Words converts a little-endian SPIR-V byte stream into 32-bit words.
func Words(spirv []byte) ([]uint32, error) {
	if len(spirv) < 4 || len(spirv)%4 != 0 {
		return nil, fmt.Errorf("%w: length %d is not a positive multiple of 4", ErrInvalidBinary, len(spirv))
	}
	words := make([]uint32, len(spirv)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirv[i*4:])
	}
	if words[0] != spirvMagic {
		return nil, fmt.Errorf("%w: bad magic %#08x", ErrInvalidBinary, words[0])
	}
	return words, nil
}

// CompileWGSL compiles WGSL source to SPIR-V bytes.
func CompileWGSL(source string) ([]byte, error) {
	if source == "" {
		return nil, ErrEmptySource
	}
	spirv, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("compile WGSL: %w", err)
	}
	return spirv, nil
}

// Loader reads shader binaries from disk and keeps the decoded words, so
// pipelines built from the same file read it once.
type Loader struct {
	blobs *cache.Cache[string, []uint32]
}

// NewLoader returns a loader that keeps up to limit decoded binaries.
func NewLoader(limit int) *Loader {
	return &Loader{blobs: cache.New[string, []uint32](limit)}
}

// Load returns the SPIR-V words stored in the file at path.
func (l *Loader) Load(path string) ([]uint32, error) {
	return l.blobs.GetOrLoad(path, func() ([]uint32, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read shader %s: %w", path, err)
		}
		words, err := Words(data)
		if err != nil {
			return nil, fmt.Errorf("shader %s: %w", path, err)
		}
		return words, nil
	})
}

// Stats reports loader cache hits and misses.
func (l *Loader) Stats() cache.Stats { return l.blobs.Stats() }

// CreateModule loads the binary at path and creates a shader module for stage.
func (l *Loader) CreateModule(device hal.Device, stage Stage, path string) (hal.ShaderModule, error) {
	words, err := l.Load(path)
	if err != nil {
		return nil, err
	}
	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  string(stage) + "_shader",
		Source: hal.ShaderSource{SPIRV: words},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s shader module from %s: %w", stage, path, err)
	}
	return module, nil
}
