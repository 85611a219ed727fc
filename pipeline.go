// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package rendercore

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rendercore/internal/shader"
)

// Default shader entry points.
const (
	DefaultVertexEntry = "vs_main"
	DefaultPixelEntry  = "fs_main"
)

// ErrShaderPath is returned when a pipeline is configured without a shader file.
var ErrShaderPath = errors.New("rendercore: shader path is empty")

// PipelineConfig names the precompiled shaders of the render pipeline.
type PipelineConfig struct {
	// VertexShader and PixelShader are paths to SPIR-V binaries.
	VertexShader string
	PixelShader  string

	// VertexEntry and PixelEntry default to vs_main and fs_main.
	VertexEntry string
	PixelEntry  string

	// Instanced adds the per-instance transform stream at slot 1.
	Instanced bool
}

func (c PipelineConfig) withDefaults() PipelineConfig {
	if c.VertexEntry == "" {
		c.VertexEntry = DefaultVertexEntry
	}
	if c.PixelEntry == "" {
		c.PixelEntry = DefaultPixelEntry
	}
	return c
}

// CreatePipelines builds the root signature (one uniform buffer visible to
// the vertex stage) and the graphics pipeline: Vertex input, optional
// instance transforms, triangle list, no culling, no blending, no depth,
// one render target in the back buffer format, one sample.
func (e *Engine) CreatePipelines(cfg PipelineConfig) error {
	if e.dev == nil {
		return ErrNotCreated
	}
	if e.pipeline != nil {
		return fmt.Errorf("create pipelines: %w", ErrAlreadyCreated)
	}
	if cfg.VertexShader == "" || cfg.PixelShader == "" {
		return fmt.Errorf("create pipelines: %w", ErrShaderPath)
	}
	cfg = cfg.withDefaults()

	if err := e.createPipelines(cfg); err != nil {
		e.releasePipeline()
		return err
	}
	e.logger().Info("rendercore: pipeline created",
		"vertex", cfg.VertexShader,
		"pixel", cfg.PixelShader,
		"instanced", cfg.Instanced,
		"format", e.chain.Format().String())
	return nil
}

func (e *Engine) createPipelines(cfg PipelineConfig) error {
	dev := e.dev.HAL()

	layout, err := dev.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "constants_layout",
		Entries: []gputypes.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: gputypes.ShaderStageVertex,
			Buffer: &gputypes.BufferBindingLayout{
				Type:           gputypes.BufferBindingTypeUniform,
				MinBindingSize: constantAlignment,
			},
		}},
	})
	if err != nil {
		return fmt.Errorf("create root signature: %w", err)
	}
	e.bindLayout = layout

	pl, err := dev.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "root_signature",
		BindGroupLayouts: []hal.BindGroupLayout{layout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	e.pipelineLayout = pl

	vs, err := e.loader.CreateModule(dev, shader.StageVertex, cfg.VertexShader)
	if err != nil {
		return err
	}
	e.vertexModule = vs
	ps, err := e.loader.CreateModule(dev, shader.StagePixel, cfg.PixelShader)
	if err != nil {
		return err
	}
	e.pixelModule = ps

	buffers := []gputypes.VertexBufferLayout{vertexLayout()}
	if cfg.Instanced {
		buffers = append(buffers, instanceLayout())
	}

	pipeline, err := dev.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "frame_pipeline",
		Layout: pl,
		Vertex: hal.VertexState{
			Module:     vs,
			EntryPoint: cfg.VertexEntry,
			Buffers:    buffers,
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  gputypes.PrimitiveTopologyTriangleList,
			FrontFace: gputypes.FrontFaceCCW,
			CullMode:  gputypes.CullModeNone,
		},
		Multisample: gputypes.DefaultMultisampleState(),
		Fragment: &hal.FragmentState{
			Module:     ps,
			EntryPoint: cfg.PixelEntry,
			Targets: []gputypes.ColorTargetState{{
				Format:    e.chain.Format(),
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("create pipeline state: %w", err)
	}
	e.pipeline = pipeline
	return nil
}

func (e *Engine) releasePipeline() {
	if e.dev == nil {
		return
	}
	dev := e.dev.HAL()
	if e.pipeline != nil {
		dev.DestroyRenderPipeline(e.pipeline)
		e.pipeline = nil
	}
	if e.pixelModule != nil {
		dev.DestroyShaderModule(e.pixelModule)
		e.pixelModule = nil
	}
	if e.vertexModule != nil {
		dev.DestroyShaderModule(e.vertexModule)
		e.vertexModule = nil
	}
	if e.pipelineLayout != nil {
		dev.DestroyPipelineLayout(e.pipelineLayout)
		e.pipelineLayout = nil
	}
	if e.bindLayout != nil {
		dev.DestroyBindGroupLayout(e.bindLayout)
		e.bindLayout = nil
	}
}
