// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package rendercore is a minimal real-time rendering core built on the
// explicit gogpu/wgpu HAL.
//
// # Overview
//
// An [Engine] owns the GPU device, the presentation chain, per-frame
// command recording and the fence protocol that keeps the CPU at most
// FRAME_COUNT frames ahead of the GPU. Each ring position (frame slot) has
// its own command allocator, fence target, back buffer and constant
// buffer, so the CPU records frame N+1 while the GPU executes frame N.
//
// # Quick Start
//
//	e := rendercore.New(rendercore.WithBackend(vulkan.Backend{}))
//	if err := e.CreateDevices(1280, 720); err != nil {
//	    return err
//	}
//	defer e.Close()
//	if err := e.CreatePipelines(rendercore.PipelineConfig{
//	    VertexShader: "quad_vs.spv",
//	    PixelShader:  "quad_ps.spv",
//	}); err != nil {
//	    return err
//	}
//
//	for running {
//	    if err := e.RenderBegin(); err != nil {
//	        return err
//	    }
//	    e.RenderInit()
//	    e.SetVertexBuffer(vertices.VertexBufferView())
//	    e.SetIndexBuffer(indices.IndexBufferView())
//	    e.RenderIndexed()
//	    if err := e.RenderEnd(); err != nil {
//	        return err
//	    }
//	    if err := e.Present(ctx); err != nil {
//	        return err
//	    }
//	}
//	return e.WaitGPU(ctx)
//
// # Call order
//
// CreateDevices, CreatePipelines and the optional CreateCBV run once.
// Every frame then runs RenderBegin, RenderInit, the bind calls, the draw
// calls, RenderEnd and Present in that order. WaitGPU must run once before
// Close. The engine does not validate the order of these calls.
//
// # Synchronization
//
// Present signals the fence with the target of the slot just submitted,
// blocks until the GPU has finished the previous use of the next slot and
// only then advances the chain. This wait is the only flow control: there is no
// queue depth limit beyond the ring.
//
// # Logging
//
// The package is silent by default. Use [SetLogger] to route its output
// (and that of the device layer and the HAL) to a slog handler.
package rendercore
