// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package rendercore

import (
	"context"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rendercore/buffer"
)

// RenderBegin starts recording the frame of the current slot.
//
// It resets the slot's allocator and the shared command list, moves the
// back buffer to the render target state and opens a render pass that
// clears it. The slot's previous GPU work is known to be finished: the
// Present that made this slot current waited for it.
func (e *Engine) RenderBegin() error {
	if e.dev == nil {
		return ErrNotCreated
	}
	slot := &e.slots[e.frameIndex]
	slot.allocator.Reset()
	if err := e.list.Reset(slot.allocator); err != nil {
		return fmt.Errorf("render begin: %w", err)
	}
	e.transition(StateRenderTarget)

	rtv, err := e.rtvHeap.At(e.frameIndex)
	if err != nil {
		return fmt.Errorf("render begin: %w", err)
	}
	pass, err := e.list.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: fmt.Sprintf("frame_%d", e.frameIndex),
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       e.rtvHeap.TextureView(e.frameIndex),
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: e.opts.clearColor,
		}},
	})
	if err != nil {
		return fmt.Errorf("render begin: %w", err)
	}
	e.pass = pass
	e.vertexView = buffer.VertexBufferView{}
	e.indexView = buffer.IndexBufferView{}
	e.instanceView = buffer.VertexBufferView{}

	e.logger().Debug("rendercore: frame begin",
		"slot", e.frameIndex, "rtv", rtv.CPU, "target", slot.counter)
	return nil
}

// RenderInit sets the pipeline, the viewport and scissor covering the
// back buffer, and the constant buffer of the current slot when CreateCBV
// has run.
func (e *Engine) RenderInit() {
	if e.pass == nil {
		return
	}
	if e.pipeline != nil {
		e.pass.SetPipeline(e.pipeline)
	}
	e.pass.SetViewport(0, 0, float32(e.width), float32(e.height), 0, 1)
	e.pass.SetScissorRect(0, 0, e.width, e.height)
	if e.cbvHeap != nil {
		e.pass.SetBindGroup(0, e.cbvHeap.BindGroup(e.frameIndex), nil)
	}
}

// SetVertexBuffer binds the vertex stream at slot 0.
func (e *Engine) SetVertexBuffer(v buffer.VertexBufferView) {
	e.vertexView = v
	if e.pass != nil {
		e.pass.SetVertexBuffer(0, v.Buffer, 0)
	}
}

// SetIndexBuffer binds the index stream.
func (e *Engine) SetIndexBuffer(v buffer.IndexBufferView) {
	e.indexView = v
	if e.pass != nil {
		e.pass.SetIndexBuffer(v.Buffer, v.Format, 0)
	}
}

// SetInstanceBuffer binds the per-instance transform stream at slot 1.
// The pipeline must have been created with Instanced set.
func (e *Engine) SetInstanceBuffer(v buffer.VertexBufferView) {
	e.instanceView = v
	if e.pass != nil {
		e.pass.SetVertexBuffer(instanceSlot, v.Buffer, 0)
	}
}

// SetConstantBuffer binds the constant-buffer view of slot in place of
// the one RenderInit bound.
func (e *Engine) SetConstantBuffer(slot int) error {
	if e.cbvHeap == nil {
		return ErrNoConstantBuffers
	}
	if _, err := e.cbvHeap.At(slot); err != nil {
		return fmt.Errorf("set constant buffer: %w", err)
	}
	if e.pass != nil {
		e.pass.SetBindGroup(0, e.cbvHeap.BindGroup(slot), nil)
	}
	return nil
}

// Render draws the bound vertex buffer: size divided by stride vertices,
// one instance.
func (e *Engine) Render() {
	if e.pass == nil {
		return
	}
	e.pass.Draw(e.vertexView.Count(), 1, 0, 0)
}

// RenderIndexed draws the bound index buffer: every 32-bit index, one
// instance.
func (e *Engine) RenderIndexed() {
	e.DrawCall(e.indexView.Count(), 1)
}

// DrawCall records an indexed draw of indexCount indices and
// instanceCount instances.
func (e *Engine) DrawCall(indexCount, instanceCount uint32) {
	if e.pass == nil {
		return
	}
	e.pass.DrawIndexed(indexCount, instanceCount, 0, 0, 0)
}

// RenderEnd closes the render pass, moves the back buffer back to the
// present state and submits the frame.
func (e *Engine) RenderEnd() error {
	if e.dev == nil {
		return ErrNotCreated
	}
	e.list.EndRenderPass()
	e.pass = nil
	e.transition(StatePresent)

	if err := e.list.Close(); err != nil {
		return fmt.Errorf("render end: %w", err)
	}
	idx, err := e.list.Execute(e.queue)
	if err != nil {
		return fmt.Errorf("render end: %w", err)
	}
	e.frames++
	e.logger().Debug("rendercore: frame submitted", "slot", e.frameIndex, "submission", idx)
	return nil
}

// transition records the barrier that moves the current back buffer to
// state. Nothing is recorded when the buffer is already there.
func (e *Engine) transition(to ResourceState) {
	img := e.chain.Image(e.frameIndex)
	barrier, ok := e.states.transition(e.frameIndex, to, img.Texture)
	if !ok {
		return
	}
	e.list.Encoder().TransitionTextures([]hal.TextureBarrier{barrier})
}

// Present shows the frame and makes the next slot current.
//
// The fence is signaled with the target of the slot just submitted. If
// the GPU has not yet reached the target of the next slot, Present blocks
// until it does or ctx is done. The next slot's target then becomes one
// past the value just signaled.
//
// When ctx ends during the wait neither the engine nor the presentation
// chain moves on: the frame just presented stays current and its work may
// still be executing. Run WaitGPU before recording another frame.
func (e *Engine) Present(ctx context.Context) error {
	if e.dev == nil {
		return ErrNotCreated
	}
	cur := e.frameIndex
	if err := e.chain.Present(); err != nil {
		return fmt.Errorf("present: %w", err)
	}
	signaled := e.slots[cur].counter
	if err := e.fence.Signal(signaled); err != nil {
		return fmt.Errorf("present: signal %d: %w", signaled, err)
	}

	next := e.chain.NextBackBufferIndex()
	if target := e.slots[next].counter; e.fence.CompletedValue() < target {
		e.logger().Debug("rendercore: waiting for slot",
			"slot", next, "target", target, "completed", e.fence.CompletedValue())
		if err := e.fence.Wait(ctx, target); err != nil {
			return fmt.Errorf("present: wait for slot %d: %w", next, err)
		}
	}
	e.frameIndex = e.chain.Advance()
	e.slots[next].counter = signaled + 1
	return nil
}

// WaitGPU blocks until the GPU has finished all submitted work. It must
// run before Close.
func (e *Engine) WaitGPU(ctx context.Context) error {
	if e.dev == nil {
		return ErrNotCreated
	}
	slot := &e.slots[e.frameIndex]
	if err := e.fence.Signal(slot.counter); err != nil {
		return fmt.Errorf("wait GPU: signal %d: %w", slot.counter, err)
	}
	if err := e.fence.Wait(ctx, slot.counter); err != nil {
		return fmt.Errorf("wait GPU: %w", err)
	}
	slot.counter++
	return nil
}
