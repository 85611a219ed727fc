// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package rendercore

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/rendercore/buffer"
	"github.com/gogpu/rendercore/descheap"
)

// constantAlignment is the size every constant buffer is rounded up to.
const constantAlignment = 256

// Transform is the per-frame constant buffer of the built-in shaders.
type Transform struct {
	World      mgl32.Mat4
	View       mgl32.Mat4
	Projection mgl32.Mat4
	_          [constantAlignment - 3*64]byte
}

// IdentityTransform returns a transform that leaves positions unchanged.
func IdentityTransform() Transform {
	return Transform{
		World:      mgl32.Ident4(),
		View:       mgl32.Ident4(),
		Projection: mgl32.Ident4(),
	}
}

var _ [constantAlignment - unsafe.Sizeof(Transform{})]struct{}

// CreateCBV creates one Transform constant buffer per frame slot and a
// shader-visible heap with a constant-buffer view of each. It runs after
// CreatePipelines, whose layout the views are built against.
//
// Each buffer starts with IdentityTransform and stays mapped. Write the
// buffer of FrameIndex() between Present and RenderEnd of the next frame.
func (e *Engine) CreateCBV() error {
	if e.dev == nil {
		return ErrNotCreated
	}
	if e.bindLayout == nil {
		return fmt.Errorf("create CBV: %w", ErrNoPipeline)
	}
	if e.cbvHeap != nil {
		return fmt.Errorf("create CBV: %w", ErrAlreadyCreated)
	}

	heap, err := descheap.New(e.dev.HAL(), e.frameCount, descheap.CBV, true)
	if err != nil {
		return fmt.Errorf("create CBV heap: %w", err)
	}
	initial := []Transform{IdentityTransform()}
	for i := 0; i < e.frameCount; i++ {
		cb, err := buffer.NewUploadFrom(e.dev.HAL(), fmt.Sprintf("constants_%d", i), initial)
		if err != nil {
			e.releaseConstants(heap)
			return fmt.Errorf("create constant buffer %d: %w", i, err)
		}
		e.slots[i].constants = cb
		if _, err := heap.CreateCBV(e.bindLayout, cb.Buffer(), cb.Size()); err != nil {
			e.releaseConstants(heap)
			return fmt.Errorf("create CBV %d: %w", i, err)
		}
	}
	e.cbvHeap = heap
	e.logger().Debug("rendercore: constant buffers created", "count", e.frameCount, "size", constantAlignment)
	return nil
}

// ConstantBuffer returns the constant buffer of a frame slot, or nil
// before CreateCBV or for a slot outside the ring.
func (e *Engine) ConstantBuffer(slot int) *buffer.Upload[Transform] {
	if slot < 0 || slot >= e.frameCount {
		return nil
	}
	return e.slots[slot].constants
}

// UpdateTransform writes t into the constant buffer of the current slot.
func (e *Engine) UpdateTransform(t Transform) error {
	cb := e.ConstantBuffer(e.frameIndex)
	if cb == nil {
		return ErrNoConstantBuffers
	}
	cb.Mapped()[0] = t
	return nil
}

func (e *Engine) releaseConstants(heap *descheap.Heap) {
	if heap != nil {
		heap.Destroy()
	}
	for i := range e.slots {
		if cb := e.slots[i].constants; cb != nil {
			cb.Destroy()
			e.slots[i].constants = nil
		}
	}
}
