// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package descheap provides fixed-capacity descriptor heaps.
//
// A heap is a bump allocator: descriptors are appended at the next free
// slot and are never released one by one. Render-target and constant
// buffer descriptor counts are fixed by the frame ring size, so nothing
// more elaborate is needed. The whole heap is destroyed as a unit.
//
// Two kinds exist. An RTV heap holds render-target views of the back
// buffers. A CBV heap holds bind groups exposing uniform buffers to the
// vertex stage and is normally shader visible.
package descheap

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

var (
	// ErrHeapFull is returned when a descriptor is created past the heap capacity.
	ErrHeapFull = errors.New("descheap: heap capacity exceeded")

	// ErrIndexOutOfRange is returned by At for an index with no descriptor.
	ErrIndexOutOfRange = errors.New("descheap: descriptor index out of range")

	// ErrWrongKind is returned when a descriptor is created in a heap of another kind.
	ErrWrongKind = errors.New("descheap: descriptor kind does not match heap")

	// ErrInvalidCapacity is returned by New for a non-positive capacity.
	ErrInvalidCapacity = errors.New("descheap: capacity must be positive")
)

// Kind is the descriptor type a heap stores.
type Kind uint8

const (
	// RTV heaps store render-target views.
	RTV Kind = iota
	// CBV heaps store constant-buffer views.
	CBV
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case RTV:
		return "RTV"
	case CBV:
		return "CBV"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// increment returns the handle stride of one descriptor of kind k.
func (k Kind) increment() uint64 {
	if k == RTV {
		return 32
	}
	return 64
}

// Handle locates a descriptor. CPU is valid for every heap; GPU is zero
// unless the heap is shader visible.
type Handle struct {
	CPU uint64
	GPU uint64
}

// heapSpan separates the handle ranges of different heaps.
const heapSpan = 1 << 32

// nextBase hands out address ranges to heaps.
var nextBase atomic.Uint64

type entry struct {
	view  hal.TextureView
	group hal.BindGroup
}

// Heap is a fixed-capacity array of descriptors of one kind.
type Heap struct {
	device        hal.Device
	kind          Kind
	shaderVisible bool
	capacity      int
	entries       []entry
	cpuBase       uint64
	gpuBase       uint64
}

// New creates an empty heap of the given capacity and kind.
func New(device hal.Device, capacity int, kind Kind, shaderVisible bool) (*Heap, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w (got %d)", ErrInvalidCapacity, capacity)
	}
	base := nextBase.Add(1) * heapSpan
	h := &Heap{
		device:        device,
		kind:          kind,
		shaderVisible: shaderVisible,
		capacity:      capacity,
		entries:       make([]entry, 0, capacity),
		cpuBase:       base,
	}
	if shaderVisible {
		h.gpuBase = base | 1<<63
	}
	return h, nil
}

// Kind returns the descriptor kind of the heap.
func (h *Heap) Kind() Kind { return h.kind }

// ShaderVisible reports whether descriptors carry GPU handles.
func (h *Heap) ShaderVisible() bool { return h.shaderVisible }

// Cap returns the heap capacity.
func (h *Heap) Cap() int { return h.capacity }

// Len returns the number of descriptors created so far.
func (h *Heap) Len() int { return len(h.entries) }

// Increment returns the handle distance between neighbouring descriptors.
func (h *Heap) Increment() uint64 { return h.kind.increment() }

// CreateRTV appends a render-target view.
func (h *Heap) CreateRTV(view hal.TextureView) (Handle, error) {
	if h.kind != RTV {
		return Handle{}, fmt.Errorf("create RTV in %s heap: %w", h.kind, ErrWrongKind)
	}
	if err := h.checkSpace(); err != nil {
		return Handle{}, err
	}
	h.entries = append(h.entries, entry{view: view})
	return h.handle(len(h.entries) - 1), nil
}

// CreateCBV appends a constant-buffer view of size bytes of buf, laid out
// as binding 0 of layout.
func (h *Heap) CreateCBV(layout hal.BindGroupLayout, buf hal.Buffer, size uint64) (Handle, error) {
	if h.kind != CBV {
		return Handle{}, fmt.Errorf("create CBV in %s heap: %w", h.kind, ErrWrongKind)
	}
	if err := h.checkSpace(); err != nil {
		return Handle{}, err
	}
	group, err := h.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  fmt.Sprintf("cbv_%d", len(h.entries)),
		Layout: layout,
		Entries: []gputypes.BindGroupEntry{{
			Binding:  0,
			Resource: gputypes.BufferBinding{Buffer: buf.NativeHandle(), Offset: 0, Size: size},
		}},
	})
	if err != nil {
		return Handle{}, fmt.Errorf("create CBV %d: %w", len(h.entries), err)
	}
	h.entries = append(h.entries, entry{group: group})
	return h.handle(len(h.entries) - 1), nil
}

func (h *Heap) checkSpace() error {
	if len(h.entries) >= h.capacity {
		return fmt.Errorf("%w (%s heap of %d)", ErrHeapFull, h.kind, h.capacity)
	}
	return nil
}

func (h *Heap) handle(i int) Handle {
	off := uint64(i) * h.kind.increment()
	hd := Handle{CPU: h.cpuBase + off}
	if h.shaderVisible {
		hd.GPU = h.gpuBase + off
	}
	return hd
}

// At returns the handle of descriptor i. The same index always yields the
// same handle.
func (h *Heap) At(i int) (Handle, error) {
	if i < 0 || i >= len(h.entries) {
		return Handle{}, fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, i, len(h.entries))
	}
	return h.handle(i), nil
}

// TextureView returns the render-target view stored at i, or nil.
func (h *Heap) TextureView(i int) hal.TextureView {
	if i < 0 || i >= len(h.entries) {
		return nil
	}
	return h.entries[i].view
}

// BindGroup returns the constant-buffer bind group stored at i, or nil.
func (h *Heap) BindGroup(i int) hal.BindGroup {
	if i < 0 || i >= len(h.entries) {
		return nil
	}
	return h.entries[i].group
}

// Destroy releases the descriptors owned by the heap. Views in an RTV heap
// belong to the swapchain and are left alone.
func (h *Heap) Destroy() {
	for _, e := range h.entries {
		if e.group != nil {
			h.device.DestroyBindGroup(e.group)
		}
	}
	h.entries = h.entries[:0]
}
