// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package buffer provides CPU-writable, GPU-readable upload buffers.
//
// Upload[T] holds one value or an array of values of type T in a host
// visible allocation that stays mapped after the first Map. The GPU reads
// the buffer directly, so the CPU must not overwrite contents a submitted
// frame may still read. The frame engine's fence protocol provides that
// guarantee for per-frame data.
package buffer

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

var (
	// ErrSizeMismatch is returned by Map when the data size differs from the buffer size.
	ErrSizeMismatch = errors.New("buffer: data size does not match buffer size")

	// ErrZeroSize is returned by NewUpload for an empty buffer.
	ErrZeroSize = errors.New("buffer: size must be positive")

	// ErrDestroyed is returned when a destroyed buffer is used.
	ErrDestroyed = errors.New("buffer: buffer destroyed")
)

// uploadUsage covers every way the engine binds an upload buffer.
const uploadUsage = gputypes.BufferUsageMapWrite |
	gputypes.BufferUsageCopySrc |
	gputypes.BufferUsageVertex |
	gputypes.BufferUsageIndex |
	gputypes.BufferUsageUniform

// VertexBufferView describes a vertex stream bound from a buffer.
type VertexBufferView struct {
	Buffer        hal.Buffer
	GPUAddress    uint64
	SizeInBytes   uint32
	StrideInBytes uint32
}

// Count returns the number of vertices in the view.
func (v VertexBufferView) Count() uint32 {
	if v.StrideInBytes == 0 {
		return 0
	}
	return v.SizeInBytes / v.StrideInBytes
}

// IndexBufferView describes an index stream bound from a buffer.
type IndexBufferView struct {
	Buffer      hal.Buffer
	GPUAddress  uint64
	SizeInBytes uint32
	Format      gputypes.IndexFormat
}

// Count returns the number of indices in the view.
func (v IndexBufferView) Count() uint32 {
	size := v.Format.Size()
	if size == 0 {
		return 0
	}
	return v.SizeInBytes / size
}

// Upload is an upload buffer of elements of type T.
type Upload[T any] struct {
	device hal.Device
	buffer hal.Buffer
	size   uint64
	mapped []byte
}

// NewUpload allocates an upload buffer of exactly byteSize bytes.
func NewUpload[T any](device hal.Device, label string, byteSize uint64) (*Upload[T], error) {
	if byteSize == 0 {
		return nil, ErrZeroSize
	}
	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  byteSize,
		Usage: uploadUsage,
	})
	if err != nil {
		return nil, fmt.Errorf("create upload buffer %q (%d bytes): %w", label, byteSize, err)
	}
	return &Upload[T]{device: device, buffer: buf, size: byteSize}, nil
}

// NewUploadFrom allocates a buffer sized for data and maps data into it.
func NewUploadFrom[T any](device hal.Device, label string, data []T) (*Upload[T], error) {
	u, err := NewUpload[T](device, label, byteSize(data))
	if err != nil {
		return nil, err
	}
	if err := u.Map(data); err != nil {
		u.Destroy()
		return nil, err
	}
	return u, nil
}

func elemSize[T any]() uint64 {
	var zero T
	return uint64(unsafe.Sizeof(zero))
}

func byteSize[T any](data []T) uint64 {
	return uint64(len(data)) * elemSize[T]()
}

// Size returns the buffer size in bytes.
func (u *Upload[T]) Size() uint64 { return u.size }

// Buffer returns the underlying HAL buffer.
func (u *Upload[T]) Buffer() hal.Buffer { return u.buffer }

// IsMapped reports whether the CPU mapping is live.
func (u *Upload[T]) IsMapped() bool { return u.mapped != nil }

// Map copies data into the buffer and leaves the buffer mapped. The byte
// size of data must equal the buffer size; on mismatch the contents are
// left unchanged.
func (u *Upload[T]) Map(data []T) error {
	if u.buffer == nil {
		return ErrDestroyed
	}
	if n := byteSize(data); n != u.size {
		return fmt.Errorf("%w: got %d bytes, buffer holds %d", ErrSizeMismatch, n, u.size)
	}
	if u.mapped == nil {
		m, err := u.device.MapBuffer(u.buffer, 0, u.size)
		if err != nil {
			return fmt.Errorf("map upload buffer: %w", err)
		}
		u.mapped = unsafe.Slice((*byte)(m.Ptr), u.size)
	}
	if len(data) > 0 {
		src := unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), u.size)
		copy(u.mapped, src)
	}
	return nil
}

// Bytes returns the mapped bytes, or nil when the buffer is not mapped.
func (u *Upload[T]) Bytes() []byte { return u.mapped }

// Mapped returns the mapped contents as elements of T, or nil when the
// buffer is not mapped. Writes through the slice reach the GPU without
// another Map.
func (u *Upload[T]) Mapped() []T {
	if u.mapped == nil {
		return nil
	}
	n := u.size / elemSize[T]()
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&u.mapped[0])), n)
}

// Unmap releases the CPU mapping. Unmapping an unmapped buffer does nothing.
func (u *Upload[T]) Unmap() error {
	if u.mapped == nil || u.buffer == nil {
		return nil
	}
	u.mapped = nil
	if err := u.device.UnmapBuffer(u.buffer); err != nil {
		return fmt.Errorf("unmap upload buffer: %w", err)
	}
	return nil
}

// VertexBufferView returns a view of the whole buffer with T as the vertex stride.
func (u *Upload[T]) VertexBufferView() VertexBufferView {
	return VertexBufferView{
		Buffer:        u.buffer,
		GPUAddress:    u.address(),
		SizeInBytes:   uint32(u.size),
		StrideInBytes: uint32(elemSize[T]()),
	}
}

// IndexBufferView returns a view of the whole buffer as 32-bit indices.
func (u *Upload[T]) IndexBufferView() IndexBufferView {
	return IndexBufferView{
		Buffer:      u.buffer,
		GPUAddress:  u.address(),
		SizeInBytes: uint32(u.size),
		Format:      gputypes.IndexFormatUint32,
	}
}

func (u *Upload[T]) address() uint64 {
	if u.buffer == nil {
		return 0
	}
	return uint64(u.buffer.NativeHandle())
}

// Destroy unmaps and releases the buffer. It must not be called while a
// submitted command list still references the buffer.
func (u *Upload[T]) Destroy() {
	if u.buffer == nil {
		return
	}
	_ = u.Unmap()
	u.device.DestroyBuffer(u.buffer)
	u.buffer = nil
}
