// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package rendercore

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rendercore/buffer"
	"github.com/gogpu/rendercore/descheap"
	"github.com/gogpu/rendercore/internal/device"
	"github.com/gogpu/rendercore/internal/shader"
)

// shaderCacheSize is the number of shader binaries an engine keeps decoded.
const shaderCacheSize = 8

// frameSlot is everything one ring position owns. A slot is free for the
// CPU once the fence has reached counter.
type frameSlot struct {
	allocator *device.CommandAllocator
	counter   uint64
	constants *buffer.Upload[Transform]
}

// Engine drives the frame lifecycle: device setup, per-frame command
// recording and CPU/GPU synchronization.
//
// An Engine is used from one goroutine. Create it with New, then call
// CreateDevices and CreatePipelines once before the first frame.
type Engine struct {
	opts       options
	frameCount int

	dev     *device.Device
	queue   *device.Queue
	chain   *device.Swapchain
	rtvHeap *descheap.Heap
	cbvHeap *descheap.Heap
	list    *device.CommandList
	fence   *device.Fence

	slots      [MaxFrameCount]frameSlot
	frameIndex int
	states     stateTracker

	loader         *shader.Loader
	bindLayout     hal.BindGroupLayout
	pipelineLayout hal.PipelineLayout
	vertexModule   hal.ShaderModule
	pixelModule    hal.ShaderModule
	pipeline       hal.RenderPipeline

	// Bindings of the frame being recorded.
	pass          hal.RenderPassEncoder
	vertexView    buffer.VertexBufferView
	indexView     buffer.IndexBufferView
	instanceView  buffer.VertexBufferView
	frames        uint64
	width, height uint32
}

// Compile-time check that Engine can hand its device to other gogpu
// libraries.
var _ gpucontext.DeviceProvider = (*Engine)(nil)

// New returns an engine configured by opts. No GPU object exists until
// CreateDevices.
func New(opts ...Option) *Engine {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine{
		opts:       o,
		frameCount: o.frameCount,
		loader:     shader.NewLoader(shaderCacheSize),
	}
}

func (e *Engine) logger() *slog.Logger {
	if e.opts.logger != nil {
		return e.opts.logger
	}
	return Logger()
}

// CreateDevices creates the device, queue, presentation chain, render
// target heap, one command allocator per frame slot, the shared command
// list and the fence. Any failure releases what was created and leaves
// the engine uncreated.
func (e *Engine) CreateDevices(width, height int) error {
	if e.dev != nil {
		return ErrAlreadyCreated
	}
	if e.frameCount < 2 || e.frameCount > MaxFrameCount {
		return fmt.Errorf("%w: %d (want 2..%d)", ErrFrameCount, e.frameCount, MaxFrameCount)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("create devices: %w (%dx%d)", device.ErrInvalidSize, width, height)
	}

	if err := e.createDevices(uint32(width), uint32(height)); err != nil {
		e.release()
		return err
	}

	// The fence starts at the target of the first slot, which then moves
	// one ahead so the first Present signals a value the GPU has not reached.
	e.frameIndex = e.chain.CurrentBackBufferIndex()
	e.fence = device.CreateFence(e.queue, e.slots[e.frameIndex].counter)
	e.slots[e.frameIndex].counter++

	info := e.dev.Info()
	e.logger().Info("rendercore: devices created",
		"adapter", info.Name,
		"backend", info.Backend.String(),
		"width", width, "height", height,
		"frames", e.frameCount,
		"format", e.chain.Format().String(),
		"headless", e.chain.Headless())
	return nil
}

func (e *Engine) createDevices(width, height uint32) error {
	dev, err := device.CreateDevice(e.opts.backend, e.opts.debug)
	if err != nil {
		return fmt.Errorf("create device: %w", err)
	}
	e.dev = dev
	e.queue = device.CreateCommandQueue(dev)

	chain, err := device.CreateSwapchain(e.queue, dev, device.SwapchainDescriptor{
		Width:      width,
		Height:     height,
		FrameCount: e.frameCount,
		Format:     e.opts.format,
		Surface:    e.opts.surface,
	})
	if err != nil {
		return fmt.Errorf("create swapchain: %w", err)
	}
	e.chain = chain
	e.width, e.height = chain.Size()
	e.states = newStateTracker(chain.Len())

	heap, err := descheap.New(dev.HAL(), e.frameCount, descheap.RTV, false)
	if err != nil {
		return fmt.Errorf("create RTV heap: %w", err)
	}
	e.rtvHeap = heap
	for i := 0; i < chain.Len(); i++ {
		if _, err := heap.CreateRTV(chain.Image(i).View); err != nil {
			return fmt.Errorf("create RTV %d: %w", i, err)
		}
	}

	for i := 0; i < e.frameCount; i++ {
		alloc, err := device.CreateCommandAllocator(dev, fmt.Sprintf("frame_%d", i))
		if err != nil {
			return err
		}
		e.slots[i].allocator = alloc
	}

	list, err := device.CreateCommandList(dev, e.slots[0].allocator)
	if err != nil {
		return err
	}
	e.list = list
	return nil
}

// Close destroys every GPU object in reverse creation order. Call WaitGPU
// first: nothing may be in flight. Close is a no-op on an uncreated engine.
func (e *Engine) Close() {
	if e.dev == nil {
		return
	}
	e.release()
	e.logger().Debug("rendercore: engine closed", "frames", e.frames)
}

func (e *Engine) release() {
	e.releaseConstants(e.cbvHeap)
	e.cbvHeap = nil
	e.releasePipeline()
	e.list = nil
	e.fence = nil
	for i := range e.slots {
		if a := e.slots[i].allocator; a != nil {
			a.Destroy()
		}
		e.slots[i] = frameSlot{}
	}
	if e.rtvHeap != nil {
		e.rtvHeap.Destroy()
		e.rtvHeap = nil
	}
	if e.chain != nil {
		e.chain.Destroy()
		e.chain = nil
	}
	e.queue = nil
	if e.dev != nil {
		e.dev.Destroy()
		e.dev = nil
	}
	e.pass = nil
	e.frameIndex = 0
}

// FrameIndex returns the slot of the frame being prepared.
func (e *Engine) FrameIndex() int { return e.frameIndex }

// FrameCount returns the ring size.
func (e *Engine) FrameCount() int { return e.frameCount }

// FenceCounter returns the fence target of a frame slot.
func (e *Engine) FenceCounter(slot int) uint64 {
	if slot < 0 || slot >= e.frameCount {
		return 0
	}
	return e.slots[slot].counter
}

// CompletedValue returns the fence value the GPU has reached.
func (e *Engine) CompletedValue() uint64 {
	if e.fence == nil {
		return 0
	}
	return e.fence.CompletedValue()
}

// Size returns the back buffer size.
func (e *Engine) Size() (width, height uint32) { return e.width, e.height }

// Device returns the HAL device, or nil before CreateDevices.
func (e *Engine) Device() gpucontext.Device {
	if e.dev == nil {
		return nil
	}
	return e.dev.HAL()
}

// Queue returns the HAL queue, or nil before CreateDevices.
func (e *Engine) Queue() gpucontext.Queue {
	if e.queue == nil {
		return nil
	}
	return e.queue.HAL()
}

// Adapter returns the HAL adapter, or nil before CreateDevices.
func (e *Engine) Adapter() gpucontext.Adapter {
	if e.dev == nil {
		return nil
	}
	return e.dev.Adapter()
}

// SurfaceFormat returns the back buffer format. It is
// TextureFormatUndefined when the engine renders headless.
func (e *Engine) SurfaceFormat() gputypes.TextureFormat {
	if e.chain == nil || e.chain.Headless() {
		return gputypes.TextureFormatUndefined
	}
	return e.chain.Format()
}

// AdapterInfo describes the adapter the device was opened on.
func (e *Engine) AdapterInfo() gpucontext.AdapterInfo {
	if e.dev == nil {
		return gpucontext.AdapterInfo{Type: gpucontext.AdapterTypeUnknown}
	}
	info := e.dev.Info()
	return gpucontext.AdapterInfo{Name: info.Name, Type: adapterType(info.DeviceType)}
}

func adapterType(t gputypes.DeviceType) gpucontext.AdapterType {
	switch t {
	case gputypes.DeviceTypeDiscreteGPU:
		return gpucontext.AdapterTypeDiscrete
	case gputypes.DeviceTypeIntegratedGPU:
		return gpucontext.AdapterTypeIntegrated
	case gputypes.DeviceTypeCPU:
		return gpucontext.AdapterTypeSoftware
	default:
		return gpucontext.AdapterTypeUnknown
	}
}
