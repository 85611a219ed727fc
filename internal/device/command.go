// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package device

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"
)

// CommandAllocator owns the recording memory for one frame slot.
//
// Every recording runs on a fresh encoder: once EndEncoding returns, the
// backend owns the encoder again and may hand it to another caller.
// The command buffers the allocator produced are freed by Reset, which
// must not run while they are still executing; the frame engine
// guarantees that with its fence wait.
type CommandAllocator struct {
	device  hal.Device
	label   string
	encoder hal.CommandEncoder // recording encoder, nil between recordings
	issued  []hal.CommandBuffer
}

// CreateCommandAllocator creates an allocator on the device.
func CreateCommandAllocator(d *Device, label string) (*CommandAllocator, error) {
	if d == nil || d.device == nil {
		return nil, fmt.Errorf("create command allocator %q: %w", label, ErrNoDevice)
	}
	return &CommandAllocator{device: d.device, label: label}, nil
}

// Reset returns every command buffer the allocator produced to the device.
func (a *CommandAllocator) Reset() {
	for _, cb := range a.issued {
		a.device.FreeCommandBuffer(cb)
	}
	a.issued = a.issued[:0]
}

// Pending returns the number of command buffers produced since the last reset.
func (a *CommandAllocator) Pending() int { return len(a.issued) }

func (a *CommandAllocator) begin() error {
	if a.encoder != nil {
		return fmt.Errorf("begin %q: %w", a.label, ErrListState)
	}
	enc, err := beginEncoder(a.device, a.label)
	if err != nil {
		return err
	}
	a.encoder = enc
	return nil
}

func (a *CommandAllocator) end() (hal.CommandBuffer, error) {
	enc := a.encoder
	a.encoder = nil
	cb, err := enc.EndEncoding()
	if err != nil {
		enc.DiscardEncoding()
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	a.issued = append(a.issued, cb)
	return cb, nil
}

// Destroy abandons an open recording and frees the allocator's command
// buffers, which must have completed.
func (a *CommandAllocator) Destroy() {
	if a.encoder != nil {
		a.encoder.DiscardEncoding()
		a.encoder = nil
	}
	a.Reset()
}

// beginEncoder creates an encoder and starts recording on it. The encoder
// records exactly one command buffer.
func beginEncoder(dev hal.Device, label string) (hal.CommandEncoder, error) {
	enc, err := dev.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, fmt.Errorf("create command encoder %q: %w", label, err)
	}
	if err := enc.BeginEncoding(label); err != nil {
		enc.Destroy()
		return nil, fmt.Errorf("begin encoding: %w", err)
	}
	return enc, nil
}

// ListState is the recording state of a CommandList.
type ListState uint8

const (
	// ListOpen is a list with no allocator bound yet.
	ListOpen ListState = iota
	// ListRecording accepts commands.
	ListRecording
	// ListClosed holds a finished command buffer ready for submission.
	ListClosed
	// ListSubmitted has been handed to the queue.
	ListSubmitted
)

// String returns the state name.
func (s ListState) String() string {
	switch s {
	case ListOpen:
		return "Open"
	case ListRecording:
		return "Recording"
	case ListClosed:
		return "Closed"
	case ListSubmitted:
		return "Submitted"
	default:
		return fmt.Sprintf("ListState(%d)", uint8(s))
	}
}

// CommandList is the single reusable recording object shared by all frame
// slots. Each Reset binds it to the allocator of the slot being recorded.
type CommandList struct {
	allocator *CommandAllocator
	state     ListState
	closed    hal.CommandBuffer
	pass      hal.RenderPassEncoder
}

// CreateCommandList creates a list bound to allocator. The list starts
// closed, so the first frame begins with Reset like every other frame.
func CreateCommandList(d *Device, allocator *CommandAllocator) (*CommandList, error) {
	if d == nil || allocator == nil {
		return nil, fmt.Errorf("create command list: %w", ErrListState)
	}
	return &CommandList{allocator: allocator, state: ListClosed}, nil
}

// State returns the current list state.
func (l *CommandList) State() ListState { return l.state }

// Reset returns the list to recording on the given allocator.
func (l *CommandList) Reset(allocator *CommandAllocator) error {
	if l.state == ListRecording {
		return fmt.Errorf("reset: %w (%s)", ErrListState, l.state)
	}
	if err := allocator.begin(); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	l.allocator = allocator
	l.closed = nil
	l.pass = nil
	l.state = ListRecording
	return nil
}

// Encoder returns the encoder commands are recorded into.
func (l *CommandList) Encoder() hal.CommandEncoder { return l.allocator.encoder }

// BeginRenderPass starts a render pass. Only one pass is open at a time.
func (l *CommandList) BeginRenderPass(desc *hal.RenderPassDescriptor) (hal.RenderPassEncoder, error) {
	if l.state != ListRecording || l.pass != nil {
		return nil, fmt.Errorf("begin render pass: %w (%s)", ErrListState, l.state)
	}
	l.pass = l.allocator.encoder.BeginRenderPass(desc)
	return l.pass, nil
}

// Pass returns the open render pass, or nil.
func (l *CommandList) Pass() hal.RenderPassEncoder { return l.pass }

// EndRenderPass closes the open render pass, if any.
func (l *CommandList) EndRenderPass() {
	if l.pass != nil {
		l.pass.End()
		l.pass = nil
	}
}

// Close finishes recording.
func (l *CommandList) Close() error {
	if l.state != ListRecording {
		return fmt.Errorf("close: %w (%s)", ErrListState, l.state)
	}
	l.EndRenderPass()
	cb, err := l.allocator.end()
	if err != nil {
		l.state = ListOpen
		return err
	}
	l.closed = cb
	l.state = ListClosed
	return nil
}

// Execute submits the closed list to the queue.
func (l *CommandList) Execute(q *Queue) (uint64, error) {
	if l.state != ListClosed || l.closed == nil {
		return 0, fmt.Errorf("execute: %w (%s)", ErrListState, l.state)
	}
	idx, err := q.Submit(l.closed)
	if err != nil {
		return 0, err
	}
	l.state = ListSubmitted
	return idx, nil
}
