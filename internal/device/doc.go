// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package device is the factory layer of rendercore.
//
// It creates the objects the frame engine is built from: the logical
// device, the command queue, the presentation chain, per-slot command
// allocators, the shared command list, and the fence/event pair used for
// CPU/GPU synchronization. Everything is expressed on top of the
// gogpu/wgpu HAL, so the same code runs on Vulkan, Metal, DX12, GLES,
// the software rasterizer and the noop test backend.
//
// The factory functions hold no package state. A failure from any of
// them leaves nothing half-built that the caller must clean up, except
// objects it already received from earlier calls.
package device
