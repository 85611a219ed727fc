// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package rendercore

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

// Vertex is the per-vertex input of the built-in pipeline.
type Vertex struct {
	Position [3]float32
	Color    [4]float32
}

// InstanceTransform is the per-instance input of the instanced pipeline.
// The matrix is streamed as four float32x4 attributes, one per column.
type InstanceTransform struct {
	World mgl32.Mat4
}

const (
	vertexStride   = uint64(unsafe.Sizeof(Vertex{}))
	instanceStride = uint64(unsafe.Sizeof(InstanceTransform{}))

	// instanceSlot is the vertex buffer slot of the instance stream.
	instanceSlot = 1
)

// vertexLayout describes Vertex at shader locations 0 and 1.
func vertexLayout() gputypes.VertexBufferLayout {
	return gputypes.VertexBufferLayout{
		ArrayStride: vertexStride,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: gputypes.VertexFormatFloat32x4, Offset: 12, ShaderLocation: 1},
		},
	}
}

// instanceLayout describes InstanceTransform at shader locations 2..5.
func instanceLayout() gputypes.VertexBufferLayout {
	attrs := make([]gputypes.VertexAttribute, 4)
	for i := range attrs {
		attrs[i] = gputypes.VertexAttribute{
			Format:         gputypes.VertexFormatFloat32x4,
			Offset:         uint64(i) * 16,
			ShaderLocation: uint32(2 + i),
		}
	}
	return gputypes.VertexBufferLayout{
		ArrayStride: instanceStride,
		StepMode:    gputypes.VertexStepModeInstance,
		Attributes:  attrs,
	}
}
