// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package commands

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rendercore"
	"github.com/gogpu/rendercore/buffer"
)

var quadVertices = []rendercore.Vertex{
	{Position: [3]float32{-0.5, -0.5, 0}, Color: [4]float32{1, 0, 0, 1}},
	{Position: [3]float32{0.5, -0.5, 0}, Color: [4]float32{0, 1, 0, 1}},
	{Position: [3]float32{0.5, 0.5, 0}, Color: [4]float32{0, 0, 1, 1}},
	{Position: [3]float32{-0.5, 0.5, 0}, Color: [4]float32{1, 1, 0, 1}},
}

var quadIndices = []uint32{0, 1, 2, 0, 2, 3}

// scene is the geometry the driver draws every frame.
type scene struct {
	vertices  *buffer.Upload[rendercore.Vertex]
	indices   *buffer.Upload[uint32]
	instances *buffer.Upload[rendercore.InstanceTransform]
	count     uint32
}

// newScene uploads one quad, plus a grid of instance transforms when
// instances is positive.
func newScene(dev hal.Device, instances int) (*scene, error) {
	s := &scene{}
	var err error
	if s.vertices, err = buffer.NewUploadFrom(dev, "quad_vertices", quadVertices); err != nil {
		return nil, fmt.Errorf("upload vertices: %w", err)
	}
	if s.indices, err = buffer.NewUploadFrom(dev, "quad_indices", quadIndices); err != nil {
		s.destroy()
		return nil, fmt.Errorf("upload indices: %w", err)
	}
	if instances > 0 {
		if s.instances, err = buffer.NewUploadFrom(dev, "quad_instances", instanceGrid(instances)); err != nil {
			s.destroy()
			return nil, fmt.Errorf("upload instances: %w", err)
		}
		s.count = uint32(instances)
	}
	return s, nil
}

// instanceGrid lays n quads out on a square grid centered on the origin.
func instanceGrid(n int) []rendercore.InstanceTransform {
	side := int(math.Ceil(math.Sqrt(float64(n))))
	out := make([]rendercore.InstanceTransform, n)
	for i := range out {
		x := float32(i%side) - float32(side-1)/2
		y := float32(i/side) - float32(side-1)/2
		out[i].World = mgl32.Translate3D(x*1.25, y*1.25, 0)
	}
	return out
}

// draw binds the scene buffers and records its draw call.
func (s *scene) draw(e *rendercore.Engine) {
	e.SetVertexBuffer(s.vertices.VertexBufferView())
	e.SetIndexBuffer(s.indices.IndexBufferView())
	if s.instances == nil {
		e.RenderIndexed()
		return
	}
	e.SetInstanceBuffer(s.instances.VertexBufferView())
	e.DrawCall(s.indices.IndexBufferView().Count(), s.count)
}

func (s *scene) destroy() {
	if s.instances != nil {
		s.instances.Destroy()
	}
	if s.indices != nil {
		s.indices.Destroy()
	}
	if s.vertices != nil {
		s.vertices.Destroy()
	}
}

// camera produces the per-frame transform: a fixed perspective view of a
// quad spinning around the Z axis.
type camera struct {
	view       mgl32.Mat4
	projection mgl32.Mat4
}

func newCamera(width, height int, distance float32) camera {
	aspect := float32(width) / float32(height)
	return camera{
		view: mgl32.LookAtV(
			mgl32.Vec3{0, 0, distance},
			mgl32.Vec3{0, 0, 0},
			mgl32.Vec3{0, 1, 0},
		),
		projection: mgl32.Perspective(mgl32.DegToRad(45), aspect, 0.1, 100),
	}
}

// transform returns the constants for frame n.
func (c camera) transform(n int) rendercore.Transform {
	return rendercore.Transform{
		World:      mgl32.HomogRotate3DZ(float32(n) * mgl32.DegToRad(1)),
		View:       c.view,
		Projection: c.projection,
	}
}
