// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package device

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// SurfaceHandle identifies the native window the chain presents to.
// A zero Window means there is no window and the chain runs headless.
type SurfaceHandle struct {
	Display uintptr
	Window  uintptr
}

// IsZero reports whether the handle names no window.
func (h SurfaceHandle) IsZero() bool { return h.Window == 0 }

// SwapchainDescriptor describes a presentation chain.
type SwapchainDescriptor struct {
	Width      uint32
	Height     uint32
	FrameCount int
	Format     gputypes.TextureFormat
	Surface    SurfaceHandle
}

// Image is one color buffer of the presentation chain.
type Image struct {
	Texture hal.Texture
	View    hal.TextureView
}

// Swapchain is a ring of color images bound to the output surface.
//
// The frame engine renders into the image at CurrentBackBufferIndex.
// Present hands that image to the window surface (when there is one);
// Advance then moves to the next image. The index changes nowhere else.
type Swapchain struct {
	device  hal.Device
	queue   *Queue
	width   uint32
	height  uint32
	format  gputypes.TextureFormat
	images  []Image
	current int

	surface hal.Surface
	// blits[i] holds the copy submitted when image i was last presented.
	blits []hal.CommandBuffer
}

// CreateSwapchain creates the presentation chain. Width and height must be
// positive and at least two images are required.
func CreateSwapchain(q *Queue, d *Device, desc SwapchainDescriptor) (*Swapchain, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("%w (%dx%d)", ErrInvalidSize, desc.Width, desc.Height)
	}
	if desc.FrameCount < 2 {
		return nil, fmt.Errorf("%w (got %d)", ErrFrameCount, desc.FrameCount)
	}
	if desc.Format == gputypes.TextureFormatUndefined {
		desc.Format = gputypes.TextureFormatRGBA8UnormSrgb
	}

	sc := &Swapchain{
		device: d.device,
		queue:  q,
		width:  desc.Width,
		height: desc.Height,
		format: desc.Format,
		images: make([]Image, 0, desc.FrameCount),
		blits:  make([]hal.CommandBuffer, desc.FrameCount),
	}

	for i := 0; i < desc.FrameCount; i++ {
		img, err := sc.createImage(i)
		if err != nil {
			sc.Destroy()
			return nil, err
		}
		sc.images = append(sc.images, img)
	}

	if !desc.Surface.IsZero() {
		if err := sc.attachSurface(d, desc.Surface); err != nil {
			sc.Destroy()
			return nil, err
		}
	}

	slogger().Debug("device: swapchain created",
		"width", desc.Width, "height", desc.Height,
		"images", desc.FrameCount, "format", desc.Format.String(),
		"headless", sc.surface == nil)
	return sc, nil
}

func (sc *Swapchain) createImage(i int) (Image, error) {
	tex, err := sc.device.CreateTexture(&hal.TextureDescriptor{
		Label:         fmt.Sprintf("backbuffer_%d", i),
		Size:          hal.Extent3D{Width: sc.width, Height: sc.height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        sc.format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return Image{}, fmt.Errorf("create back buffer %d: %w", i, err)
	}
	view, err := sc.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         fmt.Sprintf("backbuffer_%d_view", i),
		Format:        sc.format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		sc.device.DestroyTexture(tex)
		return Image{}, fmt.Errorf("create back buffer %d view: %w", i, err)
	}
	return Image{Texture: tex, View: view}, nil
}

func (sc *Swapchain) attachSurface(d *Device, h SurfaceHandle) error {
	surface, err := d.instance.CreateSurface(h.Display, h.Window)
	if err != nil {
		return fmt.Errorf("create surface: %w", err)
	}
	err = surface.Configure(sc.device, &hal.SurfaceConfiguration{
		Width:       sc.width,
		Height:      sc.height,
		Format:      sc.format,
		Usage:       gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopyDst,
		PresentMode: gputypes.PresentModeFifo,
		AlphaMode:   gputypes.CompositeAlphaModeOpaque,
	})
	if err != nil {
		surface.Destroy()
		return fmt.Errorf("configure surface: %w", err)
	}
	sc.surface = surface
	return nil
}

// CurrentBackBufferIndex returns the index of the image to render into.
func (sc *Swapchain) CurrentBackBufferIndex() int { return sc.current }

// Image returns image i of the ring.
func (sc *Swapchain) Image(i int) Image { return sc.images[i] }

// Len returns the number of images in the ring.
func (sc *Swapchain) Len() int { return len(sc.images) }

// Size returns the image dimensions.
func (sc *Swapchain) Size() (width, height uint32) { return sc.width, sc.height }

// Format returns the image format.
func (sc *Swapchain) Format() gputypes.TextureFormat { return sc.format }

// Headless reports whether the chain has no window surface.
func (sc *Swapchain) Headless() bool { return sc.surface == nil }

// Present shows the current image. It does not change the current index.
//
// The current image must be in the copy-source state. With a window
// surface the image is copied into an acquired surface texture, which is
// then queued for presentation with vsync. Headless chains show nothing.
func (sc *Swapchain) Present() error {
	if sc.surface == nil {
		return nil
	}
	return sc.presentToSurface()
}

// NextBackBufferIndex returns the index Advance will make current.
func (sc *Swapchain) NextBackBufferIndex() int {
	return (sc.current + 1) % len(sc.images)
}

// Advance makes the next image current and returns its index.
func (sc *Swapchain) Advance() int {
	sc.current = sc.NextBackBufferIndex()
	return sc.current
}

func (sc *Swapchain) presentToSurface() error {
	// The previous copy out of this image is covered by the fence wait that
	// released the image for this frame.
	if prev := sc.blits[sc.current]; prev != nil {
		sc.device.FreeCommandBuffer(prev)
		sc.blits[sc.current] = nil
	}

	acquired, err := sc.surface.AcquireTexture(nil)
	if err != nil {
		return fmt.Errorf("acquire surface texture: %w", err)
	}
	if acquired.Suboptimal {
		slogger().Warn("device: surface is suboptimal, resize is not handled")
	}

	src := sc.images[sc.current].Texture
	blit, err := beginEncoder(sc.device, "present_blit")
	if err != nil {
		sc.surface.DiscardTexture(acquired.Texture)
		return fmt.Errorf("present copy: %w", err)
	}
	blit.CopyTextureToTexture(src, acquired.Texture, []hal.TextureCopy{{
		SrcBase: hal.ImageCopyTexture{Texture: src, Aspect: gputypes.TextureAspectAll},
		DstBase: hal.ImageCopyTexture{Texture: acquired.Texture, Aspect: gputypes.TextureAspectAll},
		Size:    hal.Extent3D{Width: sc.width, Height: sc.height, DepthOrArrayLayers: 1},
	}})
	cb, err := blit.EndEncoding()
	if err != nil {
		blit.DiscardEncoding()
		sc.surface.DiscardTexture(acquired.Texture)
		return fmt.Errorf("end present copy: %w", err)
	}
	if _, err := sc.queue.Submit(cb); err != nil {
		sc.device.FreeCommandBuffer(cb)
		sc.surface.DiscardTexture(acquired.Texture)
		return err
	}
	sc.blits[sc.current] = cb

	if err := sc.queue.HAL().Present(sc.surface, acquired.Texture, nil); err != nil {
		return fmt.Errorf("present: %w", err)
	}
	return nil
}

// Destroy releases the images and the surface. The GPU must be idle.
func (sc *Swapchain) Destroy() {
	for i, cb := range sc.blits {
		if cb != nil {
			sc.device.FreeCommandBuffer(cb)
			sc.blits[i] = nil
		}
	}
	if sc.surface != nil {
		sc.surface.Unconfigure(sc.device)
		sc.surface.Destroy()
		sc.surface = nil
	}
	for _, img := range sc.images {
		if img.View != nil {
			sc.device.DestroyTextureView(img.View)
		}
		if img.Texture != nil {
			sc.device.DestroyTexture(img.Texture)
		}
	}
	sc.images = nil
}
