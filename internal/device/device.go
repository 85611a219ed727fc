// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package device

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Device is the logical GPU device together with the instance and adapter
// it was opened from. It is shared by the frame engine and every buffer and
// descriptor heap created on it; the engine destroys it last.
type Device struct {
	instance hal.Instance
	adapter  hal.Adapter
	device   hal.Device
	queue    hal.Queue
	info     gputypes.AdapterInfo
	debug    bool
}

// CreateDevice opens a logical device on the best adapter the backend
// exposes. Discrete GPUs are preferred over integrated ones; anything else
// is used only when nothing better is available.
//
// With debug set, the instance is created with debug and validation
// layers enabled before any device is opened.
func CreateDevice(backend hal.Backend, debug bool) (*Device, error) {
	if backend == nil {
		return nil, ErrNilBackend
	}

	flags := gputypes.InstanceFlagsNone
	if debug {
		flags = gputypes.InstanceFlagsDebug | gputypes.InstanceFlagsValidation
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: flags})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	selected := selectAdapter(adapters)
	if selected == nil {
		instance.Destroy()
		return nil, ErrNoAdapter
	}

	open, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device on %q: %w", selected.Info.Name, err)
	}

	slogger().Info("device: adapter selected",
		"name", selected.Info.Name,
		"type", selected.Info.DeviceType.String(),
		"backend", selected.Info.Backend.String(),
		"debug", debug)

	return &Device{
		instance: instance,
		adapter:  selected.Adapter,
		device:   open.Device,
		queue:    open.Queue,
		info:     selected.Info,
		debug:    debug,
	}, nil
}

// selectAdapter picks a discrete GPU, then an integrated one, then the
// first adapter in the list. It returns nil for an empty list.
func selectAdapter(adapters []hal.ExposedAdapter) *hal.ExposedAdapter {
	if len(adapters) == 0 {
		return nil
	}
	for _, want := range []gputypes.DeviceType{gputypes.DeviceTypeDiscreteGPU, gputypes.DeviceTypeIntegratedGPU} {
		for i := range adapters {
			if adapters[i].Info.DeviceType == want {
				return &adapters[i]
			}
		}
	}
	return &adapters[0]
}

// HAL returns the underlying HAL device.
func (d *Device) HAL() hal.Device { return d.device }

// Adapter returns the adapter the device was opened on.
func (d *Device) Adapter() hal.Adapter { return d.adapter }

// Info returns the adapter description.
func (d *Device) Info() gputypes.AdapterInfo { return d.info }

// Debug reports whether validation layers were requested.
func (d *Device) Debug() bool { return d.debug }

// WaitIdle blocks until the device has no outstanding work.
func (d *Device) WaitIdle() error {
	return d.device.WaitIdle()
}

// Destroy releases the device and its instance. All objects created on
// the device must be destroyed first.
func (d *Device) Destroy() {
	if d.device != nil {
		d.device.Destroy()
		d.device = nil
	}
	if d.adapter != nil {
		d.adapter.Destroy()
		d.adapter = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
	d.queue = nil
}
