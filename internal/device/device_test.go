// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package device

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// createNoopDevice opens a device on the noop backend.
func createNoopDevice(t *testing.T) (*Device, func()) {
	t.Helper()
	d, err := CreateDevice(noop.API{}, false)
	if err != nil {
		t.Fatalf("CreateDevice failed: %v", err)
	}
	return d, d.Destroy
}

func TestCreateDevice(t *testing.T) {
	d, cleanup := createNoopDevice(t)
	defer cleanup()

	if d.HAL() == nil {
		t.Fatal("HAL device is nil")
	}
	if got := d.Info().Name; got != "Noop Adapter" {
		t.Errorf("adapter name = %q, want %q", got, "Noop Adapter")
	}
	if d.Debug() {
		t.Error("Debug() = true, want false")
	}
	if err := d.WaitIdle(); err != nil {
		t.Errorf("WaitIdle: %v", err)
	}
}

func TestCreateDeviceDebug(t *testing.T) {
	d, err := CreateDevice(noop.API{}, true)
	if err != nil {
		t.Fatalf("CreateDevice(debug) failed: %v", err)
	}
	defer d.Destroy()
	if !d.Debug() {
		t.Error("Debug() = false, want true")
	}
}

func TestCreateDeviceNilBackend(t *testing.T) {
	_, err := CreateDevice(nil, false)
	if !errors.Is(err, ErrNilBackend) {
		t.Fatalf("err = %v, want ErrNilBackend", err)
	}
}

func TestDeviceDestroyTwice(t *testing.T) {
	d, _ := createNoopDevice(t)
	d.Destroy()
	d.Destroy()
	if d.HAL() != nil {
		t.Error("HAL() should be nil after Destroy")
	}
}

func TestSelectAdapter(t *testing.T) {
	adapter := func(name string, typ gputypes.DeviceType) hal.ExposedAdapter {
		return hal.ExposedAdapter{Info: gputypes.AdapterInfo{Name: name, DeviceType: typ}}
	}

	tests := []struct {
		name     string
		adapters []hal.ExposedAdapter
		want     string
	}{
		{"empty", nil, ""},
		{"single cpu", []hal.ExposedAdapter{adapter("cpu", gputypes.DeviceTypeCPU)}, "cpu"},
		{
			"discrete wins",
			[]hal.ExposedAdapter{
				adapter("cpu", gputypes.DeviceTypeCPU),
				adapter("igpu", gputypes.DeviceTypeIntegratedGPU),
				adapter("dgpu", gputypes.DeviceTypeDiscreteGPU),
			},
			"dgpu",
		},
		{
			"integrated over other",
			[]hal.ExposedAdapter{
				adapter("other", gputypes.DeviceTypeOther),
				adapter("igpu", gputypes.DeviceTypeIntegratedGPU),
			},
			"igpu",
		},
		{
			"first when nothing preferred",
			[]hal.ExposedAdapter{
				adapter("virt", gputypes.DeviceTypeVirtualGPU),
				adapter("cpu", gputypes.DeviceTypeCPU),
			},
			"virt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := selectAdapter(tt.adapters)
			if tt.want == "" {
				if got != nil {
					t.Fatalf("selectAdapter = %q, want nil", got.Info.Name)
				}
				return
			}
			if got == nil || got.Info.Name != tt.want {
				t.Fatalf("selectAdapter = %v, want %q", got, tt.want)
			}
		})
	}
}

func TestQueueSubmitTracksLastSubmission(t *testing.T) {
	d, cleanup := createNoopDevice(t)
	defer cleanup()

	q := CreateCommandQueue(d)
	if q.LastSubmission() != 0 {
		t.Fatalf("LastSubmission = %d before any submit", q.LastSubmission())
	}
	for want := uint64(1); want <= 3; want++ {
		idx, err := q.Submit()
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		if idx != want || q.LastSubmission() != want {
			t.Errorf("submit %d: idx=%d last=%d", want, idx, q.LastSubmission())
		}
	}
	if q.Completed() != 3 {
		t.Errorf("Completed = %d, want 3 on the synchronous noop queue", q.Completed())
	}
}
