// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/noop"
)

const testWGSL = `
@vertex
fn vs_main(@location(0) position: vec3<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(position, 1.0);
}
`

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestWords(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{"empty", nil, true},
		{"short", []byte{0x03, 0x02}, true},
		{"unaligned", []byte{0x03, 0x02, 0x23, 0x07, 0x00}, true},
		{"bad magic", []byte{0x44, 0x58, 0x42, 0x43}, true},
		{"magic only", []byte{0x03, 0x02, 0x23, 0x07}, false},
		{"magic and word", []byte{0x03, 0x02, 0x23, 0x07, 0x01, 0x00, 0x00, 0x00}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			words, err := Words(tt.data)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidBinary) {
					t.Fatalf("err = %v, want ErrInvalidBinary", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Words: %v", err)
			}
			if words[0] != spirvMagic || len(words) != len(tt.data)/4 {
				t.Errorf("words = %#x", words)
			}
		})
	}
}

func TestCompileWGSL(t *testing.T) {
	spirv, err := CompileWGSL(testWGSL)
	if err != nil {
		t.Fatalf("CompileWGSL: %v", err)
	}
	if _, err := Words(spirv); err != nil {
		t.Fatalf("compiled output is not SPIR-V: %v", err)
	}

	if _, err := CompileWGSL(""); !errors.Is(err, ErrEmptySource) {
		t.Errorf("empty source: err = %v, want ErrEmptySource", err)
	}
	if _, err := CompileWGSL("fn broken( {"); err == nil {
		t.Error("invalid WGSL compiled")
	}
}

func TestLoaderCachesBinaries(t *testing.T) {
	spirv, err := CompileWGSL(testWGSL)
	if err != nil {
		t.Fatalf("CompileWGSL: %v", err)
	}
	path := writeFile(t, "vs.spv", spirv)

	l := NewLoader(4)
	first, err := l.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	second, err := l.Load(path)
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if &first[0] != &second[0] {
		t.Error("second Load did not reuse the cached words")
	}
	if st := l.Stats(); st.Hits != 1 || st.Misses != 1 {
		t.Errorf("stats = %+v, want 1 hit, 1 miss", st)
	}
}

func TestLoaderErrors(t *testing.T) {
	l := NewLoader(4)
	if _, err := l.Load(filepath.Join(t.TempDir(), "missing.spv")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: err = %v, want ErrNotExist", err)
	}
	bad := writeFile(t, "bad.cso", []byte("DXBC....."))
	if _, err := l.Load(bad); !errors.Is(err, ErrInvalidBinary) {
		t.Errorf("non SPIR-V file: err = %v, want ErrInvalidBinary", err)
	}
	if l.Stats().Len != 0 {
		t.Error("failed loads must not be cached")
	}
}

func TestCreateModule(t *testing.T) {
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer instance.Destroy()
	open, err := instance.EnumerateAdapters(nil)[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		t.Fatal(err)
	}
	defer open.Device.Destroy()

	spirv, err := CompileWGSL(testWGSL)
	if err != nil {
		t.Fatal(err)
	}
	path := writeFile(t, "vs.spv", spirv)

	l := NewLoader(4)
	module, err := l.CreateModule(open.Device, StageVertex, path)
	if err != nil {
		t.Fatalf("CreateModule: %v", err)
	}
	if module == nil {
		t.Fatal("module is nil")
	}
	if _, err := l.CreateModule(open.Device, StagePixel, path+".missing"); err == nil {
		t.Error("CreateModule with a missing file succeeded")
	}
}
