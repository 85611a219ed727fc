// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package commands

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/rendercore/shaders"
)

func writeBuiltinShader(t *testing.T, name string) string {
	t.Helper()
	src, err := shaders.Source(name)
	if err != nil {
		t.Fatal(err)
	}
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		compileOutput = ""
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCompileCommand(t *testing.T) {
	in := writeBuiltinShader(t, shaders.QuadPixel)
	out := filepath.Join(t.TempDir(), "pixel.spv")

	stdout, err := executeCommand(t, "compile", in, "-o", out)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !strings.Contains(stdout, out) {
		t.Errorf("output %q does not name %s", stdout, out)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 4 || !bytes.Equal(data[:4], []byte{0x03, 0x02, 0x23, 0x07}) {
		t.Errorf("output is not SPIR-V: % x", data[:min(len(data), 4)])
	}
}

func TestCompileFileDefaultsToSpvExtension(t *testing.T) {
	in := writeBuiltinShader(t, shaders.QuadVertex)
	if _, err := executeCommand(t, "compile", in); err != nil {
		t.Fatalf("compile: %v", err)
	}
	want := strings.TrimSuffix(in, ".wgsl") + ".spv"
	if _, err := os.Stat(want); err != nil {
		t.Errorf("%s not written: %v", want, err)
	}
}

func TestCompileFileErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := compileFile(filepath.Join(dir, "missing.wgsl"), filepath.Join(dir, "out.spv")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing input: err = %v", err)
	}

	bad := filepath.Join(dir, "bad.wgsl")
	if err := os.WriteFile(bad, []byte("fn broken( {"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := compileFile(bad, filepath.Join(dir, "bad.spv")); err == nil {
		t.Error("invalid WGSL compiled")
	}
	if _, err := os.Stat(filepath.Join(dir, "bad.spv")); !os.IsNotExist(err) {
		t.Error("output written for invalid WGSL")
	}
}

func TestInfo(t *testing.T) {
	var buf bytes.Buffer
	if err := printInfo(&buf, newBackendRegistry(), backendNoop, false); err != nil {
		t.Fatalf("printInfo: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Backends:", "noop", "Noop Adapter", "2 in flight"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
