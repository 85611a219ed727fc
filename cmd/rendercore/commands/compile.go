// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gogpu/rendercore/internal/shader"
)

var compileOutput string

var compileCmd = &cobra.Command{
	Use:   "compile <shader.wgsl>",
	Short: "Compile a WGSL shader to SPIR-V",
	Long: `Compile a WGSL shader to the SPIR-V binary the run command loads.

The output defaults to the input path with a .spv extension.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().StringVarP(&compileOutput, "output", "o", "", "output file")
}

func runCompile(cmd *cobra.Command, args []string) error {
	in := args[0]
	out := compileOutput
	if out == "" {
		out = strings.TrimSuffix(in, filepath.Ext(in)) + ".spv"
	}
	n, err := compileFile(in, out)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%d bytes)\n", in, out, n)
	return nil
}

// compileFile compiles the WGSL file in into the SPIR-V file out and
// returns the size of the output.
func compileFile(in, out string) (int, error) {
	src, err := os.ReadFile(in)
	if err != nil {
		return 0, fmt.Errorf("read shader: %w", err)
	}
	spirv, err := shader.CompileWGSL(string(src))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", in, err)
	}
	if err := os.WriteFile(out, spirv, 0o644); err != nil {
		return 0, fmt.Errorf("write shader: %w", err)
	}
	return len(spirv), nil
}
