// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package commands

import (
	"fmt"
	"io"
	"sort"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gogpu/rendercore"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show backends and the selected adapter",
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().String("backend", "", "backend to open (default best available)")
}

func runInfo(cmd *cobra.Command, _ []string) error {
	name, err := cmd.Flags().GetString("backend")
	if err != nil {
		return err
	}
	return printInfo(cmd.OutOrStdout(), newBackendRegistry(), name, viper.GetBool(keyDebug))
}

// printInfo lists the registered backends and describes the adapter the
// engine opens on the chosen one.
func printInfo(w io.Writer, r *gpucontext.Registry[hal.Backend], name string, debug bool) error {
	avail := r.Available()
	sort.Strings(avail)
	fmt.Fprintf(w, "Backends: %v (best: %s)\n", avail, r.BestName())

	backend, name, err := selectBackend(r, name)
	if err != nil {
		return err
	}
	e := rendercore.New(rendercore.WithBackend(backend), rendercore.WithDebug(debug))
	if err := e.CreateDevices(1, 1); err != nil {
		return err
	}
	defer e.Close()

	info := e.AdapterInfo()
	fmt.Fprintf(w, "Backend:  %s\n", name)
	fmt.Fprintf(w, "Adapter:  %s\n", info.Name)
	fmt.Fprintf(w, "Type:     %s\n", info.Type)
	fmt.Fprintf(w, "Frames:   %d in flight\n", e.FrameCount())
	return nil
}
