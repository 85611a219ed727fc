// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command rendercore drives the rendering core: it opens a device, draws
// a colored quad every frame and reports GPU or setup failures.
package main

import (
	"os"

	"github.com/gogpu/rendercore/cmd/rendercore/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
