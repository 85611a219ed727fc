// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gogpu/rendercore"
	"github.com/gogpu/rendercore/shaders"
)

// cameraDistance is how far the camera sits from the quad.
const cameraDistance = 3

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the frame loop",
	Long: `Open a device on the selected backend and draw a spinning colored quad
every frame until the frame budget is spent or the process is interrupted.

Without --vertex-shader/--pixel-shader the built-in WGSL shaders are
compiled to SPIR-V in a temporary directory first. Any setup or GPU
failure ends the process with a non-zero status.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.String("backend", "", "backend: vulkan, software or noop (default best available)")
	f.Int("frames", 0, "frames to draw, 0 runs until interrupted")
	f.Int("width", 1280, "back buffer width")
	f.Int("height", 720, "back buffer height")
	f.Int("frame-count", rendercore.DefaultFrameCount, "frames in flight (2 or 3)")
	f.Int("instances", 0, "draw this many instanced quads instead of one")
	f.String("vertex-shader", "", "SPIR-V vertex shader")
	f.String("pixel-shader", "", "SPIR-V pixel shader")

	for key, flag := range map[string]string{
		keyBackend:      "backend",
		keyFrames:       "frames",
		keyWidth:        "width",
		keyHeight:       "height",
		keyFrameCount:   "frame-count",
		keyInstances:    "instances",
		keyVertexShader: "vertex-shader",
		keyPixelShader:  "pixel-shader",
	} {
		_ = viper.BindPFlag(key, f.Lookup(flag))
	}
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg, err := LoadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	rendercore.SetLogger(logger)

	backend, name, err := selectBackend(newBackendRegistry(), cfg.Backend)
	if err != nil {
		return err
	}
	logger.Info("backend selected", "name", name)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	window := gpucontext.NullWindowProvider{W: cfg.Width, H: cfg.Height, SF: 1}
	if err := render(ctx, cfg, backend, window, logger); err != nil {
		logger.Error("render failed", "err", err)
		return err
	}
	return nil
}

// render runs the frame loop until cfg.Frames frames are drawn or ctx is
// done. The GPU is drained before anything is destroyed.
func render(ctx context.Context, cfg Config, backend hal.Backend, window gpucontext.WindowProvider, logger *slog.Logger) (err error) {
	width, height := window.Size()
	e := rendercore.New(
		rendercore.WithBackend(backend),
		rendercore.WithFrameCount(cfg.FrameCount),
		rendercore.WithDebug(cfg.Debug),
		rendercore.WithLogger(logger),
	)
	if err := e.CreateDevices(width, height); err != nil {
		return err
	}
	defer e.Close()

	pipeline, cleanup, err := pipelineConfig(cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	if err := e.CreatePipelines(pipeline); err != nil {
		return err
	}
	if err := e.CreateCBV(); err != nil {
		return err
	}

	s, err := newScene(e.Device().(hal.Device), cfg.Instances)
	if err != nil {
		return err
	}
	defer s.destroy()

	// Runs before the scene and the engine are destroyed.
	defer func() {
		if werr := e.WaitGPU(context.Background()); werr != nil && err == nil {
			err = werr
		}
	}()

	cam := newCamera(width, height, cameraDistance)
	start := time.Now()
	frames := 0
	for cfg.Frames == 0 || frames < cfg.Frames {
		if ctx.Err() != nil {
			logger.Info("interrupted")
			break
		}
		if err := drawFrame(e, s, cam.transform(frames)); err != nil {
			return fmt.Errorf("frame %d: %w", frames, err)
		}
		frames++
	}

	elapsed := time.Since(start)
	fps := 0.0
	if elapsed > 0 {
		fps = float64(frames) / elapsed.Seconds()
	}
	logger.Info("frame loop finished", "frames", frames, "elapsed", elapsed.Round(time.Millisecond), "fps", fmt.Sprintf("%.1f", fps))
	return nil
}

// drawFrame records, submits and presents one frame.
func drawFrame(e *rendercore.Engine, s *scene, t rendercore.Transform) error {
	if err := e.UpdateTransform(t); err != nil {
		return err
	}
	if err := e.RenderBegin(); err != nil {
		return err
	}
	e.RenderInit()
	s.draw(e)
	if err := e.RenderEnd(); err != nil {
		return err
	}
	// The fence wait inside Present is unbounded.
	return e.Present(context.Background())
}

// pipelineConfig returns the shader files to build the pipeline from,
// compiling the built-in shaders for any path left empty. cleanup removes
// the compiled files.
func pipelineConfig(cfg Config) (rendercore.PipelineConfig, func(), error) {
	pc := rendercore.PipelineConfig{
		VertexShader: cfg.VertexShader,
		PixelShader:  cfg.PixelShader,
		Instanced:    cfg.Instances > 0,
	}
	if pc.VertexShader != "" && pc.PixelShader != "" {
		return pc, func() {}, nil
	}

	dir, err := os.MkdirTemp("", "rendercore-shaders-")
	if err != nil {
		return pc, nil, fmt.Errorf("shader dir: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	vertex := shaders.QuadVertex
	if pc.Instanced {
		vertex = shaders.QuadInstancedVertex
	}
	paths, err := shaders.Build(dir, vertex, shaders.QuadPixel)
	if err != nil {
		cleanup()
		return pc, nil, err
	}
	if pc.VertexShader == "" {
		pc.VertexShader = paths[vertex]
	}
	if pc.PixelShader == "" {
		pc.PixelShader = paths[shaders.QuadPixel]
	}
	return pc, cleanup, nil
}
