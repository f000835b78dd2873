package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"

	"github.com/achilleasa/lumen/renderer"
	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/tracer/cpu"
	"github.com/achilleasa/lumen/types"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Render a still frame.
func RenderFrame(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	opts := renderOptions(ctx)
	sc, err := sceneFromFlags(ctx)
	if err != nil {
		return err
	}

	runCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// A headless render runs a single session.
	var last renderer.SessionStats
	opts.OnSessionDone = func(stats renderer.SessionStats) {
		last = stats
		cancel()
	}

	sink := renderer.NewImageSink()
	r, err := renderer.New(newEngine(ctx), sc, sink, opts)
	if err != nil {
		return err
	}
	defer r.Close()

	logger.Noticef("rendering %dx%d frame with %d spp", opts.FrameW, opts.FrameH, opts.SamplesPerPixel)
	r.Restart(sc.Camera, false)
	if err = r.Run(runCtx); err != nil {
		return err
	}

	displaySessionStats(r.Stats())

	if last.State != renderer.Completed {
		return fmt.Errorf("render interrupted after %d of %d samples", last.Samples, last.Target)
	}

	imgFile := ctx.String("out")
	if err = sink.Save(imgFile); err != nil {
		return err
	}
	logger.Noticef("wrote frame to %s", imgFile)
	return nil
}

// Render an interactive view of the scene. Camera gestures restart
// accumulation at a reduced resolution; releasing the mouse restarts it at
// full resolution.
func RenderInteractive(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	opts := renderOptions(ctx)
	sc, err := sceneFromFlags(ctx)
	if err != nil {
		return err
	}

	// glfw requires all window calls to originate from the main thread.
	runtime.LockOSThread()

	sink, err := renderer.NewGLSink(opts.FrameW, opts.FrameH, "lumen")
	if err != nil {
		logger.Error(err)
		return cli.NewExitError(err.Error(), 1)
	}
	defer sink.Close()

	r, err := renderer.New(newEngine(ctx), sc, sink, opts)
	if err != nil {
		return err
	}
	defer r.Close()

	camera := scene.NewController(sc.Camera, r.Channel(), r)
	sink.Attach(camera, r)

	runCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		defer cancel()
		for {
			err := r.Run(runCtx)
			if errors.Is(err, renderer.ErrEngineStalled) && runCtx.Err() == nil {
				logger.Warningf("%s; resuming session loop", err)
				continue
			}
			errChan <- err
			return
		}
	}()

	r.Restart(sc.Camera, false)
	if err = sink.Loop(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	cancel()
	err = <-errChan
	displaySessionStats(r.Stats())
	return err
}

// Map command flags to renderer options.
func renderOptions(ctx *cli.Context) renderer.Options {
	return renderer.Options{
		FrameW:             uint32(ctx.Int("width")),
		FrameH:             uint32(ctx.Int("height")),
		SamplesPerPixel:    uint32(ctx.Int("spp")),
		NumBounces:         uint32(ctx.Int("bounces")),
		InteractiveScale:   uint32(ctx.Int("preview-scale")),
		InteractiveSamples: uint32(ctx.Int("preview-spp")),
		PollInterval:       ctx.Duration("poll-interval"),
		BusyTimeout:        ctx.Duration("busy-timeout"),
	}
}

func newEngine(ctx *cli.Context) *cpu.Engine {
	eng := cpu.New(ctx.Int("workers"))
	if fov := ctx.Float64("fov"); fov > 0 {
		eng.FOV = float32(fov)
	}
	return eng
}

// Load the default scene, overriding the camera with any user-supplied
// origin and look-at points.
func sceneFromFlags(ctx *cli.Context) (*scene.Scene, error) {
	sc := scene.Default()

	var err error
	if ctx.IsSet("origin") {
		if sc.Camera.Origin, err = parseVec3(ctx.String("origin")); err != nil {
			return nil, fmt.Errorf("invalid origin: %w", err)
		}
	}
	if ctx.IsSet("look-at") {
		if sc.Camera.LookAt, err = parseVec3(ctx.String("look-at")); err != nil {
			return nil, fmt.Errorf("invalid look-at: %w", err)
		}
	}

	if sc.Camera.Origin.Sub(sc.Camera.LookAt).IsZero() {
		return nil, errors.New("camera origin and look-at point must not coincide")
	}
	return sc, nil
}

// Parse a vector in "x,y,z" form.
func parseVec3(value string) (types.Vec3, error) {
	var v types.Vec3

	tokens := strings.Split(value, ",")
	if len(tokens) != 3 {
		return v, fmt.Errorf("expected 3 comma-separated components; got %q", value)
	}
	for i, token := range tokens {
		f, err := strconv.ParseFloat(strings.TrimSpace(token), 32)
		if err != nil {
			return v, err
		}
		v[i] = float32(f)
	}
	if v.IsInvalid() {
		return v, fmt.Errorf("vector %q contains non-finite components", value)
	}
	return v, nil
}

func displaySessionStats(stats renderer.Stats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Mode", "State", "Resolution", "Samples", "Elapsed", "Samples/sec"})

	last := stats.Last
	table.Append([]string{
		last.Mode.String(),
		last.State.String(),
		fmt.Sprintf("%dx%d", last.Width, last.Height),
		fmt.Sprintf("%d/%d", last.Samples, last.Target),
		last.Elapsed.String(),
		fmt.Sprintf("%.1f", last.SamplesPerSec),
	})
	table.SetFooter([]string{
		fmt.Sprintf("%d triggers", stats.Triggers),
		fmt.Sprintf("%d completed", stats.Completed),
		fmt.Sprintf("%d cancelled", stats.Cancelled),
		fmt.Sprintf("%d frames", stats.Deliveries),
		fmt.Sprintf("%d errors", stats.ProtocolErrors),
		"",
	})

	table.Render()
	logger.Noticef("session statistics\n%s", buf.String())
}
