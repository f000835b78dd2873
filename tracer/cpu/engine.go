package cpu

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/achilleasa/lumen/log"
	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/settings"
	"github.com/achilleasa/lumen/tracer"
	"github.com/achilleasa/lumen/types"
)

const (
	// Byte offset of the settings block inside the shared region. The
	// first bytes are reserved for an engine header.
	settingsOffset uint32 = 16

	// How often the worker re-checks the texture handshake.
	defaultCheckpoint = 500 * time.Microsecond
)

// The pass configuration snapshot taken when Trace is invoked.
type passContext struct {
	width, height   uint32
	samplesPerPixel uint32
	maxBounces      uint32

	primitives []scene.Primitive
	camera     camera
}

// A progressive path tracer that runs on the host CPU.
type Engine struct {
	logger log.Logger

	mu         sync.Mutex
	wg         sync.WaitGroup
	region     *settings.Region
	channel    *settings.Channel
	primitives []scene.Primitive
	closed     bool
	closeChan  chan struct{}

	// Double-buffered output texture. The published buffer alternates
	// between the two so its location changes between samples.
	buffers   [2][]byte
	published atomic.Pointer[[]byte]
	front     int

	// Number of goroutines that render rows in parallel.
	workers int

	// Interval between handshake checks.
	checkpoint time.Duration

	// Vertical field of view in degrees.
	FOV float32
}

// Create a new cpu engine. A non-positive worker count uses all CPUs.
func New(workers int) *Engine {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Engine{
		logger:     log.New("cpu engine"),
		closeChan:  make(chan struct{}),
		workers:    workers,
		checkpoint: defaultCheckpoint,
		FOV:        defaultFOV,
	}
}

// Allocate the shared region.
func (e *Engine) Init() (*settings.Region, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, tracer.ErrClosed
	}
	if e.region == nil {
		e.region = settings.NewRegion(int(settingsOffset) + settings.BlockSize)
		e.logger.Debugf("allocated %d byte shared region using %d workers", e.region.Size(), e.workers)
	}
	return e.region, nil
}

// Get the settings block offset.
func (e *Engine) InitSettings() (uint32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.region == nil {
		return 0, tracer.ErrNotInitialized
	}
	if e.channel == nil {
		ch, err := settings.Open(e.region, settingsOffset)
		if err != nil {
			return 0, err
		}
		e.channel = ch
	}
	return settingsOffset, nil
}

// Register a sphere.
func (e *Engine) AddPrimitive(p scene.Primitive) error {
	if err := p.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return tracer.ErrClosed
	}
	e.primitives = append(e.primitives, p)
	return nil
}

// Start an accumulation pass.
func (e *Engine) Trace() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case e.closed:
		return tracer.ErrClosed
	case e.channel == nil:
		return tracer.ErrNotInitialized
	case e.channel.Flag(settings.Busy):
		return tracer.ErrBusy
	}

	ctx := e.snapshot()
	if ctx.width == 0 || ctx.height == 0 {
		return fmt.Errorf("cpu engine: invalid resolution %dx%d", ctx.width, ctx.height)
	}

	e.channel.SetFlag(settings.Busy, true)
	e.wg.Add(1)
	go e.accumulate(ctx)
	return nil
}

// Get the most recently published texture.
func (e *Engine) Texture() []byte {
	if tex := e.published.Load(); tex != nil {
		return *tex
	}
	return nil
}

// Stop any in-flight pass and wait for the worker to exit.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	close(e.closeChan)
	e.mu.Unlock()

	e.wg.Wait()
}

func (e *Engine) snapshot() *passContext {
	ch := e.channel
	width, height := ch.Resolution()
	origin, lookAt := ch.Camera()

	ctx := &passContext{
		width:           width,
		height:          height,
		samplesPerPixel: ch.Int(settings.SamplesPerPixel),
		maxBounces:      ch.Int(settings.MaxBounces),
		primitives:      append([]scene.Primitive(nil), e.primitives...),
	}
	if ctx.width > 0 && ctx.height > 0 {
		ctx.camera = newCamera(origin, lookAt, width, height, e.FOV)
	}
	return ctx
}

// Returns true if the pass must stop.
func (e *Engine) interrupted() bool {
	if e.channel.Flag(settings.ResetRequested) {
		return true
	}
	select {
	case <-e.closeChan:
		return true
	default:
		return false
	}
}

func (e *Engine) accumulate(ctx *passContext) {
	defer e.wg.Done()
	defer e.channel.SetFlag(settings.Busy, false)

	start := time.Now()
	reservoir := make([]float32, tracer.TextureSize(ctx.width, ctx.height))

	var sample uint32
	for sample = 1; sample <= ctx.samplesPerPixel; sample++ {
		if e.interrupted() || !e.renderSample(ctx, reservoir, sample) {
			e.logger.Debugf("pass interrupted after %d samples", sample-1)
			return
		}

		// Wait for the host to consume the previous texture.
		if !e.waitConsumed() {
			e.logger.Debugf("pass interrupted after %d samples", sample)
			return
		}

		tex := e.backBuffer(len(reservoir))
		resolve(tex, reservoir, sample)
		e.published.Store(&tex)
		e.channel.SetFlag(settings.TextureChanged, true)
	}

	e.logger.Debugf("pass completed: %d samples at %dx%d in %s", ctx.samplesPerPixel, ctx.width, ctx.height, time.Since(start))
}

// Render one sample for every pixel and add it to the reservoir. Rows are
// distributed to the worker pool; each row is a cancellation checkpoint.
func (e *Engine) renderSample(ctx *passContext, reservoir []float32, sample uint32) bool {
	var (
		nextRow uint32
		aborted atomic.Bool
		wg      sync.WaitGroup
	)

	worker := func() {
		defer wg.Done()
		for {
			row := atomic.AddUint32(&nextRow, 1) - 1
			if row >= ctx.height || aborted.Load() {
				return
			}
			if e.interrupted() {
				aborted.Store(true)
				return
			}

			rnd := newRng(seedFor(sample, row))
			// Rows are stored bottom-up.
			offset := int((ctx.height-1-row)*ctx.width) * 3
			for col := uint32(0); col < ctx.width; col++ {
				c := rayColor(ctx.camera.ray(col, row, rnd), ctx, rnd)
				if c.IsInvalid() {
					c = types.Vec3{}
				}
				idx := offset + int(col)*3
				reservoir[idx] += c[0]
				reservoir[idx+1] += c[1]
				reservoir[idx+2] += c[2]
			}
		}
	}

	wg.Add(e.workers)
	for i := 0; i < e.workers; i++ {
		go worker()
	}
	wg.Wait()

	return !aborted.Load()
}

func (e *Engine) waitConsumed() bool {
	for e.channel.Flag(settings.TextureChanged) {
		if e.interrupted() {
			return false
		}
		select {
		case <-e.closeChan:
			return false
		case <-time.After(e.checkpoint):
		}
	}
	return true
}

// Get the buffer that is not currently published, reallocating it if the
// resolution changed.
func (e *Engine) backBuffer(size int) []byte {
	e.front ^= 1
	if len(e.buffers[e.front]) != size {
		e.buffers[e.front] = make([]byte, size)
	}
	return e.buffers[e.front]
}
