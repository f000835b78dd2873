package renderer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/achilleasa/lumen/log"
	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/settings"
	"github.com/achilleasa/lumen/tracer"
)

// The Renderer drives an engine through the settings channel. A single
// goroutine running Run owns all session state; Restart and Resize may be
// called from any goroutine.
//
// At most one trace call is ever in flight: a new pass is only triggered
// after the engine has been observed with its busy flag cleared.
type Renderer struct {
	logger  log.Logger
	engine  tracer.Engine
	channel *settings.Channel
	sink    FrameSink
	opts    Options

	// Guards the fields below that are shared with other goroutines.
	mu       sync.Mutex
	pending  *request
	resize   *[2]uint32
	stats    Stats
	wakeChan chan struct{}

	// Owned by the Run goroutine.
	session      *Session
	next         *request
	last         *request
	waitStart    time.Time
	lastProgress time.Time
	resyncs      int
}

// Consecutive texture size mismatches tolerated before Run gives up.
const maxResyncs = 3

// Initialize the engine, register the scene primitives and create a renderer
// that delivers frames to sink.
func New(engine tracer.Engine, sc *scene.Scene, sink FrameSink, opts Options) (*Renderer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	region, err := engine.Init()
	if err != nil {
		return nil, fmt.Errorf("renderer: engine init failed: %w", err)
	}
	offset, err := engine.InitSettings()
	if err != nil {
		return nil, fmt.Errorf("renderer: engine settings init failed: %w", err)
	}
	channel, err := settings.Open(region, offset)
	if err != nil {
		return nil, err
	}

	for idx, p := range sc.Primitives {
		if err = engine.AddPrimitive(p); err != nil {
			return nil, fmt.Errorf("renderer: could not add primitive %d: %w", idx, err)
		}
	}

	r := &Renderer{
		logger:   log.New("renderer"),
		engine:   engine,
		channel:  channel,
		sink:     sink,
		opts:     opts,
		wakeChan: make(chan struct{}, 1),
	}
	r.logger.Infof("settings block at offset %d (protocol v%d), %d primitives", offset, settings.ProtocolVersion, len(sc.Primitives))
	return r, nil
}

// Get the settings channel shared with the engine.
func (r *Renderer) Channel() *settings.Channel {
	return r.channel
}

// Get a snapshot of the renderer statistics.
func (r *Renderer) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// Request accumulation to restart for the given camera. Only the latest
// request is kept if several arrive between two poll ticks.
func (r *Renderer) Restart(camera scene.CameraState, interactive bool) {
	req := &request{camera: camera, mode: FullResolution}
	if interactive {
		req.mode = PreviewResolution
	}

	r.mu.Lock()
	r.pending = req
	r.mu.Unlock()
	r.wake()
}

// Request a new frame size. The change is applied once no session is in
// flight.
func (r *Renderer) Resize(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	r.mu.Lock()
	r.resize = &[2]uint32{width, height}
	r.mu.Unlock()
	r.wake()
}

func (r *Renderer) wake() {
	select {
	case r.wakeChan <- struct{}{}:
	default:
	}
}

// Shutdown the engine.
func (r *Renderer) Close() {
	r.engine.Close()
}

// Run the session loop until ctx is cancelled. Each poll tick is a
// suspension point. On return no pass is in flight, unless the engine
// stalled in which case ErrEngineStalled is returned and Run may be called
// again.
func (r *Renderer) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return r.shutdown()
		case <-r.wakeChan:
			r.acceptPending()
		case <-ticker.C:
		}

		if err := r.step(time.Now()); err != nil {
			return err
		}
	}
}

// Pick up the latest restart request. An active session is cancelled; the
// replacement is triggered once the engine vacates the busy gate.
func (r *Renderer) acceptPending() {
	r.mu.Lock()
	req := r.pending
	r.pending = nil
	r.mu.Unlock()

	if req == nil {
		return
	}
	if r.session != nil {
		r.cancel(r.session)
	}
	r.next = req
}

func (r *Renderer) step(now time.Time) error {
	if r.session != nil {
		return r.poll(now)
	}

	idle, err := r.awaitIdle(now)
	if err != nil || !idle {
		return err
	}

	r.applyResize()
	if r.next == nil {
		return nil
	}
	return r.trigger(now)
}

// Returns true if the engine busy flag is clear. Waiting longer than the
// busy timeout yields ErrEngineStalled and drops any queued request.
func (r *Renderer) awaitIdle(now time.Time) (bool, error) {
	if !r.channel.Flag(settings.Busy) {
		r.waitStart = time.Time{}
		return true, nil
	}

	if r.waitStart.IsZero() {
		r.waitStart = now
		return false, nil
	}
	if waited := now.Sub(r.waitStart); waited > r.opts.BusyTimeout {
		r.waitStart = time.Time{}
		r.next = nil
		if r.session != nil {
			r.cancel(r.session)
		}
		r.logger.Errorf("engine still busy after %s", waited)
		return false, ErrEngineStalled
	}
	return false, nil
}

func (r *Renderer) applyResize() {
	r.mu.Lock()
	size := r.resize
	r.resize = nil
	r.mu.Unlock()

	if size == nil || (size[0] == r.opts.FrameW && size[1] == r.opts.FrameH) {
		return
	}

	r.logger.Infof("frame size changed from %dx%d to %dx%d", r.opts.FrameW, r.opts.FrameH, size[0], size[1])
	r.opts.FrameW, r.opts.FrameH = size[0], size[1]
	if r.next == nil && r.last != nil {
		r.next = r.last
	}
}

// Configure the engine for the next request and start a pass. Must only be
// called while the busy flag is clear.
func (r *Renderer) trigger(now time.Time) error {
	req := r.next
	r.next = nil

	s := newSession(*req, &r.opts)

	ch := r.channel
	ch.SetFlag(settings.ResetRequested, false)
	ch.SetFlag(settings.TextureChanged, false)
	ch.SetResolution(s.Width, s.Height)
	ch.SetInt(settings.SamplesPerPixel, s.Target)
	ch.SetInt(settings.MaxBounces, r.opts.NumBounces)
	ch.SetCamera(req.camera.Origin, req.camera.LookAt)

	s.Started = now
	if err := r.engine.Trace(); err != nil {
		if errors.Is(err, tracer.ErrBusy) {
			// Lost a race with the engine's own bookkeeping; retry on
			// the next tick.
			r.next = req
			return nil
		}
		return fmt.Errorf("renderer: trace failed: %w", err)
	}

	s.State = Polling
	r.session = s
	r.last = req
	r.lastProgress = now

	r.mu.Lock()
	r.stats.Triggers++
	r.stats.Current = s.Stats(now)
	r.mu.Unlock()

	r.logger.Debugf("triggered %s session %dx%d, %d samples", s.Mode, s.Width, s.Height, s.Target)
	return nil
}

// Check the engine status flags for the active session.
func (r *Renderer) poll(now time.Time) error {
	s := r.session
	ch := r.channel
	s.State = Polling

	if ch.Flag(settings.TextureChanged) {
		ch.SetFlag(settings.TextureChanged, false)
		if s.Done() {
			r.logger.Warningf("ignoring texture beyond the %d sample target", s.Target)
		} else if err := r.accept(s, now); err != nil {
			if r.resyncs > maxResyncs {
				r.next = nil
				return err
			}
			return nil
		}
	}

	if !s.Done() && ch.Flag(settings.Busy) {
		// The engine holds the busy gate but no sample arrived in time.
		if waited := now.Sub(r.lastProgress); waited > r.opts.BusyTimeout {
			r.next = nil
			r.cancel(s)
			r.logger.Errorf("no sample from the engine for %s after %d of %d samples", waited, s.Samples, s.Target)
			return ErrEngineStalled
		}
		return nil
	}

	idle, err := r.awaitIdle(now)
	if err != nil || !idle {
		return err
	}

	// The engine may publish its last texture right before clearing the
	// busy flag.
	if !s.Done() && ch.Flag(settings.TextureChanged) {
		return nil
	}

	switch {
	case s.Done():
		s.State = Completed
	case ch.Flag(settings.ResetRequested):
		// A camera change reset the pass before its restart request was
		// picked up.
		r.logger.Debugf("pass reset by the host after %d of %d samples", s.Samples, s.Target)
		s.State = Cancelled
	default:
		r.logger.Warningf("engine ended the pass after %d of %d samples", s.Samples, s.Target)
		s.State = Cancelled
	}
	r.finish(s, now)
	return nil
}

// Forward the freshly published texture to the sink.
func (r *Renderer) accept(s *Session, now time.Time) error {
	// The texture may have moved since the last call.
	tex := r.engine.Texture()
	if exp := tracer.TextureSize(s.Width, s.Height); len(tex) != exp {
		r.logger.Errorf("%s: got %d bytes, expected %d for %dx%d; re-syncing", ErrTextureSize, len(tex), exp, s.Width, s.Height)
		r.mu.Lock()
		r.stats.ProtocolErrors++
		r.mu.Unlock()

		r.resyncs++
		r.cancel(s)
		if r.next == nil {
			req := s.req
			r.next = &req
		}
		return ErrTextureSize
	}

	r.resyncs = 0
	r.lastProgress = now
	s.State = SampleAccepted
	s.Samples++

	// The session stays in SampleAccepted until the next poll tick.
	r.mu.Lock()
	r.stats.Deliveries++
	r.stats.Current = s.Stats(now)
	r.mu.Unlock()

	r.sink.Display(tex, s.Width, s.Height, s.Mode)

	r.logger.Debugf("sample %d/%d (%.1f samples/sec)", s.Samples, s.Target, s.Throughput(now))
	return nil
}

// Request the engine to abandon the active pass.
func (r *Renderer) cancel(s *Session) {
	r.channel.SetFlag(settings.ResetRequested, true)
	s.State = Cancelled
	r.finish(s, time.Now())
}

func (r *Renderer) finish(s *Session, now time.Time) {
	stats := s.Stats(now)

	r.mu.Lock()
	if s.State == Completed {
		r.stats.Completed++
	} else {
		r.stats.Cancelled++
	}
	r.stats.Last = stats
	r.stats.Current = SessionStats{}
	r.mu.Unlock()

	r.session = nil
	r.logger.Infof("%s session %s: %d/%d samples at %dx%d in %s (%.1f samples/sec)",
		stats.Mode, stats.State, stats.Samples, stats.Target, stats.Width, stats.Height, stats.Elapsed, stats.SamplesPerSec)

	if r.opts.OnSessionDone != nil {
		r.opts.OnSessionDone(stats)
	}
}

// Ask the engine to stop and wait until it vacates the busy gate.
func (r *Renderer) shutdown() error {
	if r.session != nil {
		r.cancel(r.session)
	}
	r.next = nil

	if !r.channel.Flag(settings.Busy) {
		return nil
	}
	r.channel.SetFlag(settings.ResetRequested, true)

	ticker := time.NewTicker(r.opts.PollInterval)
	defer ticker.Stop()
	deadline := time.Now().Add(r.opts.BusyTimeout)
	for r.channel.Flag(settings.Busy) {
		if time.Now().After(deadline) {
			return ErrEngineStalled
		}
		<-ticker.C
	}
	return nil
}
