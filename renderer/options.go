package renderer

import (
	"fmt"
	"time"
)

const (
	DefaultPollInterval       = 2 * time.Millisecond
	DefaultBusyTimeout        = 10 * time.Second
	DefaultInteractiveScale   = 4
	DefaultInteractiveSamples = 4
	DefaultNumBounces         = 8
)

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Number of indirect bounces.
	NumBounces uint32

	// Number of samples for a full resolution session.
	SamplesPerPixel uint32

	// Preview sessions render at FrameW/InteractiveScale x
	// FrameH/InteractiveScale with InteractiveSamples samples.
	InteractiveScale   uint32
	InteractiveSamples uint32

	// Interval between two checks of the engine status flags.
	PollInterval time.Duration

	// Maximum time to wait for the engine to vacate the busy gate.
	BusyTimeout time.Duration

	// Invoked from the session loop whenever a session ends.
	OnSessionDone func(SessionStats)
}

// Fill in defaults and reject impossible configurations.
func (o *Options) Validate() error {
	if o.FrameW == 0 || o.FrameH == 0 {
		return fmt.Errorf("%w: frame dimensions %dx%d", ErrInvalidOptions, o.FrameW, o.FrameH)
	}
	if o.SamplesPerPixel == 0 {
		return fmt.Errorf("%w: samples per pixel must be positive", ErrInvalidOptions)
	}
	if o.NumBounces == 0 {
		o.NumBounces = DefaultNumBounces
	}
	if o.InteractiveScale == 0 {
		o.InteractiveScale = DefaultInteractiveScale
	}
	if o.InteractiveSamples == 0 {
		o.InteractiveSamples = DefaultInteractiveSamples
	}
	if o.InteractiveSamples > o.SamplesPerPixel {
		o.InteractiveSamples = o.SamplesPerPixel
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.BusyTimeout <= 0 {
		o.BusyTimeout = DefaultBusyTimeout
	}
	return nil
}

// Get the raster size and sample target for a resolution mode.
func (o *Options) target(mode Resolution) (width, height, samples uint32) {
	if mode == PreviewResolution {
		return scaleDown(o.FrameW, o.InteractiveScale), scaleDown(o.FrameH, o.InteractiveScale), o.InteractiveSamples
	}
	return o.FrameW, o.FrameH, o.SamplesPerPixel
}

func scaleDown(dim, scale uint32) uint32 {
	if v := dim / scale; v > 0 {
		return v
	}
	return 1
}
