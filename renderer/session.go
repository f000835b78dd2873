package renderer

import (
	"fmt"
	"time"

	"github.com/achilleasa/lumen/scene"
)

// The accumulation session lifecycle.
type State uint8

const (
	Idle State = iota
	Triggering
	Polling
	SampleAccepted
	Completed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Triggering:
		return "triggering"
	case Polling:
		return "polling"
	case SampleAccepted:
		return "sample accepted"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// The resolution a session renders at.
type Resolution uint8

const (
	FullResolution Resolution = iota
	PreviewResolution
)

func (r Resolution) String() string {
	if r == PreviewResolution {
		return "preview"
	}
	return "full"
}

// A request to (re)start accumulation.
type request struct {
	camera scene.CameraState
	mode   Resolution
}

// A Session tracks a single accumulation pass from trigger to completion or
// cancellation.
type Session struct {
	State State
	Mode  Resolution

	Width  uint32
	Height uint32

	// Target and accepted sample counts.
	Target  uint32
	Samples uint32

	Started time.Time

	req request
}

func newSession(req request, opts *Options) *Session {
	width, height, target := opts.target(req.mode)
	return &Session{
		State:  Triggering,
		Mode:   req.mode,
		Width:  width,
		Height: height,
		Target: target,
		req:    req,
	}
}

// Returns true once the sample target has been reached.
func (s *Session) Done() bool {
	return s.Samples >= s.Target
}

// Get accepted samples per elapsed second.
func (s *Session) Throughput(now time.Time) float64 {
	elapsed := now.Sub(s.Started).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(s.Samples) / elapsed
}

// Capture session statistics.
func (s *Session) Stats(now time.Time) SessionStats {
	return SessionStats{
		State:         s.State,
		Mode:          s.Mode,
		Width:         s.Width,
		Height:        s.Height,
		Samples:       s.Samples,
		Target:        s.Target,
		Elapsed:       now.Sub(s.Started),
		SamplesPerSec: s.Throughput(now),
	}
}
