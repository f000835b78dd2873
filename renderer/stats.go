package renderer

import "time"

type SessionStats struct {
	// Final or current session state.
	State State

	// The resolution mode and raster size.
	Mode   Resolution
	Width  uint32
	Height uint32

	// Accepted and target sample counts.
	Samples uint32
	Target  uint32

	// Time since the session was triggered and the running throughput.
	Elapsed       time.Duration
	SamplesPerSec float64
}

type Stats struct {
	// Number of trace calls issued.
	Triggers uint64

	// Sessions by outcome.
	Completed uint64
	Cancelled uint64

	// Pixel buffers forwarded to the sink.
	Deliveries uint64

	// Texture length mismatches between engine and host.
	ProtocolErrors uint64

	// The active session; zero when no session is in flight.
	Current SessionStats

	// The most recently finished session.
	Last SessionStats
}
