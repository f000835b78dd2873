package tracer

import (
	"errors"

	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/settings"
)

var (
	ErrNotInitialized = errors.New("tracer: engine not initialized")
	ErrBusy           = errors.New("tracer: accumulation pass already in flight")
	ErrClosed         = errors.New("tracer: engine closed")
)

// The Engine interface is implemented by progressive, sample-accumulating
// compute engines. All configuration and status exchange happens through the
// settings block that lives inside the region returned by Init.
type Engine interface {
	// One-time setup. Must complete before any other call.
	Init() (*settings.Region, error)

	// Get the byte offset of the settings block inside the shared region.
	InitSettings() (uint32, error)

	// Register a scene primitive. Registration order defines the primitive
	// index.
	AddPrimitive(scene.Primitive) error

	// Begin an accumulation pass using the configuration currently stored
	// in the settings block. The engine raises the busy flag before
	// returning and clears it when the pass ends or observes a reset
	// request. Calling Trace while busy is raised returns ErrBusy.
	Trace() error

	// Get the current RGB8 pixel buffer. Its location may change between
	// calls so callers must not retain it.
	Texture() []byte

	// Shutdown the engine.
	Close()
}

// Expected pixel buffer length for a resolution.
func TextureSize(width, height uint32) int {
	return int(width) * int(height) * 3
}
