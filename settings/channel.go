package settings

import (
	"fmt"
	"math"

	"github.com/achilleasa/lumen/types"
)

// A Channel is a typed view over the settings block that lives inside a
// shared region. Every setter is a single store that becomes visible to the
// other side immediately; there is no batching.
//
// Integer fields and float fields alias the same 32-bit elements. The caller
// must use the accessor matching Field.Kind.
type Channel struct {
	region *Region

	// Element index of the block start inside the region.
	base int
}

// Open a channel over the settings block that starts at byteOffset inside
// region. The offset is the value reported by the engine's InitSettings call.
func Open(region *Region, byteOffset uint32) (*Channel, error) {
	if region == nil {
		return nil, ErrNoRegion
	}
	if byteOffset%ElementSize != 0 {
		return nil, fmt.Errorf("%w: %d", ErrMisalignedOffset, byteOffset)
	}
	if int(byteOffset)+BlockSize > region.Size() {
		return nil, fmt.Errorf("%w: offset %d, block %d bytes, region %d bytes", ErrOutOfBounds, byteOffset, BlockSize, region.Size())
	}

	return &Channel{
		region: region,
		base:   int(byteOffset / ElementSize),
	}, nil
}

func (c *Channel) index(f Field, kind Kind) int {
	if f >= NumFields {
		panic(fmt.Sprintf("settings: unknown field %d", uint32(f)))
	}
	if f.Kind() != kind {
		panic(fmt.Sprintf("settings: field %s accessed through the wrong view", f))
	}
	return c.base + int(f)
}

// Read an integer field.
func (c *Channel) Int(f Field) uint32 {
	return c.region.load(c.index(f, IntKind))
}

// Write an integer field.
func (c *Channel) SetInt(f Field, v uint32) {
	c.region.store(c.index(f, IntKind), v)
}

// Read a float field.
func (c *Channel) Float(f Field) float32 {
	return math.Float32frombits(c.region.load(c.index(f, FloatKind)))
}

// Write a float field.
func (c *Channel) SetFloat(f Field, v float32) {
	c.region.store(c.index(f, FloatKind), math.Float32bits(v))
}

// Returns true if a control flag is raised.
func (c *Channel) Flag(f Field) bool {
	return c.Int(f) != 0
}

// Raise or clear a control flag.
func (c *Channel) SetFlag(f Field, set bool) {
	var v uint32
	if set {
		v = 1
	}
	c.SetInt(f, v)
}

// Get the configured raster resolution.
func (c *Channel) Resolution() (width, height uint32) {
	return c.Int(Width), c.Int(Height)
}

// Set the raster resolution.
func (c *Channel) SetResolution(width, height uint32) {
	c.SetInt(Width, width)
	c.SetInt(Height, height)
}

// Get the camera origin and look-at point.
func (c *Channel) Camera() (origin, lookAt types.Vec3) {
	origin = types.XYZ(c.Float(OriginX), c.Float(OriginY), c.Float(OriginZ))
	lookAt = types.XYZ(c.Float(LookAtX), c.Float(LookAtY), c.Float(LookAtZ))
	return origin, lookAt
}

// Set the camera origin and look-at point.
func (c *Channel) SetCamera(origin, lookAt types.Vec3) {
	c.SetFloat(OriginX, origin[0])
	c.SetFloat(OriginY, origin[1])
	c.SetFloat(OriginZ, origin[2])
	c.SetFloat(LookAtX, lookAt[0])
	c.SetFloat(LookAtY, lookAt[1])
	c.SetFloat(LookAtZ, lookAt[2])
}
