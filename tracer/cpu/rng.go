package cpu

import (
	"math"

	"github.com/achilleasa/lumen/types"
)

// A xorshift32 random number generator. Each worker owns its own instance.
type rng struct {
	state uint32
}

// Create a generator. A zero seed would lock the generator at zero so it is
// replaced by a fixed non-zero value.
func newRng(seed uint32) *rng {
	if seed == 0 {
		seed = 0x9e3779b9
	}
	return &rng{state: seed}
}

// Get a float in [0, 1].
func (r *rng) float() float32 {
	x := r.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.state = x
	return float32(float64(x) / math.MaxUint32)
}

// Get a float in [min, max).
func (r *rng) floatRange(min, max float32) float32 {
	return min + (max-min)*r.float()
}

// Get a random point inside the unit sphere.
func (r *rng) inUnitSphere() types.Vec3 {
	for {
		p := types.XYZ(r.floatRange(-1, 1), r.floatRange(-1, 1), r.floatRange(-1, 1))
		if l := p.Dot(p); l < 1 && l > 1e-12 {
			return p
		}
	}
}

// Get a random unit vector.
func (r *rng) unitVector() types.Vec3 {
	return r.inUnitSphere().Normalize()
}

// Derive a well mixed seed from a sample and row index.
func seedFor(sample, row uint32) uint32 {
	h := sample*0x85ebca6b ^ (row+1)*0xc2b2ae35
	h ^= h >> 16
	h *= 0x7feb352d
	h ^= h >> 15
	return h
}
