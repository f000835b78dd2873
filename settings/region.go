package settings

import "sync/atomic"

// A Region is a block of memory shared between the host and the compute
// engine. It is addressed in 32-bit elements; every element access is atomic
// so both sides may read while the other side writes a different field.
type Region struct {
	words []uint32
}

// Allocate a zeroed region large enough to hold size bytes.
func NewRegion(size int) *Region {
	if size < 0 {
		size = 0
	}
	return &Region{
		words: make([]uint32, (size+ElementSize-1)/ElementSize),
	}
}

// Get region size in bytes.
func (r *Region) Size() int {
	return len(r.words) * ElementSize
}

func (r *Region) load(index int) uint32 {
	return atomic.LoadUint32(&r.words[index])
}

func (r *Region) store(index int, v uint32) {
	atomic.StoreUint32(&r.words[index], v)
}
