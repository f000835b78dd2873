package cpu

import (
	"math"

	"github.com/achilleasa/lumen/types"
)

// Shade a ray by following at most maxBounces scattering events.
func rayColor(r ray, ctx *passContext, rnd *rng) types.Vec3 {
	throughput := types.XYZ(1, 1, 1)
	var rec hitRecord
	for depth := uint32(0); depth < ctx.maxBounces; depth++ {
		if !hitWorld(ctx.primitives, r, 0.001, float32(math.Inf(1)), &rec) {
			return throughput.MulVec(sky(r))
		}

		attenuation, scattered, ok := scatter(r, &rec, rnd)
		if !ok {
			return types.Vec3{}
		}
		throughput = throughput.MulVec(attenuation)
		r = scattered
	}
	return types.Vec3{}
}

// Vertical white to blue gradient.
func sky(r ray) types.Vec3 {
	a := 0.5*r.dir.Normalize()[1] + 0.5
	return types.XYZ(1, 1, 1).Mul(1 - a).Add(types.XYZ(0.5, 0.7, 1.0).Mul(a))
}

// Average the reservoir over sampleCount samples, apply gamma 2 and quantize
// to RGB8.
func resolve(dst []byte, reservoir []float32, sampleCount uint32) {
	scale := 1 / float32(sampleCount)
	for i, sum := range reservoir {
		c := float32(math.Sqrt(float64(sum * scale)))
		if c < 0 || c != c {
			c = 0
		} else if c > 1 {
			c = 1
		}
		dst[i] = byte(255.999 * c)
	}
}
