package cpu

import (
	"math"

	"github.com/achilleasa/lumen/types"
)

// Vertical field of view in degrees.
const defaultFOV float32 = 90

// A pinhole camera that generates jittered primary rays for pixel (col, row).
type camera struct {
	origin      types.Vec3
	pixel00     types.Vec3
	pixelDeltaU types.Vec3
	pixelDeltaV types.Vec3
}

func newCamera(origin, lookAt types.Vec3, width, height uint32, fov float32) camera {
	focalLength := origin.Sub(lookAt).Len()
	if focalLength < 1e-6 {
		focalLength = 1
	}
	h := float32(math.Tan(float64(fov) * math.Pi / 360))
	viewportHeight := 2 * h * focalLength
	viewportWidth := viewportHeight * float32(width) / float32(height)

	w := origin.Sub(lookAt).Normalize()
	if w.IsZero() {
		w = types.XYZ(0, 0, 1)
	}
	u := types.XYZ(0, 1, 0).Cross(w).Normalize()
	if u.IsZero() {
		// Looking straight up or down; pick any horizontal axis.
		u = types.XYZ(1, 0, 0)
	}
	v := w.Cross(u)

	viewportU := u.Mul(viewportWidth)
	viewportV := v.Mul(-viewportHeight)

	pixelDeltaU := viewportU.Mul(1 / float32(width))
	pixelDeltaV := viewportV.Mul(1 / float32(height))

	upperLeft := origin.Sub(w.Mul(focalLength)).Sub(viewportU.Mul(0.5)).Sub(viewportV.Mul(0.5))

	return camera{
		origin:      origin,
		pixel00:     upperLeft.Add(pixelDeltaU.Add(pixelDeltaV).Mul(0.5)),
		pixelDeltaU: pixelDeltaU,
		pixelDeltaV: pixelDeltaV,
	}
}

func (c camera) ray(col, row uint32, rnd *rng) ray {
	ox, oy := rnd.float()-0.5, rnd.float()-0.5
	sample := c.pixel00.
		Add(c.pixelDeltaU.Mul(float32(col) + ox)).
		Add(c.pixelDeltaV.Mul(float32(row) + oy))
	return ray{origin: c.origin, dir: sample.Sub(c.origin).Normalize()}
}
