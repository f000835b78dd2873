package cpu

import (
	"math"

	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/types"
)

type ray struct {
	origin types.Vec3
	dir    types.Vec3
}

func (r ray) at(t float32) types.Vec3 {
	return r.origin.Add(r.dir.Mul(t))
}

type hitRecord struct {
	t         float32
	point     types.Vec3
	normal    types.Vec3
	frontFace bool
	material  *scene.Material
}

// Orient the normal against the incoming ray.
func (h *hitRecord) setFaceNormal(r ray, outward types.Vec3) {
	h.frontFace = r.dir.Dot(outward) < 0
	if h.frontFace {
		h.normal = outward
	} else {
		h.normal = outward.Mul(-1)
	}
}

// Intersect a sphere within the open interval (tMin, tMax).
func hitSphere(p *scene.Primitive, r ray, tMin, tMax float32, rec *hitRecord) bool {
	oc := p.Center.Sub(r.origin)
	a := r.dir.Dot(r.dir)
	h := r.dir.Dot(oc)
	c := oc.Dot(oc) - p.Radius*p.Radius

	discriminant := h*h - a*c
	if discriminant < 0 {
		return false
	}
	sqrtD := float32(math.Sqrt(float64(discriminant)))

	root := (h - sqrtD) / a
	if root <= tMin || root >= tMax {
		root = (h + sqrtD) / a
		if root <= tMin || root >= tMax {
			return false
		}
	}

	rec.t = root
	rec.point = r.at(root)
	rec.setFaceNormal(r, rec.point.Sub(p.Center).Mul(1/p.Radius))
	rec.material = &p.Material
	return true
}

// Find the closest hit among all primitives.
func hitWorld(prims []scene.Primitive, r ray, tMin, tMax float32, rec *hitRecord) bool {
	hit := false
	closest := tMax
	for i := range prims {
		if hitSphere(&prims[i], r, tMin, closest, rec) {
			hit = true
			closest = rec.t
		}
	}
	return hit
}
