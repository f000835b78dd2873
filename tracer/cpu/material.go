package cpu

import (
	"math"

	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/types"
)

func reflect(v, n types.Vec3) types.Vec3 {
	return v.Sub(n.Mul(2 * v.Dot(n)))
}

func refract(uv, n types.Vec3, etaiOverEtat float32) types.Vec3 {
	cosTheta := float32(math.Min(float64(-uv.Dot(n)), 1))
	rPerp := uv.Add(n.Mul(cosTheta)).Mul(etaiOverEtat)
	rParallel := n.Mul(-float32(math.Sqrt(math.Abs(float64(1 - rPerp.Dot(rPerp))))))
	return rPerp.Add(rParallel)
}

// Schlick's approximation for reflectance.
func reflectance(cosine, refractionIndex float32) float32 {
	r0 := (1 - refractionIndex) / (1 + refractionIndex)
	r0 *= r0
	return r0 + (1-r0)*float32(math.Pow(float64(1-cosine), 5))
}

func nearZero(v types.Vec3) bool {
	const s = 1e-8
	return math.Abs(float64(v[0])) < s && math.Abs(float64(v[1])) < s && math.Abs(float64(v[2])) < s
}

// Scatter an incoming ray. Returns false if the ray was absorbed.
func scatter(in ray, rec *hitRecord, rnd *rng) (attenuation types.Vec3, scattered ray, ok bool) {
	mat := rec.material
	switch mat.Kind {
	case scene.MetalMaterial:
		dir := reflect(in.dir, rec.normal).Normalize().Add(rnd.inUnitSphere().Mul(mat.Param))
		scattered = ray{origin: rec.point, dir: dir.Normalize()}
		return mat.Albedo, scattered, scattered.dir.Dot(rec.normal) > 0
	case scene.DielectricMaterial:
		ri := mat.Param
		if rec.frontFace {
			ri = 1 / mat.Param
		}
		unitDir := in.dir.Normalize()
		cosTheta := float32(math.Min(float64(-unitDir.Dot(rec.normal)), 1))
		sinTheta := float32(math.Sqrt(float64(1 - cosTheta*cosTheta)))

		var dir types.Vec3
		if ri*sinTheta > 1 || reflectance(cosTheta, ri) > rnd.float() {
			dir = reflect(unitDir, rec.normal)
		} else {
			dir = refract(unitDir, rec.normal, ri)
		}
		return types.XYZ(1, 1, 1), ray{origin: rec.point, dir: dir.Normalize()}, true
	default:
		dir := rec.normal.Add(rnd.unitVector())
		if nearZero(dir) {
			dir = rec.normal
		}
		return mat.Albedo, ray{origin: rec.point, dir: dir.Normalize()}, true
	}
}
