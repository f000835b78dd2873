package scene

import (
	"fmt"

	"github.com/achilleasa/lumen/types"
)

// The material kind as understood by the compute engine.
type MaterialKind uint32

const (
	LambertianMaterial MaterialKind = iota
	MetalMaterial
	DielectricMaterial
)

func (k MaterialKind) String() string {
	switch k {
	case LambertianMaterial:
		return "lambertian"
	case MetalMaterial:
		return "metal"
	case DielectricMaterial:
		return "dielectric"
	}
	return fmt.Sprintf("material(%d)", uint32(k))
}

// Defines a scene material.
type Material struct {
	// The type of the material.
	Kind MaterialKind

	// Surface color.
	Albedo types.Vec3

	// Fuzz factor for metals, index of refraction for dielectrics.
	Param float32
}

// Create a diffuse material.
func NewLambertian(albedo types.Vec3) Material {
	return Material{Kind: LambertianMaterial, Albedo: albedo}
}

// Create a metal material. Fuzz values above 1 are clamped.
func NewMetal(albedo types.Vec3, fuzz float32) Material {
	if fuzz > 1.0 {
		fuzz = 1.0
	}
	if fuzz < 0 {
		fuzz = 0
	}
	return Material{Kind: MetalMaterial, Albedo: albedo, Param: fuzz}
}

// Create a refractive material with the given index of refraction.
func NewDielectric(refractionIndex float32) Material {
	return Material{
		Kind:   DielectricMaterial,
		Albedo: types.XYZ(1, 1, 1),
		Param:  refractionIndex,
	}
}
