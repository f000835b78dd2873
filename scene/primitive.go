package scene

import (
	"errors"

	"github.com/achilleasa/lumen/types"
)

var ErrInvalidPrimitive = errors.New("scene: invalid primitive")

// Defines a sphere primitive. The order in which primitives are registered
// with the engine defines their index.
type Primitive struct {
	Center types.Vec3
	Radius float32

	Material Material
}

// Create new sphere primitive. Negative radii are clamped to zero.
func NewSphere(center types.Vec3, radius float32, material Material) Primitive {
	if radius < 0 {
		radius = 0
	}
	return Primitive{
		Center:   center,
		Radius:   radius,
		Material: material,
	}
}

// Check that the primitive can be registered with an engine.
func (p Primitive) Validate() error {
	if p.Center.IsInvalid() || p.Material.Albedo.IsInvalid() {
		return ErrInvalidPrimitive
	}
	if p.Radius <= 0 {
		return ErrInvalidPrimitive
	}
	switch p.Material.Kind {
	case LambertianMaterial, MetalMaterial:
	case DielectricMaterial:
		if p.Material.Param <= 0 {
			return ErrInvalidPrimitive
		}
	default:
		return ErrInvalidPrimitive
	}
	return nil
}
