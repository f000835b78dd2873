package scene

import (
	"github.com/achilleasa/lumen/types"
)

type Scene struct {
	Camera CameraState

	Primitives []Primitive
}

func NewScene(origin, lookAt types.Vec3) *Scene {
	return &Scene{
		Camera: CameraState{
			Origin: origin,
			LookAt: lookAt,
		},
		Primitives: make([]Primitive, 0),
	}
}

// Add a primitive to the scene.
func (s *Scene) AddPrimitive(p Primitive) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.Primitives = append(s.Primitives, p)
	return nil
}

// Build the demo scene: a large ground sphere with a diffuse, a glass and a
// metal sphere resting on it.
func Default() *Scene {
	sc := NewScene(types.XYZ(-2, 2, 1), types.XYZ(0, 0, -1))
	sc.Primitives = append(sc.Primitives,
		NewSphere(types.XYZ(0, -100.5, -1), 100, NewLambertian(types.XYZ(0.8, 0.8, 0.0))),
		NewSphere(types.XYZ(0, 0, -1.2), 0.5, NewLambertian(types.XYZ(0.1, 0.2, 0.5))),
		NewSphere(types.XYZ(-1, 0, -1), 0.5, NewDielectric(1.5)),
		NewSphere(types.XYZ(-1, 0, -1), 0.4, NewDielectric(1.0/1.5)),
		NewSphere(types.XYZ(1, 0, -1), 0.5, NewMetal(types.XYZ(0.8, 0.6, 0.2), 0.3)),
	)
	return sc
}
