package types

import (
	"math"
	"testing"
)

func TestVec3Normalize(t *testing.T) {
	v := XYZ(3, 0, 4).Normalize()
	if math.Abs(float64(v.Len())-1.0) > 1e-6 {
		t.Fatalf("expected unit length; got %f", v.Len())
	}

	zero := Vec3{}.Normalize()
	if zero != (Vec3{}) {
		t.Fatalf("expected zero vector to normalize to zero; got %v", zero)
	}
	if zero.IsInvalid() {
		t.Fatal("expected normalized zero vector to be free of NaN")
	}
}

func TestVec3Cross(t *testing.T) {
	x := XYZ(1, 0, 0)
	y := XYZ(0, 1, 0)
	if z := x.Cross(y); z != XYZ(0, 0, 1) {
		t.Fatalf("expected x cross y to be +z; got %v", z)
	}
	if d := x.Cross(y).Dot(x); d != 0 {
		t.Fatalf("expected cross product to be orthogonal to its input; got dot %f", d)
	}
}

func TestVec3IsInvalid(t *testing.T) {
	nan := float32(math.NaN())
	if !XYZ(0, nan, 0).IsInvalid() {
		t.Fatal("expected NaN component to be reported")
	}
	if XYZ(1, 2, 3).IsInvalid() {
		t.Fatal("expected finite vector to be valid")
	}
}
