package cmd

import (
	"testing"

	"github.com/achilleasa/lumen/types"
)

func TestParseVec3(t *testing.T) {
	type spec struct {
		in     string
		exp    types.Vec3
		expErr bool
	}
	specs := []spec{
		{"1,2,3", types.XYZ(1, 2, 3), false},
		{" -2 , 0.5,1e1 ", types.XYZ(-2, 0.5, 10), false},
		{"1,2", types.Vec3{}, true},
		{"1,2,3,4", types.Vec3{}, true},
		{"1,foo,3", types.Vec3{}, true},
		{"1,NaN,3", types.Vec3{}, true},
		{"inf,0,0", types.Vec3{}, true},
	}

	for index, s := range specs {
		got, err := parseVec3(s.in)
		if s.expErr {
			if err == nil {
				t.Fatalf("[spec %d] expected an error for %q", index, s.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("[spec %d] unexpected error: %v", index, err)
		}
		if got != s.exp {
			t.Fatalf("[spec %d] expected %v; got %v", index, s.exp, got)
		}
	}
}
