package settings

import (
	"errors"
	"math"
	"testing"

	"github.com/achilleasa/lumen/types"
)

func openTestChannel(t *testing.T, byteOffset uint32) *Channel {
	region := NewRegion(int(byteOffset) + BlockSize)
	ch, err := Open(region, byteOffset)
	if err != nil {
		t.Fatal(err)
	}
	return ch
}

func TestOpenValidation(t *testing.T) {
	type spec struct {
		region *Region
		offset uint32
		expErr error
	}
	specs := []spec{
		{nil, 0, ErrNoRegion},
		{NewRegion(BlockSize + 8), 2, ErrMisalignedOffset},
		{NewRegion(BlockSize), 4, ErrOutOfBounds},
		{NewRegion(BlockSize + 8), 8, nil},
	}

	for index, s := range specs {
		_, err := Open(s.region, s.offset)
		if s.expErr == nil && err != nil {
			t.Fatalf("[spec %d] expected no error; got %v", index, err)
		}
		if s.expErr != nil && !errors.Is(err, s.expErr) {
			t.Fatalf("[spec %d] expected error %v; got %v", index, s.expErr, err)
		}
	}
}

func TestIntRoundTrip(t *testing.T) {
	ch := openTestChannel(t, 64)
	values := []uint32{0, 1, 90, 160, 512, math.MaxUint32}

	for _, f := range []Field{Width, Height, SamplesPerPixel, MaxBounces, TextureChanged, ResetRequested, Busy} {
		for _, v := range values {
			ch.SetInt(f, v)
			if got := ch.Int(f); got != v {
				t.Fatalf("expected field %s to read back %d; got %d", f, v, got)
			}
		}
	}
}

func TestFloatRoundTrip(t *testing.T) {
	ch := openTestChannel(t, 0)
	values := []float32{0, -2, 2, 1, 3.1415927, -1e-7, 1e20, float32(math.Inf(-1))}

	for _, f := range []Field{OriginX, OriginY, OriginZ, LookAtX, LookAtY, LookAtZ} {
		for _, v := range values {
			ch.SetFloat(f, v)
			if got := ch.Float(f); got != v {
				t.Fatalf("expected field %s to read back %f; got %f", f, v, got)
			}
		}
	}
}

func TestLiteralOffsets(t *testing.T) {
	region := NewRegion(BlockSize + 16)
	ch, err := Open(region, 16)
	if err != nil {
		t.Fatal(err)
	}

	ch.SetResolution(160, 90)
	ch.SetInt(SamplesPerPixel, 512)
	ch.SetInt(MaxBounces, 8)
	ch.SetCamera(types.XYZ(-2, 2, 1), types.XYZ(0, 0, 0))
	ch.SetFlag(TextureChanged, true)
	ch.SetFlag(Busy, true)

	// Element 4 is the first element of the block.
	type spec struct {
		element int
		exp     uint32
	}
	specs := []spec{
		{4, 160},
		{5, 90},
		{6, 512},
		{7, 8},
		{8, math.Float32bits(-2)},
		{9, math.Float32bits(2)},
		{10, math.Float32bits(1)},
		{14, 1},
		{15, 0},
		{16, 1},
	}
	for index, s := range specs {
		if got := region.load(s.element); got != s.exp {
			t.Fatalf("[spec %d] expected element %d to hold %d; got %d", index, s.element, s.exp, got)
		}
	}
}

func TestCameraRoundTrip(t *testing.T) {
	ch := openTestChannel(t, 0)
	origin, lookAt := types.XYZ(1.5, -2.25, 3), types.XYZ(0.1, 0.2, -0.3)
	ch.SetCamera(origin, lookAt)

	gotOrigin, gotLookAt := ch.Camera()
	if gotOrigin != origin || gotLookAt != lookAt {
		t.Fatalf("expected camera %v -> %v; got %v -> %v", origin, lookAt, gotOrigin, gotLookAt)
	}
}

func TestWrongViewPanics(t *testing.T) {
	ch := openTestChannel(t, 0)
	defer func() {
		if recover() == nil {
			t.Fatal("expected reading a float field through the integer view to panic")
		}
	}()
	ch.Int(OriginX)
}
