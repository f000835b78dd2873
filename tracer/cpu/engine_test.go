package cpu

import (
	"errors"
	"testing"
	"time"

	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/settings"
	"github.com/achilleasa/lumen/tracer"
	"github.com/achilleasa/lumen/types"
)

func setupEngine(t *testing.T, width, height, spp uint32) (*Engine, *settings.Channel) {
	eng := New(2)
	region, err := eng.Init()
	if err != nil {
		t.Fatal(err)
	}
	offset, err := eng.InitSettings()
	if err != nil {
		t.Fatal(err)
	}
	ch, err := settings.Open(region, offset)
	if err != nil {
		t.Fatal(err)
	}

	sc := scene.Default()
	for _, p := range sc.Primitives {
		if err = eng.AddPrimitive(p); err != nil {
			t.Fatal(err)
		}
	}

	ch.SetResolution(width, height)
	ch.SetInt(settings.SamplesPerPixel, spp)
	ch.SetInt(settings.MaxBounces, 4)
	ch.SetCamera(sc.Camera.Origin, sc.Camera.LookAt)
	return eng, ch
}

// Consume textures until the engine vacates the busy gate.
func drain(t *testing.T, eng *Engine, ch *settings.Channel, expLen int) int {
	deliveries := 0
	deadline := time.Now().Add(10 * time.Second)
	for {
		if ch.Flag(settings.TextureChanged) {
			ch.SetFlag(settings.TextureChanged, false)
			if tex := eng.Texture(); len(tex) != expLen {
				t.Fatalf("expected texture length %d; got %d", expLen, len(tex))
			}
			deliveries++
			continue
		}
		if !ch.Flag(settings.Busy) && !ch.Flag(settings.TextureChanged) {
			return deliveries
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for the engine to clear the busy flag")
		}
		time.Sleep(100 * time.Microsecond)
	}
}

func TestCallsBeforeInit(t *testing.T) {
	eng := New(1)
	defer eng.Close()

	if _, err := eng.InitSettings(); !errors.Is(err, tracer.ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized; got %v", err)
	}
	if err := eng.Trace(); !errors.Is(err, tracer.ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized; got %v", err)
	}
	if tex := eng.Texture(); tex != nil {
		t.Fatalf("expected no texture; got %d bytes", len(tex))
	}
}

func TestAddPrimitiveValidation(t *testing.T) {
	eng := New(1)
	defer eng.Close()

	bad := scene.NewSphere(types.XYZ(0, 0, 0), 0, scene.NewLambertian(types.XYZ(1, 1, 1)))
	if err := eng.AddPrimitive(bad); !errors.Is(err, scene.ErrInvalidPrimitive) {
		t.Fatalf("expected ErrInvalidPrimitive; got %v", err)
	}
}

func TestTraceDeliversOneTexturePerSample(t *testing.T) {
	eng, ch := setupEngine(t, 8, 6, 3)
	defer eng.Close()

	if err := eng.Trace(); err != nil {
		t.Fatal(err)
	}
	if !ch.Flag(settings.Busy) {
		t.Fatal("expected busy flag to be raised when Trace returns")
	}

	deliveries := drain(t, eng, ch, tracer.TextureSize(8, 6))
	if deliveries != 3 {
		t.Fatalf("expected 3 texture deliveries; got %d", deliveries)
	}
}

func TestTraceWhileBusy(t *testing.T) {
	eng, ch := setupEngine(t, 4, 4, 2)
	defer eng.Close()

	if err := eng.Trace(); err != nil {
		t.Fatal(err)
	}
	// The pass cannot finish before the host consumes its textures.
	if err := eng.Trace(); !errors.Is(err, tracer.ErrBusy) {
		t.Fatalf("expected ErrBusy; got %v", err)
	}
	drain(t, eng, ch, tracer.TextureSize(4, 4))
}

func TestResetInterruptsPass(t *testing.T) {
	eng, ch := setupEngine(t, 4, 4, 1000)
	defer eng.Close()

	if err := eng.Trace(); err != nil {
		t.Fatal(err)
	}
	ch.SetFlag(settings.ResetRequested, true)

	deliveries := drain(t, eng, ch, tracer.TextureSize(4, 4))
	if deliveries >= 1000 {
		t.Fatalf("expected reset to cut the pass short; got %d deliveries", deliveries)
	}
}

func TestTextureMovesOnResize(t *testing.T) {
	eng, ch := setupEngine(t, 4, 4, 1)
	defer eng.Close()

	if err := eng.Trace(); err != nil {
		t.Fatal(err)
	}
	drain(t, eng, ch, tracer.TextureSize(4, 4))

	ch.SetResolution(6, 2)
	if err := eng.Trace(); err != nil {
		t.Fatal(err)
	}
	drain(t, eng, ch, tracer.TextureSize(6, 2))
}

func TestCloseStopsWorker(t *testing.T) {
	eng, ch := setupEngine(t, 4, 4, 1000)
	if err := eng.Trace(); err != nil {
		t.Fatal(err)
	}

	eng.Close()
	if ch.Flag(settings.Busy) {
		t.Fatal("expected busy flag to be cleared after Close")
	}
	if err := eng.Trace(); !errors.Is(err, tracer.ErrClosed) {
		t.Fatalf("expected ErrClosed; got %v", err)
	}
}

func TestResolve(t *testing.T) {
	reservoir := []float32{0, 1, 4, 2, -1, 0.5}
	dst := make([]byte, len(reservoir))
	resolve(dst, reservoir, 4)

	exp := []byte{0, 127, 255, 181, 0, 90}
	for i := range exp {
		if dst[i] != exp[i] {
			t.Fatalf("expected component %d to be %d; got %d", i, exp[i], dst[i])
		}
	}
}

func TestHitSphere(t *testing.T) {
	p := scene.NewSphere(types.XYZ(0, 0, -2), 0.5, scene.NewLambertian(types.XYZ(1, 0, 0)))
	r := ray{origin: types.Vec3{}, dir: types.XYZ(0, 0, -1)}

	var rec hitRecord
	if !hitSphere(&p, r, 0.001, 100, &rec) {
		t.Fatal("expected ray to hit the sphere")
	}
	if rec.t < 1.49 || rec.t > 1.51 {
		t.Fatalf("expected hit distance 1.5; got %f", rec.t)
	}
	if !rec.frontFace || rec.normal[2] < 0.99 {
		t.Fatalf("expected outward facing normal towards the ray origin; got %v", rec.normal)
	}

	miss := ray{origin: types.Vec3{}, dir: types.XYZ(0, 1, 0)}
	if hitSphere(&p, miss, 0.001, 100, &rec) {
		t.Fatal("expected ray to miss the sphere")
	}
}
