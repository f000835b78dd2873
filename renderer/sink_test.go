package renderer

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Build a 2x2 bottom-up texture: the bottom row is red/green and the top row
// is blue/white.
func testTexture() []byte {
	return []byte{
		255, 0, 0, 0, 255, 0,
		0, 0, 255, 255, 255, 255,
	}
}

func TestImageSinkFlipsRows(t *testing.T) {
	sink := NewImageSink()
	sink.Display(testTexture(), 2, 2, FullResolution)

	type spec struct {
		x, y int
		exp  color.RGBA
	}
	specs := []spec{
		{0, 0, color.RGBA{0, 0, 255, 255}},
		{1, 0, color.RGBA{255, 255, 255, 255}},
		{0, 1, color.RGBA{255, 0, 0, 255}},
		{1, 1, color.RGBA{0, 255, 0, 255}},
	}
	for index, s := range specs {
		if got := sink.At(s.x, s.y); got != s.exp {
			t.Fatalf("[spec %d] expected pixel (%d, %d) to be %v; got %v", index, s.x, s.y, s.exp, got)
		}
	}

	if sink.Frames() != 1 {
		t.Fatalf("expected 1 frame; got %d", sink.Frames())
	}
}

func TestImageSinkEncode(t *testing.T) {
	sink := NewImageSink()

	var buf bytes.Buffer
	if err := sink.Encode(&buf, "png"); !errors.Is(err, ErrNoFrame) {
		t.Fatalf("expected ErrNoFrame; got %v", err)
	}

	sink.Display(testTexture(), 2, 2, FullResolution)

	type spec struct {
		ext    string
		decode func(*bytes.Buffer) (image.Image, error)
	}
	specs := []spec{
		{"png", func(b *bytes.Buffer) (image.Image, error) { return png.Decode(b) }},
		{".BMP", func(b *bytes.Buffer) (image.Image, error) { return bmp.Decode(b) }},
		{"tiff", func(b *bytes.Buffer) (image.Image, error) { return tiff.Decode(b) }},
	}
	for index, s := range specs {
		buf.Reset()
		if err := sink.Encode(&buf, s.ext); err != nil {
			t.Fatalf("[spec %d] encode failed: %v", index, err)
		}
		img, err := s.decode(&buf)
		if err != nil {
			t.Fatalf("[spec %d] decode failed: %v", index, err)
		}
		if b := img.Bounds(); b.Dx() != 2 || b.Dy() != 2 {
			t.Fatalf("[spec %d] expected 2x2 image; got %v", index, b)
		}
		r, g, b, _ := img.At(0, 1).RGBA()
		if r>>8 != 255 || g != 0 || b != 0 {
			t.Fatalf("[spec %d] expected red pixel at (0, 1); got (%d, %d, %d)", index, r>>8, g>>8, b>>8)
		}
	}

	if err := sink.Encode(&buf, "exr"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat; got %v", err)
	}
}

func TestImageSinkSave(t *testing.T) {
	sink := NewImageSink()
	sink.Display(testTexture(), 2, 2, PreviewResolution)

	path := filepath.Join(t.TempDir(), "frame.png")
	if err := sink.Save(path); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 2 || cfg.Height != 2 {
		t.Fatalf("expected 2x2 png; got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestFrameSinkFunc(t *testing.T) {
	var gotW, gotH uint32
	var gotMode Resolution
	sink := FrameSinkFunc(func(_ []byte, width, height uint32, mode Resolution) {
		gotW, gotH, gotMode = width, height, mode
	})

	sink.Display(nil, 3, 4, PreviewResolution)
	if gotW != 3 || gotH != 4 || gotMode != PreviewResolution {
		t.Fatalf("expected 3x4 preview; got %dx%d %s", gotW, gotH, gotMode)
	}
}
