package renderer

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// A FrameSink displays accumulated pixel buffers. Pixels are RGB8 with rows
// stored bottom-up and are only valid for the duration of the call.
type FrameSink interface {
	Display(pixels []byte, width, height uint32, mode Resolution)
}

// Adapter for using plain functions as frame sinks.
type FrameSinkFunc func(pixels []byte, width, height uint32, mode Resolution)

func (f FrameSinkFunc) Display(pixels []byte, width, height uint32, mode Resolution) {
	f(pixels, width, height, mode)
}

// An ImageSink keeps a copy of the last displayed frame.
type ImageSink struct {
	sync.Mutex

	frame  *image.RGBA
	mode   Resolution
	frames uint64
}

func NewImageSink() *ImageSink {
	return &ImageSink{}
}

// Copy the pixel buffer into an image flipping rows so that the first row is
// the top of the frame.
func (s *ImageSink) Display(pixels []byte, width, height uint32, mode Resolution) {
	s.Lock()
	defer s.Unlock()

	w, h := int(width), int(height)
	if s.frame == nil || s.frame.Rect.Dx() != w || s.frame.Rect.Dy() != h {
		s.frame = image.NewRGBA(image.Rect(0, 0, w, h))
	}

	for y := 0; y < h; y++ {
		src := pixels[(h-1-y)*w*3 : (h-y)*w*3]
		dst := s.frame.Pix[y*s.frame.Stride:]
		for x := 0; x < w; x++ {
			dst[x*4] = src[x*3]
			dst[x*4+1] = src[x*3+1]
			dst[x*4+2] = src[x*3+2]
			dst[x*4+3] = 0xff
		}
	}
	s.mode = mode
	s.frames++
}

// Get the number of frames displayed so far.
func (s *ImageSink) Frames() uint64 {
	s.Lock()
	defer s.Unlock()
	return s.frames
}

// Get the color of a pixel in the last frame.
func (s *ImageSink) At(x, y int) color.Color {
	s.Lock()
	defer s.Unlock()
	if s.frame == nil {
		return color.RGBA{}
	}
	return s.frame.At(x, y)
}

// Encode the last frame. The format is selected by the file extension
// (png, bmp, tif or tiff).
func (s *ImageSink) Encode(w io.Writer, ext string) error {
	s.Lock()
	defer s.Unlock()

	if s.frame == nil {
		return ErrNoFrame
	}

	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "png":
		return png.Encode(w, s.frame)
	case "bmp":
		return bmp.Encode(w, s.frame)
	case "tif", "tiff":
		return tiff.Encode(w, s.frame, &tiff.Options{Compression: tiff.Deflate})
	}
	return ErrUnsupportedFormat
}

// Save the last frame to a file.
func (s *ImageSink) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	err = s.Encode(f, filepath.Ext(path))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return err
}
