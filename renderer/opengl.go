package renderer

import (
	"context"
	"fmt"
	"sync"

	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/types"
	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	leftMouseButton  = 0
	rightMouseButton = 1

	// Upper bound for the time spent waiting for window events.
	eventWaitTimeout = 1.0 / 60.0
)

// A glfw window that displays the frames delivered by the session loop and
// turns mouse gestures into camera controller calls.
//
// All glfw and opengl calls happen on the goroutine running Loop, which must
// be the main OS thread. Display may be called from any goroutine.
type GLSink struct {
	window  *glfw.Window
	texture uint32

	// The latest frame waiting to be uploaded.
	sync.Mutex
	frame      []byte
	frameW     uint32
	frameH     uint32
	frameDirty bool

	// Input state
	camera        *scene.Controller
	renderer      *Renderer
	lastCursorPos types.Vec2
	mousePressed  [2]bool
}

// Create the window and the texture that receives frames. Must be called
// from the main OS thread.
func NewGLSink(width, height uint32, title string) (*GLSink, error) {
	var err error
	if err = glfw.Init(); err != nil {
		return nil, fmt.Errorf("%w: failed to initialize glfw: %s", ErrNoGraphicsContext, err.Error())
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)

	s := &GLSink{}
	s.window, err = glfw.CreateWindow(int(width), int(height), title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("%w: could not create opengl window: %s", ErrNoGraphicsContext, err.Error())
	}
	s.window.MakeContextCurrent()

	if err = gl.Init(); err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: could not init opengl: %s", ErrNoGraphicsContext, err.Error())
	}

	// Setup texture for image data
	gl.GenTextures(1, &s.texture)
	gl.BindTexture(gl.TEXTURE_2D, s.texture)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.Enable(gl.TEXTURE_2D)
	gl.ClearColor(1, 1, 1, 1)

	return s, nil
}

// Bind window events to the camera controller and the renderer.
func (s *GLSink) Attach(camera *scene.Controller, r *Renderer) {
	s.camera = camera
	s.renderer = r

	s.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	s.window.SetKeyCallback(s.onKeyEvent)
	s.window.SetMouseButtonCallback(s.onMouseEvent)
	s.window.SetCursorPosCallback(s.onCursorPosEvent)
	s.window.SetScrollCallback(s.onScrollEvent)
	s.window.SetFramebufferSizeCallback(s.onFramebufferSizeEvent)
}

// Queue a frame for upload on the next loop iteration.
func (s *GLSink) Display(pixels []byte, width, height uint32, _ Resolution) {
	s.Lock()
	if cap(s.frame) < len(pixels) {
		s.frame = make([]byte, len(pixels))
	}
	s.frame = s.frame[:len(pixels)]
	copy(s.frame, pixels)
	s.frameW, s.frameH = width, height
	s.frameDirty = true
	s.Unlock()

	glfw.PostEmptyEvent()
}

// Process window events and present frames until the window is closed or
// ctx is cancelled.
func (s *GLSink) Loop(ctx context.Context) error {
	for !s.window.ShouldClose() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		glfw.WaitEventsTimeout(eventWaitTimeout)
		s.present()
	}
	return nil
}

func (s *GLSink) present() {
	s.Lock()
	if s.frameDirty {
		gl.BindTexture(gl.TEXTURE_2D, s.texture)
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGB8, int32(s.frameW), int32(s.frameH), 0, gl.RGB, gl.UNSIGNED_BYTE, gl.Ptr(s.frame))
		s.frameDirty = false
	}
	hasFrame := s.frameW != 0
	s.Unlock()

	gl.Clear(gl.COLOR_BUFFER_BIT)
	if hasFrame {
		// Texture rows are stored bottom-up which matches the opengl
		// texture origin.
		gl.Begin(gl.QUADS)
		gl.TexCoord2f(0, 0)
		gl.Vertex2f(-1, -1)
		gl.TexCoord2f(1, 0)
		gl.Vertex2f(1, -1)
		gl.TexCoord2f(1, 1)
		gl.Vertex2f(1, 1)
		gl.TexCoord2f(0, 1)
		gl.Vertex2f(-1, 1)
		gl.End()
	}
	s.window.SwapBuffers()
}

// Destroy the window.
func (s *GLSink) Close() {
	if s.window != nil {
		s.window.Destroy()
		s.window = nil
	}
	glfw.Terminate()
}

func (s *GLSink) onKeyEvent(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press && action != glfw.Repeat {
		return
	}

	// Double speed if shift is pressed
	var speedScaler float32 = 1.0
	if (mods & glfw.ModShift) == glfw.ModShift {
		speedScaler = 2.0
	}

	switch key {
	case glfw.KeyEscape:
		w.SetShouldClose(true)
	case glfw.KeyUp, glfw.KeyW:
		s.camera.Dolly(speedScaler)
	case glfw.KeyDown, glfw.KeyS:
		s.camera.Dolly(-speedScaler)
	}
}

func (s *GLSink) onMouseEvent(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mod glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft && button != glfw.MouseButtonRight {
		return
	}

	buttonIndex := leftMouseButton
	mode := scene.Orbiting
	if button == glfw.MouseButtonRight {
		buttonIndex = rightMouseButton
		mode = scene.Panning
	}

	switch action {
	case glfw.Press:
		xPos, yPos := w.GetCursorPos()
		s.lastCursorPos = types.XY(float32(xPos), float32(yPos))
		s.mousePressed[buttonIndex] = true
		s.camera.BeginGesture(mode)
	case glfw.Release:
		s.mousePressed[buttonIndex] = false
		if !s.mousePressed[leftMouseButton] && !s.mousePressed[rightMouseButton] {
			s.camera.EndGesture()
		}
	}
}

func (s *GLSink) onCursorPosEvent(w *glfw.Window, xPos, yPos float64) {
	if !s.mousePressed[leftMouseButton] && !s.mousePressed[rightMouseButton] {
		return
	}

	newPos := types.XY(float32(xPos), float32(yPos))
	delta := newPos.Sub(s.lastCursorPos)
	s.lastCursorPos = newPos

	if s.mousePressed[leftMouseButton] {
		s.camera.Orbit(delta[0], delta[1])
	} else {
		s.camera.Pan(delta[0], delta[1])
	}
}

func (s *GLSink) onScrollEvent(w *glfw.Window, xOff, yOff float64) {
	s.camera.Dolly(float32(yOff))
}

func (s *GLSink) onFramebufferSizeEvent(w *glfw.Window, width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	gl.Viewport(0, 0, int32(width), int32(height))
	s.renderer.Resize(uint32(width), uint32(height))
}
