package scene

import (
	"fmt"
	"math"
	"sync"

	"github.com/achilleasa/lumen/settings"
	"github.com/achilleasa/lumen/types"
	"github.com/go-gl/mathgl/mgl32"
)

// The active camera gesture.
type InteractionMode uint8

const (
	Idle InteractionMode = iota
	Orbiting
	Panning
)

func (m InteractionMode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Orbiting:
		return "orbiting"
	case Panning:
		return "panning"
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

const (
	// Default coefficients for converting gesture deltas to camera movement.
	DefaultDollyStep        float32 = 0.1
	DefaultOrbitSensitivity float32 = 0.005
	DefaultPanSpeed         float32 = 0.005

	// Keeps the polar angle away from the poles where the up vector degenerates.
	poleEpsilon = 1e-3
)

var worldUp = types.XYZ(0, 1, 0)

// The camera state shared with the accumulation session.
type CameraState struct {
	Origin types.Vec3
	LookAt types.Vec3
	Mode   InteractionMode
}

// Distance between origin and look-at point.
func (s CameraState) Radius() float32 {
	return s.LookAt.Sub(s.Origin).Len()
}

// Receives camera changes that invalidate the in-flight accumulation.
type RestartNotifier interface {
	Restart(camera CameraState, interactive bool)
}

// The camera controller converts pointer and wheel gestures into camera
// vectors. Every change raises the reset flag in the settings channel and
// asks the notifier to restart accumulation.
type Controller struct {
	sync.Mutex

	state    CameraState
	channel  *settings.Channel
	notifier RestartNotifier

	DollyStep        float32
	OrbitSensitivity float32
	PanSpeed         float32
}

// Create a controller for the given initial camera.
func NewController(initial CameraState, channel *settings.Channel, notifier RestartNotifier) *Controller {
	initial.Mode = Idle
	return &Controller{
		state:            initial,
		channel:          channel,
		notifier:         notifier,
		DollyStep:        DefaultDollyStep,
		OrbitSensitivity: DefaultOrbitSensitivity,
		PanSpeed:         DefaultPanSpeed,
	}
}

// Get a copy of the current camera state.
func (c *Controller) State() CameraState {
	c.Lock()
	defer c.Unlock()
	return c.state
}

// Mark the start of an orbit or pan gesture. While a gesture is active
// restarts request the interactive preview resolution.
func (c *Controller) BeginGesture(mode InteractionMode) {
	c.Lock()
	defer c.Unlock()
	c.state.Mode = mode
}

// Mark the end of the active gesture and restart accumulation at full
// resolution.
func (c *Controller) EndGesture() {
	c.Lock()
	if c.state.Mode == Idle {
		c.Unlock()
		return
	}
	c.state.Mode = Idle
	c.Unlock()

	c.publish()
}

// Move the origin along the view direction.
func (c *Controller) Dolly(delta float32) {
	c.Lock()
	view := c.state.LookAt.Sub(c.state.Origin)
	if view.IsZero() {
		c.Unlock()
		return
	}

	origin := c.state.Origin.Add(view.Normalize().Mul(delta * c.DollyStep))
	if origin.IsInvalid() {
		c.Unlock()
		return
	}
	c.state.Origin = origin
	c.Unlock()

	c.publish()
}

// Rotate the origin around the look-at point keeping the distance between
// them constant.
func (c *Controller) Orbit(dx, dy float32) {
	c.Lock()
	offset := c.state.Origin.Sub(c.state.LookAt)
	radius := float64(offset.Len())
	if offset.IsZero() {
		c.Unlock()
		return
	}

	x, y, z := float64(offset[0]), float64(offset[1]), float64(offset[2])
	theta := math.Atan2(z, x)
	phi := math.Acos(math.Max(-1, math.Min(1, y/radius)))

	theta += float64(dx * c.OrbitSensitivity)
	phi -= float64(dy * c.OrbitSensitivity)
	phi = float64(mgl32.Clamp(float32(phi), poleEpsilon, math.Pi-poleEpsilon))

	sinPhi := math.Sin(phi)
	offset = types.XYZ(
		float32(radius*sinPhi*math.Cos(theta)),
		float32(radius*math.Cos(phi)),
		float32(radius*sinPhi*math.Sin(theta)),
	)
	if offset.IsInvalid() {
		c.Unlock()
		return
	}
	c.state.Origin = c.state.LookAt.Add(offset)
	c.Unlock()

	c.publish()
}

// Translate origin and look-at point together on the plane orthogonal to
// the view direction.
func (c *Controller) Pan(dx, dy float32) {
	c.Lock()
	view := c.state.LookAt.Sub(c.state.Origin)
	if view.IsZero() {
		c.Unlock()
		return
	}

	dir := view.Normalize()
	right := dir.Cross(worldUp).Normalize()
	if right.IsZero() {
		// View direction is parallel to the world up axis.
		c.Unlock()
		return
	}
	up := right.Cross(dir).Normalize()

	delta := right.Mul(-dx * c.PanSpeed).Add(up.Mul(dy * c.PanSpeed))
	if delta.IsInvalid() {
		c.Unlock()
		return
	}
	c.state.Origin = c.state.Origin.Add(delta)
	c.state.LookAt = c.state.LookAt.Add(delta)
	c.Unlock()

	c.publish()
}

// Raise the reset flag and notify the session. The flag may be raised at any
// time; the camera fields themselves are written by the session once the
// engine has vacated the busy gate.
func (c *Controller) publish() {
	state := c.State()
	if c.channel != nil {
		c.channel.SetFlag(settings.ResetRequested, true)
	}
	if c.notifier != nil {
		c.notifier.Restart(state, state.Mode != Idle)
	}
}
