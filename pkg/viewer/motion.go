package viewer

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/df07/go-pathtracer/pkg/core"
)

// MoveStep is the distance one key press moves the camera look-from
const MoveStep = 0.5

const settleEpsilon = 1e-3

// Axis eases one coordinate toward its target with a critically damped spring
type Axis struct {
	Position float64
	Target   float64
	velocity float64
	spring   harmonica.Spring
}

// NewAxis creates an axis at rest at position
func NewAxis(fps int, position float64) Axis {
	return Axis{
		Position: position,
		Target:   position,
		// Frequency 6.0 settles a half-unit step in well under a second, damping 1.0 never overshoots
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
	}
}

// Update advances the spring one frame and reports whether the position changed
func (a *Axis) Update() bool {
	if a.Position == a.Target && a.velocity == 0 {
		return false
	}

	a.Position, a.velocity = a.spring.Update(a.Position, a.velocity, a.Target)
	if math.Abs(a.Position-a.Target) < settleEpsilon && math.Abs(a.velocity) < settleEpsilon {
		a.Position = a.Target
		a.velocity = 0
	}
	return true
}

// CameraMotion smooths look-from moves in the XZ plane. Y never changes.
type CameraMotion struct {
	X, Z Axis
	y    float64
}

// NewCameraMotion creates a motion at rest at lookFrom
func NewCameraMotion(fps int, lookFrom core.Vec3) *CameraMotion {
	return &CameraMotion{
		X: NewAxis(fps, lookFrom.X),
		Z: NewAxis(fps, lookFrom.Z),
		y: lookFrom.Y,
	}
}

// Nudge offsets the target look-from
func (m *CameraMotion) Nudge(dx, dz float64) {
	m.X.Target += dx
	m.Z.Target += dz
}

// Update advances both springs and returns the new look-from and whether it moved
func (m *CameraMotion) Update() (core.Vec3, bool) {
	movedX := m.X.Update()
	movedZ := m.Z.Update()
	return m.Position(), movedX || movedZ
}

// Position returns the current smoothed look-from
func (m *CameraMotion) Position() core.Vec3 {
	return core.NewVec3(m.X.Position, m.y, m.Z.Position)
}

// Target returns the look-from the motion is heading to
func (m *CameraMotion) Target() core.Vec3 {
	return core.NewVec3(m.X.Target, m.y, m.Z.Target)
}
