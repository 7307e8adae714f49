package geometry

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// CameraConfig contains all configuration parameters for the camera
type CameraConfig struct {
	LookFrom      core.Vec3 // Camera position
	LookAt        core.Vec3 // Point the camera is looking at
	Up            core.Vec3 // Up direction (usually (0,1,0))
	VFov          float64   // Vertical field of view in degrees
	AspectRatio   float64   // Width / height
	Aperture      float64   // Lens diameter; 0 disables defocus blur
	FocusDistance float64   // Distance to the focus plane; 0 uses |LookFrom - LookAt|
}

// Camera generates rays for rendering
type Camera struct {
	config          CameraConfig
	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
	u, v, w         core.Vec3 // Camera coordinate system
	lensRadius      float64
}

// NewCamera creates a camera and derives its viewport from config
func NewCamera(config CameraConfig) *Camera {
	c := &Camera{}
	c.Reset(config)
	return c
}

// Reset rebuilds the orthonormal basis and cached viewport.
// Accumulated samples rendered with the previous configuration become invalid.
func (c *Camera) Reset(config CameraConfig) {
	c.config = config

	theta := config.VFov * math.Pi / 180.0
	halfHeight := math.Tan(theta / 2)
	halfWidth := config.AspectRatio * halfHeight

	c.w = config.LookFrom.Subtract(config.LookAt).Normalize()
	c.u = config.Up.Cross(c.w).Normalize()
	c.v = c.w.Cross(c.u)

	focusDistance := config.FocusDistance
	if focusDistance == 0 {
		focusDistance = config.LookFrom.Subtract(config.LookAt).Length()
	}

	c.origin = config.LookFrom
	c.horizontal = c.u.Multiply(2 * halfWidth * focusDistance)
	c.vertical = c.v.Multiply(2 * halfHeight * focusDistance)
	c.lowerLeftCorner = c.origin.
		Subtract(c.horizontal.Multiply(0.5)).
		Subtract(c.vertical.Multiply(0.5)).
		Subtract(c.w.Multiply(focusDistance))
	c.lensRadius = config.Aperture / 2
}

// MoveTo repositions the camera and keeps it aimed at the same point
func (c *Camera) MoveTo(lookFrom core.Vec3) {
	config := c.config
	config.LookFrom = lookFrom
	c.Reset(config)
}

// Config returns the configuration the camera was last reset with
func (c *Camera) Config() CameraConfig {
	return c.config
}

// GetRay generates a ray for screen coordinates (s, t) where 0 <= s,t <= 1.
// The returned direction is unit length.
func (c *Camera) GetRay(s, t float64, sampler core.Sampler) core.Ray {
	offset := core.Vec3{}
	if c.lensRadius > 0 {
		rd := core.RandomInUnitDisk(sampler).Multiply(c.lensRadius)
		offset = c.u.Multiply(rd.X).Add(c.v.Multiply(rd.Y))
	}

	origin := c.origin.Add(offset)
	direction := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t)).
		Subtract(origin)

	return core.NewRay(origin, direction.Normalize())
}

// MergeCameraConfig overlays the non-zero fields of override onto base
func MergeCameraConfig(base, override CameraConfig) CameraConfig {
	result := base

	if override.LookFrom != (core.Vec3{}) {
		result.LookFrom = override.LookFrom
	}
	if override.LookAt != (core.Vec3{}) {
		result.LookAt = override.LookAt
	}
	if override.Up != (core.Vec3{}) {
		result.Up = override.Up
	}
	if override.VFov != 0 {
		result.VFov = override.VFov
	}
	if override.AspectRatio != 0 {
		result.AspectRatio = override.AspectRatio
	}
	if override.Aperture != 0 {
		result.Aperture = override.Aperture
	}
	if override.FocusDistance != 0 {
		result.FocusDistance = override.FocusDistance
	}

	return result
}
