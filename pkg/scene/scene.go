package scene

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Camera         *geometry.Camera
	CameraConfig   geometry.CameraConfig
	Shapes         []geometry.Shape // Objects in insertion order
	Light          geometry.Shape   // Shape used by shadow queries; nil when the scene has none
	Background     Background
	SamplingConfig SamplingConfig
}

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width                      int                 // Image width
	Height                     int                 // Image height
	SamplesPerPixel            int                 // Number of rays per pixel per frame
	MaxDepth                   int                 // Maximum ray bounce depth
	RussianRouletteProbability float64             // Survival probability per bounce (1 disables roulette)
	RussianRouletteMinBounces  int                 // Bounces before Russian Roulette can activate
	SampleMode                 material.SampleMode // Diffuse bounce sampling strategy
}

// DefaultSamplingConfig returns the settings used when a scene does not choose its own
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:                      400,
		Height:                     400,
		SamplesPerPixel:            4,
		MaxDepth:                   10,
		RussianRouletteProbability: 0.8,
		RussianRouletteMinBounces:  1,
		SampleMode:                 material.SampleOnUnitSphere,
	}
}

// Background is a vertical gradient returned for rays that escape the scene
type Background struct {
	Top    core.Vec3 // Color straight up
	Bottom core.Vec3 // Color straight down
}

// SkyBackground returns the white to sky-blue gradient
func SkyBackground() Background {
	return Background{
		Top:    core.NewVec3(0.5, 0.7, 1.0),
		Bottom: core.NewVec3(1.0, 1.0, 1.0),
	}
}

// Color blends the gradient by the vertical component of direction
func (b Background) Color(direction core.Vec3) core.Vec3 {
	unitDirection := direction.Normalize()
	t := 0.5 * (unitDirection.Y + 1.0)
	return b.Bottom.Lerp(b.Top, t)
}

// ShadowResult describes what lies between a point and the scene light
type ShadowResult struct {
	Occluded         bool // True unless the light is reached unobstructed
	DielectricHits   int  // Dielectric surfaces crossed before the light
	HitNonDielectric bool // An opaque, non-emissive surface blocks the light
	LightVisible     bool // The light was reached and nothing else was hit
}

// New creates an empty scene with the given camera and sampling settings
func New(cameraConfig geometry.CameraConfig, samplingConfig SamplingConfig) *Scene {
	return &Scene{
		Camera:         geometry.NewCamera(cameraConfig),
		CameraConfig:   cameraConfig,
		Shapes:         make([]geometry.Shape, 0),
		Background:     SkyBackground(),
		SamplingConfig: samplingConfig,
	}
}

// Add appends shapes to the scene
func (s *Scene) Add(shapes ...geometry.Shape) {
	s.Shapes = append(s.Shapes, shapes...)
}

// AddLight adds a shape and tracks it as the light for shadow queries
func (s *Scene) AddLight(shape geometry.Shape) {
	s.Shapes = append(s.Shapes, shape)
	s.Light = shape
}

// AddSphereLight adds a spherical light to the scene
func (s *Scene) AddSphereLight(center core.Vec3, radius float64, emission core.Vec3) *geometry.Sphere {
	sphere := geometry.NewSphere(center, radius, material.NewLightSource(emission))
	s.AddLight(sphere)
	return sphere
}

// SetResolution changes the image size and keeps the camera aspect ratio in step
func (s *Scene) SetResolution(width, height int) {
	s.SamplingConfig.Width = width
	s.SamplingConfig.Height = height
	s.CameraConfig.AspectRatio = float64(width) / float64(height)
	s.Camera.Reset(s.CameraConfig)
}

// Hit returns the closest intersection along ray within [tMin, tMax]
func (s *Scene) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	var closestHit *material.HitRecord
	closestSoFar := tMax

	for _, shape := range s.Shapes {
		if hit, isHit := shape.Hit(ray, tMin, closestSoFar); isHit {
			closestSoFar = hit.T
			closestHit = hit
		}
	}

	return closestHit, closestHit != nil
}

// HitShadow tests whether ray reaches the scene light. Shapes beyond the
// light are ignored; those in front are classified by their material.
func (s *Scene) HitShadow(ray core.Ray, tMin, tMax float64) ShadowResult {
	if s.Light == nil {
		return ShadowResult{Occluded: true}
	}

	lightHit, isHit := s.Light.Hit(ray, tMin, tMax)
	if !isHit {
		return ShadowResult{Occluded: true}
	}

	var result ShadowResult
	for _, shape := range s.Shapes {
		if shape == s.Light {
			continue
		}
		hit, isHit := shape.Hit(ray, tMin, lightHit.T)
		if !isHit {
			continue
		}
		switch hit.Material.Kind {
		case material.Dielectric:
			result.DielectricHits++
		case material.LightSource:
			// other emitters do not block
		default:
			result.HitNonDielectric = true
		}
	}

	result.LightVisible = !result.HitNonDielectric && result.DielectricHits == 0
	result.Occluded = !result.LightVisible
	return result
}
