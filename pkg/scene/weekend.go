package scene

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// NewWeekendScene creates three spheres (diffuse, hollow glass, fuzzy gold) on a
// ground sphere, seen from above and to the left through a thin lens
func NewWeekendScene(cameraOverrides ...geometry.CameraConfig) *Scene {
	defaultCameraConfig := geometry.CameraConfig{
		LookFrom:    core.NewVec3(-2, 2, 1),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        45.0,
		AspectRatio: 16.0 / 9.0,
		Aperture:    0.1,
	}

	cameraConfig := defaultCameraConfig
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(defaultCameraConfig, cameraOverrides[0])
	}

	samplingConfig := SamplingConfig{
		Width:                      480,
		Height:                     270,
		SamplesPerPixel:            16,
		MaxDepth:                   8,
		RussianRouletteProbability: 1.0, // depth budget only
		SampleMode:                 material.SampleOnUnitSphere,
	}

	s := New(cameraConfig, samplingConfig)

	ground := material.NewDiffuse(core.NewVec3(0.8, 0.8, 0.0))
	center := material.NewDiffuse(core.NewVec3(0.7, 0.3, 0.3))
	glass := material.NewDielectric(1.5)
	gold := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 1.0)

	s.Add(
		geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, ground),
		geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, center),
		geometry.NewSphere(core.NewVec3(-1, 0, -1), 0.5, glass),
		geometry.NewSphere(core.NewVec3(1, 0, -1), 0.5, gold),
		// Inner wall of the hollow glass sphere
		geometry.NewSphere(core.NewVec3(-1, 0, -1), -0.4, glass),
	)

	return s
}
