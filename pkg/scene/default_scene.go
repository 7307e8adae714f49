package scene

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// NewDefaultScene creates a diffuse sphere resting on a huge ground sphere under an open sky
func NewDefaultScene(cameraOverrides ...geometry.CameraConfig) *Scene {
	defaultCameraConfig := geometry.CameraConfig{
		LookFrom:    core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        90.0,
		AspectRatio: 2.0,
	}

	cameraConfig := defaultCameraConfig
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(defaultCameraConfig, cameraOverrides[0])
	}

	samplingConfig := DefaultSamplingConfig()
	samplingConfig.Width = 400
	samplingConfig.Height = 200

	s := New(cameraConfig, samplingConfig)

	red := material.NewDiffuse(core.NewVec3(0.7, 0.3, 0.3))
	ground := material.NewDiffuse(core.NewVec3(0.8, 0.8, 0.0))

	s.Add(
		geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, red),
		geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, ground),
	)

	return s
}
