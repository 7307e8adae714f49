package scene

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// NewCornellScene creates a closed room lit by a large sphere light poking
// through the ceiling, with a metal floor, coloured side walls and mixed objects
func NewCornellScene(cameraOverrides ...geometry.CameraConfig) *Scene {
	defaultCameraConfig := geometry.CameraConfig{
		LookFrom:    core.NewVec3(0, 1, -5),
		LookAt:      core.NewVec3(0, 1, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        60.0,
		AspectRatio: 1.0,
	}

	cameraConfig := defaultCameraConfig
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(defaultCameraConfig, cameraOverrides[0])
	}

	s := New(cameraConfig, DefaultSamplingConfig())

	// Light only reaches the camera through the room
	s.Background = Background{}

	white := material.NewDiffuse(core.NewVec3(0.8, 0.8, 0.8))
	red := material.NewDiffuse(core.NewVec3(0.6, 0.0, 0.0))
	green := material.NewDiffuse(core.NewVec3(0.0, 0.6, 0.0))
	mirror := material.NewMetal(core.NewVec3(0.8, 0.8, 0.8), 0.0)

	const wallSize = 5.0

	s.AddSphereLight(core.NewVec3(0, 5.4, -0.2), 3.0, core.NewVec3(10, 10, 10))

	s.Add(
		// Floor, ceiling, back, left and right walls
		geometry.NewPlane(core.NewVec3(0, -0.5, -1), core.NewVec3(0, 1, 0), wallSize, mirror),
		geometry.NewPlane(core.NewVec3(0, 2.5, -1), core.NewVec3(0, -1, 0), wallSize, white),
		geometry.NewPlane(core.NewVec3(0, 1, 1), core.NewVec3(0, 0, -1), wallSize, white),
		geometry.NewPlane(core.NewVec3(-1.5, 0, -1), core.NewVec3(1, 0, 0), wallSize, red),
		geometry.NewPlane(core.NewVec3(1.5, 0, -1), core.NewVec3(-1, 0, 0), wallSize, green),

		geometry.NewSphere(core.NewVec3(0, -0.2, -1.5), 0.3, material.NewDiffuse(core.NewVec3(0.8, 0.3, 0.3))),
		geometry.NewSphere(core.NewVec3(-0.8, 0.2, -1), 0.7, material.NewMetal(core.NewVec3(0.6, 0.8, 0.8), 0.0)),
		geometry.NewCube(core.NewVec3(0.7, 0.0, -0.5), 1.0, material.NewDiffuse(core.NewVec3(1, 1, 1))),
		geometry.NewSphere(core.NewVec3(0.6, -0.3, -2.0), 0.2, material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.4)),
	)

	return s
}
