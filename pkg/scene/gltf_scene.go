package scene

import (
	"fmt"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/loaders"
)

// NewGLTFScene creates a scene from a glTF file
func NewGLTFScene(filepath string, cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	gltfScene, err := loaders.LoadGLTF(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to load glTF file: %w", err)
	}
	return FromGLTF(gltfScene, cameraOverrides...), nil
}

// FromGLTF builds a scene from parsed glTF primitives
func FromGLTF(gltfScene *loaders.GLTFScene, cameraOverrides ...geometry.CameraConfig) *Scene {
	cameraConfig := geometry.CameraConfig{
		LookFrom:    core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        60.0,
		AspectRatio: 1.0,
	}
	if cam := gltfScene.Camera; cam != nil {
		cameraConfig.LookFrom = cam.LookFrom
		cameraConfig.LookAt = cam.LookAt
		cameraConfig.Up = cam.Up
		cameraConfig.VFov = cam.VFov
		if cam.AspectRatio > 0 {
			cameraConfig.AspectRatio = cam.AspectRatio
		}
	}
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(cameraConfig, cameraOverrides[0])
	}

	samplingConfig := DefaultSamplingConfig()
	samplingConfig.Height = max(1, int(float64(samplingConfig.Width)/cameraConfig.AspectRatio))

	s := New(cameraConfig, samplingConfig)

	for i, gs := range gltfScene.Shapes {
		shape := convertShape(gs)
		if i == gltfScene.Light {
			s.AddLight(shape)
		} else {
			s.Add(shape)
		}
	}

	// A lit glTF scene is treated as an enclosed room
	if gltfScene.Light >= 0 {
		s.Background = Background{}
	}

	return s
}

// convertShape converts a parsed primitive to its geometry
func convertShape(gs loaders.GLTFShape) geometry.Shape {
	switch gs.Kind {
	case loaders.ShapeCube:
		return geometry.NewCube(gs.Center, 2*gs.Size, gs.Material)
	case loaders.ShapePlane:
		halfHeight := gs.HalfHeight
		if halfHeight <= 0 {
			halfHeight = gs.Size
		}
		return geometry.NewRectPlane(gs.Center, gs.Normal, gs.Size, halfHeight, gs.Material)
	default:
		return geometry.NewSphere(gs.Center, gs.Size, gs.Material)
	}
}
