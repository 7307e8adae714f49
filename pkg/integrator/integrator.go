package integrator

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor returns the radiance carried back along ray
	RayColor(ray core.Ray, scene *scene.Scene, sampler core.Sampler) core.Vec3
}
