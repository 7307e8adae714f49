package material

import (
	"github.com/df07/go-pathtracer/pkg/core"
)

// scatterDiffuse bounces around the normal; normal + unit vector is cosine distributed
func (m Material) scatterDiffuse(hit HitRecord, sampler core.Sampler, mode SampleMode) ScatterResult {
	var offset core.Vec3
	if mode == SampleInUnitSphere {
		offset = core.RandomInUnitSphere(sampler)
	} else {
		offset = core.RandomUnitVector(sampler)
	}

	direction := hit.Normal.Add(offset)
	// Catch degenerate scatter direction
	if direction.NearZero() {
		direction = hit.Normal
	}

	return ScatterResult{
		Scattered:   core.NewRay(hit.Point, direction.Normalize()),
		Attenuation: m.Color,
	}
}
