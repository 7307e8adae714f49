package material

import (
	"github.com/df07/go-pathtracer/pkg/core"
)

// scatterMetal reflects about the normal; rays fuzzed below the surface are absorbed
func (m Material) scatterMetal(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	reflected := Reflect(rayIn.Direction.Normalize(), hit.Normal)

	if m.Fuzz > 0 {
		reflected = reflected.Add(core.RandomInUnitSphere(sampler).Multiply(m.Fuzz))
	}

	scattered := core.NewRay(hit.Point, reflected.Normalize())

	return ScatterResult{
		Scattered:   scattered,
		Attenuation: m.Color,
	}, scattered.Direction.Dot(hit.Normal) > 0
}

// Reflect calculates the reflection of a vector v off a surface with normal n
func Reflect(v, n core.Vec3) core.Vec3 {
	// r = v - 2*dot(v,n)*n
	return v.Subtract(n.Multiply(2 * v.Dot(n)))
}
