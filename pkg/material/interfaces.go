package material

import (
	"github.com/df07/go-pathtracer/pkg/core"
)

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Scattered   core.Ray  // The continuation ray, with unit-length direction
	Attenuation core.Vec3 // Color attenuation applied to path throughput
}

// HitRecord contains information about a ray-object intersection.
// Records are built fresh per query and not mutated after they are returned.
type HitRecord struct {
	Point     core.Vec3 // Point of intersection
	Normal    core.Vec3 // Unit surface normal, always opposing the incoming ray
	T         float64   // Parameter t along the ray
	FrontFace bool      // Whether the ray struck the outward-facing side
	Material  Material  // Material of the hit primitive
	Color     core.Vec3 // Albedo or emission carried alongside the material
}

// SetFaceNormal sets the normal vector and determines front/back face
func (h *HitRecord) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}
