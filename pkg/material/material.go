package material

import (
	"fmt"

	"github.com/df07/go-pathtracer/pkg/core"
)

// Kind tags the closed set of surface behaviours
type Kind int

const (
	LightSource Kind = iota // Emits Color and terminates the path
	Diffuse                 // Lambertian scattering around the normal
	Metal                   // Mirror reflection, optionally fuzzed
	Dielectric              // Refracts or reflects by Schlick's approximation
)

func (k Kind) String() string {
	switch k {
	case LightSource:
		return "light"
	case Diffuse:
		return "diffuse"
	case Metal:
		return "metal"
	case Dielectric:
		return "dielectric"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// SampleMode selects how diffuse bounce directions are perturbed
type SampleMode int

const (
	SampleOnUnitSphere SampleMode = iota // normal + random unit vector
	SampleInUnitSphere                   // normal + random point inside the unit sphere
)

// Material describes how a surface scatters an incoming ray.
// Only the fields relevant to Kind are meaningful.
type Material struct {
	Kind            Kind
	Color           core.Vec3 // Albedo for Diffuse/Metal, emission for LightSource
	Fuzz            float64   // Metal only, in [0, 1]
	RefractiveIndex float64   // Dielectric only
}

// NewLightSource creates a light-emitting material
func NewLightSource(emission core.Vec3) Material {
	return Material{Kind: LightSource, Color: emission}
}

// NewDiffuse creates a lambertian material
func NewDiffuse(albedo core.Vec3) Material {
	return Material{Kind: Diffuse, Color: albedo}
}

// NewMetal creates a metal material; fuzz is clamped into [0, 1]
func NewMetal(albedo core.Vec3, fuzz float64) Material {
	return Material{Kind: Metal, Color: albedo, Fuzz: max(0, min(1, fuzz))}
}

// NewDielectric creates a clear refractive material such as glass (1.5)
func NewDielectric(refractiveIndex float64) Material {
	return Material{Kind: Dielectric, Color: core.NewVec3(1, 1, 1), RefractiveIndex: refractiveIndex}
}

// IsEmissive reports whether hitting this material ends the path with its emission
func (m Material) IsEmissive() bool {
	return m.Kind == LightSource
}

// Scatter samples a continuation ray using the default diffuse sample mode
func (m Material) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	return m.ScatterWithMode(rayIn, hit, sampler, SampleOnUnitSphere)
}

// ScatterWithMode samples a continuation ray for the incoming ray at hit.
// The bool is false when the ray is absorbed or the material does not scatter.
func (m Material) ScatterWithMode(rayIn core.Ray, hit HitRecord, sampler core.Sampler, mode SampleMode) (ScatterResult, bool) {
	switch m.Kind {
	case LightSource:
		return ScatterResult{}, false
	case Diffuse:
		return m.scatterDiffuse(hit, sampler, mode), true
	case Metal:
		return m.scatterMetal(rayIn, hit, sampler)
	case Dielectric:
		return m.scatterDielectric(rayIn, hit, sampler), true
	}
	panic(fmt.Sprintf("material: unknown kind %d", int(m.Kind)))
}
