package material

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// scatterDielectric chooses between reflection and refraction; glass never tints
func (m Material) scatterDielectric(rayIn core.Ray, hit HitRecord, sampler core.Sampler) ScatterResult {
	var refractionRatio float64
	if hit.FrontFace {
		refractionRatio = 1.0 / m.RefractiveIndex // entering the material
	} else {
		refractionRatio = m.RefractiveIndex // leaving the material
	}

	unitDirection := rayIn.Direction.Normalize()

	cosTheta := math.Min(unitDirection.Negate().Dot(hit.Normal), 1.0)
	sinTheta := math.Sqrt(math.Max(0, 1.0-cosTheta*cosTheta))

	var direction core.Vec3
	if CannotRefract(refractionRatio, sinTheta) || Reflectance(cosTheta, refractionRatio) > sampler.Get1D() {
		direction = Reflect(unitDirection, hit.Normal)
	} else {
		direction = Refract(unitDirection, hit.Normal, refractionRatio)
	}

	return ScatterResult{
		Scattered:   core.NewRay(hit.Point, direction.Normalize()),
		Attenuation: core.NewVec3(1, 1, 1),
	}
}

// CannotRefract reports total internal reflection
func CannotRefract(refractionRatio, sinTheta float64) bool {
	return refractionRatio*sinTheta > 1.0
}

// Refract bends a unit vector through a surface using Snell's law
func Refract(uv, n core.Vec3, etaiOverEtat float64) core.Vec3 {
	cosTheta := math.Min(uv.Negate().Dot(n), 1.0)
	rOutPerp := uv.Add(n.Multiply(cosTheta)).Multiply(etaiOverEtat)
	rOutParallel := n.Multiply(-math.Sqrt(math.Abs(1.0 - rOutPerp.LengthSquared())))
	return rOutPerp.Add(rOutParallel)
}

// Reflectance calculates the Fresnel reflectance using Schlick's approximation
func Reflectance(cosine, refractionRatio float64) float64 {
	r0 := (1 - refractionRatio) / (1 + refractionRatio)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}
