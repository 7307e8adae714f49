package core

import (
	"math/rand"
)

// MaxRejectionTries bounds the rejection-sampling loops so they always terminate
const MaxRejectionTries = 100

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
	Get3D() Vec3
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler with its own generator seeded with seed
func NewSeededSampler(seed int64) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewSource(seed)))
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// Get3D returns three random float64 values in [0, 1)
func (r *RandomSampler) Get3D() Vec3 {
	return NewVec3(r.random.Float64(), r.random.Float64(), r.random.Float64())
}

// Uniform maps a [0,1) sample onto [minVal, maxVal)
func Uniform(sampler Sampler, minVal, maxVal float64) float64 {
	return minVal + (maxVal-minVal)*sampler.Get1D()
}

// RandomInUnitSphere rejection-samples a point strictly inside the unit sphere.
// After MaxRejectionTries misses the last candidate is pulled just inside the boundary.
func RandomInUnitSphere(sampler Sampler) Vec3 {
	var p Vec3
	for range MaxRejectionTries {
		u := sampler.Get3D()
		p = NewVec3(2*u.X-1, 2*u.Y-1, 2*u.Z-1)
		if p.LengthSquared() < 1 {
			return p
		}
	}
	return pullInside(p)
}

// RandomUnitVector returns a uniformly distributed direction on the unit sphere
func RandomUnitVector(sampler Sampler) Vec3 {
	return RandomInUnitSphere(sampler).Normalize()
}

// RandomInUnitDisk rejection-samples a point inside the unit disk on the z = 0 plane
func RandomInUnitDisk(sampler Sampler) Vec3 {
	var p Vec3
	for range MaxRejectionTries {
		u := sampler.Get2D()
		p = NewVec3(2*u.X-1, 2*u.Y-1, 0)
		if p.LengthSquared() < 1 {
			return p
		}
	}
	return pullInside(p)
}

// pullInside scales a rejected candidate onto a radius just below one.
// A zero candidate cannot be rejected, so length is always positive here.
func pullInside(p Vec3) Vec3 {
	return p.Multiply((1 - 1e-9) / p.Length())
}
