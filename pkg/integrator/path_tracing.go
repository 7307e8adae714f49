package integrator

import (
	"fmt"
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// shadowEpsilon keeps continuation rays from re-hitting the surface they leave
const shadowEpsilon = 0.001

// Termination records why a path stopped
type Termination int

const (
	Miss          Termination = iota // Escaped to the background
	Light                            // Hit a light source
	Absorbed                         // Material did not scatter
	DepthExceeded                    // Ran out of bounces
	RRKilled                         // Stopped by Russian roulette
)

func (t Termination) String() string {
	switch t {
	case Miss:
		return "miss"
	case Light:
		return "light"
	case Absorbed:
		return "absorbed"
	case DepthExceeded:
		return "depth-exceeded"
	case RRKilled:
		return "rr-killed"
	}
	return fmt.Sprintf("Termination(%d)", int(t))
}

// PathTracingIntegrator implements unidirectional path tracing
type PathTracingIntegrator struct {
	config scene.SamplingConfig
}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator(config scene.SamplingConfig) *PathTracingIntegrator {
	return &PathTracingIntegrator{
		config: config,
	}
}

// RayColor computes the color for a single ray using unidirectional path tracing
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, s *scene.Scene, sampler core.Sampler) core.Vec3 {
	color, _ := pt.Trace(ray, s, sampler)
	return color
}

// Trace follows one path through the scene and reports how it ended.
// Only light sources and the background contribute radiance.
func (pt *PathTracingIntegrator) Trace(ray core.Ray, s *scene.Scene, sampler core.Sampler) (core.Vec3, Termination) {
	throughput := core.NewVec3(1, 1, 1)
	current := ray

	for depth := 0; depth < pt.config.MaxDepth; depth++ {
		rrApplied, survived := pt.applyRussianRoulette(depth, sampler)
		if !survived {
			return core.Vec3{}, RRKilled
		}
		if rrApplied {
			// Survivors carry the weight of the killed paths, including on terminal hits
			throughput = throughput.Multiply(1.0 / pt.config.RussianRouletteProbability)
		}

		hit, isHit := s.Hit(current, shadowEpsilon, math.Inf(1))
		if !isHit {
			return throughput.MultiplyVec(s.Background.Color(current.Direction)), Miss
		}

		if hit.Material.IsEmissive() {
			return throughput.MultiplyVec(hit.Color), Light
		}

		scatter, didScatter := hit.Material.ScatterWithMode(current, *hit, sampler, pt.config.SampleMode)
		if !didScatter {
			return core.Vec3{}, Absorbed
		}

		throughput = throughput.MultiplyVec(scatter.Attenuation)
		current = scatter.Scattered
	}

	return core.Vec3{}, DepthExceeded
}

// applyRussianRoulette draws the survival test for this bounce.
// Returns whether the test was applied and whether the path survived it.
func (pt *PathTracingIntegrator) applyRussianRoulette(depth int, sampler core.Sampler) (bool, bool) {
	p := pt.config.RussianRouletteProbability
	if depth < pt.config.RussianRouletteMinBounces || p <= 0 || p >= 1 {
		return false, true
	}
	return true, sampler.Get1D() <= p
}
