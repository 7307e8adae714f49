package renderer

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/integrator"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// RenderPixel returns the average radiance of spp jittered samples through pixel (x, y).
// Row 0 is the top of the image; the camera's t axis points up.
func RenderPixel(x, y int, camera *geometry.Camera, s *scene.Scene, integ integrator.Integrator, sampler core.Sampler, spp int) core.Vec3 {
	if spp <= 0 {
		return core.Vec3{}
	}
	return samplePixel(x, y, camera, s, integ, sampler, spp).Multiply(1.0 / float64(spp))
}

// samplePixel returns the un-normalized sum of spp samples for pixel (x, y)
func samplePixel(x, y int, camera *geometry.Camera, s *scene.Scene, integ integrator.Integrator, sampler core.Sampler, spp int) core.Vec3 {
	width := float64(s.SamplingConfig.Width)
	height := float64(s.SamplingConfig.Height)
	row := float64(s.SamplingConfig.Height - 1 - y)

	var sum core.Vec3
	for range spp {
		u := (float64(x) + sampler.Get1D()) / width
		v := (row + sampler.Get1D()) / height
		ray := camera.GetRay(u, v, sampler)
		sum = sum.Add(integ.RayColor(ray, s, sampler))
	}
	return sum
}

// vec3ToColor converts a gamma-corrected color to RGBA, clamping out-of-range components
func vec3ToColor(c core.Vec3) color.RGBA {
	if !c.IsFinite() {
		c = core.Vec3{}
	}
	r, g, b := colorful.Color{R: c.X, G: c.Y, B: c.Z}.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
