package renderer

import (
	"image"

	"github.com/df07/go-pathtracer/pkg/core"
)

// Accumulator holds the running per-pixel radiance sum across progressive frames.
// Each frame adds the raw sum of samplesPerPixel samples to every pixel.
type Accumulator struct {
	width, height   int
	samplesPerPixel int
	sum             []core.Vec3
	frames          int
}

// NewAccumulator creates an empty accumulator for a width x height image
func NewAccumulator(width, height, samplesPerPixel int) *Accumulator {
	return &Accumulator{
		width:           width,
		height:          height,
		samplesPerPixel: max(1, samplesPerPixel),
		sum:             make([]core.Vec3, width*height),
	}
}

// Width returns the image width in pixels
func (a *Accumulator) Width() int { return a.width }

// Height returns the image height in pixels
func (a *Accumulator) Height() int { return a.height }

// Add adds a frame's sample sum to pixel (x, y). Out-of-range pixels are ignored.
func (a *Accumulator) Add(x, y int, c core.Vec3) {
	if x < 0 || y < 0 || x >= a.width || y >= a.height {
		return
	}
	a.sum[y*a.width+x] = a.sum[y*a.width+x].Add(c)
}

// EndFrame marks one complete frame as accumulated
func (a *Accumulator) EndFrame() {
	a.frames++
}

// Frames returns the number of frames accumulated since the last Invalidate
func (a *Accumulator) Frames() int {
	return a.frames
}

// Resolve returns the displayed value of pixel (x, y): sqrt(sum / (spp * frames))
func (a *Accumulator) Resolve(x, y int) core.Vec3 {
	if a.frames == 0 || x < 0 || y < 0 || x >= a.width || y >= a.height {
		return core.Vec3{}
	}
	scale := 1.0 / float64(a.samplesPerPixel*a.frames)
	return a.sum[y*a.width+x].Multiply(scale).Sqrt()
}

// Invalidate clears all accumulated radiance and resets the frame counter
func (a *Accumulator) Invalidate() {
	clear(a.sum)
	a.frames = 0
}

// Image converts the resolved accumulator into an 8-bit RGBA image
func (a *Accumulator) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, a.width, a.height))
	for y := 0; y < a.height; y++ {
		for x := 0; x < a.width; x++ {
			img.SetRGBA(x, y, vec3ToColor(a.Resolve(x, y)))
		}
	}
	return img
}

// MeanLuminance returns the average luminance of the resolved image
func (a *Accumulator) MeanLuminance() float64 {
	if a.width == 0 || a.height == 0 {
		return 0
	}
	total := 0.0
	for y := 0; y < a.height; y++ {
		for x := 0; x < a.width; x++ {
			total += a.Resolve(x, y).Luminance()
		}
	}
	return total / float64(a.width*a.height)
}
