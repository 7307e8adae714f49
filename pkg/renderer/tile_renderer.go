package renderer

import (
	"context"
	"image"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/integrator"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// TileRenderer renders rectangular regions of the image using an integrator
type TileRenderer struct {
	scene      *scene.Scene
	integrator integrator.Integrator
}

// NewTileRenderer creates a new tile renderer with the given scene and integrator
func NewTileRenderer(s *scene.Scene, integ integrator.Integrator) *TileRenderer {
	return &TileRenderer{
		scene:      s,
		integrator: integ,
	}
}

// RenderTileBounds writes the sample sum of every pixel within bounds into frame,
// a row-major buffer the width of the image. Rendering stops between rows if ctx is cancelled.
func (tr *TileRenderer) RenderTileBounds(ctx context.Context, bounds image.Rectangle, frame []core.Vec3, sampler core.Sampler, spp int) error {
	width := tr.scene.SamplingConfig.Width
	camera := tr.scene.Camera

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			frame[y*width+x] = samplePixel(x, y, camera, tr.scene, tr.integrator, sampler, spp)
		}
	}
	return nil
}
