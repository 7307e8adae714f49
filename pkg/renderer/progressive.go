package renderer

import (
	"context"
	"fmt"
	"image"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/integrator"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// ProgressiveConfig contains configuration for progressive rendering
type ProgressiveConfig struct {
	TileSize   int   // Size of each tile (64x64 recommended)
	MaxPasses  int   // Number of passes RenderProgressive runs when no count is given
	NumWorkers int   // Number of parallel workers (0 = use CPU count)
	Seed       int64 // Base seed for the per-tile samplers
}

// DefaultProgressiveConfig returns sensible default values
func DefaultProgressiveConfig() ProgressiveConfig {
	return ProgressiveConfig{
		TileSize:   64,
		MaxPasses:  16,
		NumWorkers: 0, // Auto-detect CPU count
		Seed:       42,
	}
}

// ProgressiveRaytracer renders repeated full-image frames into an accumulator.
// RenderPass, MoveCamera and ResetCamera are serialized so the camera never changes mid-pass.
type ProgressiveRaytracer struct {
	mu          sync.Mutex
	scene       *scene.Scene
	config      ProgressiveConfig
	tiles       []*Tile
	renderer    *TileRenderer
	accumulator *Accumulator
	frame       []core.Vec3 // Scratch buffer for the pass in flight
	passCount   int         // Passes attempted since creation, used for seeding
	logger      core.Logger
}

// NewProgressiveRaytracer creates a new progressive raytracer for the scene's resolution
func NewProgressiveRaytracer(s *scene.Scene, config ProgressiveConfig, integ integrator.Integrator, logger core.Logger) *ProgressiveRaytracer {
	if config.TileSize <= 0 {
		config.TileSize = DefaultProgressiveConfig().TileSize
	}
	if config.NumWorkers <= 0 {
		config.NumWorkers = runtime.NumCPU()
	}
	if logger == nil {
		logger = core.NewDefaultLogger()
	}

	width, height := s.SamplingConfig.Width, s.SamplingConfig.Height
	return &ProgressiveRaytracer{
		scene:       s,
		config:      config,
		tiles:       NewTileGrid(width, height, config.TileSize),
		renderer:    NewTileRenderer(s, integ),
		accumulator: NewAccumulator(width, height, s.SamplingConfig.SamplesPerPixel),
		frame:       make([]core.Vec3, width*height),
		logger:      logger,
	}
}

// Frames returns the number of frames accumulated since the last camera change
func (pr *ProgressiveRaytracer) Frames() int {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return pr.accumulator.Frames()
}

// Image returns the current resolved image
func (pr *ProgressiveRaytracer) Image() *image.RGBA {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return pr.accumulator.Image()
}

// Camera returns the configuration of the scene camera
func (pr *ProgressiveRaytracer) Camera() geometry.CameraConfig {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return pr.scene.Camera.Config()
}

// RenderPass renders one frame of every tile in parallel and folds it into the accumulator.
// If ctx is cancelled the partial frame is discarded and the frame counter is unchanged.
func (pr *ProgressiveRaytracer) RenderPass(ctx context.Context) (*image.RGBA, RenderStats, error) {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	startTime := time.Now()
	pass := pr.passCount
	pr.passCount++
	spp := pr.scene.SamplingConfig.SamplesPerPixel

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pr.config.NumWorkers)
	for _, tile := range pr.tiles {
		g.Go(func() error {
			sampler := core.NewSeededSampler(tileSeed(pr.config.Seed, tile.ID, pass))
			return pr.renderer.RenderTileBounds(gctx, tile.Bounds, pr.frame, sampler, spp)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, RenderStats{}, fmt.Errorf("render pass %d: %w", pr.accumulator.Frames()+1, err)
	}

	width := pr.accumulator.Width()
	for y := 0; y < pr.accumulator.Height(); y++ {
		for x := 0; x < width; x++ {
			pr.accumulator.Add(x, y, pr.frame[y*width+x])
		}
	}
	pr.accumulator.EndFrame()
	for _, tile := range pr.tiles {
		tile.PassesCompleted++
	}

	frames := pr.accumulator.Frames()
	return pr.accumulator.Image(), newRenderStats(pr.accumulator, frames, time.Since(startTime)), nil
}

// MoveCamera repositions the camera and discards the accumulated frames
func (pr *ProgressiveRaytracer) MoveCamera(lookFrom core.Vec3) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.scene.Camera.MoveTo(lookFrom)
	pr.scene.CameraConfig = pr.scene.Camera.Config()
	pr.invalidate()
}

// ResetCamera replaces the camera configuration and discards the accumulated frames
func (pr *ProgressiveRaytracer) ResetCamera(config geometry.CameraConfig) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.scene.Camera.Reset(config)
	pr.scene.CameraConfig = pr.scene.Camera.Config()
	pr.invalidate()
}

func (pr *ProgressiveRaytracer) invalidate() {
	pr.accumulator.Invalidate()
	for _, tile := range pr.tiles {
		tile.PassesCompleted = 0
	}
}

// PassResult contains the result of a single pass
type PassResult struct {
	PassNumber int
	Image      *image.RGBA
	Stats      RenderStats
	IsLast     bool
}

// RenderProgressive runs passes in the background and streams each completed one.
// A passes value <= 0 uses config.MaxPasses. Both channels are closed when rendering stops.
func (pr *ProgressiveRaytracer) RenderProgressive(ctx context.Context, passes int) (<-chan PassResult, <-chan error) {
	if passes <= 0 {
		passes = pr.config.MaxPasses
	}
	passChan := make(chan PassResult, 1)
	errChan := make(chan error, 1)

	go func() {
		defer close(passChan)
		defer close(errChan)

		pr.logger.Printf("Starting progressive rendering with %d passes (using %d workers)...\n", passes, pr.config.NumWorkers)

		for pass := 1; pass <= passes; pass++ {
			// Check if the caller went away before starting this pass
			select {
			case <-ctx.Done():
				pr.logger.Printf("Rendering cancelled before pass %d\n", pass)
				errChan <- ctx.Err()
				return
			default:
			}

			img, stats, err := pr.RenderPass(ctx)
			if err != nil {
				errChan <- err
				return
			}

			pr.logger.Printf("Pass %d completed in %v (%d frames, %.0f samples/pixel)\n",
				pass, stats.Duration, stats.Frames, stats.AverageSamples)

			result := PassResult{
				PassNumber: pass,
				Image:      img,
				Stats:      stats,
				IsLast:     pass == passes,
			}

			select {
			case passChan <- result:
			case <-ctx.Done():
				return
			}
		}
	}()

	return passChan, errChan
}

// tileSeed derives a sampler seed from the base seed, tile and pass using splitmix64 mixing
func tileSeed(seed int64, tileID, pass int) int64 {
	h := uint64(seed)
	h ^= uint64(tileID+1) * 0x9E3779B97F4A7C15
	h ^= uint64(pass+1) * 0xC2B2AE3D27D4EB4F
	h ^= h >> 30
	h *= 0xBF58476D1CE4E5B9
	h ^= h >> 27
	h *= 0x94D049BB133111EB
	h ^= h >> 31
	return int64(h &^ (1 << 63))
}

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID              int             // Unique tile identifier
	Bounds          image.Rectangle // Pixel bounds (x0,y0,x1,y1)
	PassesCompleted int             // Passes completed since the last camera change
}

// NewTile creates a new tile with the specified bounds
func NewTile(id int, bounds image.Rectangle) *Tile {
	return &Tile{
		ID:     id,
		Bounds: bounds,
	}
}

// NewTileGrid creates a grid of tiles covering the entire image
func NewTileGrid(width, height, tileSize int) []*Tile {
	var tiles []*Tile
	tileID := 0

	// Calculate number of tiles in each dimension
	tilesX := (width + tileSize - 1) / tileSize // Ceiling division
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width) // Don't exceed image bounds
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, NewTile(tileID, image.Rect(x0, y0, x1, y1)))
			tileID++
		}
	}

	return tiles
}
