// Package viewer shows a progressive render in the terminal and lets the
// camera be moved with the keyboard.
//
// Controls:
//
//	W/S     - Move the camera forward/back along Z
//	A/D     - Move the camera along X
//	R       - Return the camera to its starting position
//	Esc     - Quit (Ctrl+C also works)
package viewer

import (
	"context"
	"errors"
	"fmt"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"golang.org/x/sync/errgroup"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/integrator"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
)

var errQuit = errors.New("viewer quit")

// Config controls the terminal viewer
type Config struct {
	FPS         int                        // Spring animation rate
	MaxFrames   int                        // Frames to accumulate before idling (0 = never idle)
	Progressive renderer.ProgressiveConfig // Tile and worker settings for each pass
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		FPS:         30,
		MaxFrames:   0,
		Progressive: renderer.DefaultProgressiveConfig(),
	}
}

// keyMove maps a key to a look-from offset
type keyMove struct {
	keys   []string
	dx, dz float64
}

var keyMoves = []keyMove{
	{keys: []string{"w", "up"}, dz: MoveStep},
	{keys: []string{"s", "down"}, dz: -MoveStep},
	{keys: []string{"a", "left"}, dx: MoveStep},
	{keys: []string{"d", "right"}, dx: -MoveStep},
}

// moveForKey returns the look-from offset bound to a key press
func moveForKey(ev uv.KeyPressEvent) (dx, dz float64, ok bool) {
	for _, m := range keyMoves {
		if ev.MatchString(m.keys...) {
			return m.dx, m.dz, true
		}
	}
	return 0, 0, false
}

// Viewer renders a scene progressively into the terminal
type Viewer struct {
	scene      *scene.Scene
	config     Config
	logger     core.Logger
	home       core.Vec3
	motion     *CameraMotion
	raytracer  *renderer.ProgressiveRaytracer
	lastStats  renderer.RenderStats
	sceneLabel string
}

// New creates a viewer for the scene. The scene resolution is replaced to fit the terminal.
func New(s *scene.Scene, label string, config Config, logger core.Logger) *Viewer {
	if config.FPS <= 0 {
		config.FPS = DefaultConfig().FPS
	}
	if logger == nil {
		logger = core.NewDefaultLogger()
	}
	home := s.CameraConfig.LookFrom
	return &Viewer{
		scene:      s,
		config:     config,
		logger:     logger,
		home:       home,
		motion:     NewCameraMotion(config.FPS, home),
		sceneLabel: label,
	}
}

// resize rebuilds the raytracer for a terminal of cols x rows cells
func (v *Viewer) resize(cols, rows int) {
	width, height := ImageSize(cols, rows)
	v.scene.SetResolution(width, height)
	v.scene.Camera.MoveTo(v.motion.Position())
	v.scene.CameraConfig = v.scene.Camera.Config()

	integ := integrator.NewPathTracingIntegrator(v.scene.SamplingConfig)
	v.raytracer = renderer.NewProgressiveRaytracer(v.scene, v.config.Progressive, integ, v.logger)
}

// step applies camera motion and renders one pass unless the frame budget is spent.
// It reports whether a new image is available.
func (v *Viewer) step(ctx context.Context) (bool, error) {
	if pos, moved := v.motion.Update(); moved {
		v.raytracer.MoveCamera(pos)
	}

	if v.config.MaxFrames > 0 && v.raytracer.Frames() >= v.config.MaxFrames {
		return false, nil
	}

	_, stats, err := v.raytracer.RenderPass(ctx)
	if err != nil {
		return false, err
	}
	v.lastStats = stats
	return true, nil
}

// status returns the text shown under the image
func (v *Viewer) status() string {
	pos := v.motion.Position()
	return fmt.Sprintf(" %s  frame %d  %.0f spp  %v/pass  eye (%.1f, %.1f, %.1f)  WASD move  R reset  Esc quit",
		v.sceneLabel, v.lastStats.Frames, v.lastStats.AverageSamples,
		v.lastStats.Duration.Round(time.Millisecond), pos.X, pos.Y, pos.Z)
}

// Run takes over the terminal until ctx is cancelled or the user quits
func (v *Viewer) Run(ctx context.Context) error {
	term := uv.DefaultTerminal()

	cols, rows, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(cols, rows)
	v.resize(cols, rows)

	defer func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}()

	moves := make(chan [2]float64, 16)
	resets := make(chan struct{}, 1)
	sizes := make(chan uv.WindowSizeEvent, 1)

	g, gctx := errgroup.WithContext(ctx)

	// Event handler
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case ev := <-term.Events():
				switch ev := ev.(type) {
				case uv.WindowSizeEvent:
					select {
					case <-sizes:
					default:
					}
					sizes <- ev

				case uv.KeyPressEvent:
					switch {
					case ev.MatchString("escape", "ctrl+c"):
						return errQuit
					case ev.MatchString("r"):
						select {
						case resets <- struct{}{}:
						default:
						}
					default:
						if dx, dz, ok := moveForKey(ev); ok {
							select {
							case moves <- [2]float64{dx, dz}:
							default:
								// Queue full, drop the key repeat
							}
						}
					}
				}
			}
		}
	})

	// Render loop
	g.Go(func() error {
		idle := time.Second / time.Duration(v.config.FPS)
		for {
			select {
			case <-gctx.Done():
				return nil
			case ev := <-sizes:
				term.Erase()
				term.Resize(ev.Width, ev.Height)
				v.resize(ev.Width, ev.Height)
			case <-resets:
				home := v.home
				v.motion.Nudge(home.X-v.motion.X.Target, home.Z-v.motion.Z.Target)
			default:
			}

		drain:
			for {
				select {
				case m := <-moves:
					v.motion.Nudge(m[0], m[1])
				default:
					break drain
				}
			}

			rendered, err := v.step(gctx)
			if err != nil {
				if gctx.Err() != nil {
					return nil
				}
				return err
			}

			term.Draw(&ImageView{Image: v.raytracer.Image(), Status: v.status()})
			if err := term.Display(); err != nil {
				return fmt.Errorf("display: %w", err)
			}

			if !rendered {
				select {
				case <-gctx.Done():
					return nil
				case <-time.After(idle):
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errQuit) {
		return err
	}
	return nil
}
