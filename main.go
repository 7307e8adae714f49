package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/integrator"
	"github.com/df07/go-pathtracer/pkg/loaders"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
	"github.com/df07/go-pathtracer/pkg/viewer"
	"github.com/df07/go-pathtracer/web/server"
)

// options holds the flag values shared by every command
type options struct {
	scene    string
	sceneDir string
	width    int
	height   int
	spp      int
	maxDepth int
	rr       float64
	seed     int64
	workers  int
	inSphere bool

	frames int
	output string
	fps    int
	port   int
}

func main() {
	if err := fang.Execute(context.Background(), newRootCmd(core.NewDefaultLogger()),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM)); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree
func newRootCmd(logger core.Logger) *cobra.Command {
	o := &options{}
	var renderFrames, viewFrames int

	root := &cobra.Command{
		Use:   "pathtracer",
		Short: "Progressive Monte Carlo path tracer",
		Long: "Renders spheres, bounded planes and cubes with light, diffuse, metal and glass\n" +
			"materials. Frames accumulate progressively until the camera moves.",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&o.scene, "scene", "default", "Built-in scene name, gltf:<name>, or a .gltf/.glb path")
	flags.StringVar(&o.sceneDir, "scene-dir", "scenes", "Directory searched for glTF scenes")
	flags.IntVar(&o.width, "width", 0, "Image width (0 keeps the scene default)")
	flags.IntVar(&o.height, "height", 0, "Image height (0 keeps the scene default)")
	flags.IntVar(&o.spp, "spp", 0, "Samples per pixel per frame (0 keeps the scene default)")
	flags.IntVar(&o.maxDepth, "max-depth", 0, "Maximum bounce depth (0 keeps the scene default)")
	flags.Float64Var(&o.rr, "rr", -1, "Russian roulette survival probability in (0, 1], 1 disables (negative keeps the scene default)")
	flags.Int64Var(&o.seed, "seed", 42, "Base random seed")
	flags.IntVar(&o.workers, "workers", 0, "Parallel tile workers (0 = CPU count)")
	flags.BoolVar(&o.inSphere, "in-sphere", false, "Sample diffuse bounces inside the unit sphere instead of on it")

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Render frames and save a PNG",
		RunE: func(cmd *cobra.Command, args []string) error {
			o.frames = renderFrames
			path, err := runRender(cmd.Context(), o, logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Render saved as %s\n", path)
			return nil
		},
	}
	renderCmd.Flags().IntVar(&renderFrames, "frames", 16, "Progressive frames to accumulate")
	renderCmd.Flags().StringVar(&o.output, "output", "output", "Output directory root")

	viewCmd := &cobra.Command{
		Use:   "view",
		Short: "Interactive terminal viewer (WASD moves the camera, Esc quits)",
		RunE: func(cmd *cobra.Command, args []string) error {
			o.frames = viewFrames
			return runView(cmd.Context(), o, logger)
		},
	}
	viewCmd.Flags().IntVar(&viewFrames, "frames", 0, "Frames to accumulate before idling (0 = keep refining)")
	viewCmd.Flags().IntVar(&o.fps, "fps", 30, "Camera animation rate")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web viewer",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.Printf("Progressive path tracer web server\n")
			logger.Printf("Visit http://localhost:%d to start rendering\n", o.port)
			return server.NewServer(o.port, o.sceneDir, logger).Start(cmd.Context())
		},
	}
	serveCmd.Flags().IntVar(&o.port, "port", 8080, "Port to serve on")

	scenesCmd := &cobra.Command{
		Use:   "scenes",
		Short: "List available scenes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listScenes(cmd, o.sceneDir)
		},
	}

	root.AddCommand(renderCmd, viewCmd, serveCmd, scenesCmd)
	return root
}

// loadScene resolves the --scene flag and applies the sampling overrides
func (o *options) loadScene() (*scene.Scene, error) {
	s, err := scene.Load(o.scene, o.sceneDir)
	if err != nil {
		return nil, err
	}

	if o.width > 0 || o.height > 0 {
		width, height := o.width, o.height
		aspect := float64(s.SamplingConfig.Width) / float64(s.SamplingConfig.Height)
		if width <= 0 {
			width = max(1, int(float64(height)*aspect))
		}
		if height <= 0 {
			height = max(1, int(float64(width)/aspect))
		}
		s.SetResolution(width, height)
	}
	if o.spp > 0 {
		s.SamplingConfig.SamplesPerPixel = o.spp
	}
	if o.maxDepth > 0 {
		s.SamplingConfig.MaxDepth = o.maxDepth
	}
	if o.rr >= 0 {
		if o.rr == 0 || o.rr > 1 {
			return nil, fmt.Errorf("--rr must be in (0, 1], got %g", o.rr)
		}
		s.SamplingConfig.RussianRouletteProbability = o.rr
	}
	if o.inSphere {
		s.SamplingConfig.SampleMode = material.SampleInUnitSphere
	}
	return s, nil
}

// progressiveConfig returns the tile settings selected by the flags
func (o *options) progressiveConfig() renderer.ProgressiveConfig {
	config := renderer.DefaultProgressiveConfig()
	config.NumWorkers = o.workers
	config.Seed = o.seed
	if o.frames > 0 {
		config.MaxPasses = o.frames
	}
	return config
}

// runRender accumulates the requested frames and writes the final image
func runRender(ctx context.Context, o *options, logger core.Logger) (string, error) {
	s, err := o.loadScene()
	if err != nil {
		return "", err
	}

	logger.Printf("Rendering %s at %dx%d, %d samples per frame, %d frames\n", o.scene,
		s.SamplingConfig.Width, s.SamplingConfig.Height, s.SamplingConfig.SamplesPerPixel, o.frames)

	integ := integrator.NewPathTracingIntegrator(s.SamplingConfig)
	pr := renderer.NewProgressiveRaytracer(s, o.progressiveConfig(), integ, logger)

	startTime := time.Now()
	passChan, errChan := pr.RenderProgressive(ctx, o.frames)

	var final *image.RGBA
	for result := range passChan {
		final = result.Image
	}
	if err := <-errChan; err != nil {
		return "", fmt.Errorf("render %s: %w", o.scene, err)
	}
	if final == nil {
		return "", fmt.Errorf("render %s: no frames rendered", o.scene)
	}
	logger.Printf("Render completed in %v\n", time.Since(startTime))

	outputDir := createOutputDir(o.output, o.scene)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(outputDir, fmt.Sprintf("render_%s.png", timestamp))
	if err := savePNG(filename, final); err != nil {
		return "", err
	}
	return filename, nil
}

// runView opens the terminal viewer on the selected scene
func runView(ctx context.Context, o *options, logger core.Logger) error {
	s, err := o.loadScene()
	if err != nil {
		return err
	}

	config := viewer.DefaultConfig()
	config.FPS = o.fps
	config.MaxFrames = o.frames
	config.Progressive = o.progressiveConfig()

	return viewer.New(s, sceneName(o.scene), config, logger).Run(ctx)
}

// listScenes prints every built-in and discovered glTF scene
func listScenes(cmd *cobra.Command, sceneDir string) error {
	scenes, err := scene.ListAllScenes(sceneDir)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION")
	for _, info := range scenes {
		description := info.Description
		if description == "" {
			description = info.FilePath
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", info.ID, info.DisplayName, description)
	}
	return w.Flush()
}

// sceneName returns the directory-safe name of a scene argument
func sceneName(sceneArg string) string {
	if name, ok := strings.CutPrefix(sceneArg, "gltf:"); ok {
		return name
	}
	if loaders.IsGLTFPath(sceneArg) {
		base := filepath.Base(sceneArg)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	return sceneArg
}

// createOutputDir returns output/<scene> under the given root
func createOutputDir(root, sceneArg string) string {
	return filepath.Join(root, sceneName(sceneArg))
}

// savePNG encodes img to filename
func savePNG(filename string, img image.Image) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create %s: %w", filename, err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("encode %s: %w", filename, err)
	}
	return file.Close()
}
