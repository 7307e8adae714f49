package main

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-pathtracer/pkg/material"
)

type discardLogger struct{}

func (discardLogger) Printf(format string, args ...interface{}) {}

func testOptions() *options {
	return &options{
		scene:    "default",
		sceneDir: "scenes",
		rr:       -1,
		seed:     42,
		workers:  2,
		frames:   2,
	}
}

func TestLoadScene(t *testing.T) {
	tests := []struct {
		name        string
		sceneArg    string
		expectError bool
	}{
		{"default scene", "default", false},
		{"weekend scene", "weekend", false},
		{"cornell scene", "cornell", false},
		{"unknown scene", "nonexistent", true},
		{"missing gltf file", "scenes/nonexistent.gltf", true},
		{"unknown gltf id", "gltf:nonexistent", true},
		{"empty scene name", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := testOptions()
			o.scene = tt.sceneArg
			s, err := o.loadScene()

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for scene %q, got nil", tt.sceneArg)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error for scene %q: %v", tt.sceneArg, err)
			}
			if s == nil || s.Camera == nil {
				t.Fatalf("Scene %q has no camera", tt.sceneArg)
			}
			if len(s.Shapes) == 0 {
				t.Errorf("Scene %q has no shapes", tt.sceneArg)
			}
		})
	}
}

func TestLoadSceneOverrides(t *testing.T) {
	o := testOptions()
	o.width = 80
	o.spp = 3
	o.maxDepth = 7
	o.rr = 1.0
	o.inSphere = true

	s, err := o.loadScene()
	if err != nil {
		t.Fatalf("loadScene failed: %v", err)
	}

	config := s.SamplingConfig
	// The default scene is 2:1, so the height follows the width
	if config.Width != 80 || config.Height != 40 {
		t.Errorf("Expected 80x40, got %dx%d", config.Width, config.Height)
	}
	if config.SamplesPerPixel != 3 {
		t.Errorf("Expected 3 samples per pixel, got %d", config.SamplesPerPixel)
	}
	if config.MaxDepth != 7 {
		t.Errorf("Expected max depth 7, got %d", config.MaxDepth)
	}
	if config.RussianRouletteProbability != 1.0 {
		t.Errorf("Expected roulette probability 1.0, got %f", config.RussianRouletteProbability)
	}
	if config.SampleMode != material.SampleInUnitSphere {
		t.Errorf("Expected in-sphere sampling, got %v", config.SampleMode)
	}
}

func TestLoadSceneRejectsRouletteProbability(t *testing.T) {
	tests := []struct {
		name        string
		rr          float64
		expectError bool
	}{
		{"zero", 0, true},
		{"above one", 1.5, true},
		{"keep default", -1, false},
		{"half", 0.5, false},
		{"disabled", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := testOptions()
			o.rr = tt.rr
			_, err := o.loadScene()
			if tt.expectError && err == nil {
				t.Errorf("Expected error for --rr %g", tt.rr)
			}
			if !tt.expectError && err != nil {
				t.Errorf("Unexpected error for --rr %g: %v", tt.rr, err)
			}
		})
	}
}

func TestLoadSceneKeepsDefaults(t *testing.T) {
	o := testOptions()
	s, err := o.loadScene()
	if err != nil {
		t.Fatalf("loadScene failed: %v", err)
	}
	if s.SamplingConfig.Width != 400 || s.SamplingConfig.Height != 200 {
		t.Errorf("Expected the default 400x200, got %dx%d", s.SamplingConfig.Width, s.SamplingConfig.Height)
	}
	if s.SamplingConfig.SampleMode != material.SampleOnUnitSphere {
		t.Errorf("Expected on-sphere sampling by default")
	}
}

func TestSceneName(t *testing.T) {
	tests := []struct {
		sceneArg string
		expected string
	}{
		{"default", "default"},
		{"cornell", "cornell"},
		{"gltf:box", "box"},
		{"scenes/box.gltf", "box"},
		{"/tmp/models/Helmet.GLB", "Helmet"},
	}

	for _, tt := range tests {
		t.Run(tt.sceneArg, func(t *testing.T) {
			if got := sceneName(tt.sceneArg); got != tt.expected {
				t.Errorf("sceneName(%q) = %q, expected %q", tt.sceneArg, got, tt.expected)
			}
		})
	}
}

func TestCreateOutputDir(t *testing.T) {
	got := createOutputDir("output", "scenes/box.glb")
	expected := filepath.Join("output", "box")
	if got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestProgressiveConfigFromFlags(t *testing.T) {
	o := testOptions()
	o.workers = 3
	o.seed = 7
	o.frames = 5

	config := o.progressiveConfig()
	if config.NumWorkers != 3 || config.Seed != 7 || config.MaxPasses != 5 {
		t.Errorf("Unexpected config %+v", config)
	}
	if config.TileSize != 64 {
		t.Errorf("Expected default tile size 64, got %d", config.TileSize)
	}
}

func TestRunRenderWritesPNG(t *testing.T) {
	o := testOptions()
	o.width = 16
	o.height = 8
	o.spp = 1
	o.maxDepth = 4
	o.output = t.TempDir()

	path, err := runRender(context.Background(), o, discardLogger{})
	if err != nil {
		t.Fatalf("runRender failed: %v", err)
	}

	if dir := filepath.Dir(path); dir != filepath.Join(o.output, "default") {
		t.Errorf("Expected output in %s, got %s", filepath.Join(o.output, "default"), dir)
	}
	if !strings.HasPrefix(filepath.Base(path), "render_") {
		t.Errorf("Unexpected filename %s", filepath.Base(path))
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open render: %v", err)
	}
	defer file.Close()

	img, err := png.Decode(file)
	if err != nil {
		t.Fatalf("Failed to decode render: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 8 {
		t.Errorf("Expected 16x8 image, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestRunRenderCancelled(t *testing.T) {
	o := testOptions()
	o.width = 16
	o.height = 8
	o.output = t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := runRender(ctx, o, discardLogger{}); err == nil {
		t.Error("Expected an error from a cancelled render")
	}
}

func TestRunRenderUnknownScene(t *testing.T) {
	o := testOptions()
	o.scene = "nonexistent"
	o.output = t.TempDir()

	if _, err := runRender(context.Background(), o, discardLogger{}); err == nil {
		t.Error("Expected an error for an unknown scene")
	}
}

func TestScenesCommand(t *testing.T) {
	root := newRootCmd(discardLogger{})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"scenes", "--scene-dir", t.TempDir()})

	if err := root.Execute(); err != nil {
		t.Fatalf("scenes command failed: %v", err)
	}
	for _, id := range []string{"default", "weekend", "cornell"} {
		if !strings.Contains(out.String(), id) {
			t.Errorf("Expected %q in scene listing:\n%s", id, out.String())
		}
	}
}

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd(discardLogger{})
	for _, name := range []string{"render", "view", "serve", "scenes"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("Expected subcommand %q, got %v (err %v)", name, cmd, err)
		}
	}
	if root.PersistentFlags().Lookup("in-sphere") == nil {
		t.Error("Expected --in-sphere flag")
	}
}
