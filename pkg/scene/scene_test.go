package scene

import (
	"math"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

func testScene() *Scene {
	return New(geometry.CameraConfig{
		LookFrom:    core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        90,
		AspectRatio: 1,
	}, DefaultSamplingConfig())
}

var (
	diffuse = material.NewDiffuse(core.NewVec3(0.5, 0.5, 0.5))
	glass   = material.NewDielectric(1.5)
)

func TestScene_Hit_Closest(t *testing.T) {
	s := testScene()
	far := geometry.NewSphere(core.NewVec3(0, 0, -10), 1, diffuse)
	near := geometry.NewSphere(core.NewVec3(0, 0, -4), 1, glass)
	// Insertion order must not matter
	s.Add(far, near)

	hit, isHit := s.Hit(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)), 0.001, math.Inf(1))
	if !isHit {
		t.Fatal("Expected hit")
	}
	if math.Abs(hit.T-3) > 1e-9 {
		t.Errorf("Expected closest hit at t=3, got %f", hit.T)
	}
	if hit.Material.Kind != material.Dielectric {
		t.Errorf("Expected the near glass sphere, got %v", hit.Material.Kind)
	}
}

func TestScene_Hit_Miss(t *testing.T) {
	s := testScene()
	s.Add(geometry.NewSphere(core.NewVec3(0, 0, -4), 1, diffuse))

	if _, isHit := s.Hit(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0)), 0.001, math.Inf(1)); isHit {
		t.Error("Expected miss")
	}
	if _, isHit := New(s.CameraConfig, s.SamplingConfig).Hit(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), 0.001, math.Inf(1)); isHit {
		t.Error("Empty scene should never report a hit")
	}
}

func TestScene_HitShadow(t *testing.T) {
	up := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0))

	tests := []struct {
		name     string
		build    func(s *Scene)
		expected ShadowResult
	}{
		{
			name:     "no light",
			build:    func(s *Scene) { s.Add(geometry.NewSphere(core.NewVec3(0, 5, 0), 1, diffuse)) },
			expected: ShadowResult{Occluded: true},
		},
		{
			name: "clear path",
			build: func(s *Scene) {
				s.AddSphereLight(core.NewVec3(0, 10, 0), 1, core.NewVec3(4, 4, 4))
			},
			expected: ShadowResult{LightVisible: true},
		},
		{
			name: "light missed",
			build: func(s *Scene) {
				s.AddSphereLight(core.NewVec3(10, 10, 0), 1, core.NewVec3(4, 4, 4))
			},
			expected: ShadowResult{Occluded: true},
		},
		{
			name: "opaque blocker",
			build: func(s *Scene) {
				s.AddSphereLight(core.NewVec3(0, 10, 0), 1, core.NewVec3(4, 4, 4))
				s.Add(geometry.NewSphere(core.NewVec3(0, 5, 0), 1, diffuse))
			},
			expected: ShadowResult{Occluded: true, HitNonDielectric: true},
		},
		{
			name: "glass in the way",
			build: func(s *Scene) {
				s.Add(geometry.NewSphere(core.NewVec3(0, 3, 0), 0.5, glass))
				s.AddSphereLight(core.NewVec3(0, 10, 0), 1, core.NewVec3(4, 4, 4))
				s.Add(geometry.NewSphere(core.NewVec3(0, 6, 0), 0.5, glass))
			},
			expected: ShadowResult{Occluded: true, DielectricHits: 2},
		},
		{
			name: "blocker behind light",
			build: func(s *Scene) {
				s.AddSphereLight(core.NewVec3(0, 10, 0), 1, core.NewVec3(4, 4, 4))
				s.Add(geometry.NewSphere(core.NewVec3(0, 20, 0), 1, diffuse))
			},
			expected: ShadowResult{LightVisible: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testScene()
			tt.build(s)
			result := s.HitShadow(up, 0.001, math.Inf(1))
			if result != tt.expected {
				t.Errorf("Expected %+v, got %+v", tt.expected, result)
			}
		})
	}
}

func TestScene_AddLight(t *testing.T) {
	s := testScene()
	s.Add(geometry.NewSphere(core.NewVec3(0, 0, -3), 1, diffuse))
	light := s.AddSphereLight(core.NewVec3(0, 5, 0), 1, core.NewVec3(1, 1, 1))

	if s.Light != geometry.Shape(light) {
		t.Error("Expected the sphere light to be tracked")
	}
	if len(s.Shapes) != 2 || s.Shapes[1] != geometry.Shape(light) {
		t.Errorf("Expected light to be appended as a member, got %d shapes", len(s.Shapes))
	}
}

func TestBackground_Color(t *testing.T) {
	bg := SkyBackground()

	tests := []struct {
		name      string
		direction core.Vec3
		expected  core.Vec3
	}{
		{"straight up", core.NewVec3(0, 1, 0), core.NewVec3(0.5, 0.7, 1.0)},
		{"straight down", core.NewVec3(0, -1, 0), core.NewVec3(1, 1, 1)},
		{"horizon", core.NewVec3(0, 0, -1), core.NewVec3(0.75, 0.85, 1.0)},
		{"unnormalized up", core.NewVec3(0, 7, 0), core.NewVec3(0.5, 0.7, 1.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := bg.Color(tt.direction)
			if got.Subtract(tt.expected).Length() > 1e-9 {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}

	if (Background{}).Color(core.NewVec3(0, 1, 0)) != (core.Vec3{}) {
		t.Error("Zero background should be black")
	}
}

func TestScene_SetResolution(t *testing.T) {
	s := testScene()
	s.SetResolution(300, 150)

	if s.SamplingConfig.Width != 300 || s.SamplingConfig.Height != 150 {
		t.Errorf("Expected 300x150, got %dx%d", s.SamplingConfig.Width, s.SamplingConfig.Height)
	}
	if s.CameraConfig.AspectRatio != 2 || s.Camera.Config().AspectRatio != 2 {
		t.Errorf("Expected aspect ratio 2, got %f", s.Camera.Config().AspectRatio)
	}
}

func TestBuiltInScenes(t *testing.T) {
	tests := []struct {
		name       string
		scene      *Scene
		expectLit  bool
		background Background
	}{
		{"default", NewDefaultScene(), false, SkyBackground()},
		{"weekend", NewWeekendScene(), false, SkyBackground()},
		{"cornell", NewCornellScene(), true, Background{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.scene.Shapes) == 0 {
				t.Fatal("Scene has no shapes")
			}
			if (tt.scene.Light != nil) != tt.expectLit {
				t.Errorf("Expected lit=%t", tt.expectLit)
			}
			if tt.scene.Background != tt.background {
				t.Errorf("Expected background %+v, got %+v", tt.background, tt.scene.Background)
			}
			cfg := tt.scene.SamplingConfig
			if cfg.Width <= 0 || cfg.Height <= 0 || cfg.SamplesPerPixel <= 0 || cfg.MaxDepth <= 0 {
				t.Errorf("Invalid sampling config %+v", cfg)
			}
			if cfg.RussianRouletteProbability <= 0 || cfg.RussianRouletteProbability > 1 {
				t.Errorf("Russian roulette probability %f outside (0, 1]", cfg.RussianRouletteProbability)
			}
		})
	}
}

func TestCornellScene_LightReachesRoom(t *testing.T) {
	s := NewCornellScene()

	// The light's lower cap hangs below the ceiling, so it is visible straight up from the floor
	clear := core.NewRay(core.NewVec3(0, 0, -0.2), core.NewVec3(0, 1, 0))
	if result := s.HitShadow(clear, 0.001, math.Inf(1)); !result.LightVisible || result.Occluded {
		t.Errorf("Expected light visible from below, got %+v", result)
	}

	// Under the red sphere the path is blocked
	blocked := core.NewRay(core.NewVec3(0, -0.45, -1.5), core.NewVec3(0, 1, 0))
	if result := s.HitShadow(blocked, 0.001, math.Inf(1)); !result.HitNonDielectric || result.LightVisible {
		t.Errorf("Expected opaque occlusion, got %+v", result)
	}
}

func TestDefaultScene_CameraOverride(t *testing.T) {
	s := NewDefaultScene(geometry.CameraConfig{VFov: 45})
	if s.CameraConfig.VFov != 45 {
		t.Errorf("Expected override VFov 45, got %f", s.CameraConfig.VFov)
	}
	if s.CameraConfig.LookAt != core.NewVec3(0, 0, -1) {
		t.Errorf("Override should keep default look-at, got %v", s.CameraConfig.LookAt)
	}
}
