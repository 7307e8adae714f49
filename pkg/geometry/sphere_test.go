package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

var testDiffuse = material.NewDiffuse(core.NewVec3(0.5, 0.5, 0.5))

func TestSphere_Hit_Miss(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, testDiffuse)
	ray := core.NewRay(core.NewVec3(2, 0, 0), core.NewVec3(0, 1, 0))

	hit, isHit := sphere.Hit(ray, 0.001, 1000.0)
	if isHit {
		t.Errorf("Expected miss, but got hit at t=%f", hit.T)
	}
}

func TestSphere_Hit_TowardsCenter(t *testing.T) {
	// Ray aimed at the center hits at distance - radius with normal opposing the ray
	sphere := NewSphere(core.NewVec3(0, 0, -5), 2.0, testDiffuse)
	direction := core.NewVec3(0, 0, -1)
	ray := core.NewRay(core.NewVec3(0, 0, 0), direction)

	hit, isHit := sphere.Hit(ray, 0.001, math.Inf(1))
	if !isHit {
		t.Fatal("Expected hit, but got miss")
	}
	if math.Abs(hit.T-3.0) > 1e-9 {
		t.Errorf("Expected t=3, got t=%f", hit.T)
	}
	if hit.Normal.Subtract(direction.Negate()).Length() > 1e-9 {
		t.Errorf("Expected normal anti-parallel to the ray, got %v", hit.Normal)
	}
	if !hit.FrontFace {
		t.Error("Expected front face")
	}
	if hit.Material != testDiffuse || hit.Color != testDiffuse.Color {
		t.Errorf("Expected hit to carry the sphere material, got %+v", hit.Material)
	}
}

func TestSphere_Hit_FrontAndBackFace(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, testDiffuse)

	tests := []struct {
		name           string
		rayOrigin      core.Vec3
		rayDirection   core.Vec3
		expectedT      float64
		expectedFront  bool
		expectedNormal core.Vec3
	}{
		{
			name:           "front face hit",
			rayOrigin:      core.NewVec3(0, 0, 2),
			rayDirection:   core.NewVec3(0, 0, -1),
			expectedT:      1.0,
			expectedFront:  true,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
		{
			name:           "back face hit",
			rayOrigin:      core.NewVec3(0, 0, 0),
			rayDirection:   core.NewVec3(0, 0, 1),
			expectedT:      1.0,
			expectedFront:  false,
			expectedNormal: core.NewVec3(0, 0, -1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(tt.rayOrigin, tt.rayDirection)
			hit, isHit := sphere.Hit(ray, 0.001, 1000.0)

			if !isHit {
				t.Fatal("Expected hit, but got miss")
			}
			if math.Abs(hit.T-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got t=%f", tt.expectedT, hit.T)
			}
			if hit.FrontFace != tt.expectedFront {
				t.Errorf("Expected front face %t, got %t", tt.expectedFront, hit.FrontFace)
			}
			if hit.Normal.Subtract(tt.expectedNormal).Length() > 1e-9 {
				t.Errorf("Expected normal %v, got %v", tt.expectedNormal, hit.Normal)
			}
		})
	}
}

func TestSphere_Hit_TangentRay(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, testDiffuse)

	tests := []struct {
		name string
		ray  core.Ray
	}{
		{"grazes top", core.NewRay(core.NewVec3(-5, 1, 0), core.NewVec3(1, 0, 0))},
		{"grazes side", core.NewRay(core.NewVec3(1, 0, 2), core.NewVec3(0, 0, -1))},
		{"outside silhouette", core.NewRay(core.NewVec3(1.0001, 0, 2), core.NewVec3(0, 0, -1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if hit, isHit := sphere.Hit(tt.ray, 0.001, 1000.0); isHit {
				t.Errorf("Expected miss, got hit at t=%f point=%v", hit.T, hit.Point)
			}
		})
	}

	// Just inside the silhouette still hits
	inside := core.NewRay(core.NewVec3(0.999, 0, 2), core.NewVec3(0, 0, -1))
	if _, isHit := sphere.Hit(inside, 0.001, 1000.0); !isHit {
		t.Error("Expected ray inside the silhouette to hit")
	}
}

func TestSphere_Hit_ZeroRadius(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, -1), 0, testDiffuse)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	if hit, isHit := sphere.Hit(ray, 0.001, 1000.0); isHit {
		t.Errorf("Expected zero-radius sphere to miss, got normal %v", hit.Normal)
	}
}

func TestSphere_Hit_Bounds(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, testDiffuse)
	ray := core.NewRay(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1))

	hit, isHit := sphere.Hit(ray, 0.001, 0.5)
	if isHit {
		t.Errorf("Expected miss due to tMax bound, but got hit at t=%f", hit.T)
	}

	hit, isHit = sphere.Hit(ray, 3.5, 1000.0)
	if isHit {
		t.Errorf("Expected miss due to tMin bound, but got hit at t=%f", hit.T)
	}

	// Closed interval: a root exactly at tMax still counts
	if _, isHit := sphere.Hit(ray, 0.001, 1.0); !isHit {
		t.Error("Expected hit with root exactly at tMax")
	}

	// Near root below tMin falls through to the far root
	hit, isHit = sphere.Hit(ray, 1.5, 1000.0)
	if !isHit || math.Abs(hit.T-3.0) > 1e-9 {
		t.Errorf("Expected far root at t=3, got hit=%v", isHit)
	}
}

func TestSphere_Hit_NegativeRadiusFlipsNormal(t *testing.T) {
	shell := NewSphere(core.NewVec3(0, 0, 0), -1.0, testDiffuse)
	ray := core.NewRay(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1))

	hit, isHit := shell.Hit(ray, 0.001, 1000.0)
	if !isHit {
		t.Fatal("Expected hit on negative-radius sphere")
	}
	// Outward normal points inward, so the incoming ray sees a back face
	if hit.FrontFace {
		t.Error("Expected back face on negative-radius sphere")
	}
	if hit.Normal.Dot(ray.Direction) >= 0 {
		t.Errorf("Normal %v must still oppose the ray", hit.Normal)
	}
}
