package geometry

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// parallelEpsilon is the smallest |normal·direction| treated as a crossing
const parallelEpsilon = 1e-8

// Plane represents a bounded rectangle centred on Center and facing Normal.
// HalfWidth and HalfHeight are measured along the plane's tangent frame.
type Plane struct {
	Center     core.Vec3
	Normal     core.Vec3 // Unit normal
	HalfWidth  float64
	HalfHeight float64
	Material   material.Material
	tangentU   core.Vec3
	tangentV   core.Vec3
}

// NewPlane creates a square plane with the given full side length
func NewPlane(center, normal core.Vec3, size float64, mat material.Material) *Plane {
	return NewRectPlane(center, normal, size/2, size/2, mat)
}

// NewRectPlane creates a rectangular plane from half extents
func NewRectPlane(center, normal core.Vec3, halfWidth, halfHeight float64, mat material.Material) *Plane {
	n := normal.Normalize()
	u, v := tangentFrame(n)
	return &Plane{
		Center:     center,
		Normal:     n,
		HalfWidth:  halfWidth,
		HalfHeight: halfHeight,
		Material:   mat,
		tangentU:   u,
		tangentV:   v,
	}
}

// tangentFrame picks in-plane axes from the world axes orthogonal to the
// dominant component of n. Axis-aligned normals give axis-aligned extents.
func tangentFrame(n core.Vec3) (core.Vec3, core.Vec3) {
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)

	var u, v core.Vec3
	switch {
	case ax >= ay && ax >= az:
		u, v = core.NewVec3(0, 0, 1), core.NewVec3(0, 1, 0)
	case ay >= az:
		u, v = core.NewVec3(1, 0, 0), core.NewVec3(0, 0, 1)
	default:
		u, v = core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0)
	}

	// Project onto the plane so tilted normals still get an orthogonal frame
	u = u.Subtract(n.Multiply(u.Dot(n))).Normalize()
	v = v.Subtract(n.Multiply(v.Dot(n))).Subtract(u.Multiply(v.Dot(u))).Normalize()
	return u, v
}

// Surface returns the plane's material
func (p *Plane) Surface() material.Material {
	return p.Material
}

// Hit tests if a ray intersects with the plane inside its extents
func (p *Plane) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	denominator := p.Normal.Dot(ray.Direction)

	// Parallel rays never cross the plane
	if math.Abs(denominator) < parallelEpsilon {
		return nil, false
	}

	t := p.Center.Subtract(ray.Origin).Dot(p.Normal) / denominator
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return nil, false
	}

	// Open interval, unlike the sphere
	if t <= tMin || t >= tMax {
		return nil, false
	}

	hitPoint := ray.At(t)
	local := hitPoint.Subtract(p.Center)
	if math.Abs(local.Dot(p.tangentU)) >= p.HalfWidth || math.Abs(local.Dot(p.tangentV)) >= p.HalfHeight {
		return nil, false
	}

	hitRecord := &material.HitRecord{
		T:        t,
		Point:    hitPoint,
		Material: p.Material,
		Color:    p.Material.Color,
	}
	hitRecord.SetFaceNormal(ray, p.Normal)

	return hitRecord, true
}
