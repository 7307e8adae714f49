package geometry

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// Cube represents an axis-aligned cube made up of 6 planes
type Cube struct {
	Center    core.Vec3         // Center point of the cube
	HalfWidth float64           // Distance from the center to each face
	Material  material.Material // Material for all faces
	faces     [6]*Plane
}

// NewCube creates a cube with the given full edge length
func NewCube(center core.Vec3, width float64, mat material.Material) *Cube {
	c := &Cube{
		Center:    center,
		HalfWidth: width / 2,
		Material:  mat,
	}
	c.generateFaces()
	return c
}

// generateFaces creates the 6 faces with outward normals
func (c *Cube) generateFaces() {
	axes := [6]core.Vec3{
		core.NewVec3(0, 0, -1), // front
		core.NewVec3(0, 0, 1),  // back
		core.NewVec3(-1, 0, 0), // left
		core.NewVec3(1, 0, 0),  // right
		core.NewVec3(0, 1, 0),  // top
		core.NewVec3(0, -1, 0), // bottom
	}
	for i, axis := range axes {
		faceCenter := c.Center.Add(axis.Multiply(c.HalfWidth))
		c.faces[i] = NewRectPlane(faceCenter, axis, c.HalfWidth, c.HalfWidth, c.Material)
	}
}

// Faces returns the six face planes
func (c *Cube) Faces() [6]*Plane {
	return c.faces
}

// Surface returns the cube's material
func (c *Cube) Surface() material.Material {
	return c.Material
}

// Hit tests if a ray intersects with any face of the cube
func (c *Cube) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	var closestHit *material.HitRecord
	closestT := tMax

	for _, face := range c.faces {
		if hit, isHit := face.Hit(ray, tMin, closestT); isHit {
			closestT = hit.T
			closestHit = hit
		}
	}

	return closestHit, closestHit != nil
}
