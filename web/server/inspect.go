package server

import (
	"math"
	"net/http"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType,omitempty"`
	GeometryType string                 `json:"geometryType,omitempty"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	IsLight      bool                   `json:"isLight"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

// InspectResult contains the hit record and the shape hit by an inspection ray
type InspectResult struct {
	Hit       bool
	HitRecord *material.HitRecord
	Shape     geometry.Shape
}

// inspectPixel casts a ray through the centre of a pixel and returns the first object hit
func inspectPixel(sceneObj *scene.Scene, pixelX, pixelY int) InspectResult {
	width := float64(sceneObj.SamplingConfig.Width)
	height := float64(sceneObj.SamplingConfig.Height)
	u := (float64(pixelX) + 0.5) / width
	v := (float64(sceneObj.SamplingConfig.Height-1-pixelY) + 0.5) / height

	// A fixed seed keeps lens sampling reproducible between requests
	ray := sceneObj.Camera.GetRay(u, v, core.NewSeededSampler(0))

	hit, isHit := sceneObj.Hit(ray, 0.001, math.Inf(1))
	if !isHit {
		return InspectResult{Hit: false}
	}

	// The scene hit does not name the shape, so find the one at the same distance
	for _, shape := range sceneObj.Shapes {
		if shapeHit, ok := shape.Hit(ray, 0.001, math.Inf(1)); ok && shapeHit.T == hit.T {
			return InspectResult{Hit: true, HitRecord: hit, Shape: shape}
		}
	}
	return InspectResult{Hit: true, HitRecord: hit}
}

// extractMaterialInfo describes a material for the inspector
func extractMaterialInfo(mat material.Material) (string, map[string]interface{}) {
	properties := map[string]interface{}{
		"color": colorful.Color{R: mat.Color.X, G: mat.Color.Y, B: mat.Color.Z}.Clamped().Hex(),
	}

	switch mat.Kind {
	case material.LightSource:
		properties["emission"] = vecArray(mat.Color)
	case material.Diffuse:
		properties["albedo"] = vecArray(mat.Color)
	case material.Metal:
		properties["albedo"] = vecArray(mat.Color)
		properties["fuzz"] = mat.Fuzz
	case material.Dielectric:
		properties["refractiveIndex"] = mat.RefractiveIndex
	}
	return mat.Kind.String(), properties
}

// extractGeometryInfo describes a shape for the inspector
func extractGeometryInfo(shape geometry.Shape) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch geom := shape.(type) {
	case *geometry.Sphere:
		properties["center"] = vecArray(geom.Center)
		properties["radius"] = geom.Radius
		return "sphere", properties

	case *geometry.Plane:
		properties["center"] = vecArray(geom.Center)
		properties["normal"] = vecArray(geom.Normal)
		properties["halfWidth"] = geom.HalfWidth
		properties["halfHeight"] = geom.HalfHeight
		return "plane", properties

	case *geometry.Cube:
		properties["center"] = vecArray(geom.Center)
		properties["halfWidth"] = geom.HalfWidth
		return "cube", properties

	default:
		return "unknown", properties
	}
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	req, err := parseSceneParams(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid scene parameters: " + err.Error()})
		return
	}

	sceneObj, err := s.loadScene(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid x coordinate"})
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid y coordinate"})
		return
	}

	width, height := sceneObj.SamplingConfig.Width, sceneObj.SamplingConfig.Height
	if pixelX < 0 || pixelX >= width || pixelY < 0 || pixelY >= height {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Pixel coordinates out of bounds"})
		return
	}

	result := inspectPixel(sceneObj, pixelX, pixelY)
	if !result.Hit {
		writeJSON(w, http.StatusOK, InspectResponse{Hit: false})
		return
	}

	materialType, materialProps := extractMaterialInfo(result.HitRecord.Material)
	geometryType, geometryProps := extractGeometryInfo(result.Shape)

	hit := result.HitRecord
	writeJSON(w, http.StatusOK, InspectResponse{
		Hit:          true,
		MaterialType: materialType,
		GeometryType: geometryType,
		Point:        vecArray(hit.Point),
		Normal:       vecArray(hit.Normal),
		Distance:     hit.T,
		FrontFace:    hit.FrontFace,
		IsLight:      result.Shape != nil && result.Shape == sceneObj.Light,
		Properties: map[string]interface{}{
			"material": materialProps,
			"geometry": geometryProps,
		},
	})
}

func vecArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}
