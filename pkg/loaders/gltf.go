package loaders

import (
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// ShapeKind names the primitive a glTF node stands for
type ShapeKind string

const (
	ShapeSphere ShapeKind = "sphere"
	ShapeCube   ShapeKind = "cube"
	ShapePlane  ShapeKind = "plane"
)

// GLTFShape is one primitive recovered from a glTF node
type GLTFShape struct {
	Name       string
	Kind       ShapeKind
	Center     core.Vec3 // Node translation
	Size       float64   // Sphere radius, cube half width or plane half width
	HalfHeight float64   // Plane only
	Normal     core.Vec3 // Plane only: node rotation applied to +Y
	Material   material.Material
}

// GLTFCamera is the first perspective camera node in the document
type GLTFCamera struct {
	LookFrom    core.Vec3
	LookAt      core.Vec3
	Up          core.Vec3
	VFov        float64 // Degrees
	AspectRatio float64 // 0 when the document does not specify one
}

// GLTFScene contains all primitives parsed from a glTF document
type GLTFScene struct {
	Shapes []GLTFShape
	Camera *GLTFCamera
	Light  int // Index into Shapes of the first emissive shape, -1 if none
}

// gltfExtras holds the custom properties read from node, mesh and material extras
type gltfExtras struct {
	Shape            string  `json:"shape"`
	IOR              float64 `json:"ior"`
	EmissiveStrength float64 `json:"emissiveStrength"`
}

// defaultAlbedo is used for meshes without a material
var defaultAlbedo = core.NewVec3(0.8, 0.8, 0.8)

// LoadGLTF loads and parses a .gltf or .glb scene file
func LoadGLTF(filename string) (*GLTFScene, error) {
	if err := validateFilePath(filename); err != nil {
		return nil, err
	}

	doc, err := gltf.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	return ParseGLTF(doc)
}

// ParseGLTF converts the nodes of a decoded document into primitives
func ParseGLTF(doc *gltf.Document) (*GLTFScene, error) {
	scene := &GLTFScene{Light: -1}

	for i, node := range doc.Nodes {
		if node.Camera != nil && scene.Camera == nil {
			camera, err := parseCamera(doc, node)
			if err != nil {
				return nil, fmt.Errorf("node %d %q: %w", i, node.Name, err)
			}
			scene.Camera = camera
		}

		if node.Mesh == nil {
			continue
		}
		shape, err := parseShape(doc, node)
		if err != nil {
			return nil, fmt.Errorf("node %d %q: %w", i, node.Name, err)
		}
		if shape.Material.IsEmissive() && scene.Light < 0 {
			scene.Light = len(scene.Shapes)
		}
		scene.Shapes = append(scene.Shapes, shape)
	}

	if len(scene.Shapes) == 0 {
		return nil, fmt.Errorf("gltf document contains no shapes")
	}

	return scene, nil
}

// parseShape maps a mesh node onto a sphere, cube or plane
func parseShape(doc *gltf.Document, node *gltf.Node) (GLTFShape, error) {
	if *node.Mesh < 0 || *node.Mesh >= len(doc.Meshes) {
		return GLTFShape{}, fmt.Errorf("mesh index %d out of range", *node.Mesh)
	}
	mesh := doc.Meshes[*node.Mesh]

	kind, err := shapeKind(node, mesh)
	if err != nil {
		return GLTFShape{}, err
	}

	translation := node.Translation
	scale := node.ScaleOrDefault()
	rotation := node.RotationOrDefault()

	shape := GLTFShape{
		Name:   node.Name,
		Kind:   kind,
		Center: core.NewVec3(translation[0], translation[1], translation[2]),
		Size:   scale[0],
	}
	if kind == ShapePlane {
		shape.HalfHeight = scale[2]
		shape.Normal = rotate(rotation, core.NewVec3(0, 1, 0))
	}

	shape.Material = material.NewDiffuse(defaultAlbedo)
	if len(mesh.Primitives) > 0 && mesh.Primitives[0].Material != nil {
		idx := *mesh.Primitives[0].Material
		if idx < 0 || idx >= len(doc.Materials) {
			return GLTFShape{}, fmt.Errorf("material index %d out of range", idx)
		}
		mat, err := convertMaterial(doc.Materials[idx])
		if err != nil {
			return GLTFShape{}, fmt.Errorf("material %q: %w", doc.Materials[idx].Name, err)
		}
		shape.Material = mat
	}

	if shape.Size <= 0 {
		return GLTFShape{}, fmt.Errorf("%s must have a positive scale, got %f", kind, shape.Size)
	}

	return shape, nil
}

// shapeKind reads the primitive type from node extras, mesh extras or the mesh name
func shapeKind(node *gltf.Node, mesh *gltf.Mesh) (ShapeKind, error) {
	nodeExtras, err := readExtras(node.Extras)
	if err != nil {
		return "", fmt.Errorf("node %q: %w", node.Name, err)
	}
	meshExtras, err := readExtras(mesh.Extras)
	if err != nil {
		return "", fmt.Errorf("mesh %q: %w", mesh.Name, err)
	}

	candidates := []string{nodeExtras.Shape, meshExtras.Shape, mesh.Name}
	for _, candidate := range candidates {
		name := strings.ToLower(strings.TrimSpace(candidate))
		switch {
		case strings.HasPrefix(name, string(ShapeSphere)):
			return ShapeSphere, nil
		case strings.HasPrefix(name, string(ShapeCube)):
			return ShapeCube, nil
		case strings.HasPrefix(name, string(ShapePlane)):
			return ShapePlane, nil
		}
	}
	return "", fmt.Errorf("mesh %q is not a sphere, cube or plane", mesh.Name)
}

// convertMaterial maps glTF PBR parameters onto the closed material set
func convertMaterial(mat *gltf.Material) (material.Material, error) {
	extras, err := readExtras(mat.Extras)
	if err != nil {
		return material.Material{}, err
	}

	emissive := core.NewVec3(mat.EmissiveFactor[0], mat.EmissiveFactor[1], mat.EmissiveFactor[2])
	if emissive.MaxComponent() > 0 {
		strength := extras.EmissiveStrength
		if strength <= 0 {
			strength = 1
		}
		return material.NewLightSource(emissive.Multiply(strength)), nil
	}

	if extras.IOR > 0 {
		return material.NewDielectric(extras.IOR), nil
	}
	if _, ok := mat.Extensions["KHR_materials_transmission"]; ok {
		return material.NewDielectric(1.5), nil
	}

	// glTF defaults: white base colour, fully metallic, fully rough
	baseColor := core.NewVec3(1, 1, 1)
	metallic, roughness := 1.0, 1.0
	if pbr := mat.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			c := *pbr.BaseColorFactor
			baseColor = core.NewVec3(c[0], c[1], c[2])
		}
		if pbr.MetallicFactor != nil {
			metallic = *pbr.MetallicFactor
		}
		if pbr.RoughnessFactor != nil {
			roughness = *pbr.RoughnessFactor
		}
	}

	if !baseColor.IsFinite() {
		return material.Material{}, fmt.Errorf("invalid base color %v", baseColor)
	}

	if metallic >= 0.5 {
		return material.NewMetal(baseColor, roughness), nil
	}
	return material.NewDiffuse(baseColor), nil
}

// parseCamera reads a perspective camera from a node's transform
func parseCamera(doc *gltf.Document, node *gltf.Node) (*GLTFCamera, error) {
	if *node.Camera < 0 || *node.Camera >= len(doc.Cameras) {
		return nil, fmt.Errorf("camera index %d out of range", *node.Camera)
	}
	perspective := doc.Cameras[*node.Camera].Perspective
	if perspective == nil {
		return nil, fmt.Errorf("only perspective cameras are supported")
	}

	vfov := perspective.Yfov * 180.0 / math.Pi
	if vfov <= 0 || vfov >= 180 {
		return nil, fmt.Errorf("invalid camera FOV %f: must be between 0 and 180 degrees", vfov)
	}

	rotation := node.RotationOrDefault()
	from := core.NewVec3(node.Translation[0], node.Translation[1], node.Translation[2])

	camera := &GLTFCamera{
		LookFrom: from,
		// glTF cameras look down their local -Z axis
		LookAt: from.Add(rotate(rotation, core.NewVec3(0, 0, -1))),
		Up:     rotate(rotation, core.NewVec3(0, 1, 0)),
		VFov:   vfov,
	}
	if perspective.AspectRatio != nil {
		camera.AspectRatio = *perspective.AspectRatio
	}
	return camera, nil
}

// rotate applies the unit quaternion q = [x, y, z, w] to v
func rotate(q [4]float64, v core.Vec3) core.Vec3 {
	axis := core.NewVec3(q[0], q[1], q[2])
	w := q[3]
	t := axis.Cross(v).Multiply(2)
	return v.Add(t.Multiply(w)).Add(axis.Cross(t))
}

// readExtras decodes custom properties whatever concrete type the decoder produced
func readExtras(extras any) (gltfExtras, error) {
	var result gltfExtras
	if extras == nil {
		return result, nil
	}
	data, err := json.Marshal(extras)
	if err != nil {
		return result, fmt.Errorf("encode extras: %w", err)
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, fmt.Errorf("invalid extras: %w", err)
	}
	return result, nil
}

// validateFilePath rejects names the loader should never open
func validateFilePath(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	if strings.Contains(filename, "\x00") {
		return fmt.Errorf("invalid file path: null bytes not allowed")
	}

	cleanPath := filepath.Clean(filename)
	if len(cleanPath) > 512 {
		return fmt.Errorf("file path too long: maximum 512 characters allowed")
	}

	if !IsGLTFPath(cleanPath) {
		return fmt.Errorf("invalid file type: only .gltf and .glb files are allowed")
	}

	return nil
}

// IsGLTFPath reports whether name has a glTF extension
func IsGLTFPath(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".gltf" || ext == ".glb"
}
