package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/df07/go-pathtracer/pkg/loaders"
)

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier, accepted by Load
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
	Type        string `json:"type"`        // "builtin" or "gltf"
	FilePath    string `json:"filePath"`    // Path to glTF file (gltf type only)
}

// builtIn pairs a scene's metadata with its constructor
type builtIn struct {
	info  SceneInfo
	build func() *Scene
}

var builtInScenes = []builtIn{
	{
		info: SceneInfo{
			ID:          "default",
			DisplayName: "Default Scene",
			Description: "Diffuse sphere on a ground sphere under the sky",
			Type:        "builtin",
		},
		build: func() *Scene { return NewDefaultScene() },
	},
	{
		info: SceneInfo{
			ID:          "weekend",
			DisplayName: "Weekend Spheres",
			Description: "Diffuse, hollow glass and fuzzy gold spheres with defocus blur",
			Type:        "builtin",
		},
		build: func() *Scene { return NewWeekendScene() },
	},
	{
		info: SceneInfo{
			ID:          "cornell",
			DisplayName: "Cornell Room",
			Description: "Closed room with a sphere light, metal floor and coloured walls",
			Type:        "builtin",
		},
		build: func() *Scene { return NewCornellScene() },
	},
}

// ListBuiltInScenes returns the metadata of every built-in scene
func ListBuiltInScenes() []SceneInfo {
	scenes := make([]SceneInfo, len(builtInScenes))
	for i, b := range builtInScenes {
		scenes[i] = b.info
	}
	return scenes
}

// ListGLTFScenes scans dir for .gltf and .glb files. A missing directory yields no scenes.
func ListGLTFScenes(dir string) ([]SceneInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SceneInfo{}, nil
		}
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	scenes := []SceneInfo{}
	for _, entry := range entries {
		if entry.IsDir() || !loaders.IsGLTFPath(entry.Name()) {
			continue
		}
		nameWithoutExt := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		scenes = append(scenes, SceneInfo{
			ID:          "gltf:" + nameWithoutExt,
			DisplayName: titleCase(nameWithoutExt),
			Type:        "gltf",
			FilePath:    filepath.Join(dir, entry.Name()),
		})
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})

	return scenes, nil
}

// ListAllScenes returns built-in scenes followed by the glTF scenes in dir
func ListAllScenes(dir string) ([]SceneInfo, error) {
	gltfScenes, err := ListGLTFScenes(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list glTF scenes: %w", err)
	}
	return append(ListBuiltInScenes(), gltfScenes...), nil
}

// Load resolves a built-in scene ID, a "gltf:<name>" ID under dir, or a glTF file path
func Load(name, dir string) (*Scene, error) {
	for _, b := range builtInScenes {
		if b.info.ID == name {
			return b.build(), nil
		}
	}

	if id, ok := strings.CutPrefix(name, "gltf:"); ok {
		gltfScenes, err := ListGLTFScenes(dir)
		if err != nil {
			return nil, err
		}
		for _, info := range gltfScenes {
			if info.ID == "gltf:"+id {
				return NewGLTFScene(info.FilePath)
			}
		}
		return nil, fmt.Errorf("unknown glTF scene %q in %s", id, dir)
	}

	if loaders.IsGLTFPath(name) {
		return NewGLTFScene(name)
	}

	return nil, fmt.Errorf("unknown scene %q", name)
}

// titleCase converts a filename-style string to title case
// e.g., "cornell-empty" -> "Cornell Empty"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}

	return strings.Join(words, " ")
}
