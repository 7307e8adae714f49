package material

import (
	"github.com/df07/go-pathtracer/pkg/core"
)

// Emit returns the radiance leaving a light source, or black for any other kind
func (m Material) Emit() core.Vec3 {
	if !m.IsEmissive() {
		return core.Vec3{}
	}
	return m.Color
}
