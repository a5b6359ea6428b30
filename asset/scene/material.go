package scene

import (
	"github.com/achilleasa/octrace/asset/texture"
	"github.com/achilleasa/octrace/types"
)

// A specular exponent with this value disables the specular lighting term.
const NoSpecular = -1.0

// Holds the lighting characteristics of a surface. The ambient, diffuse and
// specular coefficients weight the R, G and B channels of the light
// intensity and each component should be in the [0, 1] range.
//
// Materials are immutable once the scene has been loaded and are shared by
// all triangles that reference them.
type Material struct {
	Name string

	// Ka, Kd and Ks.
	Ambient  types.Vec3
	Diffuse  types.Vec3
	Specular types.Vec3

	// Ns. A value of NoSpecular disables specular highlights.
	SpecularExponent float64

	// Mirror reflectivity in the [0, 1] range.
	Reflectivity float64

	// Base texture; never nil for materials attached to scene geometry.
	Texture *texture.Texture

	// Optional tangent-space bump map.
	BumpMap *texture.Texture
}

// Returns true if the specular term should be evaluated for this material.
func (m *Material) HasSpecular() bool {
	return m.SpecularExponent != NoSpecular
}

// Returns true if the material reflects incoming rays.
func (m *Material) IsReflective() bool {
	return m.Reflectivity > 0
}
