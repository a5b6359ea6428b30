package scene

import "github.com/achilleasa/octrace/types"

// A triangle primitive. Texture coordinates and normals are stored per
// vertex so they can be interpolated using the barycentric coordinates of a
// ray hit. Triangles are created once while loading a scene and are never
// mutated afterwards.
type Triangle struct {
	V1, V2, V3 types.Vec3

	// Per-vertex texture coordinates.
	T1, T2, T3 types.Vec2

	// Per-vertex normals. A zero normal means that the geometric normal
	// should be used instead.
	N1, N2, N3 types.Vec3

	// The triangle material. Shared with other triangles.
	Material *Material
}

// Create a new triangle.
func NewTriangle(vertices [3]types.Vec3, uvs [3]types.Vec2, normals [3]types.Vec3, material *Material) *Triangle {
	return &Triangle{
		V1: vertices[0], V2: vertices[1], V3: vertices[2],
		T1: uvs[0], T2: uvs[1], T3: uvs[2],
		N1: normals[0], N2: normals[1], N3: normals[2],
		Material: material,
	}
}

// Get the (unnormalized) geometric normal (V2-V1) x (V3-V1).
func (tri *Triangle) GeometricNormal() types.Vec3 {
	return tri.V2.Sub(tri.V1).Cross(tri.V3.Sub(tri.V1))
}

// Get the triangle centroid.
func (tri *Triangle) Centroid() types.Vec3 {
	return tri.V1.Add(tri.V2).Add(tri.V3).Mul(1.0 / 3.0)
}

// Interpolate a per-vertex vector attribute using barycentric weights. The
// u weight applies to the second vertex, v to the third and w = 1-u-v to the
// first one.
func Interpolate3(a1, a2, a3 types.Vec3, u, v float64) types.Vec3 {
	w := 1.0 - u - v
	return a2.Mul(u).Add(a3.Mul(v)).Add(a1.Mul(w))
}

// Interpolate a per-vertex uv attribute using the same weighting scheme as Interpolate3.
func Interpolate2(a1, a2, a3 types.Vec2, u, v float64) types.Vec2 {
	w := 1.0 - u - v
	return a2.Mul(u).Add(a3.Mul(v)).Add(a1.Mul(w))
}
