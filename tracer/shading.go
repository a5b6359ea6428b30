package tracer

import (
	"math"

	"github.com/achilleasa/octrace/asset/scene"
	"github.com/achilleasa/octrace/types"
)

// Normals shorter than this are treated as missing.
const minNormalLen = 1e-12

// Calculate the unit surface normal at barycentric coordinates (u, v),
// oriented so that it faces the incoming ray. Triangles without vertex
// normals use their geometric normal.
func shadingNormal(tri *scene.Triangle, u, v float64, rayDir types.Vec3) types.Vec3 {
	normal := scene.Interpolate3(tri.N1, tri.N2, tri.N3, u, v)
	if normal.Len() < minNormalLen {
		normal = tri.GeometricNormal()
	}
	normal = normal.Normalize()

	if normal.Dot(rayDir) > 0 {
		return normal.Neg()
	}
	return normal
}

// Perturb a unit normal using a tangent-space bump map texel. Each texel
// channel is mapped from [0, 255] to [-1, 1] and used as the tangent,
// bitangent and normal weight respectively.
func perturbNormal(normal types.Vec3, texel types.Color) types.Vec3 {
	tangent, bitangent := tangentBasis(normal)

	d := texel.Vec3().Mul(2).Sub(types.Vec3{1, 1, 1})
	perturbed := tangent.Mul(d[0]).Add(bitangent.Mul(d[1])).Add(normal.Mul(d[2])).Normalize()
	if perturbed.IsZero() {
		return normal
	}
	return perturbed
}

// Build an orthonormal tangent frame around a unit normal.
func tangentBasis(normal types.Vec3) (tangent, bitangent types.Vec3) {
	tangent = normal.Cross(types.Vec3{0, 1, 0})
	if tangent.Len() < 1e-6 {
		tangent = normal.Cross(types.Vec3{1, 0, 0})
	}
	tangent = tangent.Normalize()
	bitangent = normal.Cross(tangent)
	return tangent, bitangent
}

// Reflect direction around a unit normal.
func reflect(direction, normal types.Vec3) types.Vec3 {
	return direction.Sub(normal.Mul(2 * direction.Dot(normal)))
}

// Lambertian term: Kd * I * max(0, N.L) / (|N||L|).
func diffuse(mat *scene.Material, intensity float64, normal, toLight types.Vec3) types.Vec3 {
	nDotL := normal.Dot(toLight)
	if nDotL <= 0 {
		return types.Vec3{}
	}
	return mat.Diffuse.Mul(intensity * nDotL / (normal.Len() * toLight.Len()))
}

// Phong term: Ks * I * (max(0, R.V) / (|R||V|))^s with R = 2(N.L)N - L.
func specular(mat *scene.Material, intensity float64, normal, toLight, view types.Vec3) types.Vec3 {
	r := normal.Mul(2 * normal.Dot(toLight)).Sub(toLight)
	rDotV := r.Dot(view)
	if rDotV <= 0 {
		return types.Vec3{}
	}
	cosAlpha := rDotV / (r.Len() * view.Len())
	return mat.Specular.Mul(intensity * math.Pow(cosAlpha, mat.SpecularExponent))
}
