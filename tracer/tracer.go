package tracer

import (
	"math"

	"github.com/achilleasa/octrace/asset/scene"
	"github.com/achilleasa/octrace/types"
)

const (
	// Maximum number of mirror bounces.
	DefaultMaxDepth = 5

	// Offset applied along the surface normal to secondary ray origins so
	// that they do not re-intersect the surface they leave from.
	DefaultShadowBias = 1e-4
)

// Material applied to triangles that do not reference one.
var fallbackMaterial = &scene.Material{
	Name:             "fallback",
	Ambient:          types.Vec3{0.2, 0.2, 0.2},
	Diffuse:          types.Vec3{0.7, 0.7, 0.7},
	SpecularExponent: scene.NoSpecular,
}

// A RayTracer computes the color seen along a ray by querying the scene
// octree and shading the closest hit with Phong lighting, shadow rays and
// mirror reflections. A RayTracer never mutates the scene and may be used
// by multiple goroutines concurrently.
type RayTracer struct {
	scene      *scene.Scene
	maxDepth   int
	background types.Color
	shadowBias float64

	// Invoked with the recursion depth of every traced ray.
	onTrace func(depth int)
}

// A functional option for configuring a RayTracer.
type Option func(*RayTracer)

// Set the maximum number of reflection bounces.
func WithMaxDepth(depth int) Option {
	return func(rt *RayTracer) {
		if depth >= 0 {
			rt.maxDepth = depth
		}
	}
}

// Set the color returned for rays that miss all geometry.
func WithBackground(c types.Color) Option {
	return func(rt *RayTracer) {
		rt.background = c
	}
}

// Set the offset applied to secondary ray origins.
func WithShadowBias(bias float64) Option {
	return func(rt *RayTracer) {
		if bias > 0 {
			rt.shadowBias = bias
		}
	}
}

// Create a new ray tracer for a loaded scene.
func NewRayTracer(sc *scene.Scene, opts ...Option) *RayTracer {
	rt := &RayTracer{
		scene:      sc,
		maxDepth:   DefaultMaxDepth,
		background: types.White,
		shadowBias: DefaultShadowBias,
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Get the traced scene.
func (rt *RayTracer) Scene() *scene.Scene {
	return rt.scene
}

// Get the scene camera.
func (rt *RayTracer) Camera() *scene.Camera {
	return rt.scene.Camera
}

// Get the configured reflection depth.
func (rt *RayTracer) MaxDepth() int {
	return rt.maxDepth
}

// Get the color seen along a ray.
func (rt *RayTracer) GetRayColour(origin, direction types.Vec3) types.Color {
	return rt.trace(NewRay(origin, direction), 0)
}

func (rt *RayTracer) trace(ray Ray, depth int) types.Color {
	if rt.onTrace != nil {
		rt.onTrace(depth)
	}

	hit, ok := ray.IntersectScene(rt.scene.Octree, math.Inf(1))
	if !ok {
		return rt.background
	}

	tri := hit.Triangle
	mat := tri.Material
	if mat == nil {
		mat = fallbackMaterial
	}

	point := ray.PointAt(hit.T)
	uv := scene.Interpolate2(tri.T1, tri.T2, tri.T3, hit.U, hit.V)

	texel := types.White
	if mat.Texture != nil {
		texel = mat.Texture.Texel(uv[0], uv[1])
	}

	// Secondary rays leave the surface along the unperturbed normal; a bump
	// mapped normal may point below the surface.
	surfaceNormal := shadingNormal(tri, hit.U, hit.V, ray.Direction)
	offsetPoint := point.Add(surfaceNormal.Mul(rt.shadowBias))

	normal := surfaceNormal
	if mat.BumpMap != nil {
		normal = perturbNormal(normal, mat.BumpMap.Texel(uv[0], uv[1]))
	}

	local := texel.Modulate(rt.lighting(offsetPoint, normal, ray.Direction, mat))
	if !mat.IsReflective() || depth >= rt.maxDepth {
		return local
	}

	reflected := rt.trace(NewRay(offsetPoint, reflect(ray.Direction, normal)), depth+1)
	return local.Lerp(reflected, mat.Reflectivity)
}

// Accumulate the per-channel lighting factors for a surface point. Shadow
// rays start at shadowOrigin, the hit point offset off the surface. Point and
// directional lights that are occluded do not contribute.
func (rt *RayTracer) lighting(shadowOrigin, normal, rayDir types.Vec3, mat *scene.Material) types.Vec3 {
	var total types.Vec3
	view := rayDir.Neg()

	for _, light := range rt.scene.Lights {
		var toLight types.Vec3
		maxT := math.Inf(1)

		switch light.Type {
		case scene.AmbientLight:
			total = total.Add(mat.Ambient.Mul(light.Intensity))
			continue
		case scene.PointLight:
			toLight = light.Position.Sub(shadowOrigin)
			maxT = toLight.Len()
			toLight = toLight.Normalize()
		case scene.DirectionalLight:
			toLight = light.Direction.Normalize()
		default:
			continue
		}

		if _, blocked := NewRay(shadowOrigin, toLight).IntersectScene(rt.scene.Octree, maxT); blocked {
			continue
		}

		total = total.Add(diffuse(mat, light.Intensity, normal, toLight))
		if mat.HasSpecular() {
			total = total.Add(specular(mat, light.Intensity, normal, toLight, view))
		}
	}

	return total
}
