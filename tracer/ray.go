package tracer

import (
	"math"

	"github.com/achilleasa/octrace/asset/scene"
	"github.com/achilleasa/octrace/types"
)

// Intersection tolerance; float64 machine epsilon.
const Epsilon = 2.220446049250313e-16

// A ray with an origin and a direction. The direction does not need to be
// normalized; hit distances are expressed in multiples of its length.
type Ray struct {
	Origin    types.Vec3
	Direction types.Vec3
}

// A ray-triangle intersection.
type Hit struct {
	// Distance along the ray.
	T float64

	// Barycentric coordinates of the hit point. U weights the second
	// triangle vertex and V the third one.
	U, V float64

	Triangle      *scene.Triangle
	TriangleIndex uint32
}

// Create a new ray.
func NewRay(origin, direction types.Vec3) Ray {
	return Ray{Origin: origin, Direction: direction}
}

// Get the point at distance t along the ray.
func (r Ray) PointAt(t float64) types.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Run the slab test against box and return the parametric entry and exit
// distances of the ray's supporting line.
func (r Ray) slabs(box scene.AABB) (tmin, tmax float64, ok bool) {
	tmin, tmax = math.Inf(-1), math.Inf(1)
	for axis := 0; axis < 3; axis++ {
		if r.Direction[axis] == 0 {
			// Parallel to the slab; reject unless the origin lies between its planes
			if r.Origin[axis] < box.Min[axis] || r.Origin[axis] > box.Max[axis] {
				return 0, 0, false
			}
			continue
		}

		invDir := 1.0 / r.Direction[axis]
		t1 := (box.Min[axis] - r.Origin[axis]) * invDir
		t2 := (box.Max[axis] - r.Origin[axis]) * invDir
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
	}

	if tmax < 0 || tmin > tmax {
		return 0, 0, false
	}
	return tmin, tmax, true
}

// Intersect the ray with an AABB using the slab method. If the ray origin
// lies inside the box, the returned distance is the exit distance; otherwise
// it is the entry distance.
func (r Ray) IntersectAABB(box scene.AABB) (float64, bool) {
	tmin, tmax, ok := r.slabs(box)
	if !ok {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// Get the distance at which the ray enters box; 0 if the origin is inside.
func (r Ray) entryDistance(box scene.AABB) (float64, bool) {
	tmin, _, ok := r.slabs(box)
	if !ok {
		return 0, false
	}
	return math.Max(tmin, 0), true
}

// Intersect the ray with a triangle using the Möller-Trumbore algorithm.
// Rays parallel to the triangle plane and hits at t <= Epsilon are rejected.
func (r Ray) IntersectTriangle(tri *scene.Triangle) (Hit, bool) {
	edge1 := tri.V2.Sub(tri.V1)
	edge2 := tri.V3.Sub(tri.V1)

	h := r.Direction.Cross(edge2)
	a := edge1.Dot(h)
	if math.Abs(a) < Epsilon {
		return Hit{}, false
	}

	f := 1.0 / a
	s := r.Origin.Sub(tri.V1)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return Hit{}, false
	}

	q := s.Cross(edge1)
	v := f * r.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return Hit{}, false
	}

	t := f * edge2.Dot(q)
	if t <= Epsilon {
		return Hit{}, false
	}

	return Hit{T: t, U: u, V: v, Triangle: tri}, true
}

type octantCandidate struct {
	node  uint32
	entry float64
}

// Find the closest intersection with a distance less than maxT among the
// triangles referenced by node and its subtree. Queries on the root node also
// test the triangles that extend past the root box.
//
// Children are visited in order of increasing entry distance. Once the
// closest hit found so far lies before the entry point of the next child,
// the remaining children cannot contain a closer hit and are skipped.
func (r Ray) IntersectOctant(tree *scene.Octree, node uint32, maxT float64) (Hit, bool) {
	best := Hit{T: maxT}
	found := false

	if node == tree.Root() {
		for _, triIndex := range tree.Straddling() {
			if hit, ok := r.IntersectTriangle(tree.Triangle(triIndex)); ok && hit.T < best.T {
				hit.TriangleIndex = triIndex
				best, found = hit, true
			}
		}
	}

	for _, triIndex := range tree.NodeTriangles(node) {
		if hit, ok := r.IntersectTriangle(tree.Triangle(triIndex)); ok && hit.T < best.T {
			hit.TriangleIndex = triIndex
			best, found = hit, true
		}
	}

	children := tree.Children(node)
	if len(children) == 0 {
		return best, found
	}

	var candidates [8]octantCandidate
	numCandidates := 0
	for _, child := range children {
		entry, ok := r.entryDistance(tree.Box(child))
		if !ok || entry >= best.T {
			continue
		}

		// Insertion sort by entry distance
		slot := numCandidates
		for slot > 0 && candidates[slot-1].entry > entry {
			candidates[slot] = candidates[slot-1]
			slot--
		}
		candidates[slot] = octantCandidate{node: child, entry: entry}
		numCandidates++
	}

	for index := 0; index < numCandidates; index++ {
		if candidates[index].entry >= best.T {
			break
		}
		if hit, ok := r.IntersectOctant(tree, candidates[index].node, best.T); ok {
			best, found = hit, true
		}
	}

	return best, found
}

// Find the closest intersection with the octree geometry at a distance less than maxT.
func (r Ray) IntersectScene(tree *scene.Octree, maxT float64) (Hit, bool) {
	return r.IntersectOctant(tree, tree.Root(), maxT)
}
