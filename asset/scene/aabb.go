package scene

import (
	"fmt"

	"github.com/achilleasa/octrace/types"
)

// An axis-aligned bounding box. For a valid box Min[i] <= Max[i] on every axis.
type AABB struct {
	Min types.Vec3
	Max types.Vec3
}

// Create a new AABB from its per-axis extents.
func NewAABB(minX, maxX, minY, maxY, minZ, maxZ float64) AABB {
	return AABB{
		Min: types.Vec3{minX, minY, minZ},
		Max: types.Vec3{maxX, maxY, maxZ},
	}
}

// Calculate the tightest AABB that encloses a triangle.
func AABBFromTriangle(tri *Triangle) AABB {
	return AABB{
		Min: types.MinVec3(types.MinVec3(tri.V1, tri.V2), tri.V3),
		Max: types.MaxVec3(types.MaxVec3(tri.V1, tri.V2), tri.V3),
	}
}

// Check whether two boxes overlap. Boxes that merely touch on a face, edge or
// corner are considered to be intersecting.
func (b AABB) Intersects(other AABB) bool {
	for axis := 0; axis < 3; axis++ {
		if b.Max[axis] < other.Min[axis] || b.Min[axis] > other.Max[axis] {
			return false
		}
	}
	return true
}

// Check whether a point lies inside the box or on its boundary.
func (b AABB) Contains(p types.Vec3) bool {
	for axis := 0; axis < 3; axis++ {
		if p[axis] < b.Min[axis] || p[axis] > b.Max[axis] {
			return false
		}
	}
	return true
}

// Get the box center.
func (b AABB) Center() types.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Get the box extents along each axis.
func (b AABB) Size() types.Vec3 {
	return b.Max.Sub(b.Min)
}

// Get one of the eight octants produced by splitting the box at its center.
// Bit 0 of index selects the upper x half, bit 1 the upper y half and bit 2
// the upper z half.
func (b AABB) Octant(index int) AABB {
	center := b.Center()
	out := AABB{Min: b.Min, Max: center}
	for axis := 0; axis < 3; axis++ {
		if index&(1<<uint(axis)) != 0 {
			out.Min[axis] = center[axis]
			out.Max[axis] = b.Max[axis]
		}
	}
	return out
}

func (b AABB) String() string {
	return fmt.Sprintf("[%v - %v]", b.Min, b.Max)
}
