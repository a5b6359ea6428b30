package scene

import "fmt"

// Leaves at this depth stop subdividing and store any number of triangles.
const DefaultMaxDepth = 10

// Octree is a lazily subdivided spatial index over triangles. Nodes live in a
// flat arena addressed by uint32 indices with the root at index 0; nodes are
// appended and never removed.
//
// A leaf above the depth limit holds at most one triangle. Inserting a second
// triangle into such a leaf splits it into 8 equal octants and both triangles
// are pushed into every child their bounding box touches. Triangles that
// straddle octant boundaries are therefore referenced by more than one leaf.
//
// The octree is not safe for concurrent inserts but it may be queried by any
// number of goroutines once built.
type Octree struct {
	maxDepth int

	// Triangle store; a triangle index addresses both slices.
	triangles     []*Triangle
	triangleBoxes []AABB

	// Node arena; a node index addresses all slices.
	nodeBoxes     []AABB
	nodeChildren  [][]uint32
	nodeTriangles [][]uint32
	nodeDepth     []int

	// Triangles whose box extends past the root box. Hits on them may lie
	// outside every node so queries must test them unconditionally.
	straddling []uint32

	subdivisions int
	outOfBounds  int
}

// Summary statistics for a built octree.
type OctreeStats struct {
	Nodes    int
	Leaves   int
	MaxDepth int

	// Total triangle references across all nodes. This exceeds the triangle
	// count when triangles straddle octant boundaries.
	References int

	Subdivisions int
	OutOfBounds  int
	Straddling   int
}

// Create an empty octree covering bounds. A maxDepth <= 0 selects DefaultMaxDepth.
func NewOctree(bounds AABB, maxDepth int) *Octree {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	tree := &Octree{maxDepth: maxDepth}
	tree.appendNode(bounds, 0)
	return tree
}

// Insert a triangle and return its index. Triangles whose bounding box does
// not touch the root box are kept in the triangle store but no node references
// them. Triangles that only partially overlap the root box are indexed as
// usual and also recorded in the straddling list.
func (o *Octree) InsertTriangle(tri *Triangle) uint32 {
	box := AABBFromTriangle(tri)
	index := uint32(len(o.triangles))
	o.triangles = append(o.triangles, tri)
	o.triangleBoxes = append(o.triangleBoxes, box)

	if !o.nodeBoxes[0].Intersects(box) {
		o.outOfBounds++
		return index
	}
	if root := o.nodeBoxes[0]; !root.Contains(box.Min) || !root.Contains(box.Max) {
		o.straddling = append(o.straddling, index)
	}

	o.insert(0, index, box)
	return index
}

func (o *Octree) insert(node, triIndex uint32, box AABB) {
	if !o.nodeBoxes[node].Intersects(box) {
		return
	}

	if len(o.nodeChildren[node]) == 0 {
		if len(o.nodeTriangles[node]) == 0 || o.nodeDepth[node] >= o.maxDepth {
			o.nodeTriangles[node] = append(o.nodeTriangles[node], triIndex)
			return
		}

		displaced := o.nodeTriangles[node]
		o.nodeTriangles[node] = nil
		o.subdivide(node)
		for _, other := range displaced {
			o.insertIntoChildren(node, other, o.triangleBoxes[other])
		}
	}

	o.insertIntoChildren(node, triIndex, box)
}

func (o *Octree) insertIntoChildren(node, triIndex uint32, box AABB) {
	for _, child := range o.nodeChildren[node] {
		o.insert(child, triIndex, box)
	}
}

func (o *Octree) subdivide(node uint32) {
	parentBox := o.nodeBoxes[node]
	depth := o.nodeDepth[node] + 1
	children := make([]uint32, 8)
	for octant := 0; octant < 8; octant++ {
		children[octant] = o.appendNode(parentBox.Octant(octant), depth)
	}
	o.nodeChildren[node] = children
	o.subdivisions++
}

func (o *Octree) appendNode(box AABB, depth int) uint32 {
	index := uint32(len(o.nodeBoxes))
	o.nodeBoxes = append(o.nodeBoxes, box)
	o.nodeChildren = append(o.nodeChildren, nil)
	o.nodeTriangles = append(o.nodeTriangles, nil)
	o.nodeDepth = append(o.nodeDepth, depth)
	return index
}

func (o *Octree) checkNode(node uint32) {
	if int(node) >= len(o.nodeBoxes) {
		panic(fmt.Sprintf("octree: node index %d out of range [0, %d)", node, len(o.nodeBoxes)))
	}
}

func (o *Octree) checkTriangle(index uint32) {
	if int(index) >= len(o.triangles) {
		panic(fmt.Sprintf("octree: triangle index %d out of range [0, %d)", index, len(o.triangles)))
	}
}

// Get the root node index.
func (o *Octree) Root() uint32 {
	return 0
}

// Get the configured depth limit.
func (o *Octree) MaxDepth() int {
	return o.maxDepth
}

// Get the number of nodes in the arena.
func (o *Octree) NodeCount() int {
	return len(o.nodeBoxes)
}

// Get the bounding box of a node.
func (o *Octree) Box(node uint32) AABB {
	o.checkNode(node)
	return o.nodeBoxes[node]
}

// Get the child indices of a node. Leaves have no children; internal nodes
// always have 8. The returned slice must not be modified.
func (o *Octree) Children(node uint32) []uint32 {
	o.checkNode(node)
	return o.nodeChildren[node]
}

// Get the indices of the triangles directly assigned to a node. The returned
// slice must not be modified.
func (o *Octree) NodeTriangles(node uint32) []uint32 {
	o.checkNode(node)
	return o.nodeTriangles[node]
}

// Get the depth of a node; the root is at depth 0.
func (o *Octree) Depth(node uint32) int {
	o.checkNode(node)
	return o.nodeDepth[node]
}

// Returns true if node has no children.
func (o *Octree) IsLeaf(node uint32) bool {
	o.checkNode(node)
	return len(o.nodeChildren[node]) == 0
}

// Get a triangle by index.
func (o *Octree) Triangle(index uint32) *Triangle {
	o.checkTriangle(index)
	return o.triangles[index]
}

// Get the bounding box of a triangle by index.
func (o *Octree) TriangleBox(index uint32) AABB {
	o.checkTriangle(index)
	return o.triangleBoxes[index]
}

// Get the number of inserted triangles, including out of bounds ones.
func (o *Octree) TriangleCount() int {
	return len(o.triangles)
}

// Get the number of triangles that fell outside the root box.
func (o *Octree) OutOfBounds() int {
	return o.outOfBounds
}

// Get the indices of the triangles that extend past the root box. The
// returned slice must not be modified.
func (o *Octree) Straddling() []uint32 {
	return o.straddling
}

// Collect the indices of all leaves whose box intersects box.
func (o *Octree) LeavesContaining(box AABB) []uint32 {
	var leaves []uint32
	var visit func(node uint32)
	visit = func(node uint32) {
		if !o.nodeBoxes[node].Intersects(box) {
			return
		}
		if len(o.nodeChildren[node]) == 0 {
			leaves = append(leaves, node)
			return
		}
		for _, child := range o.nodeChildren[node] {
			visit(child)
		}
	}
	visit(0)
	return leaves
}

// Calculate octree statistics.
func (o *Octree) Stats() OctreeStats {
	stats := OctreeStats{
		Nodes:        len(o.nodeBoxes),
		Subdivisions: o.subdivisions,
		OutOfBounds:  o.outOfBounds,
		Straddling:   len(o.straddling),
	}
	for node := range o.nodeBoxes {
		if len(o.nodeChildren[node]) == 0 {
			stats.Leaves++
		}
		if o.nodeDepth[node] > stats.MaxDepth {
			stats.MaxDepth = o.nodeDepth[node]
		}
		stats.References += len(o.nodeTriangles[node])
	}
	return stats
}
