package scene

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/achilleasa/octrace/types"
)

func tri(v1, v2, v3 types.Vec3) *Triangle {
	return &Triangle{V1: v1, V2: v2, V3: v3}
}

func TestOctreeSingleTriangleStaysInRoot(t *testing.T) {
	tree := NewOctree(DefaultBounds, 0)
	index := tree.InsertTriangle(tri(types.Vec3{-1, -1, 0}, types.Vec3{1, -1, 0}, types.Vec3{0, 1, 0}))

	if index != 0 {
		t.Fatalf("expected first triangle index to be 0; got %d", index)
	}
	if tree.NodeCount() != 1 {
		t.Fatalf("expected a single node; got %d", tree.NodeCount())
	}
	if !tree.IsLeaf(tree.Root()) {
		t.Fatal("expected root to be a leaf")
	}
	if got := tree.NodeTriangles(tree.Root()); len(got) != 1 || got[0] != 0 {
		t.Fatalf("expected root triangle list to be [0]; got %v", got)
	}
	if tree.MaxDepth() != DefaultMaxDepth {
		t.Fatalf("expected default max depth %d; got %d", DefaultMaxDepth, tree.MaxDepth())
	}
}

func TestOctreeDisjointTrianglesSubdivideOnce(t *testing.T) {
	tree := NewOctree(DefaultBounds, 0)
	tree.InsertTriangle(tri(types.Vec3{-10, -10, -10}, types.Vec3{-9, -10, -10}, types.Vec3{-10, -9, -10}))
	tree.InsertTriangle(tri(types.Vec3{10, 10, 10}, types.Vec3{11, 10, 10}, types.Vec3{10, 11, 10}))

	if tree.NodeCount() != 9 {
		t.Fatalf("expected 9 nodes; got %d", tree.NodeCount())
	}
	root := tree.Root()
	if tree.IsLeaf(root) {
		t.Fatal("expected root to be subdivided")
	}
	if len(tree.NodeTriangles(root)) != 0 {
		t.Fatalf("expected root triangle list to be empty; got %v", tree.NodeTriangles(root))
	}

	children := tree.Children(root)
	if len(children) != 8 {
		t.Fatalf("expected 8 children; got %d", len(children))
	}
	for octant, child := range children {
		tris := tree.NodeTriangles(child)
		switch octant {
		case 0:
			if len(tris) != 1 || tris[0] != 0 {
				t.Fatalf("expected octant 0 to hold triangle 0; got %v", tris)
			}
		case 7:
			if len(tris) != 1 || tris[0] != 1 {
				t.Fatalf("expected octant 7 to hold triangle 1; got %v", tris)
			}
		default:
			if len(tris) != 0 {
				t.Fatalf("expected octant %d to be empty; got %v", octant, tris)
			}
		}
		if tree.Depth(child) != 1 {
			t.Fatalf("expected child depth to be 1; got %d", tree.Depth(child))
		}
	}

	stats := tree.Stats()
	if stats.Subdivisions != 1 || stats.Leaves != 8 || stats.References != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestOctreeStraddlingTriangleIsDuplicated(t *testing.T) {
	tree := NewOctree(DefaultBounds, 0)
	tree.InsertTriangle(tri(types.Vec3{-10, -10, -10}, types.Vec3{-9, -10, -10}, types.Vec3{-10, -9, -10}))
	// Crosses the x = 0 split plane at y, z > 0
	tree.InsertTriangle(tri(types.Vec3{-5, 5, 5}, types.Vec3{5, 5, 5}, types.Vec3{0, 6, 5}))

	leaves := tree.LeavesContaining(tree.TriangleBox(1))
	if len(leaves) != 2 {
		t.Fatalf("expected straddling triangle to touch 2 leaves; got %d", len(leaves))
	}
	for _, leaf := range leaves {
		if tris := tree.NodeTriangles(leaf); len(tris) != 1 || tris[0] != 1 {
			t.Fatalf("expected leaf %d to hold triangle 1; got %v", leaf, tris)
		}
	}
}

func TestOctreeDepthCapFallsBackToBucket(t *testing.T) {
	tree := NewOctree(DefaultBounds, 2)
	for i := 0; i < 3; i++ {
		tree.InsertTriangle(tri(types.Vec3{1, 1, 1}, types.Vec3{2, 1, 1}, types.Vec3{1, 2, 1}))
	}

	stats := tree.Stats()
	if stats.Nodes != 17 {
		t.Fatalf("expected 17 nodes; got %d", stats.Nodes)
	}
	if stats.MaxDepth != 2 {
		t.Fatalf("expected max depth 2; got %d", stats.MaxDepth)
	}
	if stats.Subdivisions != 2 {
		t.Fatalf("expected 2 subdivisions; got %d", stats.Subdivisions)
	}

	leaves := tree.LeavesContaining(tree.TriangleBox(0))
	if len(leaves) != 1 {
		t.Fatalf("expected triangles to land in a single leaf; got %d", len(leaves))
	}
	if got := tree.NodeTriangles(leaves[0]); len(got) != 3 {
		t.Fatalf("expected bucket leaf to hold 3 triangles; got %v", got)
	}
}

func TestOctreeOutOfBoundsTriangle(t *testing.T) {
	tree := NewOctree(DefaultBounds, 0)
	index := tree.InsertTriangle(tri(types.Vec3{100, 100, 100}, types.Vec3{101, 100, 100}, types.Vec3{100, 101, 100}))

	if tree.TriangleCount() != 1 || tree.Triangle(index) == nil {
		t.Fatal("expected out of bounds triangle to be kept in the triangle store")
	}
	if tree.OutOfBounds() != 1 {
		t.Fatalf("expected 1 out of bounds triangle; got %d", tree.OutOfBounds())
	}
	if refs := tree.Stats().References; refs != 0 {
		t.Fatalf("expected no node references; got %d", refs)
	}
}

func TestOctreeStraddlingRootTriangle(t *testing.T) {
	tree := NewOctree(NewAABB(-5, 5, -5, 5, -5, 5), 0)
	tree.InsertTriangle(tri(types.Vec3{-1, -1, 0}, types.Vec3{1, -1, 0}, types.Vec3{0, 1, 0}))
	index := tree.InsertTriangle(tri(types.Vec3{4, 0, 0}, types.Vec3{8, 0, 0}, types.Vec3{4, 2, 0}))

	if got := tree.Straddling(); len(got) != 1 || got[0] != index {
		t.Fatalf("expected straddling list to be [%d]; got %v", index, got)
	}
	if stats := tree.Stats(); stats.Straddling != 1 || stats.OutOfBounds != 0 {
		t.Fatalf("expected 1 straddling and 0 out of bounds triangles; got %d and %d", stats.Straddling, stats.OutOfBounds)
	}
	if leaves := tree.LeavesContaining(tree.TriangleBox(index)); len(leaves) == 0 {
		t.Fatal("expected straddling triangle to also be indexed by the leaves it overlaps")
	}
}

func TestOctreeInsertionCompleteness(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	randVec := func() types.Vec3 {
		return types.Vec3{rng.Float64()*36 - 18, rng.Float64()*36 - 18, rng.Float64()*36 - 18}
	}

	tree := NewOctree(DefaultBounds, 6)
	for i := 0; i < 200; i++ {
		v := randVec()
		tree.InsertTriangle(tri(v, v.Add(randVec().Mul(0.1)), v.Add(randVec().Mul(0.1))))
	}

	for index := 0; index < tree.TriangleCount(); index++ {
		box := tree.TriangleBox(uint32(index))
		for _, leaf := range tree.LeavesContaining(box) {
			found := false
			for _, triIndex := range tree.NodeTriangles(leaf) {
				if triIndex == uint32(index) {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("expected leaf %d (%v) to reference triangle %d (%v)", leaf, tree.Box(leaf), index, box)
			}
		}
	}

	// Every reference must point to a triangle whose box touches the node
	for node := uint32(0); node < uint32(tree.NodeCount()); node++ {
		if !tree.IsLeaf(node) && len(tree.NodeTriangles(node)) != 0 {
			t.Fatalf("expected internal node %d to hold no triangles", node)
		}
		if tree.IsLeaf(node) && tree.Depth(node) < tree.MaxDepth() && len(tree.NodeTriangles(node)) > 1 {
			t.Fatalf("expected leaf %d above the depth cap to hold at most 1 triangle", node)
		}
		for _, triIndex := range tree.NodeTriangles(node) {
			if !tree.Box(node).Intersects(tree.TriangleBox(triIndex)) {
				t.Fatalf("node %d references triangle %d that lies outside its box", node, triIndex)
			}
		}
	}
}

func TestOctreeIndexViolationPanics(t *testing.T) {
	tree := NewOctree(DefaultBounds, 0)
	defer func() {
		err := recover()
		if err == nil {
			t.Fatal("expected an out of range node index to panic")
		}
		if msg, ok := err.(string); !ok || !strings.HasPrefix(msg, "octree:") {
			t.Fatalf("expected panic message with octree prefix; got %v", err)
		}
	}()
	tree.Box(42)
}
