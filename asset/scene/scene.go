package scene

import (
	"bytes"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/achilleasa/octrace/asset/texture"
	"github.com/achilleasa/octrace/types"
	"github.com/olekukonko/tablewriter"
)

// The octree bounds used when a scene does not define its own.
var DefaultBounds = NewAABB(-20, 20, -20, 20, -20, 20)

// A loaded scene. All fields are populated by a scene reader and must be
// treated as read-only afterwards; the tracer shares a single Scene instance
// between all render workers.
type Scene struct {
	// Geometry pools referenced by the triangle list.
	VertexList []types.Vec3
	NormalList []types.Vec3
	UvList     []types.Vec2

	Triangles []*Triangle

	// Materials indexed by name.
	Materials map[string]*Material

	// Decoded textures, including bump maps.
	Textures []*texture.Texture

	Lights []Light
	Camera *Camera

	// Spatial index over Triangles.
	Octree *Octree
}

// Create an empty scene with the default camera and an empty octree
// covering bounds.
func NewScene(bounds AABB, maxDepth int) *Scene {
	return &Scene{
		Materials: make(map[string]*Material),
		Camera:    DefaultCamera(),
		Octree:    NewOctree(bounds, maxDepth),
	}
}

// Append a triangle to the scene and index it.
func (sc *Scene) AddTriangle(tri *Triangle) uint32 {
	sc.Triangles = append(sc.Triangles, tri)
	return sc.Octree.InsertTriangle(tri)
}

// Get the material names in sorted order.
func (sc *Scene) MaterialNames() []string {
	names := make([]string, 0, len(sc.Materials))
	for name := range sc.Materials {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build a tabular representation of scene statistics.
func (sc *Scene) Stats() string {
	var texData int
	for _, tex := range sc.Textures {
		texData += len(tex.Data)
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Asset Type", "Asset", "Count", "Size"})
	table.Append([]string{"Geometry", "---", "", fmtSize(sc.VertexList, sc.NormalList, sc.UvList)})
	table.Append([]string{"", "Vertices", fmt.Sprint(len(sc.VertexList)), fmtSize(sc.VertexList)})
	table.Append([]string{"", "Normals", fmt.Sprint(len(sc.NormalList)), fmtSize(sc.NormalList)})
	table.Append([]string{"", "UVs", fmt.Sprint(len(sc.UvList)), fmtSize(sc.UvList)})
	table.Append([]string{"", "Triangles", fmt.Sprint(len(sc.Triangles)), fmtSize(sc.Triangles)})
	table.Append([]string{" ", " ", " ", " "})
	table.Append([]string{"Materials", "---", fmt.Sprint(len(sc.Materials)), ""})
	for _, name := range sc.MaterialNames() {
		table.Append([]string{"", name, "", ""})
	}
	table.Append([]string{" ", " ", " ", " "})
	table.Append([]string{"Textures", "---", fmt.Sprint(len(sc.Textures)), fmtBytes(texData * 3)})
	for _, tex := range sc.Textures {
		table.Append([]string{"", tex.Name, fmt.Sprintf("%dx%d", tex.Width, tex.Height), fmtBytes(len(tex.Data) * 3)})
	}
	table.Append([]string{" ", " ", " ", " "})
	table.Append([]string{"Lights", "---", fmt.Sprint(len(sc.Lights)), ""})
	for _, light := range sc.Lights {
		table.Append([]string{"", light.String(), "", ""})
	}
	if sc.Octree != nil {
		stats := sc.Octree.Stats()
		table.Append([]string{" ", " ", " ", " "})
		table.Append([]string{"Octree", "---", "", ""})
		table.Append([]string{"", "Nodes", fmt.Sprint(stats.Nodes), ""})
		table.Append([]string{"", "Leaves", fmt.Sprint(stats.Leaves), ""})
		table.Append([]string{"", "Max depth", fmt.Sprint(stats.MaxDepth), ""})
		table.Append([]string{"", "Triangle refs", fmt.Sprint(stats.References), ""})
		table.Append([]string{"", "Out of bounds", fmt.Sprint(stats.OutOfBounds), ""})
	}
	table.SetFooter([]string{"Total", " ", " ", strings.TrimLeft(fmtSize(sc.VertexList, sc.NormalList, sc.UvList, sc.Triangles), " ")})

	table.Render()
	return buf.String()
}

// Sum the total space used by a set of slices and return back a formatted
// value with the appropriate byte/kb/mb unit.
func fmtSize(items ...interface{}) string {
	var totalBytes int
	for _, item := range items {
		t := reflect.TypeOf(item)
		v := reflect.ValueOf(item)
		if v.Len() == 0 {
			continue
		}

		totalBytes += int(t.Elem().Size()) * v.Len()
	}
	return fmtBytes(totalBytes)
}

func fmtBytes(totalBytes int) string {
	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", totalBytes)
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", float64(totalBytes)/1e3)
	}
	return fmt.Sprintf("%5.1f mb", float64(totalBytes)/1e6)
}
