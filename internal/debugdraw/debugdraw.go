// Package debugdraw builds a flat, mask-selectable buffer of primitives
// (lines, triangles, cuboids, spheres, each with a label) describing a world's
// internal state, for a viewer to render without reaching into world
// internals directly.
package debugdraw

import (
	"carve3d/internal/bvh"
	"carve3d/internal/delimiter"
	"carve3d/internal/flood"
	"carve3d/internal/geom"
)

// Mask selects which debug-draw layers to populate.
type Mask uint8

const (
	Anchors Mask = 1 << iota
	Delimiters
	RootPlanes
	DelimiterPlanes
	FloodCells
	BVHNodes
	All = Anchors | Delimiters | RootPlanes | DelimiterPlanes | FloodCells | BVHNodes
)

// Line is a single debug line segment.
type Line struct {
	A, B  geom.Vec3
	Label string
}

// Triangle is a debug-drawn triangle (not necessarily load-bearing
// geometry — just a visualisation primitive).
type Triangle struct {
	Tri   geom.Triangle
	Label string
}

// Cuboid is an axis-aligned box, typically the world-space bounds of a
// delimiter's plane triangles, or a BVH node's bounds.
type Cuboid struct {
	Box   geom.AABB
	Label string
}

// Sphere marks a point of interest (an anchor, a flood-fill cell centre).
type Sphere struct {
	Centre geom.Vec3
	Radius float32
	Label  string
}

// Buffer is the flat packed output: everything a viewer needs to draw one
// frame of debug state.
type Buffer struct {
	Lines     []Line
	Triangles []Triangle
	Cuboids   []Cuboid
	Spheres   []Sphere
}

// AddAnchor appends one sphere at an anchor's position.
func (b *Buffer) AddAnchor(pos geom.Vec3, label string, radius float32) {
	b.Spheres = append(b.Spheres, Sphere{Centre: pos, Radius: radius, Label: label})
}

// AddDelimiterBox appends a wireframe cuboid covering the world-space,
// axis-aligned bounds of all of a delimiter's plane triangles; for a
// rotated delimiter this box is larger than its local extents.
func (b *Buffer) AddDelimiterBox(d *delimiter.Delimiter) {
	box := geom.EmptyAABB()
	for i := 0; i < d.PlaneCount; i++ {
		for _, t := range d.Planes[i].Triangles {
			box = box.Expand(t.P0)
			box = box.Expand(t.P1)
			box = box.Expand(t.P2)
		}
	}
	b.Cuboids = append(b.Cuboids, Cuboid{Box: box, Label: d.Label})
}

// AddDelimiterPlanes appends one Triangle entry per surviving triangle
// across all of d's planes.
func (b *Buffer) AddDelimiterPlanes(d *delimiter.Delimiter) {
	d.AllTriangles(func(planeIdx, triIdx int, t geom.Triangle) {
		b.Triangles = append(b.Triangles, Triangle{Tri: t, Label: d.Label})
	})
}

// AddRootPlanes appends one Triangle entry per root triangle.
func (b *Buffer) AddRootPlanes(roots []geom.Triangle) {
	for _, t := range roots {
		b.Triangles = append(b.Triangles, Triangle{Tri: t, Label: "root"})
	}
}

// AddFloodCells appends one sphere per flooded cell centre.
func (b *Buffer) AddFloodCells(g *flood.Grid, cells []flood.Cell, radius float32) {
	for _, c := range cells {
		b.Spheres = append(b.Spheres, Sphere{Centre: g.WorldCentre(c), Radius: radius, Label: "cell"})
	}
}

// AddBVHNodes walks the tree and appends one cuboid per node visited,
// labelling leaves distinctly from internal nodes.
func (b *Buffer) AddBVHNodes(tree *bvh.BVH) {
	if tree == nil || tree.Root == nil {
		return
	}
	var walk func(n *bvh.Node)
	walk = func(n *bvh.Node) {
		label := "node"
		if n.Left == nil && n.Right == nil {
			label = "leaf"
		}
		b.Cuboids = append(b.Cuboids, Cuboid{Box: n.Bounds, Label: label})
		if n.Left != nil {
			walk(n.Left)
		}
		if n.Right != nil {
			walk(n.Right)
		}
	}
	walk(tree.Root)
}
