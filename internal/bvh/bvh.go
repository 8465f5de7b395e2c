// Package bvh builds a bounding volume hierarchy over delimiter triangles
// for fast point-containment and ray queries, and keeps the six
// axis-aligned root planes in a separate flat list queried by linear scan.
package bvh

import (
	"sort"

	"carve3d/internal/geom"
)

// LeafThreshold is the entry-count at or below which a node becomes a leaf.
const LeafThreshold = 8

// Entry is one triangle carried by the tree, tagged with an owner ID so
// callers can trace a hit back to its delimiter and plane.
type Entry struct {
	Triangle geom.Triangle
	Centroid geom.Vec3
	OwnerID  uint64
}

// Node is one BVH node: either a leaf holding a contiguous entry range or an
// internal node with two children.
type Node struct {
	Bounds      geom.AABB
	Left, Right *Node
	EntriesLo   int
	EntriesHi   int
}

// BVH is a built tree plus the flat entry slice its nodes index into.
type BVH struct {
	Root          *Node
	Entries       []Entry
	RootTriangles []geom.Triangle
}

// Build constructs a BVH over entries (reordered in place) and attaches the
// world's six root triangles for linear-scan queries.
func Build(entries []Entry, rootTriangles []geom.Triangle) *BVH {
	b := &BVH{Entries: entries, RootTriangles: rootTriangles}
	if len(entries) == 0 {
		return b
	}
	b.Root = build(b.Entries, 0, len(b.Entries))
	return b
}

func build(entries []Entry, lo, hi int) *Node {
	bounds := geom.EmptyAABB()
	for i := lo; i < hi; i++ {
		t := entries[i].Triangle
		bounds = bounds.Expand(t.P0)
		bounds = bounds.Expand(t.P1)
		bounds = bounds.Expand(t.P2)
	}

	n := &Node{Bounds: bounds, EntriesLo: lo, EntriesHi: hi}
	if hi-lo <= LeafThreshold {
		return n
	}

	axis := bounds.LongestAxis()
	mid := (lo + hi) / 2
	slice := entries[lo:hi]
	sort.SliceStable(slice, func(i, j int) bool {
		return geom.AxisValue(slice[i].Centroid, axis) < geom.AxisValue(slice[j].Centroid, axis)
	})

	if mid == lo || mid == hi {
		return n
	}
	n.Left = build(entries, lo, mid)
	n.Right = build(entries, mid, hi)
	return n
}

// AllTriangles returns every triangle the tree was built from: entry
// triangles followed by the six root (world-boundary) triangles. Used by
// callers that need a flat occluder list, such as the GPU admissibility
// batch, rather than the tree's own bounded queries.
func (b *BVH) AllTriangles() []geom.Triangle {
	tris := make([]geom.Triangle, 0, len(b.Entries)+len(b.RootTriangles))
	for _, e := range b.Entries {
		tris = append(tris, e.Triangle)
	}
	tris = append(tris, b.RootTriangles...)
	return tris
}

// FindLeafsAtPosition descends the tree, entering every child whose AABB
// contains p, and collects all leaf nodes reached (a point may sit in more
// than one leaf's overlap region near a split).
func (b *BVH) FindLeafsAtPosition(p geom.Vec3) []*Node {
	if b.Root == nil {
		return nil
	}
	var leaves []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		if !n.Bounds.Contains(p) {
			return
		}
		if n.Left == nil && n.Right == nil {
			leaves = append(leaves, n)
			return
		}
		if n.Left != nil {
			walk(n.Left)
		}
		if n.Right != nil {
			walk(n.Right)
		}
	}
	walk(b.Root)
	return leaves
}

// CastRay tests origin+dir*t for t in [0, maxT] against the tree and the
// flat root-triangle list, returning true on the first hit found.
func (b *BVH) CastRay(origin, dir geom.Vec3, maxT float32) bool {
	return b.CastRayExcluding(origin, dir, maxT, -1)
}

// CastRayExcluding behaves like CastRay but ignores the entry at index
// skipIndex (pass -1 to exclude nothing). Used when the ray originates at a
// triangle's own centroid, so it does not self-occlude.
func (b *BVH) CastRayExcluding(origin, dir geom.Vec3, maxT float32, skipIndex int) bool {
	for _, root := range b.RootTriangles {
		if hit := geom.RayDoubleSidedTriangleIntersection(origin, dir, root.P0, root.P1, root.P2); hit.Hit && hit.T >= 0 && hit.T <= maxT {
			return true
		}
	}
	if b.Root == nil {
		return false
	}
	return castRayNode(b.Root, b.Entries, origin, dir, maxT, skipIndex)
}

func castRayNode(n *Node, entries []Entry, origin, dir geom.Vec3, maxT float32, skipIndex int) bool {
	if !aabbHitBySlab(n.Bounds, origin, dir, maxT) {
		return false
	}
	if n.Left == nil && n.Right == nil {
		for i := n.EntriesLo; i < n.EntriesHi; i++ {
			if i == skipIndex {
				continue
			}
			t := entries[i].Triangle
			if hit := geom.RayDoubleSidedTriangleIntersection(origin, dir, t.P0, t.P1, t.P2); hit.Hit && hit.T >= 0 && hit.T <= maxT {
				return true
			}
		}
		return false
	}
	if n.Left != nil && castRayNode(n.Left, entries, origin, dir, maxT, skipIndex) {
		return true
	}
	if n.Right != nil && castRayNode(n.Right, entries, origin, dir, maxT, skipIndex) {
		return true
	}
	return false
}

func aabbHitBySlab(box geom.AABB, origin, dir geom.Vec3, maxT float32) bool {
	tmin, tmax := float32(0), maxT
	axes := [3]func(geom.Vec3) float32{
		func(v geom.Vec3) float32 { return v.X },
		func(v geom.Vec3) float32 { return v.Y },
		func(v geom.Vec3) float32 { return v.Z },
	}
	mins := [3]float32{box.Min.X, box.Min.Y, box.Min.Z}
	maxs := [3]float32{box.Max.X, box.Max.Y, box.Max.Z}

	for i := 0; i < 3; i++ {
		o := axes[i](origin)
		d := axes[i](dir)
		if geom.CoreSmallEpsilon > d && d > -geom.CoreSmallEpsilon {
			if o < mins[i] || o > maxs[i] {
				return false
			}
			continue
		}
		inv := 1 / d
		t0 := (mins[i] - o) * inv
		t1 := (maxs[i] - o) * inv
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tmin {
			tmin = t0
		}
		if t1 < tmax {
			tmax = t1
		}
		if tmin > tmax {
			return false
		}
	}
	return true
}
