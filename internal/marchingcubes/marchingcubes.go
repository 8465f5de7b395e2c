// Package marchingcubes extracts a triangulated boundary surface from a
// flood-filled occupancy grid. It honours the same sampled-volume-in,
// triangle-mesh-out contract as a full marching-cubes renderer, but since
// the input here is already a binary occupancy grid (not a continuous
// scalar field), the surface is built by emitting a quad (as two
// triangles) for every face of a flooded cell that borders an unflooded
// or out-of-bounds neighbour, rather than resolving the full 256-case
// cube table a scalar-field isosurface would need.
package marchingcubes

import (
	"carve3d/internal/flood"
	"carve3d/internal/geom"
)

// Occupancy reports whether a cell is part of the flooded (occupied)
// region.
type Occupancy interface {
	Occupied(c flood.Cell) bool
}

// Set is a simple Occupancy backed by a map, built from a flood.Result.
type Set map[flood.Cell]bool

// Occupied implements Occupancy.
func (s Set) Occupied(c flood.Cell) bool { return s[c] }

// FromResult builds a Set from every cell a flood fill reached.
func FromResult(r flood.Result) Set {
	s := make(Set, len(r.Flooded))
	for _, c := range r.Flooded {
		s[c] = true
	}
	return s
}

var faceOffsets = [6]flood.Cell{
	{X: 1}, {X: -1},
	{Y: 1}, {Y: -1},
	{Z: 1}, {Z: -1},
}

// Extract walks ordered (every flooded cell, in the flood fill's own
// discovery order) and emits a face quad (as two triangles, outward normal)
// wherever the neighbour across that face is not occupied in occ. Walking
// ordered rather than ranging a map keeps the output triangle order
// deterministic across runs.
func Extract(g *flood.Grid, ordered []flood.Cell, occ Occupancy) []geom.Triangle {
	var tris []geom.Triangle
	for _, c := range ordered {
		centre := g.WorldCentre(c)
		half := g.CellSize / 2
		for _, off := range faceOffsets {
			n := flood.Cell{X: c.X + off.X, Y: c.Y + off.Y, Z: c.Z + off.Z}
			if occ.Occupied(n) {
				continue
			}
			tris = append(tris, faceQuad(centre, off, half)...)
		}
	}
	return tris
}

func faceQuad(centre geom.Vec3, outward flood.Cell, half float32) []geom.Triangle {
	normal := geom.Vec3{X: float32(outward.X), Y: float32(outward.Y), Z: float32(outward.Z)}
	u, v := perpAxes(outward)
	faceCentre := geom.Vec3{
		X: centre.X + normal.X*half,
		Y: centre.Y + normal.Y*half,
		Z: centre.Z + normal.Z*half,
	}
	left := scale(u, -half)
	right := scale(u, half)
	top := scale(v, half)
	bottom := scale(v, -half)

	corner := func(a, b geom.Vec3) geom.Vec3 { return add(add(faceCentre, a), b) }
	t1 := geom.NewTriangle(corner(left, top), corner(right, bottom), corner(left, bottom))
	t2 := geom.NewTriangle(corner(left, top), corner(right, top), corner(right, bottom))
	t1.Normal, t2.Normal = normal, normal
	return []geom.Triangle{t1, t2}
}

func perpAxes(outward flood.Cell) (geom.Vec3, geom.Vec3) {
	if outward.X != 0 {
		return geom.Vec3{Y: 1}, geom.Vec3{Z: 1}
	}
	if outward.Y != 0 {
		return geom.Vec3{X: 1}, geom.Vec3{Z: 1}
	}
	return geom.Vec3{X: 1}, geom.Vec3{Y: 1}
}

func scale(v geom.Vec3, s float32) geom.Vec3 {
	return geom.Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

func add(a, b geom.Vec3) geom.Vec3 {
	return geom.Vec3{X: a.X + b.X, Y: a.Y + b.Y, Z: a.Z + b.Z}
}
