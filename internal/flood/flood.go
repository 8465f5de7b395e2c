// Package flood performs a voxel-grid breadth-first flood fill from an
// anchor point, stopping at any cell pair whose connecting segment is
// blocked by a delimiter or root triangle.
package flood

import (
	"math"

	"carve3d/internal/bvh"
	"carve3d/internal/compute"
	"carve3d/internal/geom"
)

// CellState follows the Untouched -> InFrontier -> Flooded progression;
// there are no reverse edges and no terminal state besides Flooded.
type CellState int

const (
	Untouched CellState = iota
	InFrontier
	Flooded
)

// Cell is an integer grid coordinate.
type Cell struct {
	X, Y, Z int
}

// Grid describes a flood-fill lattice centred so the anchor sits exactly at
// a cell centre.
type Grid struct {
	CellSize     float32
	Counts       [3]int // per-axis cell count, always odd
	cellsToWorld geom.Vec3
	half         geom.Vec3
}

// NewGrid builds a grid for a world of half-size halfSize and the given cell
// size, phased so that anchor lies at the centre of its containing cell.
func NewGrid(halfSize geom.Vec3, cellSize float32, anchor geom.Vec3) *Grid {
	g := &Grid{CellSize: cellSize, half: halfSize}
	g.Counts[0] = geom.CeilToOdd(2 * halfSize.X / cellSize)
	g.Counts[1] = geom.CeilToOdd(2 * halfSize.Y / cellSize)
	g.Counts[2] = geom.CeilToOdd(2 * halfSize.Z / cellSize)

	phase := func(a float32) float32 {
		m := float32(math.Mod(float64(a), float64(cellSize)))
		return m
	}
	// cellsToWorld absorbs both the half-size and the anchor's fractional
	// phase so that world = cell*cellSize - cellsToWorld places the anchor
	// exactly at its cell's centre.
	centreIndex := func(count int) float32 {
		return float32(count/2) * cellSize
	}
	g.cellsToWorld = geom.Vec3{
		X: centreIndex(g.Counts[0]) - phase(anchor.X),
		Y: centreIndex(g.Counts[1]) - phase(anchor.Y),
		Z: centreIndex(g.Counts[2]) - phase(anchor.Z),
	}
	return g
}

// WorldCentre returns the world-space centre of cell c.
func (g *Grid) WorldCentre(c Cell) geom.Vec3 {
	return geom.Vec3{
		X: float32(c.X)*g.CellSize - g.cellsToWorld.X,
		Y: float32(c.Y)*g.CellSize - g.cellsToWorld.Y,
		Z: float32(c.Z)*g.CellSize - g.cellsToWorld.Z,
	}
}

// CellContaining returns the grid cell whose centre is nearest p.
func (g *Grid) CellContaining(p geom.Vec3) Cell {
	idx := func(v, offset float32) int {
		return int(math.Round(float64((v + offset) / g.CellSize)))
	}
	return Cell{
		X: idx(p.X, g.cellsToWorld.X),
		Y: idx(p.Y, g.cellsToWorld.Y),
		Z: idx(p.Z, g.cellsToWorld.Z),
	}
}

func (g *Grid) inBounds(c Cell) bool {
	return c.X >= 0 && c.X < g.Counts[0] &&
		c.Y >= 0 && c.Y < g.Counts[1] &&
		c.Z >= 0 && c.Z < g.Counts[2]
}

var neighbourOffsets = [6]Cell{
	{X: 1}, {X: -1},
	{Y: 1}, {Y: -1},
	{Z: 1}, {Z: -1},
}

// Result is the outcome of a flood fill: every cell reached, in discovery
// order.
type Result struct {
	Flooded []Cell
}

// Run floods outward from anchor across g, treating a move between two
// adjacent cells as admissible only when the segment from one centre to the
// other hits nothing in tree (and tree's root triangles). Every
// pair is tested one at a time on the CPU.
func Run(g *Grid, anchor geom.Vec3, tree *bvh.BVH) Result {
	return run(g, anchor, tree, nil)
}

// RunGPU behaves like Run but, when batch is non-nil, tests each cell's
// up-to-six neighbour candidates in one GPU compute dispatch instead of one
// CPU raycast per pair. The CPU path remains authoritative: any cell whose
// batch dispatch errors falls back to a per-pair CastRay for that cell, so
// an unavailable or failing GPU never changes the flood's result, only its
// cost.
func RunGPU(g *Grid, anchor geom.Vec3, tree *bvh.BVH, batch *compute.AdmissibilityBatch) Result {
	return run(g, anchor, tree, batch)
}

func run(g *Grid, anchor geom.Vec3, tree *bvh.BVH, batch *compute.AdmissibilityBatch) Result {
	var occluders []compute.Tri
	if batch != nil && tree != nil {
		occluders = trianglesToCompute(tree.AllTriangles())
	}

	states := make(map[Cell]CellState)
	start := g.CellContaining(anchor)

	var frontier []Cell
	states[start] = InFrontier
	frontier = append(frontier, start)

	var result Result
	for len(frontier) > 0 {
		cur := frontier[0]
		frontier = frontier[1:]
		states[cur] = Flooded
		result.Flooded = append(result.Flooded, cur)

		curCentre := g.WorldCentre(cur)
		var candidates []Cell
		var dirs []geom.Vec3
		for _, off := range neighbourOffsets {
			n := Cell{X: cur.X + off.X, Y: cur.Y + off.Y, Z: cur.Z + off.Z}
			if !g.inBounds(n) || states[n] != Untouched {
				continue
			}
			nCentre := g.WorldCentre(n)
			candidates = append(candidates, n)
			dirs = append(dirs, geom.Vec3{X: nCentre.X - curCentre.X, Y: nCentre.Y - curCentre.Y, Z: nCentre.Z - curCentre.Z})
		}
		if len(candidates) == 0 {
			continue
		}

		for i, n := range testAdmissible(curCentre, dirs, tree, batch, occluders) {
			if n {
				states[candidates[i]] = InFrontier
				frontier = append(frontier, candidates[i])
			}
		}
	}
	return result
}

// testAdmissible reports, for each of dirs, whether the segment from origin
// along it is admissible (unblocked). It dispatches one GPU batch per call
// when batch is available, falling back to a CPU CastRay per direction on a
// dispatch error or when batch is nil.
func testAdmissible(origin geom.Vec3, dirs []geom.Vec3, tree *bvh.BVH, batch *compute.AdmissibilityBatch, occluders []compute.Tri) []bool {
	if batch != nil {
		segments := make([]compute.Segment, len(dirs))
		for i, d := range dirs {
			segments[i] = compute.Segment{OX: origin.X, OY: origin.Y, OZ: origin.Z, DX: d.X, DY: d.Y, DZ: d.Z}
		}
		if blocked, err := batch.Test(segments, occluders); err == nil {
			out := make([]bool, len(blocked))
			for i, b := range blocked {
				out[i] = !b
			}
			return out
		}
	}
	out := make([]bool, len(dirs))
	for i, d := range dirs {
		out[i] = admissible(origin, d, tree)
	}
	return out
}

func admissible(origin, dir geom.Vec3, tree *bvh.BVH) bool {
	if tree == nil {
		return true
	}
	return !tree.CastRay(origin, dir, 1)
}

func trianglesToCompute(tris []geom.Triangle) []compute.Tri {
	out := make([]compute.Tri, len(tris))
	for i, t := range tris {
		out[i] = compute.Tri{
			AX: t.P0.X, AY: t.P0.Y, AZ: t.P0.Z,
			BX: t.P1.X, BY: t.P1.Y, BZ: t.P1.Z,
			CX: t.P2.X, CY: t.P2.Y, CZ: t.P2.Z,
		}
	}
	return out
}
