// Package world orchestrates the full pipeline: registering anchors and
// delimiters, resolving cutting surfaces, building a BVH, and flooding each
// anchor's owned region into a triangle mesh.
package world

import (
	"context"
	"fmt"

	"carve3d/internal/arena"
	"carve3d/internal/assembler"
	"carve3d/internal/bvh"
	"carve3d/internal/clipresolve"
	"carve3d/internal/compute"
	"carve3d/internal/debugdraw"
	"carve3d/internal/delimiter"
	"carve3d/internal/flood"
	"carve3d/internal/geom"
	"carve3d/internal/marchingcubes"
	"carve3d/internal/meshopt"
)

// gpuAdmissibilityThreshold is the delimiter-triangle count above which
// CalculateVolumes tries to accelerate flood-fill admissibility tests on
// the GPU, mirroring the teacher's own GPUBroadPhaseThreshold gate.
const gpuAdmissibilityThreshold = 256

// maxGPUBatchSegments bounds one GPU dispatch to the worst case of six
// neighbour candidates per flooded cell, with headroom.
const maxGPUBatchSegments = 64

// Phase tracks the world's lifecycle: Empty -> Populated -> Clipped ->
// BVHReady -> Solved -> Destroyed. There are no reverse edges; create_bvh
// must be re-run (Clipped -> BVHReady) whenever a delimiter is mutated
// after the first BVH build.
type Phase int

const (
	Empty Phase = iota
	Populated
	Clipped
	BVHReady
	Solved
	Destroyed
)

// AnchorID is a stable handle into a World's anchor registry.
type AnchorID = arena.ID

// DelimiterID is a stable handle into a World's delimiter registry.
type DelimiterID = arena.ID

// Anchor is a seed point whose owned region the world computes.
type Anchor struct {
	Position     geom.Vec3
	Label        string
	Triangles    []geom.Triangle
	Grid         *flood.Grid  // retained after CalculateVolumes, for debug draw
	FloodedCells []flood.Cell // retained after CalculateVolumes, for debug draw
}

// World owns every object allocated during a solve: anchors, delimiters,
// the six inward-facing root triangles, the resolved BVH, and flood-fill
// scratch state.
type World struct {
	HalfSize      geom.Vec3
	anchors       arena.Pool[Anchor]
	delimiters    arena.Pool[*delimiter.Delimiter]
	rootTriangles []geom.Triangle
	tree          *bvh.BVH
	phase         Phase
}

// New installs the arena and the six inward-facing root triangles for a box
// world spanning [-halfSize, halfSize].
func New(halfSize geom.Vec3) *World {
	w := &World{HalfSize: halfSize, phase: Empty}
	w.rootTriangles = buildRootTriangles(halfSize)
	w.phase = Populated
	return w
}

// ReserveObjects pre-sizes both registries so that Anchor/Delimiter
// pointers handed out by AddAnchor/AddDelimiter stay stable across
// subsequent additions, up to the reserved counts.
func (w *World) ReserveObjects(numAnchors, numDelimiters int) {
	w.anchors.Reserve(numAnchors)
	w.delimiters.Reserve(numDelimiters)
}

// AddAnchor registers a new anchor. Returns an error if the position lies
// outside the world's half-extents.
func (w *World) AddAnchor(position geom.Vec3, label string) (AnchorID, error) {
	if !insideHalfExtents(position, w.HalfSize) {
		return 0, fmt.Errorf("world: anchor %q at %+v lies outside the world half-extents %+v", label, position, w.HalfSize)
	}
	id := w.anchors.Add(Anchor{Position: position, Label: label})
	return id, nil
}

// AddDelimiter registers a new delimiter box. Returns an error if its
// extreme corner (centre +/- the longest scaled axis component) lies
// outside the world.
func (w *World) AddDelimiter(center, halfSize, turns geom.Vec3, level int, label string) (DelimiterID, error) {
	d := delimiter.New(center, halfSize, turns, level, label)
	if outsideWorld(center, halfSize, w.HalfSize) {
		return 0, fmt.Errorf("world: delimiter %q at %+v (half-size %+v) exceeds the world half-extents %+v", label, center, halfSize, w.HalfSize)
	}
	id := w.delimiters.Add(d)
	return id, nil
}

// AddDelimiterPlane adds a cutting plane to a previously registered
// delimiter. Panics if id is invalid (a caller bug, not a recoverable
// condition) and returns an error if the plane would overflow the
// delimiter's 6-plane budget.
func (w *World) AddDelimiterPlane(id DelimiterID, axis delimiter.Axis, centered bool, ve delimiter.VirtualExtension) error {
	d := *w.delimiters.Get(id)
	return d.AddPlane(axis, centered, ve, w.HalfSize)
}

// ClipDelimiters runs the clip resolver (C5) over every registered
// delimiter. Must be called, and re-run after any further plane mutation,
// before CreateBVH.
func (w *World) ClipDelimiters(ctx context.Context) error {
	var all []*delimiter.Delimiter
	w.delimiters.All(func(id arena.ID, d **delimiter.Delimiter) {
		all = append(all, *d)
	})
	if err := ctx.Err(); err != nil {
		return err
	}
	clipresolve.Resolve(all, w.rootTriangles)
	w.phase = Clipped
	return nil
}

// CreateBVH builds the bounding volume hierarchy (C6) over every surviving
// delimiter triangle. Must be called after ClipDelimiters and re-run after
// any delimiter mutation that happens afterwards.
func (w *World) CreateBVH(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var entries []bvh.Entry
	var ownerCounter uint64
	w.delimiters.All(func(id arena.ID, d **delimiter.Delimiter) {
		(*d).AllTriangles(func(planeIdx, triIdx int, t geom.Triangle) {
			entries = append(entries, bvh.Entry{Triangle: t, Centroid: t.Centroid(), OwnerID: ownerCounter})
			ownerCounter++
		})
	})
	w.tree = bvh.Build(entries, w.rootTriangles)
	w.phase = BVHReady
	return nil
}

// CalculateVolumes runs the flood fill (C7) and assembler (C8) for every
// anchor, then appends the marching-cubes occupancy-boundary extraction
// (A3) to each anchor's mesh, per the final-output concatenation rule.
// Requires CreateBVH to have run at least once since the last delimiter
// mutation. When the BVH carries more than gpuAdmissibilityThreshold
// triangles and GPU compute initializes successfully, flood-fill
// admissibility tests are batched on the GPU (A2); otherwise every anchor
// floods on the CPU BVH raycast path alone.
func (w *World) CalculateVolumes(ctx context.Context, cellSize float32) error {
	if w.tree == nil {
		panic("world: CalculateVolumes called before CreateBVH")
	}
	batch := w.admissibilityBatch()
	if batch != nil {
		defer batch.Release()
	}

	var err error
	w.anchors.All(func(id arena.ID, a *Anchor) {
		if err != nil {
			return
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
			return
		}
		grid := flood.NewGrid(w.HalfSize, cellSize, a.Position)
		fr := flood.RunGPU(grid, a.Position, w.tree, batch)
		centres := make([]geom.Vec3, len(fr.Flooded))
		for i, c := range fr.Flooded {
			centres[i] = grid.WorldCentre(c)
		}
		asm := assembler.Assemble(w.tree, centres)
		occ := marchingcubes.FromResult(fr)
		boundary := marchingcubes.Extract(grid, fr.Flooded, occ)
		a.Triangles = append(asm.Triangles, boundary...)
		a.Grid = grid
		a.FloodedCells = fr.Flooded
	})
	if err != nil {
		return err
	}
	w.phase = Solved
	return nil
}

// admissibilityBatch builds a GPU admissibility batch sized for the
// world's current BVH when it is large enough to be worth accelerating and
// GPU compute is available, or returns nil so callers fall back to the CPU
// path unconditionally.
func (w *World) admissibilityBatch() *compute.AdmissibilityBatch {
	triCount := len(w.tree.Entries) + len(w.tree.RootTriangles)
	if triCount <= gpuAdmissibilityThreshold {
		return nil
	}
	if _, err := compute.Initialize(); err != nil {
		return nil
	}
	batch, err := compute.NewAdmissibilityBatch(maxGPUBatchSegments, uint32(triCount))
	if err != nil || batch == nil {
		return nil
	}
	return batch
}

// SimplifyAnchor runs the optional mesh-optimizer combine pass (A4) over an
// already-solved anchor's triangles in place. Callers may skip it; it never
// runs implicitly as part of CalculateVolumes.
func (w *World) SimplifyAnchor(id AnchorID) {
	a := w.anchors.Get(id)
	a.Triangles = meshopt.MergeCollinear(a.Triangles)
}

// Anchor returns a pointer to the anchor named by id, stable for the life
// of the world.
func (w *World) Anchor(id AnchorID) *Anchor {
	return w.anchors.Get(id)
}

// Anchors iterates every registered anchor in registration order.
func (w *World) Anchors(yield func(id AnchorID, a *Anchor)) {
	w.anchors.All(yield)
}

// Delimiters iterates every registered delimiter in registration order.
func (w *World) Delimiters(yield func(id DelimiterID, d *delimiter.Delimiter)) {
	w.delimiters.All(func(id arena.ID, d **delimiter.Delimiter) {
		yield(id, *d)
	})
}

// RootTriangles returns the world's six inward-facing boundary faces.
func (w *World) RootTriangles() []geom.Triangle {
	return w.rootTriangles
}

// BVH returns the world's bounding volume hierarchy, or nil if CreateBVH
// has not yet run.
func (w *World) BVH() *bvh.BVH {
	return w.tree
}

// DebugDraw walks the world's registries (and, for anchors, their solved
// meshes and retained flood state) and returns a debug-draw buffer
// populated with every layer selected by mask. A write-only sink: it never
// affects the solve itself.
func (w *World) DebugDraw(mask debugdraw.Mask) debugdraw.Buffer {
	var buf debugdraw.Buffer
	if mask&debugdraw.RootPlanes != 0 {
		buf.AddRootPlanes(w.rootTriangles)
	}
	if mask&debugdraw.BVHNodes != 0 {
		buf.AddBVHNodes(w.tree)
	}
	if mask&debugdraw.Anchors != 0 {
		w.anchors.All(func(id arena.ID, a *Anchor) {
			buf.AddAnchor(a.Position, a.Label, 0.3)
		})
	}
	if mask&debugdraw.FloodCells != 0 {
		w.anchors.All(func(id arena.ID, a *Anchor) {
			if a.Grid != nil {
				buf.AddFloodCells(a.Grid, a.FloodedCells, 0.15)
			}
		})
	}
	if mask&debugdraw.Delimiters != 0 {
		w.delimiters.All(func(id arena.ID, d **delimiter.Delimiter) {
			buf.AddDelimiterBox(*d)
		})
	}
	if mask&debugdraw.DelimiterPlanes != 0 {
		w.delimiters.All(func(id arena.ID, d **delimiter.Delimiter) {
			buf.AddDelimiterPlanes(*d)
		})
	}
	return buf
}

// Destroy releases the world's owned state in one step.
func (w *World) Destroy() {
	w.anchors.Reset()
	w.delimiters.Reset()
	w.tree = nil
	w.phase = Destroyed
}

func buildRootTriangles(h geom.Vec3) []geom.Triangle {
	// Six faces of the box [-h, h], each split into two triangles with an
	// inward-facing normal.
	faces := []struct {
		normal       geom.Vec3
		centre       geom.Vec3
		uAxis, vAxis geom.Vec3
		uHalf, vHalf float32
	}{
		{geom.Vec3{X: -1}, geom.Vec3{X: h.X}, geom.Vec3{Y: 1}, geom.Vec3{Z: 1}, h.Y, h.Z},
		{geom.Vec3{X: 1}, geom.Vec3{X: -h.X}, geom.Vec3{Y: 1}, geom.Vec3{Z: 1}, h.Y, h.Z},
		{geom.Vec3{Y: -1}, geom.Vec3{Y: h.Y}, geom.Vec3{X: 1}, geom.Vec3{Z: 1}, h.X, h.Z},
		{geom.Vec3{Y: 1}, geom.Vec3{Y: -h.Y}, geom.Vec3{X: 1}, geom.Vec3{Z: 1}, h.X, h.Z},
		{geom.Vec3{Z: -1}, geom.Vec3{Z: h.Z}, geom.Vec3{X: 1}, geom.Vec3{Y: 1}, h.X, h.Y},
		{geom.Vec3{Z: 1}, geom.Vec3{Z: -h.Z}, geom.Vec3{X: 1}, geom.Vec3{Y: 1}, h.X, h.Y},
	}

	var tris []geom.Triangle
	for _, f := range faces {
		u := scale(f.uAxis, f.uHalf)
		v := scale(f.vAxis, f.vHalf)
		left, right := negate(u), u
		top, bottom := v, negate(v)
		corner := func(a, b geom.Vec3) geom.Vec3 { return add(add(f.centre, a), b) }
		t1 := geom.NewTriangle(corner(left, top), corner(right, bottom), corner(left, bottom))
		t2 := geom.NewTriangle(corner(left, top), corner(right, top), corner(right, bottom))
		t1.Normal, t2.Normal = f.normal, f.normal
		tris = append(tris, t1, t2)
	}
	return tris
}

func insideHalfExtents(p, h geom.Vec3) bool {
	return p.X >= -h.X && p.X <= h.X && p.Y >= -h.Y && p.Y <= h.Y && p.Z >= -h.Z && p.Z <= h.Z
}

func outsideWorld(center, halfSize, worldHalf geom.Vec3) bool {
	lo := geom.Vec3{X: center.X - halfSize.X, Y: center.Y - halfSize.Y, Z: center.Z - halfSize.Z}
	hi := geom.Vec3{X: center.X + halfSize.X, Y: center.Y + halfSize.Y, Z: center.Z + halfSize.Z}
	return lo.X < -worldHalf.X || lo.Y < -worldHalf.Y || lo.Z < -worldHalf.Z ||
		hi.X > worldHalf.X || hi.Y > worldHalf.Y || hi.Z > worldHalf.Z
}

func scale(v geom.Vec3, s float32) geom.Vec3 {
	return geom.Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

func negate(v geom.Vec3) geom.Vec3 {
	return geom.Vec3{X: -v.X, Y: -v.Y, Z: -v.Z}
}

func add(a, b geom.Vec3) geom.Vec3 {
	return geom.Vec3{X: a.X + b.X, Y: a.Y + b.Y, Z: a.Z + b.Z}
}
