package marchingcubes

import (
	"testing"

	"carve3d/internal/flood"
	"carve3d/internal/geom"
)

func TestExtractSingleCellEmitsSixFaces(t *testing.T) {
	g := flood.NewGrid(geom.Vec3{X: 5, Y: 5, Z: 5}, 1, geom.Vec3{})
	ordered := []flood.Cell{{}}
	occ := Set{flood.Cell{}: true}
	tris := Extract(g, ordered, occ)
	if len(tris) != 12 { // 6 faces * 2 triangles
		t.Fatalf("expected 12 triangles (6 faces) for an isolated cell, got %d", len(tris))
	}
}

func TestExtractAdjacentCellsShareNoFace(t *testing.T) {
	g := flood.NewGrid(geom.Vec3{X: 5, Y: 5, Z: 5}, 1, geom.Vec3{})
	ordered := []flood.Cell{{}, {X: 1}}
	occ := Set{flood.Cell{}: true, flood.Cell{X: 1}: true}
	tris := Extract(g, ordered, occ)
	if len(tris) != 20 { // 2 cells * 6 faces - 2 shared faces, *2 triangles
		t.Fatalf("expected 20 triangles for two adjacent cells, got %d", len(tris))
	}
}

func TestExtractIsDeterministicAcrossRuns(t *testing.T) {
	g := flood.NewGrid(geom.Vec3{X: 5, Y: 5, Z: 5}, 1, geom.Vec3{})
	ordered := []flood.Cell{{}, {X: 1}, {Y: 1}, {Z: 1}, {X: -1}}
	occ := make(Set, len(ordered))
	for _, c := range ordered {
		occ[c] = true
	}
	first := Extract(g, ordered, occ)
	for i := 0; i < 5; i++ {
		again := Extract(g, ordered, occ)
		if len(again) != len(first) {
			t.Fatalf("run %d: triangle count changed: got %d want %d", i, len(again), len(first))
		}
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("run %d: triangle %d differs: got %+v want %+v", i, j, again[j], first[j])
			}
		}
	}
}
