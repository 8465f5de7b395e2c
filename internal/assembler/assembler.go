// Package assembler gathers the triangles that actually border a flooded
// region from the BVH leaves touched by each flooded cell.
package assembler

import (
	"carve3d/internal/bvh"
	"carve3d/internal/geom"
)

// Result is the final output for one anchor: its bordering triangles.
type Result struct {
	Triangles []geom.Triangle
}

// Assemble visits every flooded cell centre, looks up the BVH leaves that
// contain it, and keeps each candidate triangle whose centroid has a clear
// line of sight to the cell centre (no delimiter or root triangle between
// them). Duplicate suppression: a triangle is identified by its position in
// tree.Entries (the BVH never reorders entries after Build), so each entry
// index is only ever appended once regardless of how many flooded cells or
// leaves reach it.
func Assemble(tree *bvh.BVH, cellCentres []geom.Vec3) Result {
	var result Result
	seen := make(map[int]bool)

	for _, c := range cellCentres {
		leaves := tree.FindLeafsAtPosition(c)
		for _, leaf := range leaves {
			for i := leaf.EntriesLo; i < leaf.EntriesHi; i++ {
				if seen[i] {
					continue
				}
				entry := tree.Entries[i]
				centroid := entry.Triangle.Centroid()
				dir := geom.Vec3{X: c.X - centroid.X, Y: c.Y - centroid.Y, Z: c.Z - centroid.Z}
				if tree.CastRayExcluding(centroid, dir, 1, i) {
					continue // occluded before reaching the cell: not a border triangle from here
				}
				seen[i] = true
				result.Triangles = append(result.Triangles, entry.Triangle)
			}
		}
	}
	return result
}
