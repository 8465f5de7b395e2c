package bvh

import (
	"testing"

	"carve3d/internal/geom"
)

func entryFor(t geom.Triangle, id uint64) Entry {
	return Entry{Triangle: t, Centroid: t.Centroid(), OwnerID: id}
}

func gridEntries(n int) []Entry {
	var es []Entry
	for i := 0; i < n; i++ {
		x := float32(i) * 3
		t := geom.NewTriangle(geom.Vec3{X: x}, geom.Vec3{X: x + 1}, geom.Vec3{X: x, Y: 1})
		es = append(es, entryFor(t, uint64(i)))
	}
	return es
}

func TestBuildEmpty(t *testing.T) {
	b := Build(nil, nil)
	if b.Root != nil {
		t.Error("expected a nil root for an empty entry set")
	}
	if b.FindLeafsAtPosition(geom.Vec3{}) != nil {
		t.Error("expected no leaves for an empty tree")
	}
}

func TestBuildSplitsBeyondThreshold(t *testing.T) {
	es := gridEntries(LeafThreshold*4 + 1)
	b := Build(es, nil)
	if b.Root.Left == nil && b.Root.Right == nil {
		t.Fatal("expected the root to split with more entries than LeafThreshold")
	}
}

func TestBuildStaysLeafBelowThreshold(t *testing.T) {
	es := gridEntries(LeafThreshold - 1)
	b := Build(es, nil)
	if b.Root.Left != nil || b.Root.Right != nil {
		t.Error("expected a single leaf root with fewer entries than LeafThreshold")
	}
}

func TestFindLeafsAtPositionContainment(t *testing.T) {
	es := gridEntries(LeafThreshold * 4)
	b := Build(es, nil)
	leaves := b.FindLeafsAtPosition(es[0].Centroid)
	if len(leaves) == 0 {
		t.Fatal("expected at least one leaf containing the first entry's centroid")
	}
	for _, l := range leaves {
		if !l.Bounds.Contains(es[0].Centroid) {
			t.Error("returned leaf does not actually contain the query point")
		}
	}
}

func TestCastRayHitsTriangle(t *testing.T) {
	tri := geom.NewTriangle(geom.Vec3{X: -1, Y: -1}, geom.Vec3{X: 1, Y: -1}, geom.Vec3{Y: 1})
	b := Build([]Entry{entryFor(tri, 0)}, nil)
	if !b.CastRay(geom.Vec3{Z: -5}, geom.Vec3{Z: 1}, 10) {
		t.Error("expected a ray through the triangle's plane to hit")
	}
}

func TestCastRayMissesOutsideMaxT(t *testing.T) {
	tri := geom.NewTriangle(geom.Vec3{X: -1, Y: -1}, geom.Vec3{X: 1, Y: -1}, geom.Vec3{Y: 1})
	b := Build([]Entry{entryFor(tri, 0)}, nil)
	if b.CastRay(geom.Vec3{Z: -5}, geom.Vec3{Z: 1}, 1) {
		t.Error("a ray capped short of the triangle must not report a hit")
	}
}

func TestCastRayExcludingSkipsSelf(t *testing.T) {
	tri := geom.NewTriangle(geom.Vec3{X: -1, Y: -1}, geom.Vec3{X: 1, Y: -1}, geom.Vec3{Y: 1})
	b := Build([]Entry{entryFor(tri, 0)}, nil)
	centroid := tri.Centroid()
	if b.CastRayExcluding(centroid, geom.Vec3{Z: 1}, 1, 0) {
		t.Error("a ray from the triangle's own centroid must not self-occlude when excluded")
	}
	if !b.CastRayExcluding(centroid, geom.Vec3{Z: 1}, 1, -1) {
		t.Error("without exclusion the same ray should still report the self-hit")
	}
}

func TestCastRayHitsRootTriangleEvenWithoutTree(t *testing.T) {
	root := geom.NewTriangle(geom.Vec3{X: -10, Y: -10, Z: 5}, geom.Vec3{X: 10, Y: -10, Z: 5}, geom.Vec3{Y: 10, Z: 5})
	b := Build(nil, []geom.Triangle{root})
	if !b.CastRay(geom.Vec3{}, geom.Vec3{Z: 1}, 20) {
		t.Error("expected root-triangle linear scan to report a hit even with an empty tree")
	}
}
