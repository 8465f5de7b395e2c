package plane

import (
	"testing"

	"carve3d/internal/geom"
)

func TestNewWindingAndNormal(t *testing.T) {
	centre := geom.Vec3{}
	n := geom.Vec3{Z: 1}
	left, right := geom.Vec3{X: -1}, geom.Vec3{X: 1}
	top, bottom := geom.Vec3{Y: 1}, geom.Vec3{Y: -1}

	p := New(centre, n, left, right, top, bottom)
	if len(p.Triangles) != 2 {
		t.Fatalf("expected 2 triangles, got %d", len(p.Triangles))
	}
	for i, tri := range p.Triangles {
		if tri.Normal != n {
			t.Errorf("triangle %d has normal %+v, want %+v", i, tri.Normal, n)
		}
		if tri.Dead() {
			t.Errorf("triangle %d is degenerate", i)
		}
	}

	want0 := geom.Vec3{X: -1, Y: 1, Z: 0}
	if p.Triangles[0].P0 != want0 {
		t.Errorf("P0 of first triangle = %+v, want %+v", p.Triangles[0].P0, want0)
	}
}

func TestPruneDead(t *testing.T) {
	p := TriangulatedPlane{Triangles: []geom.Triangle{
		geom.NewTriangle(geom.Vec3{}, geom.Vec3{X: 1}, geom.Vec3{Y: 1}),
		geom.NewTriangle(geom.Vec3{}, geom.Vec3{X: 1}, geom.Vec3{X: 2}),
	}}
	p.PruneDead()
	if len(p.Triangles) != 1 {
		t.Fatalf("expected 1 surviving triangle, got %d", len(p.Triangles))
	}
}

func TestCloneIndependence(t *testing.T) {
	p := New(geom.Vec3{}, geom.Vec3{Z: 1}, geom.Vec3{X: -1}, geom.Vec3{X: 1}, geom.Vec3{Y: 1}, geom.Vec3{Y: -1})
	clone := p.Clone()
	clone.Triangles[0].P0 = geom.Vec3{X: 99}
	if p.Triangles[0].P0 == clone.Triangles[0].P0 {
		t.Error("clone must be independent of the original")
	}
}
