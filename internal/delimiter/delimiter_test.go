package delimiter

import (
	"testing"

	"carve3d/internal/geom"
)

func TestNewAxesOrthonormal(t *testing.T) {
	d := New(geom.Vec3{}, geom.Vec3{X: 1, Y: 2, Z: 3}, geom.Vec3{}, 0, "box")
	want := [3]geom.Vec3{{X: 1}, {Y: 1}, {Z: 1}}
	for i, a := range d.UnitAxes {
		if a != want[i] {
			t.Errorf("axis %d = %+v, want %+v", i, a, want[i])
		}
	}
	wantScaled := []geom.Vec3{{X: 1}, {Y: 2}, {Z: 3}}
	for i, a := range d.ScaledAxes {
		if a != wantScaled[i] {
			t.Errorf("scaled axis %d = %+v, want %+v", i, a, wantScaled[i])
		}
	}
}

func TestAddPlaneCenteredSingle(t *testing.T) {
	d := New(geom.Vec3{}, geom.Vec3{X: 1, Y: 1, Z: 1}, geom.Vec3{}, 0, "box")
	if err := d.AddPlane(AxisZ, true, 0, geom.Vec3{X: 5, Y: 5, Z: 5}); err != nil {
		t.Fatalf("AddPlane: %v", err)
	}
	if d.PlaneCount != 1 {
		t.Fatalf("expected 1 plane, got %d", d.PlaneCount)
	}
	if d.Planes[0].Normal != (geom.Vec3{Z: 1}) {
		t.Errorf("unexpected plane normal %+v", d.Planes[0].Normal)
	}
}

func TestAddPlanePairOffsets(t *testing.T) {
	d := New(geom.Vec3{}, geom.Vec3{X: 1, Y: 1, Z: 2}, geom.Vec3{}, 0, "box")
	if err := d.AddPlane(AxisZ, false, 0, geom.Vec3{X: 5, Y: 5, Z: 5}); err != nil {
		t.Fatalf("AddPlane: %v", err)
	}
	if d.PlaneCount != 2 {
		t.Fatalf("expected 2 planes, got %d", d.PlaneCount)
	}
	if d.Planes[0].Normal != (geom.Vec3{Z: 1}) || d.Planes[1].Normal != (geom.Vec3{Z: -1}) {
		t.Errorf("expected opposite normals, got %+v and %+v", d.Planes[0].Normal, d.Planes[1].Normal)
	}
	centre0 := d.Planes[0].Triangles[0].Centroid()
	if centre0.Z <= 0 {
		t.Errorf("expected the positive-facing plane to sit at +Z, centroid=%+v", centre0)
	}
}

func TestAddPlaneVirtualExtension(t *testing.T) {
	worldHalf := geom.Vec3{X: 10, Y: 10, Z: 10}
	withExt := New(geom.Vec3{}, geom.Vec3{X: 1, Y: 1, Z: 1}, geom.Vec3{}, 0, "ext")
	if err := withExt.AddPlane(AxisZ, true, All, worldHalf); err != nil {
		t.Fatalf("AddPlane: %v", err)
	}
	noExt := New(geom.Vec3{}, geom.Vec3{X: 1, Y: 1, Z: 1}, geom.Vec3{}, 0, "noext")
	if err := noExt.AddPlane(AxisZ, true, 0, worldHalf); err != nil {
		t.Fatalf("AddPlane: %v", err)
	}

	extArea := withExt.Planes[0].Triangles[0].Area() + withExt.Planes[0].Triangles[1].Area()
	plainArea := noExt.Planes[0].Triangles[0].Area() + noExt.Planes[0].Triangles[1].Area()
	if extArea <= plainArea {
		t.Errorf("virtual extension should enlarge the plane: ext=%v plain=%v", extArea, plainArea)
	}
}

func TestAddPlaneRejectsOverflow(t *testing.T) {
	d := New(geom.Vec3{}, geom.Vec3{X: 1, Y: 1, Z: 1}, geom.Vec3{}, 0, "full")
	world := geom.Vec3{X: 5, Y: 5, Z: 5}
	for _, axis := range []Axis{AxisX, AxisY, AxisZ} {
		if err := d.AddPlane(axis, false, 0, world); err != nil {
			t.Fatalf("unexpected error filling planes: %v", err)
		}
	}
	if d.PlaneCount != 6 {
		t.Fatalf("expected 6 planes, got %d", d.PlaneCount)
	}
	if err := d.AddPlane(AxisX, true, 0, world); err == nil {
		t.Error("expected an error adding a 7th plane")
	}
}

func TestAllTrianglesVisitsEveryPlane(t *testing.T) {
	d := New(geom.Vec3{}, geom.Vec3{X: 1, Y: 1, Z: 1}, geom.Vec3{}, 0, "iter")
	world := geom.Vec3{X: 5, Y: 5, Z: 5}
	_ = d.AddPlane(AxisX, false, 0, world)
	_ = d.AddPlane(AxisY, true, 0, world)

	count := 0
	d.AllTriangles(func(planeIdx, triIdx int, tr geom.Triangle) {
		count++
	})
	if count != 6 { // 2 planes from AxisX pair + 1 centered plane, 2 triangles each
		t.Errorf("expected 6 triangles visited, got %d", count)
	}
}
