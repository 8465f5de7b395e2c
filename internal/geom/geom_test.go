package geom

import "testing"

func TestNewTriangleNormal(t *testing.T) {
	tri := NewTriangle(Vec3{X: 0, Y: 0, Z: 0}, Vec3{X: 1, Y: 0, Z: 0}, Vec3{X: 0, Y: 1, Z: 0})
	if tri.Normal.Z <= 0 {
		t.Fatalf("expected normal pointing toward +Z, got %+v", tri.Normal)
	}
}

func TestTriangleDead(t *testing.T) {
	tri := NewTriangle(Vec3{}, Vec3{X: 1}, Vec3{X: 2})
	if !tri.Dead() {
		t.Error("collinear triangle should be dead")
	}

	tri2 := NewTriangle(Vec3{}, Vec3{X: 1}, Vec3{Y: 1})
	if tri2.Dead() {
		t.Error("unit right triangle should not be dead")
	}
}

func TestAllPointsInFrontOfPlane(t *testing.T) {
	tri := NewTriangle(Vec3{X: 0, Y: 0, Z: -1}, Vec3{X: 1, Y: 0, Z: -1}, Vec3{X: 0, Y: 1, Z: -1})
	if !tri.AllPointsInFrontOfPlane(Vec3{}, Vec3{Z: 1}) {
		t.Error("triangle at z=-1 should be in front of plane z=0 with normal +Z (front is the side the normal points away from)")
	}

	onPlane := NewTriangle(Vec3{X: 0, Y: 0, Z: 0}, Vec3{X: 1, Y: 0, Z: 0}, Vec3{X: 0, Y: 1, Z: 0})
	if onPlane.AllPointsInFrontOfPlane(Vec3{}, Vec3{Z: 1}) {
		t.Error("coplanar triangle must not be considered in front")
	}
}

func TestRayDoubleSidedTriangleIntersection(t *testing.T) {
	a, b, c := Vec3{X: -1, Y: -1, Z: 0}, Vec3{X: 1, Y: -1, Z: 0}, Vec3{X: 0, Y: 1, Z: 0}

	hit := RayDoubleSidedTriangleIntersection(Vec3{Z: -1}, Vec3{Z: 2}, a, b, c)
	if !hit.Hit || hit.T < 0 || hit.T > 1 {
		t.Fatalf("expected segment to cross triangle within [0,1], got %+v", hit)
	}

	noHit := RayDoubleSidedTriangleIntersection(Vec3{X: 5, Z: -1}, Vec3{Z: 2}, a, b, c)
	if noHit.Hit {
		t.Error("ray far outside triangle footprint should not hit")
	}

	// Back-face: reverse winding direction of travel, should still hit (double-sided).
	backHit := RayDoubleSidedTriangleIntersection(Vec3{Z: 1}, Vec3{Z: -2}, a, b, c)
	if !backHit.Hit {
		t.Error("double-sided test must not reject back-face hits")
	}
}

func TestRayDoubleSidedPlaneIntersectionParallel(t *testing.T) {
	hit := RayDoubleSidedPlaneIntersection(Vec3{}, Vec3{X: 1}, Vec3{Z: 5}, Vec3{Z: 1})
	if hit.Hit {
		t.Error("ray parallel to plane must report no hit")
	}
}

func TestCeilToOdd(t *testing.T) {
	cases := map[float32]int{
		1.0: 1,
		2.0: 3,
		3.0: 3,
		4.4: 5,
		0.1: 1,
	}
	for in, want := range cases {
		if got := CeilToOdd(in); got != want {
			t.Errorf("CeilToOdd(%v) = %d, want %d", in, got, want)
		}
	}
}

func TestBarycentricCorner(t *testing.T) {
	tri := NewTriangle(Vec3{}, Vec3{X: 2}, Vec3{Y: 2})
	u, v, w := Barycentric(Vec3{}, tri)
	if u < 1-CoreSmallEpsilon*10 {
		t.Errorf("expected u near 1 at corner P0, got u=%v v=%v w=%v", u, v, w)
	}
}
