package tessellate

import (
	"testing"

	"carve3d/internal/geom"
)

func totalArea(t geom.Triangle, rest []geom.Triangle) float32 {
	sum := t.Area()
	for _, r := range rest {
		sum += r.Area()
	}
	return sum
}

// TestS4PureTessellation mirrors spec scenario S4.
func TestS4PureTessellation(t *testing.T) {
	tri := geom.NewTriangle(geom.Vec3{}, geom.Vec3{X: 2}, geom.Vec3{Y: 2})
	clip := geom.NewTriangle(geom.Vec3{X: 1, Y: -1}, geom.Vec3{X: 1, Y: 1}, geom.Vec3{X: 1, Z: 1})

	var out []geom.Triangle
	n := ByTriangle(&tri, clip, nil, &out)
	if n != 3 {
		t.Fatalf("expected 3 output triangles, got %d (out=%d)", n, len(out))
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 appended triangles beyond the in-place one, got %d", len(out))
	}

	area := totalArea(tri, out)
	if diff := area - 2; diff > 1e-3 || diff < -1e-3 {
		t.Errorf("expected area sum 2, got %v", area)
	}

	all := append([]geom.Triangle{tri}, out...)
	for _, tr := range all {
		for _, p := range []geom.Vec3{tr.P0, tr.P1, tr.P2} {
			if p.X < -1e-4 {
				continue // only check the cut edge lies on x=1 below
			}
		}
	}
	// At least one edge of the fan must lie exactly on x=1.
	foundCutEdge := false
	for _, tr := range all {
		pts := []geom.Vec3{tr.P0, tr.P1, tr.P2}
		for i := 0; i < 3; i++ {
			a, b := pts[i], pts[(i+1)%3]
			if closeTo(a.X, 1) && closeTo(b.X, 1) {
				foundCutEdge = true
			}
		}
	}
	if !foundCutEdge {
		t.Error("expected an edge of the output fan to lie on the plane x=1")
	}
}

func closeTo(a, b float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-3
}

// TestS5CoplanarNoOp mirrors spec scenario S5.
func TestS5CoplanarNoOp(t *testing.T) {
	tri := geom.NewTriangle(geom.Vec3{}, geom.Vec3{X: 2}, geom.Vec3{Y: 2})
	clip := geom.NewTriangle(geom.Vec3{X: 5}, geom.Vec3{X: 5, Y: 1}, geom.Vec3{Y: 5})

	before := tri
	var out []geom.Triangle
	n := ByTriangle(&tri, clip, nil, &out)
	if n != 0 {
		t.Fatalf("coplanar clip should produce 0 new triangles, got %d", n)
	}
	if tri != before {
		t.Error("T must be left unchanged on a degenerate (coplanar) clip")
	}
}

func TestTessellatorIdempotence(t *testing.T) {
	tri := geom.NewTriangle(geom.Vec3{}, geom.Vec3{X: 2}, geom.Vec3{Y: 2})
	clip := geom.NewTriangle(geom.Vec3{X: 1, Y: -1}, geom.Vec3{X: 1, Y: 1}, geom.Vec3{X: 1, Z: 1})

	var out []geom.Triangle
	first := ByTriangle(&tri, clip, nil, &out)
	if first == 0 {
		t.Fatal("expected the first call to split the triangle")
	}

	// Run the same clip again over the already-split output; nothing new
	// should be produced because each piece now lies fully on one side.
	all := append([]geom.Triangle{tri}, out...)
	var extra []geom.Triangle
	for i := range all {
		tcopy := all[i]
		n := ByTriangle(&tcopy, clip, nil, &extra)
		if n != 0 {
			t.Errorf("second pass over piece %d produced %d new triangles, want 0", i, n)
		}
	}
}

func TestNormalPreservedAcrossFan(t *testing.T) {
	tri := geom.NewTriangle(geom.Vec3{}, geom.Vec3{X: 2}, geom.Vec3{Y: 2})
	want := tri.Normal
	clip := geom.NewTriangle(geom.Vec3{X: 1, Y: -1}, geom.Vec3{X: 1, Y: 1}, geom.Vec3{X: 1, Z: 1})

	var out []geom.Triangle
	ByTriangle(&tri, clip, nil, &out)
	if tri.Normal != want {
		t.Errorf("in-place triangle normal changed: got %+v want %+v", tri.Normal, want)
	}
	for i, o := range out {
		if o.Normal != want {
			t.Errorf("appended triangle %d normal = %+v, want %+v", i, o.Normal, want)
		}
	}
}

func TestByPlaneRejectsViaShouldClip(t *testing.T) {
	tri := geom.NewTriangle(geom.Vec3{}, geom.Vec3{X: 2}, geom.Vec3{Y: 2})
	rejectAll := func(candidate geom.Triangle, planePoint, planeNormal geom.Vec3) bool { return true }

	var out []geom.Triangle
	n := ByPlane(&tri, geom.Vec3{X: 1}, geom.Vec3{X: 1}, rejectAll, &out)
	if n != 0 {
		t.Errorf("shouldClip rejecting everything must yield 0 survivors, got %d", n)
	}
}
