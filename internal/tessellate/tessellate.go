// Package tessellate splits a triangle against another triangle or a plane
// into a small fan of sub-triangles that respects the new cutting edge
// while preserving the input triangle's normal.
package tessellate

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"carve3d/internal/geom"
)

// ShouldClip decides, for a candidate sub-triangle produced against the
// clip plane (planePoint, planeNormal), whether the candidate must be
// dropped. It mirrors the reference's caller-supplied
// triangle_should_be_clipped predicate.
type ShouldClip func(candidate geom.Triangle, planePoint, planeNormal geom.Vec3) bool

// intersection records one accepted crossing: the point itself and which of
// T's three edges (corner index of the edge's start) it lies on.
type intersection struct {
	point geom.Vec3
	edge  int // start corner index of the edge this point lies on
}

// ByPlane rewrites t in place against the plane (planePoint, planeNormal)
// and appends 0-2 new triangles to *out. It returns the number of output
// triangles produced by this call (0 when the cut is degenerate or absent).
//
// Intersections are computed strictly from T's three edges against the
// plane. Since any two of a triangle's three edges necessarily share a
// vertex, the two accepted crossings (when there are exactly two) always
// lie on two edges adjacent to one common corner — the "extension" corner
// in the specification's terminology — so the output is always exactly the
// 3-triangle fan: (extension, near, far), (near, first, second),
// (near, second, far). This also covers the "clip by a C-derived plane"
// case (4.3's variant (b)) directly, and is used for variant (a) too: the
// plane is derived from C's first vertex and normal, and the caller-level
// all_points_in_front_of_plane / triangle_should_be_clipped predicates
// already account for C's finite footprint when deciding which candidate
// survives, so testing only T's edges against C's plane (rather than also
// testing C's edges against T's interior) is sufficient and keeps the fan
// construction exact rather than heuristic.
func ByPlane(t *geom.Triangle, planePoint, planeNormal geom.Vec3, shouldClip ShouldClip, out *[]geom.Triangle) int {
	hits := findCrossings(*t, planePoint, planeNormal)
	if len(hits) != 2 {
		return 0
	}
	return emitFan(t, hits[0], hits[1], shouldClip, planePoint, planeNormal, out)
}

// ByTriangle rewrites t in place against clip triangle c, using c's plane
// (c.P0, c.Normal) per the ByPlane contract. See ByPlane's doc comment for
// why testing T's edges against C's plane is sufficient here too.
func ByTriangle(t *geom.Triangle, c geom.Triangle, shouldClip ShouldClip, out *[]geom.Triangle) int {
	return ByPlane(t, c.P0, c.Normal, shouldClip, out)
}

func findCrossings(t geom.Triangle, planePoint, planeNormal geom.Vec3) []intersection {
	var hits []intersection
	for e := 0; e < 3; e++ {
		a := t.Corner(e)
		b := t.Corner(e + 1)
		d := rl.Vector3Subtract(b, a)
		hit := geom.RayDoubleSidedPlaneIntersection(a, d, planePoint, planeNormal)
		if !hit.Hit || hit.T < -geom.CoreSmallEpsilon || hit.T > 1+geom.CoreSmallEpsilon {
			continue
		}
		p := rl.Vector3Add(a, rl.Vector3Scale(d, hit.T))
		duplicate := false
		for _, h := range hits {
			if geom.PointsAlmostIdentical(h.point, p) {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		hits = append(hits, intersection{point: p, edge: e})
		if len(hits) == 2 {
			break
		}
	}
	return hits
}

func emitFan(t *geom.Triangle, i0, i1 intersection, shouldClip ShouldClip, planePoint, planeNormal geom.Vec3, out *[]geom.Triangle) int {
	if cornerishPoint(i0.point, *t) && cornerishPoint(i1.point, *t) {
		return 0
	}

	// The two crossed edges (i0.edge, i1.edge) necessarily share exactly
	// one corner (any two of a triangle's three edges do); that corner is
	// the extension corner. Edge k spans corners (k, k+1): the edge whose
	// index equals ext runs ext->first, the edge whose index equals
	// second runs second->ext.
	ext := sharedCorner(i0.edge, i1.edge)
	first := (ext + 1) % 3
	second := (ext + 2) % 3

	var onExtFirst, onSecondExt geom.Vec3
	if i0.edge == ext {
		onExtFirst, onSecondExt = i0.point, i1.point
	} else {
		onExtFirst, onSecondExt = i1.point, i0.point
	}

	extP, firstP, secondP := t.Corner(ext), t.Corner(first), t.Corner(second)
	n := t.Normal

	// Winding preserved: (ext, onExtFirst, onSecondExt) mirrors the corner
	// triangle cut off at ext; the remaining quad (onExtFirst, first,
	// second, onSecondExt) is split along onExtFirst-second.
	candidates := []geom.Triangle{
		{P0: extP, P1: onExtFirst, P2: onSecondExt, Normal: n},
		{P0: onExtFirst, P1: firstP, P2: secondP, Normal: n},
		{P0: onExtFirst, P1: secondP, P2: onSecondExt, Normal: n},
	}

	count := 0
	replaced := false
	for _, cand := range candidates {
		survivor, ok := generateNewTriangle(cand, shouldClip, planePoint, planeNormal)
		if !ok {
			continue
		}
		if !replaced {
			*t = survivor
			replaced = true
		} else {
			*out = append(*out, survivor)
		}
		count++
	}
	return count
}

// sharedCorner returns the corner index common to edges starting at a and b
// (edge k spans corners k and (k+1)%3).
func sharedCorner(a, b int) int {
	ca := [2]int{a, (a + 1) % 3}
	cb := [2]int{b, (b + 1) % 3}
	for _, x := range ca {
		for _, y := range cb {
			if x == y {
				return x
			}
		}
	}
	// Edges are identical (shouldn't happen with 2 distinct hits); fall
	// back to the first corner of a.
	return a
}

func cornerishPoint(p geom.Vec3, t geom.Triangle) bool {
	u, v, w := geom.Barycentric(p, t)
	thresh := float32(1 - 1e-4)
	return u >= thresh || v >= thresh || w >= thresh
}

func generateNewTriangle(cand geom.Triangle, shouldClip ShouldClip, planePoint, planeNormal geom.Vec3) (geom.Triangle, bool) {
	if geom.PointsAlmostIdentical(cand.P0, cand.P1) ||
		geom.PointsAlmostIdentical(cand.P1, cand.P2) ||
		geom.PointsAlmostIdentical(cand.P0, cand.P2) {
		return geom.Triangle{}, false
	}
	cand.RecomputeNormal()
	if cand.Dead() {
		return geom.Triangle{}, false
	}
	if shouldClip != nil && shouldClip(cand, planePoint, planeNormal) {
		return geom.Triangle{}, false
	}
	return cand, true
}
