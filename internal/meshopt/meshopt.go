// Package meshopt simplifies a triangle mesh after clipping by welding
// together adjacent, coplanar triangle pairs that only exist because a cut
// passed exactly through a point already collinear with one of their edges
// (a T-junction left over from tessellation), merging them back into the
// single larger triangle they actually represent.
package meshopt

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"carve3d/internal/geom"
)

// MergeCollinear repeatedly merges collinear coplanar triangle pairs in tris until
// no further merge applies, returning the simplified slice. Earlier builds
// of this pass existed but were never wired up (the reference's combine
// step was gated off); here it runs to completion.
func MergeCollinear(tris []geom.Triangle) []geom.Triangle {
	changed := true
	for changed {
		changed = false
		tris, changed = combinePass(tris)
	}
	return tris
}

func combinePass(tris []geom.Triangle) ([]geom.Triangle, bool) {
	for i := 0; i < len(tris); i++ {
		for j := i + 1; j < len(tris); j++ {
			if merged, ok := tryMerge(tris[i], tris[j]); ok {
				out := make([]geom.Triangle, 0, len(tris)-1)
				out = append(out, tris[:i]...)
				out = append(out, tris[i+1:j]...)
				out = append(out, tris[j+1:]...)
				out = append(out, merged)
				return out, true
			}
		}
	}
	return tris, false
}

// tryMerge merges a and b if they share a full edge, lie in the same
// plane, and one of the shared vertices is collinear with both far
// vertices (meaning that vertex sits exactly on the line between them, and
// the pair is really one triangle split by a redundant point).
func tryMerge(a, b geom.Triangle) (geom.Triangle, bool) {
	if !sameNormal(a.Normal, b.Normal) {
		return geom.Triangle{}, false
	}
	shared, farA, farB, ok := sharedEdge(a, b)
	if !ok {
		return geom.Triangle{}, false
	}
	p, q := shared[0], shared[1]
	if collinear(p, farA, farB) {
		if merged, ok := buildOriented(q, farA, farB, a.Normal); ok {
			return merged, true
		}
	}
	if collinear(q, farA, farB) {
		if merged, ok := buildOriented(p, farA, farB, a.Normal); ok {
			return merged, true
		}
	}
	return geom.Triangle{}, false
}

// buildOriented forms a triangle from v0, v1, v2 and, if needed, swaps v1
// and v2 so the recomputed normal matches wantNormal; rejects a degenerate
// result outright.
func buildOriented(v0, v1, v2, wantNormal geom.Vec3) (geom.Triangle, bool) {
	t := geom.NewTriangle(v0, v1, v2)
	if t.Dead() {
		return geom.Triangle{}, false
	}
	if rl.Vector3Distance(t.Normal, wantNormal) < geom.CoreSmallEpsilon {
		return t, true
	}
	t = geom.NewTriangle(v0, v2, v1)
	if rl.Vector3Distance(t.Normal, wantNormal) < geom.CoreSmallEpsilon {
		return t, true
	}
	return geom.Triangle{}, false
}

func sameNormal(a, b geom.Vec3) bool {
	return rl.Vector3Distance(a, b) < geom.CoreSmallEpsilon
}

// sharedEdge returns the two vertices a and b have in common (in a's
// winding order) and each triangle's remaining ("far") vertex, or ok=false
// if they do not share exactly two vertices.
func sharedEdge(a, b geom.Triangle) (shared [2]geom.Vec3, farA, farB geom.Vec3, ok bool) {
	av := [3]geom.Vec3{a.P0, a.P1, a.P2}
	bv := [3]geom.Vec3{b.P0, b.P1, b.P2}

	var matches []geom.Vec3
	farAIdx := -1
	for i, p := range av {
		hit := false
		for _, q := range bv {
			if geom.PointsAlmostIdentical(p, q) {
				hit = true
				break
			}
		}
		if hit {
			matches = append(matches, p)
		} else {
			farAIdx = i
		}
	}
	if len(matches) != 2 || farAIdx == -1 {
		return shared, farA, farB, false
	}

	farBIdx := -1
	for i, p := range bv {
		hit := false
		for _, m := range matches {
			if geom.PointsAlmostIdentical(p, m) {
				hit = true
				break
			}
		}
		if !hit {
			farBIdx = i
		}
	}
	if farBIdx == -1 {
		return shared, farA, farB, false
	}

	return [2]geom.Vec3{matches[0], matches[1]}, av[farAIdx], bv[farBIdx], true
}

func collinear(p, c1, c2 geom.Vec3) bool {
	e1 := rl.Vector3Subtract(c1, p)
	e2 := rl.Vector3Subtract(c2, p)
	cross := rl.Vector3CrossProduct(e1, e2)
	return rl.Vector3Length(cross) < geom.CoreEpsilon
}
