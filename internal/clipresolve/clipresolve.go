// Package clipresolve finds every pair of delimiters whose cutting planes
// cross and clips the losing (or both, if tied) sides so that no two
// surviving delimiter surfaces intersect.
package clipresolve

import (
	"sort"

	rl "github.com/gen2brain/raylib-go/raylib"

	"carve3d/internal/delimiter"
	"carve3d/internal/geom"
	"carve3d/internal/plane"
	"carve3d/internal/tessellate"
)

// pairHit is one intersecting (planeA, planeB) combination between two
// delimiters, carrying the distance metric used to order resolution.
type pairHit struct {
	a, b           *delimiter.Delimiter
	planeA, planeB int
	totalDistance  float32
}

// Resolve detects every crossing pair among ds, orders them by the
// near-conflicts-first distance metric, and clips in place so that no two
// surviving delimiter triangles cross. It then clips every surviving
// delimiter triangle against the six inward-facing root triangles.
func Resolve(ds []*delimiter.Delimiter, rootTriangles []geom.Triangle) {
	hits := findAllPairs(ds)
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].totalDistance < hits[j].totalDistance
	})

	for _, h := range hits {
		resolvePair(h)
	}

	for _, d := range ds {
		clipAgainstRoot(d, rootTriangles)
	}
}

func findAllPairs(ds []*delimiter.Delimiter) []pairHit {
	var hits []pairHit
	for i := 0; i < len(ds); i++ {
		for j := i + 1; j < len(ds); j++ {
			a, b := ds[i], ds[j]
			for pa := 0; pa < a.PlaneCount; pa++ {
				for pb := 0; pb < b.PlaneCount; pb++ {
					if best, ok := bestDistance(a, b, pa, pb); ok {
						hits = append(hits, pairHit{a: a, b: b, planeA: pa, planeB: pb, totalDistance: best})
					}
				}
			}
		}
	}
	return hits
}

// bestDistance tests every triangle in plane pa of a against every triangle
// in plane pb of b, edge by edge in both directions, and returns the
// minimum horizon distance metric across every crossing found.
func bestDistance(a, b *delimiter.Delimiter, pa, pb int) (float32, bool) {
	horizon := rl.Vector3Normalize(rl.Vector3CrossProduct(a.Planes[pa].Normal, b.Planes[pb].Normal))
	found := false
	var best float32

	consider := func(p0, d geom.Vec3, t float32) {
		point := rl.Vector3Add(p0, rl.Vector3Scale(d, t))
		dist := horizonDistance(point, a.Center, b.Center, horizon)
		if !found || dist < best {
			found = true
			best = dist
		}
	}

	for _, ta := range a.Planes[pa].Triangles {
		for _, tb := range b.Planes[pb].Triangles {
			for e := 0; e < 3; e++ {
				p0, p1 := ta.Corner(e), ta.Corner(e+1)
				d := rl.Vector3Subtract(p1, p0)
				if hit := geom.RayDoubleSidedTriangleIntersection(p0, d, tb.P0, tb.P1, tb.P2); hit.Hit && hit.T >= 0 && hit.T <= 1 {
					consider(p0, d, hit.T)
				}
			}
			for e := 0; e < 3; e++ {
				p0, p1 := tb.Corner(e), tb.Corner(e+1)
				d := rl.Vector3Subtract(p1, p0)
				if hit := geom.RayDoubleSidedTriangleIntersection(p0, d, ta.P0, ta.P1, ta.P2); hit.Hit && hit.T >= 0 && hit.T <= 1 {
					consider(p0, d, hit.T)
				}
			}
		}
	}
	return best, found
}

func horizonDistance(point, centreA, centreB, horizon geom.Vec3) float32 {
	toA := projectOntoPlane(rl.Vector3Subtract(point, centreA), horizon)
	toB := projectOntoPlane(rl.Vector3Subtract(point, centreB), horizon)
	return rl.Vector3LengthSqr(toA) + rl.Vector3LengthSqr(toB)
}

func projectOntoPlane(v, normal geom.Vec3) geom.Vec3 {
	d := rl.Vector3DotProduct(v, normal)
	return rl.Vector3Subtract(v, rl.Vector3Scale(normal, d))
}

// resolvePair clips the two planes named by h against one another per the
// level-precedence rule, snapshotting plane A's triangles before any
// mutation so that plane B (when it also gets to clip, on a tie) clips
// against A's pre-clip shape rather than A's already-clipped remainder.
func resolvePair(h pairHit) {
	planeA := &h.a.Planes[h.planeA]
	planeB := &h.b.Planes[h.planeB]

	snapshotA := planeA.Clone()

	if h.a.Level >= h.b.Level {
		clipPlaneAgainst(planeA, planeB.Triangles, h.a.Center)
	}
	if h.b.Level >= h.a.Level {
		clipPlaneAgainst(planeB, snapshotA.Triangles, h.b.Center)
	}
}

// clipPlaneAgainst clips every surviving triangle in p by every triangle in
// clipBy. A candidate survives iff it is not all_points_in_front_of_plane of
// the clip triangle once that triangle's normal has been flipped (if
// needed) to face towards centre.
func clipPlaneAgainst(p *plane.TriangulatedPlane, clipBy []geom.Triangle, centre geom.Vec3) {
	survive := func(clip geom.Triangle) tessellate.ShouldClip {
		facing := clip
		toCentre := rl.Vector3Subtract(centre, facing.P0)
		if rl.Vector3DotProduct(toCentre, facing.Normal) < 0 {
			facing.Normal = rl.Vector3Scale(facing.Normal, -1)
		}
		return func(candidate geom.Triangle, planePoint, planeNormal geom.Vec3) bool {
			return candidate.AllPointsInFrontOfPlane(facing.P0, facing.Normal)
		}
	}

	for _, clip := range clipBy {
		shouldClip := survive(clip)
		var kept []geom.Triangle
		var extra []geom.Triangle
		// When the fan produces no clean split (n==0), t is left untouched
		// by ByTriangle and must be tested against shouldClip directly.
		for _, t := range p.Triangles {
			tCopy := t
			n := tessellate.ByTriangle(&tCopy, clip, shouldClip, &extra)
			if n == 0 && shouldClip(tCopy, clip.P0, clip.Normal) {
				continue
			}
			kept = append(kept, tCopy)
		}
		kept = append(kept, extra...)
		p.Triangles = kept
	}
	p.PruneDead()
}

// clipAgainstRoot clips every plane of d against the world's six
// inward-facing root triangles, using the double-sided plane variant and
// dropping anything entirely in front of (outside) a root triangle.
func clipAgainstRoot(d *delimiter.Delimiter, rootTriangles []geom.Triangle) {
	for i := 0; i < d.PlaneCount; i++ {
		p := &d.Planes[i]
		for _, root := range rootTriangles {
			var kept []geom.Triangle
			var extra []geom.Triangle
			shouldClip := func(candidate geom.Triangle, planePoint, planeNormal geom.Vec3) bool {
				return candidate.AllPointsInFrontOfPlane(root.P0, root.Normal)
			}
			for _, t := range p.Triangles {
				tCopy := t
				tessellate.ByPlane(&tCopy, root.P0, root.Normal, shouldClip, &extra)
				if !shouldClip(tCopy, root.P0, root.Normal) {
					kept = append(kept, tCopy)
				}
			}
			kept = append(kept, extra...)
			p.Triangles = kept
		}
		p.PruneDead()
	}
}
