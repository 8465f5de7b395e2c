// Package plane implements the triangulated plane: a set of coplanar
// triangles sharing one normal, built from a centre point and four signed
// extent vectors.
package plane

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"carve3d/internal/geom"
)

// TriangulatedPlane is one unit normal shared by all of its triangles, plus
// an ordered list of coplanar triangles.
type TriangulatedPlane struct {
	Normal    geom.Vec3
	Triangles []geom.Triangle
}

// New builds a triangulated plane from a centre and four signed extent
// vectors (left, right, top, bottom along two in-plane axes). It emits
// exactly two triangles forming the rectangle, in a fixed winding order
// that callers rely on:
//
//	{c+left+top,  c+right+bottom, c+left+bottom}
//	{c+left+top,  c+right+top,    c+right+bottom}
//
// both with normal n.
func New(centre, n, left, right, top, bottom geom.Vec3) TriangulatedPlane {
	cLeftTop := rl.Vector3Add(rl.Vector3Add(centre, left), top)
	cRightBottom := rl.Vector3Add(rl.Vector3Add(centre, right), bottom)
	cLeftBottom := rl.Vector3Add(rl.Vector3Add(centre, left), bottom)
	cRightTop := rl.Vector3Add(rl.Vector3Add(centre, right), top)

	t1 := geom.Triangle{P0: cLeftTop, P1: cRightBottom, P2: cLeftBottom, Normal: n}
	t2 := geom.Triangle{P0: cLeftTop, P1: cRightTop, P2: cRightBottom, Normal: n}

	return TriangulatedPlane{
		Normal:    n,
		Triangles: []geom.Triangle{t1, t2},
	}
}

// Clone returns a deep copy of the plane's triangle list, used by the clip
// resolver to snapshot a plane before it is mutated by the opposing arm of
// a mutual-clip pair.
func (p TriangulatedPlane) Clone() TriangulatedPlane {
	cp := TriangulatedPlane{Normal: p.Normal, Triangles: make([]geom.Triangle, len(p.Triangles))}
	copy(cp.Triangles, p.Triangles)
	return cp
}

// PruneDead drops every triangle whose area has collapsed below
// geom.CoreEpsilon, in place.
func (p *TriangulatedPlane) PruneDead() {
	kept := p.Triangles[:0]
	for _, t := range p.Triangles {
		if !t.Dead() {
			kept = append(kept, t)
		}
	}
	p.Triangles = kept
}
