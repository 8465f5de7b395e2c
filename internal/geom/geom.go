// Package geom provides the vector, triangle and intersection primitives
// shared by every stage of the delimiter-clipping pipeline.
package geom

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Vec3 is an alias for the engine's vector type. Every 3D quantity in this
// module flows through raylib-go's vector math rather than a hand-rolled
// type, matching the rest of the dependency's call sites.
type Vec3 = rl.Vector3

// CoreEpsilon is the default tolerance used throughout the pipeline for
// degeneracy checks (dead triangles, near-duplicate points, on-plane tests).
// float64 builds would use 1e-5; this project targets float32 (raylib's
// native precision), so CoreEpsilon tracks the single-precision constant
// from the specification.
const CoreEpsilon = 1e-3

// CoreSmallEpsilon is used where the operand is known to be normalised
// (unit vectors, barycentric coordinates already in [0,1]) and a tighter
// tolerance is safe.
const CoreSmallEpsilon = 1e-5

// Triangle is three ordered corner points plus a cached unit normal. The
// normal must always equal normalize((P0-P1) x (P0-P2)); RecomputeNormal
// restores that invariant after any mutation of the corners.
type Triangle struct {
	P0, P1, P2 Vec3
	Normal     Vec3
}

// NewTriangle builds a triangle and computes its normal.
func NewTriangle(p0, p1, p2 Vec3) Triangle {
	t := Triangle{P0: p0, P1: p1, P2: p2}
	t.RecomputeNormal()
	return t
}

// RecomputeNormal restores the cached-normal invariant from the corners.
func (t *Triangle) RecomputeNormal() {
	e1 := rl.Vector3Subtract(t.P0, t.P1)
	e2 := rl.Vector3Subtract(t.P0, t.P2)
	n := rl.Vector3CrossProduct(e1, e2)
	if rl.Vector3Length(n) < CoreSmallEpsilon {
		t.Normal = Vec3{}
		return
	}
	t.Normal = rl.Vector3Normalize(n)
}

// Area returns the triangle's surface area (half the cross-product length).
func (t Triangle) Area() float32 {
	e1 := rl.Vector3Subtract(t.P1, t.P0)
	e2 := rl.Vector3Subtract(t.P2, t.P0)
	return rl.Vector3Length(rl.Vector3CrossProduct(e1, e2)) * 0.5
}

// Dead reports whether the triangle's area has collapsed below CoreEpsilon.
func (t Triangle) Dead() bool {
	return t.Area() < CoreEpsilon
}

// Centroid returns (P0+P1+P2)/3.
func (t Triangle) Centroid() Vec3 {
	sum := rl.Vector3Add(rl.Vector3Add(t.P0, t.P1), t.P2)
	return rl.Vector3Scale(sum, 1.0/3.0)
}

// Corner returns the i'th corner, i in [0,3), wrapping with modulo semantics
// so callers can index by (extension+k)%3 style winding offsets.
func (t Triangle) Corner(i int) Vec3 {
	switch ((i % 3) + 3) % 3 {
	case 0:
		return t.P0
	case 1:
		return t.P1
	default:
		return t.P2
	}
}

// SignedDistance returns the signed distance from p to the plane through
// planePoint with unit normal planeNormal.
func SignedDistance(p, planePoint, planeNormal Vec3) float32 {
	return rl.Vector3DotProduct(rl.Vector3Subtract(p, planePoint), planeNormal)
}

// AllPointsInFrontOfPlane reports whether every corner of t has a signed
// distance to the plane (planePoint, planeNormal) that is <= CoreEpsilon,
// AND at least one corner is strictly < -CoreEpsilon. Triangles lying
// exactly on the plane are therefore not considered "in front" of it.
func (t Triangle) AllPointsInFrontOfPlane(planePoint, planeNormal Vec3) bool {
	d0 := SignedDistance(t.P0, planePoint, planeNormal)
	d1 := SignedDistance(t.P1, planePoint, planeNormal)
	d2 := SignedDistance(t.P2, planePoint, planeNormal)
	if d0 > CoreEpsilon || d1 > CoreEpsilon || d2 > CoreEpsilon {
		return false
	}
	return d0 < -CoreEpsilon || d1 < -CoreEpsilon || d2 < -CoreEpsilon
}

// PointsAlmostIdentical reports whether two points coincide within
// CoreEpsilon.
func PointsAlmostIdentical(a, b Vec3) bool {
	return rl.Vector3Distance(a, b) < CoreEpsilon
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max Vec3
}

// EmptyAABB returns an AABB primed so the first Expand call establishes it.
func EmptyAABB() AABB {
	return AABB{
		Min: Vec3{X: math.MaxFloat32, Y: math.MaxFloat32, Z: math.MaxFloat32},
		Max: Vec3{X: -math.MaxFloat32, Y: -math.MaxFloat32, Z: -math.MaxFloat32},
	}
}

// Expand grows the box to include p.
func (a AABB) Expand(p Vec3) AABB {
	return AABB{Min: vmin(a.Min, p), Max: vmax(a.Max, p)}
}

// Union returns the smallest AABB enclosing both a and b.
func (a AABB) Union(b AABB) AABB {
	return AABB{Min: vmin(a.Min, b.Min), Max: vmax(a.Max, b.Max)}
}

// Contains reports whether p lies within the box (inclusive).
func (a AABB) Contains(p Vec3) bool {
	return p.X >= a.Min.X && p.X <= a.Max.X &&
		p.Y >= a.Min.Y && p.Y <= a.Max.Y &&
		p.Z >= a.Min.Z && p.Z <= a.Max.Z
}

// LongestAxis returns 0, 1 or 2 for X, Y, Z.
func (a AABB) LongestAxis() int {
	size := rl.Vector3Subtract(a.Max, a.Min)
	axis := 0
	best := size.X
	if size.Y > best {
		axis, best = 1, size.Y
	}
	if size.Z > best {
		axis = 2
	}
	return axis
}

func vmin(a, b Vec3) Vec3 {
	return Vec3{X: minf(a.X, b.X), Y: minf(a.Y, b.Y), Z: minf(a.Z, b.Z)}
}

func vmax(a, b Vec3) Vec3 {
	return Vec3{X: maxf(a.X, b.X), Y: maxf(a.Y, b.Y), Z: maxf(a.Z, b.Z)}
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// AxisValue returns the component of v along the given axis (0=X,1=Y,2=Z).
func AxisValue(v Vec3, axis int) float32 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// RayHit is the result of a ray/primitive intersection test.
type RayHit struct {
	Hit bool
	T   float32
}

// RayDoubleSidedTriangleIntersection tests the segment o -> o+d against
// triangle (a,b,c) with no back-face rejection. t is unnormalised with
// respect to d, so t in [0,1] iff the segment o->o+d crosses the triangle.
// This is the Möller-Trumbore algorithm without the sign check on the
// determinant that a single-sided test would apply.
func RayDoubleSidedTriangleIntersection(o, d, a, b, c Vec3) RayHit {
	e1 := rl.Vector3Subtract(b, a)
	e2 := rl.Vector3Subtract(c, a)
	pvec := rl.Vector3CrossProduct(d, e2)
	det := rl.Vector3DotProduct(e1, pvec)
	if absf(det) < CoreEpsilon {
		return RayHit{}
	}
	invDet := 1.0 / det
	tvec := rl.Vector3Subtract(o, a)
	u := rl.Vector3DotProduct(tvec, pvec) * invDet
	if u < -CoreSmallEpsilon || u > 1+CoreSmallEpsilon {
		return RayHit{}
	}
	qvec := rl.Vector3CrossProduct(tvec, e1)
	v := rl.Vector3DotProduct(d, qvec) * invDet
	if v < -CoreSmallEpsilon || u+v > 1+CoreSmallEpsilon {
		return RayHit{}
	}
	t := rl.Vector3DotProduct(e2, qvec) * invDet
	return RayHit{Hit: true, T: t}
}

// RayDoubleSidedPlaneIntersection intersects the segment o -> o+d with the
// plane through p with unit normal n. Returns no-hit when the segment runs
// (near-)parallel to the plane.
func RayDoubleSidedPlaneIntersection(o, d, p, n Vec3) RayHit {
	denom := rl.Vector3DotProduct(d, n)
	if absf(denom) < CoreEpsilon {
		return RayHit{}
	}
	t := rl.Vector3DotProduct(rl.Vector3Subtract(p, o), n) / denom
	return RayHit{Hit: true, T: t}
}

// PointInsideTriangle2D tests p against the 2D triangle (a,b,c) using
// barycentric-sign comparison tolerant of CoreEpsilon on each side; a point
// exactly on an edge is considered inside.
func PointInsideTriangle2D(p, a, b, c [2]float32) bool {
	sign := func(p1, p2, p3 [2]float32) float32 {
		return (p1[0]-p3[0])*(p2[1]-p3[1]) - (p2[0]-p3[0])*(p1[1]-p3[1])
	}
	d1 := sign(p, a, b)
	d2 := sign(p, b, c)
	d3 := sign(p, c, a)

	hasNeg := d1 < -CoreEpsilon || d2 < -CoreEpsilon || d3 < -CoreEpsilon
	hasPos := d1 > CoreEpsilon || d2 > CoreEpsilon || d3 > CoreEpsilon

	return !(hasNeg && hasPos)
}

// Barycentric returns the barycentric coordinates of p with respect to
// triangle t. The result sums to 1; a value >= 1-CoreSmallEpsilon on any
// coordinate means p coincides with that corner.
func Barycentric(p Vec3, t Triangle) (u, v, w float32) {
	v0 := rl.Vector3Subtract(t.P1, t.P0)
	v1 := rl.Vector3Subtract(t.P2, t.P0)
	v2 := rl.Vector3Subtract(p, t.P0)

	d00 := rl.Vector3DotProduct(v0, v0)
	d01 := rl.Vector3DotProduct(v0, v1)
	d11 := rl.Vector3DotProduct(v1, v1)
	d20 := rl.Vector3DotProduct(v2, v0)
	d21 := rl.Vector3DotProduct(v2, v1)

	denom := d00*d11 - d01*d01
	if absf(denom) < CoreSmallEpsilon {
		return 1, 0, 0
	}
	vv := (d11*d20 - d01*d21) / denom
	ww := (d00*d21 - d01*d20) / denom
	uu := 1 - vv - ww
	return uu, vv, ww
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// CeilToOdd returns the smallest odd integer >= ceil(v).
func CeilToOdd(v float32) int {
	n := int(math.Ceil(float64(v)))
	if n%2 == 0 {
		n++
	}
	if n < 1 {
		n = 1
	}
	return n
}
