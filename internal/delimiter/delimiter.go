// Package delimiter implements the oriented-box cutting obstacle: a rotated
// box whose faces can be turned into one-sided triangulated cutting planes.
package delimiter

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"carve3d/internal/geom"
	"carve3d/internal/plane"
)

// Axis names a local box axis.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// VirtualExtension is a 4-bit mask over {-U, +U, -V, +V} per plane recording
// which in-plane directions extend to world scale at construction time.
type VirtualExtension uint8

const (
	NegU VirtualExtension = 1 << iota
	PosU
	NegV
	PosV
	All = NegU | PosU | NegV | PosV
)

const maxPlanes = 6

// Delimiter is a rotated box contributing up to six cutting planes.
type Delimiter struct {
	Center     geom.Vec3
	ScaledAxes [3]geom.Vec3 // rotated half-extents (unit axis * half-size component)
	UnitAxes   [3]geom.Vec3
	Planes     [maxPlanes]plane.TriangulatedPlane
	PlaneCount int
	Level      int
	Label      string
}

// New builds a Delimiter from a centre, half-size, and rotation given as
// Euler turns (1 turn = 2*pi) applied in X, Y, Z order, matching the
// rotation-matrix composition the engine's own OBB constructor uses for
// degrees.
func New(center, halfSize, turns geom.Vec3, level int, label string) *Delimiter {
	const twoPi = 2 * 3.14159265358979323846
	rx := float32(twoPi) * turns.X
	ry := float32(twoPi) * turns.Y
	rz := float32(twoPi) * turns.Z

	rotX := rl.MatrixRotateX(rx)
	rotY := rl.MatrixRotateY(ry)
	rotZ := rl.MatrixRotateZ(rz)
	rot := rl.MatrixMultiply(rl.MatrixMultiply(rotX, rotY), rotZ)

	unit := [3]geom.Vec3{
		rl.Vector3Normalize(geom.Vec3{X: rot.M0, Y: rot.M1, Z: rot.M2}),
		rl.Vector3Normalize(geom.Vec3{X: rot.M4, Y: rot.M5, Z: rot.M6}),
		rl.Vector3Normalize(geom.Vec3{X: rot.M8, Y: rot.M9, Z: rot.M10}),
	}
	half := [3]float32{halfSize.X, halfSize.Y, halfSize.Z}
	scaled := [3]geom.Vec3{
		rl.Vector3Scale(unit[0], half[0]),
		rl.Vector3Scale(unit[1], half[1]),
		rl.Vector3Scale(unit[2], half[2]),
	}

	return &Delimiter{
		Center:     center,
		ScaledAxes: scaled,
		UnitAxes:   unit,
		Level:      level,
		Label:      label,
	}
}

// uvAxes returns, for a given cutting axis, the indices of the two in-plane
// axes (U then V) in the canonical order used for left/right/top/bottom
// extents.
func uvAxes(axis Axis) (u, v int) {
	switch axis {
	case AxisX:
		return 1, 2
	case AxisY:
		return 0, 2
	default:
		return 0, 1
	}
}

// AddPlane constructs one (centered) or two (a +/- offset pair) triangulated
// cutting planes on the given local axis. worldHalfSize is the owning
// world's half-extent, used to resolve virtual-extension bits to the
// world's diameter. Returns an error (a caller-boundary precondition
// violation, per the error-handling design) if the new plane(s) would take
// the delimiter past six planes.
func (d *Delimiter) AddPlane(axis Axis, centered bool, ve VirtualExtension, worldHalfSize geom.Vec3) error {
	n := 1
	if !centered {
		n = 2
	}
	if d.PlaneCount+n > maxPlanes {
		return fmt.Errorf("delimiter %q: adding %d plane(s) would exceed the 6-plane limit (have %d)", d.Label, n, d.PlaneCount)
	}

	ui, vi := uvAxes(axis)
	uAxis, vAxis := d.UnitAxes[ui], d.UnitAxes[vi]
	halfU, halfV := axisComponent(d, ui), axisComponent(d, vi)

	worldDiameter := 2 * maxf3(worldHalfSize.X, worldHalfSize.Y, worldHalfSize.Z)

	extent := func(bit VirtualExtension, base float32) float32 {
		if ve&bit != 0 {
			return worldDiameter
		}
		return base
	}

	left := rl.Vector3Scale(uAxis, -extent(NegU, halfU))
	right := rl.Vector3Scale(uAxis, extent(PosU, halfU))
	top := rl.Vector3Scale(vAxis, extent(PosV, halfV))
	bottom := rl.Vector3Scale(vAxis, -extent(NegV, halfV))

	axisUnit := d.UnitAxes[int(axis)]

	if centered {
		d.appendPlane(plane.New(d.Center, axisUnit, left, right, top, bottom))
		return nil
	}

	offset := d.ScaledAxes[int(axis)]
	posCentre := rl.Vector3Add(d.Center, offset)
	negCentre := rl.Vector3Subtract(d.Center, offset)
	d.appendPlane(plane.New(posCentre, axisUnit, left, right, top, bottom))
	d.appendPlane(plane.New(negCentre, rl.Vector3Scale(axisUnit, -1), left, right, top, bottom))
	return nil
}

func (d *Delimiter) appendPlane(p plane.TriangulatedPlane) {
	d.Planes[d.PlaneCount] = p
	d.PlaneCount++
}

func axisComponent(d *Delimiter, axisIndex int) float32 {
	switch axisIndex {
	case 0:
		return rl.Vector3Length(d.ScaledAxes[0])
	case 1:
		return rl.Vector3Length(d.ScaledAxes[1])
	default:
		return rl.Vector3Length(d.ScaledAxes[2])
	}
}

func maxf3(a, b, c float32) float32 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

// AllTriangles returns every surviving triangle across all of d's planes,
// tagged with the plane index they came from.
func (d *Delimiter) AllTriangles(yield func(planeIdx, triIdx int, t geom.Triangle)) {
	for pi := 0; pi < d.PlaneCount; pi++ {
		for ti, t := range d.Planes[pi].Triangles {
			yield(pi, ti, t)
		}
	}
}
