// Command viewer is a raylib + raygui debug viewer for a solved scene: it
// loads a scene file, runs the pipeline, and renders the mask-selectable
// debug-draw layers (anchors, delimiters, root planes, delimiter planes,
// flood cells, BVH nodes) alongside each anchor's resulting mesh, in the
// same free-fly-camera-plus-immediate-mode-UI shape as the engine's own
// editor view.
package main

import (
	"fmt"
	"math"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"carve3d/internal/debugdraw"
	"carve3d/internal/scene"
	"carve3d/internal/world"
)

type flyCamera struct {
	Position  rl.Vector3
	Yaw       float32
	Pitch     float32
	MoveSpeed float32
	LookSpeed float32
}

func (c *flyCamera) update(dt float32) {
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		delta := rl.GetMouseDelta()
		c.Yaw += delta.X * c.LookSpeed
		c.Pitch -= delta.Y * c.LookSpeed
		if c.Pitch > 89 {
			c.Pitch = 89
		}
		if c.Pitch < -89 {
			c.Pitch = -89
		}
	}

	yawRad := float64(c.Yaw) * math.Pi / 180
	forward := rl.Vector3{X: float32(math.Cos(yawRad)), Y: 0, Z: float32(math.Sin(yawRad))}
	right := rl.Vector3{X: float32(math.Sin(yawRad)), Y: 0, Z: float32(-math.Cos(yawRad))}

	speed := c.MoveSpeed * dt
	if rl.IsKeyDown(rl.KeyW) {
		c.Position = rl.Vector3Add(c.Position, rl.Vector3Scale(forward, speed))
	}
	if rl.IsKeyDown(rl.KeyS) {
		c.Position = rl.Vector3Subtract(c.Position, rl.Vector3Scale(forward, speed))
	}
	if rl.IsKeyDown(rl.KeyD) {
		c.Position = rl.Vector3Add(c.Position, rl.Vector3Scale(right, speed))
	}
	if rl.IsKeyDown(rl.KeyA) {
		c.Position = rl.Vector3Subtract(c.Position, rl.Vector3Scale(right, speed))
	}
	if rl.IsKeyDown(rl.KeyE) {
		c.Position.Y += speed
	}
	if rl.IsKeyDown(rl.KeyQ) {
		c.Position.Y -= speed
	}
}

func (c *flyCamera) raylibCamera() rl.Camera3D {
	yawRad := float64(c.Yaw) * math.Pi / 180
	pitchRad := float64(c.Pitch) * math.Pi / 180
	target := rl.Vector3{
		X: c.Position.X + float32(math.Cos(yawRad)*math.Cos(pitchRad)),
		Y: c.Position.Y + float32(math.Sin(pitchRad)),
		Z: c.Position.Z + float32(math.Sin(yawRad)*math.Cos(pitchRad)),
	}
	return rl.Camera3D{
		Position:   c.Position,
		Target:     target,
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       60,
		Projection: rl.CameraPerspective,
	}
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: viewer <scene.json>")
		os.Exit(2)
	}

	w, err := scene.LoadAndSolve(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "viewer: %v\n", err)
		os.Exit(1)
	}

	rl.InitWindow(1280, 720, "carve3d viewer")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	cam := &flyCamera{Position: rl.Vector3{X: 0, Y: 5, Z: 15}, MoveSpeed: 12, LookSpeed: 0.2}
	mask := debugdraw.All

	for !rl.WindowShouldClose() {
		dt := rl.GetFrameTime()
		cam.update(dt)

		buf := w.DebugDraw(mask)

		rl.BeginDrawing()
		rl.ClearBackground(rl.NewColor(18, 18, 24, 255))

		rc := cam.raylibCamera()
		rl.BeginMode3D(rc)
		drawBuffer(buf)
		drawSolvedMeshes(w)
		rl.EndMode3D()

		drawUI(&mask)
		rl.DrawFPS(10, 10)
		rl.EndDrawing()
	}
}

func drawBuffer(buf debugdraw.Buffer) {
	for _, s := range buf.Spheres {
		rl.DrawSphere(s.Centre, s.Radius, rl.Yellow)
	}
	for _, c := range buf.Cuboids {
		size := rl.Vector3Subtract(c.Box.Max, c.Box.Min)
		centre := rl.Vector3Scale(rl.Vector3Add(c.Box.Min, c.Box.Max), 0.5)
		rl.DrawCubeWiresV(centre, size, rl.Green)
	}
	for _, t := range buf.Triangles {
		rl.DrawTriangle3D(t.Tri.P0, t.Tri.P1, t.Tri.P2, rl.Fade(rl.SkyBlue, 0.5))
		rl.DrawLine3D(t.Tri.P0, t.Tri.P1, rl.DarkBlue)
		rl.DrawLine3D(t.Tri.P1, t.Tri.P2, rl.DarkBlue)
		rl.DrawLine3D(t.Tri.P2, t.Tri.P0, rl.DarkBlue)
	}
	for _, l := range buf.Lines {
		rl.DrawLine3D(l.A, l.B, rl.Orange)
	}
}

func drawSolvedMeshes(w *world.World) {
	w.Anchors(func(id world.AnchorID, a *world.Anchor) {
		for _, t := range a.Triangles {
			rl.DrawTriangle3D(t.P0, t.P1, t.P2, rl.Fade(rl.Lime, 0.35))
		}
	})
}

func drawUI(mask *debugdraw.Mask) {
	panelH := int32(195)
	gui.Panel(rl.Rectangle{X: 10, Y: 40, Width: 220, Height: float32(panelH)}, "Layers")
	toggle(10+10, 40+30, "Anchors", debugdraw.Anchors, mask)
	toggle(10+10, 40+55, "Delimiters", debugdraw.Delimiters, mask)
	toggle(10+10, 40+80, "Root planes", debugdraw.RootPlanes, mask)
	toggle(10+10, 40+105, "Delimiter planes", debugdraw.DelimiterPlanes, mask)
	toggle(10+10, 40+130, "Flood cells", debugdraw.FloodCells, mask)
	toggle(10+10, 40+155, "BVH nodes", debugdraw.BVHNodes, mask)
}

func toggle(x, y float32, label string, bit debugdraw.Mask, mask *debugdraw.Mask) {
	checked := *mask&bit != 0
	checked = gui.CheckBox(rl.Rectangle{X: x, Y: y, Width: 16, Height: 16}, label, checked)
	if checked {
		*mask |= bit
	} else {
		*mask &^= bit
	}
}
