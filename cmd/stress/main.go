// Command stress generates a random scene of delimiters and anchors inside
// a fixed-size world and times clip_delimiters, create_bvh, and
// calculate_volumes across a range of object counts — the replacement for
// the engine's own physics_stress tool, now timing the geometric pipeline
// instead of broad-phase collision.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"carve3d/internal/delimiter"
	"carve3d/internal/geom"
	"carve3d/internal/world"
)

func main() {
	seed := flag.Uint64("seed", 1, "PRNG seed, for reproducible scenes")
	cellSize := flag.Float64("cell-size", 1, "flood-fill cell size")
	flag.Parse()

	counts := []struct{ delimiters, anchors int }{
		{10, 2}, {50, 4}, {200, 8}, {500, 16},
	}

	for _, c := range counts {
		runStress(*seed, c.delimiters, c.anchors, float32(*cellSize))
	}
}

func runStress(seed uint64, numDelimiters, numAnchors int, cellSize float32) {
	rng := rand.New(rand.NewPCG(seed, seed^0xD1B54A32D192ED03))
	half := geom.Vec3{X: 40, Y: 40, Z: 40}

	w := world.New(half)
	w.ReserveObjects(numAnchors, numDelimiters)

	for i := 0; i < numDelimiters; i++ {
		center := randPoint(rng, half, 0.8)
		size := float32(1) + rng.Float32()*3
		halfSize := geom.Vec3{X: size, Y: size, Z: size}
		turns := geom.Vec3{X: rng.Float32(), Y: rng.Float32(), Z: rng.Float32()}
		level := rng.IntN(3)
		id, err := w.AddDelimiter(center, halfSize, turns, level, fmt.Sprintf("d%d", i))
		if err != nil {
			continue
		}
		_ = w.AddDelimiterPlane(id, delimiterAxis(rng), rng.IntN(2) == 0, 0)
	}

	placed := 0
	for placed < numAnchors {
		p := randPoint(rng, half, 0.9)
		if _, err := w.AddAnchor(p, fmt.Sprintf("a%d", placed)); err == nil {
			placed++
		}
	}

	ctx := context.Background()

	clipStart := time.Now()
	if err := w.ClipDelimiters(ctx); err != nil {
		log.Fatalf("stress: clip: %v", err)
	}
	clipTime := time.Since(clipStart)

	bvhStart := time.Now()
	if err := w.CreateBVH(ctx); err != nil {
		log.Fatalf("stress: bvh: %v", err)
	}
	bvhTime := time.Since(bvhStart)

	floodStart := time.Now()
	if err := w.CalculateVolumes(ctx, cellSize); err != nil {
		log.Fatalf("stress: calculate volumes: %v", err)
	}
	floodTime := time.Since(floodStart)

	totalTris := 0
	w.Anchors(func(id world.AnchorID, a *world.Anchor) {
		totalTris += len(a.Triangles)
	})

	fmt.Printf("delimiters=%-5d anchors=%-3d | clip %8v | bvh %8v | flood %8v | total triangles=%d\n",
		numDelimiters, numAnchors, clipTime.Round(time.Microsecond), bvhTime.Round(time.Microsecond),
		floodTime.Round(time.Microsecond), totalTris)
}

func randPoint(rng *rand.Rand, half geom.Vec3, fraction float32) geom.Vec3 {
	return geom.Vec3{
		X: (rng.Float32()*2 - 1) * half.X * fraction,
		Y: (rng.Float32()*2 - 1) * half.Y * fraction,
		Z: (rng.Float32()*2 - 1) * half.Z * fraction,
	}
}

func delimiterAxis(rng *rand.Rand) delimiter.Axis {
	switch rng.IntN(3) {
	case 0:
		return delimiter.AxisX
	case 1:
		return delimiter.AxisY
	default:
		return delimiter.AxisZ
	}
}
