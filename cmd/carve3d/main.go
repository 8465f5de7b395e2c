// Command carve3d loads a scene file, runs the full clip/BVH/flood
// pipeline, and with -out writes one OBJ mesh per anchor — the headless counterpart
// to the viewer, in the same flag-driven load-then-run shape as the
// engine's own CLI entry points.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"carve3d/internal/geom"
	"carve3d/internal/scene"
	"carve3d/internal/world"
)

func main() {
	scenePath := flag.String("scene", "", "path to a scene JSON file")
	cellSize := flag.Float64("cell-size", 0, "override the scene's flood-fill cell size (0 = use the scene's own value)")
	outDir := flag.String("out", "", "directory to write one OBJ mesh per anchor into (optional)")
	simplify := flag.Bool("simplify", false, "run the mesh-optimizer combine pass on every anchor after solving")
	flag.Parse()

	if *scenePath == "" {
		fmt.Fprintln(os.Stderr, "usage: carve3d -scene path.json [-cell-size f] [-out dir] [-simplify]")
		os.Exit(2)
	}
	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0o755); err != nil {
			log.Fatalf("carve3d: creating %s: %v", *outDir, err)
		}
	}

	f, err := scene.Load(*scenePath)
	if err != nil {
		log.Fatalf("carve3d: %v", err)
	}
	if *cellSize > 0 {
		f.CellSize = float32(*cellSize)
	}

	w, err := scene.Build(f)
	if err != nil {
		log.Fatalf("carve3d: %v", err)
	}

	ctx := context.Background()
	if err := w.ClipDelimiters(ctx); err != nil {
		log.Fatalf("carve3d: clip: %v", err)
	}
	if err := w.CreateBVH(ctx); err != nil {
		log.Fatalf("carve3d: bvh: %v", err)
	}
	if err := w.CalculateVolumes(ctx, f.CellSize); err != nil {
		log.Fatalf("carve3d: calculate volumes: %v", err)
	}

	var ids []world.AnchorID
	w.Anchors(func(id world.AnchorID, a *world.Anchor) {
		ids = append(ids, id)
	})

	if *simplify {
		for _, id := range ids {
			w.SimplifyAnchor(id)
		}
	}

	for _, id := range ids {
		a := w.Anchor(id)
		log.Printf("%-20s position=%+v triangles=%d", a.Label, a.Position, len(a.Triangles))
		if *outDir != "" {
			path := filepath.Join(*outDir, objFileName(a.Label))
			if err := writeOBJ(path, a.Triangles); err != nil {
				log.Fatalf("carve3d: writing %s: %v", path, err)
			}
		}
	}
}

func objFileName(label string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, label)
	if safe == "" {
		safe = "anchor"
	}
	return safe + ".obj"
}

// writeOBJ dumps a triangle soup as a Wavefront OBJ: every triangle
// contributes its own three vertices (no shared-vertex welding), which is
// wasteful but keeps the writer a single pass over tris with no indexing
// step to get wrong.
func writeOBJ(path string, tris []geom.Triangle) error {
	var b strings.Builder
	for _, t := range tris {
		fmt.Fprintf(&b, "v %f %f %f\n", t.P0.X, t.P0.Y, t.P0.Z)
		fmt.Fprintf(&b, "v %f %f %f\n", t.P1.X, t.P1.Y, t.P1.Z)
		fmt.Fprintf(&b, "v %f %f %f\n", t.P2.X, t.P2.Y, t.P2.Z)
	}
	for i := range tris {
		base := i*3 + 1
		fmt.Fprintf(&b, "f %d %d %d\n", base, base+1, base+2)
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
