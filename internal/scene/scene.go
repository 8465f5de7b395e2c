// Package scene loads a JSON scene description (world bounds, anchors, and
// delimiters) and builds a populated world.World from it, in the same
// read-a-file-then-unmarshal-then-construct style the engine's own scene
// loader uses for game objects.
package scene

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"carve3d/internal/delimiter"
	"carve3d/internal/geom"
	"carve3d/internal/world"
)

// File is the top-level JSON document.
type File struct {
	HalfSize   [3]float32     `json:"halfSize"`
	CellSize   float32        `json:"cellSize"`
	Anchors    []AnchorDef    `json:"anchors"`
	Delimiters []DelimiterDef `json:"delimiters"`
}

// AnchorDef describes one anchor entry.
type AnchorDef struct {
	Label    string     `json:"label"`
	Position [3]float32 `json:"position"`
}

// PlaneDef describes one add_delimiter_plane call against its owning
// delimiter.
type PlaneDef struct {
	Axis             string `json:"axis"` // "x", "y", or "z"
	Centered         bool   `json:"centered,omitempty"`
	VirtualExtension string `json:"virtualExtension,omitempty"` // e.g. "negU|posV"
}

// DelimiterDef describes one delimiter box and its planes.
type DelimiterDef struct {
	Label    string     `json:"label"`
	Center   [3]float32 `json:"center"`
	HalfSize [3]float32 `json:"halfSize"`
	Turns    [3]float32 `json:"turns,omitempty"`
	Level    int        `json:"level,omitempty"`
	Planes   []PlaneDef `json:"planes"`
}

// Load reads and parses a scene file from path without constructing a
// world; callers that want validation separate from construction can use
// this plus Build.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: read %q: %w", path, err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("scene: parse %q: %w", path, err)
	}
	return &f, nil
}

// Save writes f to path as indented JSON, the inverse of Load.
func Save(path string, f *File) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("scene: encode %q: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("scene: write %q: %w", path, err)
	}
	return nil
}

// Build constructs a world.World from a parsed scene file and adds its
// anchors and delimiters; it does not run the pipeline (LoadAndSolve does).
func Build(f *File) (*world.World, error) {
	w := world.New(toVec3(f.HalfSize))
	w.ReserveObjects(len(f.Anchors), len(f.Delimiters))

	for _, a := range f.Anchors {
		if _, err := w.AddAnchor(toVec3(a.Position), a.Label); err != nil {
			return nil, fmt.Errorf("scene: anchor %q: %w", a.Label, err)
		}
	}

	for _, d := range f.Delimiters {
		id, err := w.AddDelimiter(toVec3(d.Center), toVec3(d.HalfSize), toVec3(d.Turns), d.Level, d.Label)
		if err != nil {
			return nil, fmt.Errorf("scene: delimiter %q: %w", d.Label, err)
		}
		for _, p := range d.Planes {
			axis, err := parseAxis(p.Axis)
			if err != nil {
				return nil, fmt.Errorf("scene: delimiter %q: %w", d.Label, err)
			}
			ve, err := parseVirtualExtension(p.VirtualExtension)
			if err != nil {
				return nil, fmt.Errorf("scene: delimiter %q: %w", d.Label, err)
			}
			if err := w.AddDelimiterPlane(id, axis, p.Centered, ve); err != nil {
				return nil, fmt.Errorf("scene: delimiter %q plane: %w", d.Label, err)
			}
		}
	}
	return w, nil
}

// LoadAndSolve loads path, builds the world, and runs the full pipeline
// with the scene's declared cell size.
func LoadAndSolve(path string) (*world.World, error) {
	f, err := Load(path)
	if err != nil {
		return nil, err
	}
	w, err := Build(f)
	if err != nil {
		return nil, err
	}
	ctx := context.Background()
	if err := w.ClipDelimiters(ctx); err != nil {
		return nil, fmt.Errorf("scene: clip: %w", err)
	}
	if err := w.CreateBVH(ctx); err != nil {
		return nil, fmt.Errorf("scene: bvh: %w", err)
	}
	if err := w.CalculateVolumes(ctx, f.CellSize); err != nil {
		return nil, fmt.Errorf("scene: calculate volumes: %w", err)
	}
	return w, nil
}

func toVec3(v [3]float32) geom.Vec3 {
	return geom.Vec3{X: v[0], Y: v[1], Z: v[2]}
}

func parseAxis(s string) (delimiter.Axis, error) {
	switch s {
	case "x", "X":
		return delimiter.AxisX, nil
	case "y", "Y":
		return delimiter.AxisY, nil
	case "z", "Z":
		return delimiter.AxisZ, nil
	default:
		return 0, fmt.Errorf("invalid axis %q", s)
	}
}

func parseVirtualExtension(s string) (delimiter.VirtualExtension, error) {
	if s == "" {
		return 0, nil
	}
	var ve delimiter.VirtualExtension
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '|' {
			tok := s[start:i]
			switch tok {
			case "negU":
				ve |= delimiter.NegU
			case "posU":
				ve |= delimiter.PosU
			case "negV":
				ve |= delimiter.NegV
			case "posV":
				ve |= delimiter.PosV
			case "all":
				ve |= delimiter.All
			default:
				return 0, fmt.Errorf("invalid virtualExtension token %q", tok)
			}
			start = i + 1
		}
	}
	return ve, nil
}
