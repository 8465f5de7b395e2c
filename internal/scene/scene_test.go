package scene

import (
	"os"
	"path/filepath"
	"testing"
)

const s1JSON = `{
  "halfSize": [50, 10, 50],
  "cellSize": 2,
  "anchors": [
    {"label": "Outside", "position": [0, 0, -10]}
  ],
  "delimiters": [
    {
      "label": "block",
      "center": [0, 0, 0],
      "halfSize": [5, 5, 5],
      "level": 0,
      "planes": [
        {"axis": "z", "centered": false}
      ]
    }
  ]
}`

func writeScene(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing scene file: %v", err)
	}
	return path
}

func TestLoadParsesFields(t *testing.T) {
	path := writeScene(t, s1JSON)
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(f.Anchors) != 1 || f.Anchors[0].Label != "Outside" {
		t.Errorf("unexpected anchors: %+v", f.Anchors)
	}
	if len(f.Delimiters) != 1 || f.Delimiters[0].Planes[0].Axis != "z" {
		t.Errorf("unexpected delimiters: %+v", f.Delimiters)
	}
}

func TestBuildConstructsWorld(t *testing.T) {
	f, err := Load(writeScene(t, s1JSON))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	w, err := Build(f)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if w == nil {
		t.Fatal("expected a non-nil world")
	}
}

func TestLoadAndSolveEndToEnd(t *testing.T) {
	w, err := LoadAndSolve(writeScene(t, s1JSON))
	if err != nil {
		t.Fatalf("LoadAndSolve: %v", err)
	}
	if w == nil {
		t.Fatal("expected a non-nil world")
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load("/nonexistent/path/scene.json"); err == nil {
		t.Error("expected an error for a missing scene file")
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	f, err := Load(writeScene(t, s1JSON))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	out := writeScene(t, "")
	if err := Save(out, f); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := Load(out)
	if err != nil {
		t.Fatalf("reloading saved scene: %v", err)
	}
	if len(reloaded.Anchors) != len(f.Anchors) || reloaded.Anchors[0].Label != f.Anchors[0].Label {
		t.Errorf("round-tripped anchors = %+v, want %+v", reloaded.Anchors, f.Anchors)
	}
	if len(reloaded.Delimiters) != len(f.Delimiters) {
		t.Errorf("round-tripped delimiter count = %d, want %d", len(reloaded.Delimiters), len(f.Delimiters))
	}
}

func TestBuildInvalidAxisErrors(t *testing.T) {
	bad := `{"halfSize":[5,5,5],"cellSize":1,"delimiters":[{"label":"d","center":[0,0,0],"halfSize":[1,1,1],"planes":[{"axis":"q"}]}]}`
	f, err := Load(writeScene(t, bad))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := Build(f); err == nil {
		t.Error("expected an error for an invalid axis token")
	}
}
