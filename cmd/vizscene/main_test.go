package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/inamate/vizscene/internal/sample"
)

const sceneYAML = `
id: slide
duration: 100
fps: 20
layers:
  - id: box
    type: rectangle
    props: {x: 0, y: 0, width: 10, height: 10, fill: "#00ff00"}
    animations:
      - {property: x, from: 0, to: 50, start: 0, end: 100}
`

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeScene(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidate(t *testing.T) {
	good := writeScene(t, "good.yaml", sceneYAML)
	bad := writeScene(t, "bad.json", `{"id":"bad","duration":100,"fps":-1,"layers":[]}`)

	out, err := runCLI(t, "validate", good)
	if err != nil {
		t.Fatalf("validate good: %v\n%s", err, out)
	}
	if !strings.Contains(out, "ok (slide, 1 layers") {
		t.Errorf("output = %q", out)
	}

	out, err = runCLI(t, "validate", good, bad)
	if err == nil {
		t.Fatal("validate accepted a bad scene")
	}
	if !strings.Contains(out, "fps: must be > 0") {
		t.Errorf("output does not list the field problem: %q", out)
	}
}

func TestEval(t *testing.T) {
	path := writeScene(t, "slide.yaml", sceneYAML)
	out, err := runCLI(t, "eval", path, "--t", "50")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if !strings.Contains(out, "x=25") {
		t.Errorf("x at 50ms not reported as 25: %q", out)
	}
}

func TestRenderFormats(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"frame.png", "frame.svg", "frame.json"} {
		path := filepath.Join(dir, name)
		if out, err := runCLI(t, "render", "sample:"+sample.NewtonFirstLaw, "--t", "2000", "-o", path, "--width", "200", "--height", "150"); err != nil {
			t.Fatalf("render %s: %v\n%s", name, err, out)
		}
		info, err := os.Stat(path)
		if err != nil || info.Size() == 0 {
			t.Errorf("%s not written: %v", name, err)
		}
	}

	f, err := os.Open(filepath.Join(dir, "frame.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 150 {
		t.Errorf("bounds = %v", b)
	}
}

func TestExport(t *testing.T) {
	path := writeScene(t, "slide.yaml", sceneYAML)
	dir := filepath.Join(t.TempDir(), "frames")

	out, err := runCLI(t, "export", path, "-o", dir, "--width", "32", "--height", "32", "--workers", "2")
	if err != nil {
		t.Fatalf("export: %v\n%s", err, out)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	// 100ms at 20fps: frames at 0, 50 and 100.
	if len(entries) != 3 {
		t.Errorf("got %d frames, want 3", len(entries))
	}
	if entries[0].Name() != "frame_00000.png" {
		t.Errorf("first frame = %s", entries[0].Name())
	}
}

func TestSamples(t *testing.T) {
	out, err := runCLI(t, "samples")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range sample.Names() {
		if !strings.Contains(out, name) {
			t.Errorf("listing missing %s", name)
		}
	}

	out, err = runCLI(t, "samples", sample.SolarSystem, "--format", "yaml")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "id: solar_system") {
		t.Errorf("yaml dump = %q", out)
	}

	if _, err := runCLI(t, "samples", "tides"); err == nil {
		t.Error("unknown sample accepted")
	}
}
