package engine

import (
	"math"
	"reflect"
	"testing"

	"github.com/inamate/vizscene/internal/scene"
)

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func circleLayer(anims ...scene.Animation) scene.Layer {
	return scene.Layer{
		ID:         "c",
		Type:       scene.ShapeCircle,
		Props:      scene.Props{"x": 0.0, "y": 0.0, "r": 10.0, "fill": "#9b59b6"},
		Animations: anims,
	}
}

func TestResolveRadiusScenario(t *testing.T) {
	layer := circleLayer(scene.Interpolate("r", 10, 50, 0, 1000))

	if r := Resolve(layer, 500).Float("r"); r != 30 {
		t.Errorf("r at 500ms: expected 30, got %v", r)
	}
	if r := Resolve(layer, 1500).Float("r"); r != 50 {
		t.Errorf("r at 1500ms: expected 50, got %v", r)
	}
}

func TestResolveBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		anim     scene.Animation
		time     float64
		expected float64
	}{
		{"at start", scene.Interpolate("x", 3.3, 7.7, 100, 900), 100, 3.3},
		{"at end", scene.Interpolate("x", 3.3, 7.7, 100, 900), 900, 7.7},
		{"after end", scene.Interpolate("x", 3.3, 7.7, 100, 900), 5000, 7.7},
		{"far after end", scene.Interpolate("x", 0.1, 0.7, 0, 3), 1e9, 0.7},
		{"before start keeps base", scene.Interpolate("x", 3.3, 7.7, 100, 900), 50, 0},
		{"decreasing", scene.Interpolate("x", 50, 30, 1500, 3000), 2250, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(circleLayer(tt.anim), tt.time).Float("x")
			if got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestResolveMonotonic(t *testing.T) {
	up := circleLayer(scene.Interpolate("r", 10, 50, 200, 1200))
	down := circleLayer(scene.Interpolate("r", 50, 10, 200, 1200))

	prevUp := Resolve(up, 200).Float("r")
	prevDown := Resolve(down, 200).Float("r")
	for ts := 210.0; ts <= 1200; ts += 10 {
		u := Resolve(up, ts).Float("r")
		d := Resolve(down, ts).Float("r")
		if u < prevUp {
			t.Fatalf("increasing animation went down at %v: %v < %v", ts, u, prevUp)
		}
		if d > prevDown {
			t.Fatalf("decreasing animation went up at %v: %v > %v", ts, d, prevDown)
		}
		prevUp, prevDown = u, d
	}
}

func TestResolveOrbit(t *testing.T) {
	layer := circleLayer(scene.Orbit(100, 100, 50, 2000))

	p := Resolve(layer, 500)
	if !approx(p.Float("x"), 100, 1e-6*100) || !approx(p.Float("y"), 150, 1e-6*150) {
		t.Errorf("quarter period: expected (100,150), got (%v,%v)", p.Float("x"), p.Float("y"))
	}

	for _, ts := range []float64{0, 2000, 4000, 20000} {
		p := Resolve(layer, ts)
		if p.Float("x") != 150 || p.Float("y") != 100 {
			t.Errorf("t=%v: expected exactly (150,100), got (%v,%v)", ts, p.Float("x"), p.Float("y"))
		}
	}
}

func TestResolveOrbitOverridesEarlierPosition(t *testing.T) {
	layer := circleLayer(
		scene.Interpolate("x", 0, 1000, 0, 1000),
		scene.Orbit(0, 0, 10, 1000),
	)
	if x := Resolve(layer, 0).Float("x"); x != 10 {
		t.Errorf("orbit declared last should win, got x=%v", x)
	}
}

func TestResolveLaterAnimationWins(t *testing.T) {
	layer := circleLayer(
		scene.Interpolate("x", 0, 100, 0, 1000),
		scene.Interpolate("x", 0, 200, 500, 1500),
	)

	if x := Resolve(layer, 700).Float("x"); !approx(x, 40, 1e-9) {
		t.Errorf("overlap at 700ms: expected 40, got %v", x)
	}
	// Before the second window opens the first one still applies.
	if x := Resolve(layer, 250).Float("x"); x != 25 {
		t.Errorf("at 250ms: expected 25, got %v", x)
	}
}

func TestResolveSequentialSameProperty(t *testing.T) {
	// The default mock scene grows then shrinks a circle with two windows.
	layer := circleLayer(
		scene.Interpolate("r", 30, 50, 0, 1500),
		scene.Interpolate("r", 50, 30, 1500, 3000),
	)
	if r := Resolve(layer, 1500).Float("r"); r != 50 {
		t.Errorf("at the hand-over: expected 50, got %v", r)
	}
	if r := Resolve(layer, 3000).Float("r"); r != 30 {
		t.Errorf("at the end: expected 30, got %v", r)
	}
}

func TestResolveIsPure(t *testing.T) {
	layer := circleLayer(scene.Interpolate("r", 10, 50, 0, 1000), scene.Orbit(5, 5, 3, 700))
	before := layer.Props.Clone()

	a := Resolve(layer, 333.3)
	b := Resolve(layer, 333.3)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("same inputs gave different outputs: %v vs %v", a, b)
	}
	if math.Float64bits(a.Float("x")) != math.Float64bits(b.Float("x")) {
		t.Error("results are not bit-identical")
	}

	// Scrubbing backwards must not depend on what was evaluated before.
	_ = Resolve(layer, 900)
	c := Resolve(layer, 333.3)
	if !reflect.DeepEqual(a, c) {
		t.Error("evaluation depends on call history")
	}

	a["r"] = -1.0
	if !reflect.DeepEqual(layer.Props, before) {
		t.Error("base props were mutated")
	}
}

func TestResolveScenePaintOrder(t *testing.T) {
	s := &scene.Scene{ID: "s", DurationMs: 1000, FPS: 30, Layers: []scene.Layer{
		{ID: "back", Type: scene.ShapeRectangle},
		{ID: "middle", Type: scene.ShapeCircle},
		{ID: "front", Type: scene.ShapeText},
	}}

	layers := ResolveScene(s, 0)
	for i, id := range []string{"back", "middle", "front"} {
		if layers[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, layers[i].ID)
		}
	}
	if ResolveScene(nil, 0) != nil {
		t.Error("nil scene should resolve to nil")
	}
}
