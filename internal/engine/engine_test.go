package engine

import (
	"errors"
	"testing"

	"github.com/inamate/vizscene/internal/scene"
)

func testScene(id string, durationMs float64) *scene.Scene {
	return &scene.Scene{
		ID:         id,
		DurationMs: durationMs,
		FPS:        30,
		Layers: []scene.Layer{
			{ID: "c", Type: scene.ShapeCircle, Props: scene.Props{"r": 10.0},
				Animations: []scene.Animation{scene.Interpolate("r", 10, 50, 0, durationMs)}},
		},
	}
}

func loaded(t *testing.T, opts ...Option) *Controller {
	t.Helper()
	c := NewController(opts...)
	if err := c.LoadScene(testScene("s1", 1000)); err != nil {
		t.Fatalf("load: %v", err)
	}
	return c
}

func TestNewControllerIdle(t *testing.T) {
	c := NewController()
	if c.Mode() != ModeIdle || c.Scene() != nil {
		t.Errorf("expected idle with no scene, got %v", c.Snapshot())
	}

	// Commands without a scene do nothing.
	c.Play()
	c.Seek(100)
	c.Restart()
	if c.Mode() != ModeIdle || c.Cursor() != 0 {
		t.Errorf("commands without a scene changed state: %v", c.Snapshot())
	}
	if c.Advance(c.Generation(), 100) {
		t.Error("advance without a scene should not move")
	}
}

func TestLoadSceneResets(t *testing.T) {
	c := loaded(t)
	c.Play()
	c.Advance(c.Generation(), 400)

	if err := c.LoadScene(testScene("s2", 2000)); err != nil {
		t.Fatal(err)
	}
	st := c.Snapshot()
	if st.SceneID != "s2" || st.CursorMs != 0 || st.Mode != ModeIdle {
		t.Errorf("expected fresh idle s2, got %+v", st)
	}
}

func TestLoadInvalidKeepsPrevious(t *testing.T) {
	c := loaded(t)
	c.Play()
	c.Advance(c.Generation(), 250)
	gen := c.Generation()

	err := c.LoadScene(&scene.Scene{ID: "bad", DurationMs: 0, FPS: 30})
	if !errors.Is(err, scene.ErrInvalidScene) {
		t.Fatalf("expected validation error, got %v", err)
	}

	st := c.Snapshot()
	if st.SceneID != "s1" || st.CursorMs != 250 || st.Mode != ModePlaying || st.Generation != gen {
		t.Errorf("previous scene disturbed: %+v", st)
	}

	if err := c.LoadScene(nil); !errors.Is(err, ErrNoScene) {
		t.Errorf("expected ErrNoScene for nil, got %v", err)
	}
}

func TestPlayPauseTransitions(t *testing.T) {
	c := loaded(t)

	c.Pause()
	if c.Mode() != ModeIdle {
		t.Errorf("pause from idle should be a no-op, got %v", c.Mode())
	}

	c.Play()
	if c.Mode() != ModePlaying {
		t.Fatalf("expected playing, got %v", c.Mode())
	}
	gen := c.Generation()
	c.Play()
	if c.Generation() != gen || c.Mode() != ModePlaying {
		t.Error("play while playing should be a no-op")
	}

	c.Advance(gen, 300)
	c.Pause()
	if c.Mode() != ModePaused || c.Cursor() != 300 {
		t.Errorf("expected paused at 300, got %v", c.Snapshot())
	}
	if c.Advance(c.Generation(), 100) {
		t.Error("paused controller must not advance")
	}

	c.TogglePlay()
	if c.Mode() != ModePlaying {
		t.Errorf("toggle from paused should play, got %v", c.Mode())
	}
	c.TogglePlay()
	if c.Mode() != ModePaused {
		t.Errorf("toggle from playing should pause, got %v", c.Mode())
	}
}

func TestAdvanceClampsAndCompletesOnce(t *testing.T) {
	var completions []Completion
	c := loaded(t, WithCompletionHook(func(cp Completion) {
		completions = append(completions, cp)
	}))
	c.Play()

	gen := c.Generation()
	c.Advance(gen, 900)
	c.Advance(gen, 5000)
	if c.Cursor() != 1000 {
		t.Errorf("cursor overshot: %v", c.Cursor())
	}
	if c.Mode() != ModeCompleted {
		t.Errorf("expected completed, got %v", c.Mode())
	}

	c.Advance(gen, 100)
	c.Play()
	c.Advance(c.Generation(), 100)
	if len(completions) != 1 {
		t.Fatalf("expected exactly one completion, got %d", len(completions))
	}
	if completions[0].SceneID != "s1" {
		t.Errorf("completion for wrong scene: %+v", completions[0])
	}
	if c.Mode() != ModeCompleted {
		t.Error("play on a completed scene should be a no-op")
	}

	// A new cycle completes again.
	c.Restart()
	c.Advance(c.Generation(), 2000)
	if len(completions) != 2 {
		t.Errorf("expected a second completion after restart, got %d", len(completions))
	}
}

func TestAdvanceMonotonic(t *testing.T) {
	c := loaded(t)
	c.Play()
	gen := c.Generation()

	prev := c.Cursor()
	for _, d := range []float64{16.6, 0, -5, 33.3, 16.7} {
		c.Advance(gen, d)
		if c.Cursor() < prev {
			t.Fatalf("cursor went backwards: %v -> %v", prev, c.Cursor())
		}
		prev = c.Cursor()
	}
}

func TestStaleGenerationDiscarded(t *testing.T) {
	c := loaded(t)
	c.Play()
	stale := c.Generation()

	c.Pause()
	c.Play()
	if c.Advance(stale, 100) {
		t.Error("tick scheduled before pause should be discarded")
	}

	if err := c.LoadScene(testScene("s2", 1000)); err != nil {
		t.Fatal(err)
	}
	c.Play()
	current := c.Generation()
	if c.Advance(current-1, 100) {
		t.Error("tick from the previous scene should be discarded")
	}
	if !c.Advance(current, 100) || c.Cursor() != 100 {
		t.Errorf("current tick should advance, cursor=%v", c.Cursor())
	}
}

func TestSeek(t *testing.T) {
	c := loaded(t)

	c.Seek(-50)
	if c.Cursor() != 0 {
		t.Errorf("negative seek should clamp to 0, got %v", c.Cursor())
	}
	c.Seek(5000)
	if c.Cursor() != 1000 {
		t.Errorf("seek past end should clamp to duration, got %v", c.Cursor())
	}
	if c.Mode() != ModeIdle {
		t.Errorf("seek should not change mode, got %v", c.Mode())
	}

	c.Play()
	c.Seek(600)
	c.Seek(200)
	if c.Mode() != ModePlaying || c.Cursor() != 200 {
		t.Errorf("backward seek while playing: %+v", c.Snapshot())
	}
}

func TestSeekAfterCompleted(t *testing.T) {
	c := loaded(t)
	c.Play()
	c.Advance(c.Generation(), 1000)

	c.Seek(1000)
	if c.Mode() != ModeCompleted {
		t.Errorf("seek to the end should stay completed, got %v", c.Mode())
	}

	c.Seek(0)
	if c.Mode() != ModePaused {
		t.Fatalf("seek(0) after completion should pause, got %v", c.Mode())
	}

	c.Play()
	c.Advance(c.Generation(), 250)
	if c.Cursor() != 250 {
		t.Errorf("play after seek(0) should advance from 0, got %v", c.Cursor())
	}
}

func TestRestart(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(c *Controller)
		expected Mode
	}{
		{"from playing", func(c *Controller) { c.Play(); c.Advance(c.Generation(), 500) }, ModePlaying},
		{"from completed", func(c *Controller) { c.Play(); c.Advance(c.Generation(), 2000) }, ModePlaying},
		{"from paused", func(c *Controller) { c.Play(); c.Advance(c.Generation(), 500); c.Pause() }, ModePaused},
		{"from idle", func(c *Controller) { c.Seek(300) }, ModePaused},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := loaded(t)
			tt.setup(c)
			gen := c.Generation()

			c.Restart()
			if c.Cursor() != 0 {
				t.Errorf("expected cursor 0, got %v", c.Cursor())
			}
			if c.Mode() != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, c.Mode())
			}
			if c.Generation() == gen {
				t.Error("restart should start a new generation")
			}
		})
	}
}

func TestFrameResolvesAtCursor(t *testing.T) {
	c := loaded(t)
	c.Seek(500)

	f := c.Frame()
	if f.CursorMs != 500 || len(f.Layers) != 1 {
		t.Fatalf("unexpected frame: %+v", f)
	}
	if r := f.Layers[0].Props.Float("r"); r != 30 {
		t.Errorf("expected r=30 at 500ms, got %v", r)
	}
}

func TestModeString(t *testing.T) {
	for m, s := range map[Mode]string{ModeIdle: "idle", ModePlaying: "playing", ModePaused: "paused", ModeCompleted: "completed"} {
		if m.String() != s {
			t.Errorf("%d: expected %s, got %s", int(m), s, m.String())
		}
	}
}

func TestModeTextRoundTrip(t *testing.T) {
	for _, m := range []Mode{ModeIdle, ModePlaying, ModePaused, ModeCompleted} {
		text, err := m.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var got Mode
		if err := got.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", text, err)
		}
		if got != m {
			t.Errorf("round trip of %v gave %v", m, got)
		}
	}

	var m Mode
	if err := m.UnmarshalText([]byte("rewinding")); err == nil {
		t.Error("unknown mode accepted")
	}
}
