package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/inamate/vizscene/internal/scene"
)

// ErrNoScene is returned when an operation needs a loaded scene.
var ErrNoScene = errors.New("engine: no scene loaded")

// Mode is the playback state of a Controller.
type Mode int

const (
	ModeIdle Mode = iota
	ModePlaying
	ModePaused
	ModeCompleted
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModePlaying:
		return "playing"
	case ModePaused:
		return "paused"
	case ModeCompleted:
		return "completed"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// MarshalText encodes the mode by name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	for _, candidate := range []Mode{ModeIdle, ModePlaying, ModePaused, ModeCompleted} {
		if candidate.String() == string(b) {
			*m = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown playback mode %q", b)
}

// Completion is reported once each time playback runs to the end of a scene.
type Completion struct {
	SceneID    string
	Generation uint64
}

// State is a snapshot of the controller's playback state.
type State struct {
	SceneID    string  `json:"sceneId,omitempty"`
	CursorMs   float64 `json:"cursorMs"`
	DurationMs float64 `json:"durationMs"`
	Mode       Mode    `json:"mode"`
	Generation uint64  `json:"generation"`
}

// Frame is everything a painter needs for one tick.
type Frame struct {
	State
	Layers []ResolvedLayer `json:"layers"`
}

// Controller drives a playback cursor over one scene.
//
// It never blocks and does no I/O: a host calls Advance from its per-frame
// callback with the elapsed wall-clock time. Every call that should cancel
// frames already scheduled by the host (LoadScene, Pause, Restart) bumps the
// generation; Advance ignores ticks carrying an older one.
//
// A Controller is not safe for concurrent use. Hosts that tick from several
// goroutines must serialize calls themselves.
type Controller struct {
	scene      *scene.Scene
	cursor     float64
	mode       Mode
	generation uint64

	onComplete func(Completion)
}

// Option configures a Controller.
type Option func(*Controller)

// WithCompletionHook registers fn to be called when playback reaches the end
// of the scene.
func WithCompletionHook(fn func(Completion)) Option {
	return func(c *Controller) {
		c.onComplete = fn
	}
}

// NewController creates an idle controller with no scene.
func NewController(opts ...Option) *Controller {
	c := &Controller{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// --- Commands ---

// LoadScene validates s and installs it with the cursor at 0. On a
// validation error the previous scene, cursor and mode are left untouched.
func (c *Controller) LoadScene(s *scene.Scene) error {
	if s == nil {
		return fmt.Errorf("load scene: %w", ErrNoScene)
	}
	if err := s.Validate(); err != nil {
		return err
	}

	c.scene = s
	c.cursor = 0
	c.mode = ModeIdle
	c.generation++
	return nil
}

// Play starts or resumes playback from idle or paused. A completed scene has
// to be restarted (or sought back) first.
func (c *Controller) Play() {
	if c.scene == nil {
		return
	}
	switch c.mode {
	case ModeIdle, ModePaused:
		c.mode = ModePlaying
	}
}

// Pause freezes the cursor. It only applies while playing.
func (c *Controller) Pause() {
	if c.mode != ModePlaying {
		return
	}
	c.mode = ModePaused
	c.generation++
}

// TogglePlay pauses when playing and plays otherwise.
func (c *Controller) TogglePlay() {
	if c.mode == ModePlaying {
		c.Pause()
		return
	}
	c.Play()
}

// Seek moves the cursor to t clamped to [0, duration]. The mode is kept,
// except that seeking a completed scene back before its end pauses it.
func (c *Controller) Seek(t float64) {
	if c.scene == nil {
		return
	}
	c.cursor = c.clamp(t)
	if c.mode == ModeCompleted && c.cursor < c.scene.DurationMs {
		c.mode = ModePaused
	}
}

// Restart rewinds to 0. Playback continues if the scene was playing or had
// played through to the end; otherwise the controller is left paused.
func (c *Controller) Restart() {
	if c.scene == nil {
		return
	}
	wasPlaying := c.mode == ModePlaying || c.mode == ModeCompleted

	c.cursor = 0
	c.generation++
	if wasPlaying {
		c.mode = ModePlaying
	} else {
		c.mode = ModePaused
	}
}

// Advance moves the cursor forward by deltaMs when playing and the tick's
// generation is current. It reports whether the cursor moved. Reaching the
// end completes the scene and fires the completion hook once.
func (c *Controller) Advance(generation uint64, deltaMs float64) bool {
	if c.scene == nil || c.mode != ModePlaying || generation != c.generation {
		return false
	}
	if math.IsNaN(deltaMs) || deltaMs < 0 {
		deltaMs = 0
	}

	c.cursor = c.clamp(c.cursor + deltaMs)
	if c.cursor >= c.scene.DurationMs {
		c.mode = ModeCompleted
		if c.onComplete != nil {
			c.onComplete(Completion{SceneID: c.scene.ID, Generation: c.generation})
		}
	}
	return true
}

// --- Queries ---

// Scene returns the loaded scene, or nil.
func (c *Controller) Scene() *scene.Scene {
	return c.scene
}

// Generation identifies the current scheduling epoch.
func (c *Controller) Generation() uint64 {
	return c.generation
}

// Cursor returns the current time offset in milliseconds.
func (c *Controller) Cursor() float64 {
	return c.cursor
}

// Mode returns the playback mode.
func (c *Controller) Mode() Mode {
	return c.mode
}

// Snapshot returns the current playback state.
func (c *Controller) Snapshot() State {
	st := State{
		CursorMs:   c.cursor,
		Mode:       c.mode,
		Generation: c.generation,
	}
	if c.scene != nil {
		st.SceneID = c.scene.ID
		st.DurationMs = c.scene.DurationMs
	}
	return st
}

// Frame resolves every layer at the current cursor.
func (c *Controller) Frame() Frame {
	return Frame{
		State:  c.Snapshot(),
		Layers: ResolveScene(c.scene, c.cursor),
	}
}

func (c *Controller) clamp(t float64) float64 {
	if math.IsNaN(t) || t < 0 {
		return 0
	}
	if t > c.scene.DurationMs {
		return c.scene.DurationMs
	}
	return t
}
