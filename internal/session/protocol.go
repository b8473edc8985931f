package session

import (
	"encoding/json"

	"github.com/inamate/vizscene/internal/engine"
	"github.com/inamate/vizscene/internal/render/recorder"
	"github.com/inamate/vizscene/internal/scene"
)

type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

const (
	// Connection
	TypeWelcome = "welcome"
	TypeError   = "error"

	// Client commands
	TypeSceneLoad       = "scene.load"
	TypePlaybackPlay    = "playback.play"
	TypePlaybackPause   = "playback.pause"
	TypePlaybackSeek    = "playback.seek"
	TypePlaybackRestart = "playback.restart"

	// Server events
	TypePlaybackState    = "playback.state"
	TypeFrame            = "frame"
	TypePlaybackComplete = "playback.complete"
)

// SceneLoadPayload names the scene to load. Exactly one field should be set;
// an inline scene wins over a stored ID, which wins over a sample name.
type SceneLoadPayload struct {
	Scene   *scene.Scene `json:"scene,omitempty"`
	SceneID string       `json:"sceneId,omitempty"`
	Sample  string       `json:"sample,omitempty"`
}

type SeekPayload struct {
	CursorMs float64 `json:"cursorMs"`
}

type WelcomePayload struct {
	SessionID string   `json:"sessionId"`
	ClientID  string   `json:"clientId"`
	Samples   []string `json:"samples"`
}

type FramePayload struct {
	CursorMs float64                `json:"cursorMs"`
	Commands []recorder.DrawCommand `json:"commands"`
	Issues   []string               `json:"issues,omitempty"`
}

type CompletePayload struct {
	SceneID    string `json:"sceneId"`
	Generation uint64 `json:"generation"`
}

type ErrorPayload struct {
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

// StatePayload is the wire form of engine.State.
type StatePayload = engine.State
