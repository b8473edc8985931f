// Package store keeps ingested scenes so they can be replayed and rendered
// later. Persistence is best effort: the playback engine never depends on it.
package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/inamate/vizscene/internal/scene"
	"github.com/inamate/vizscene/internal/typeid"
)

var ErrNotFound = errors.New("scene not found")

// Summary describes a stored scene without its layers.
type Summary struct {
	ID         string    `json:"id"`
	SceneID    string    `json:"sceneId"`
	DurationMs float64   `json:"duration"`
	FPS        float64   `json:"fps"`
	Layers     int       `json:"layers"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Store persists scenes under generated IDs.
type Store interface {
	Put(ctx context.Context, s *scene.Scene) (string, error)
	Get(ctx context.Context, id string) (*scene.Scene, error)
	List(ctx context.Context) ([]Summary, error)
	Close()
}

func summarize(id string, s *scene.Scene, created time.Time) Summary {
	return Summary{
		ID:         id,
		SceneID:    s.ID,
		DurationMs: s.DurationMs,
		FPS:        s.FPS,
		Layers:     len(s.Layers),
		CreatedAt:  created,
	}
}

type memEntry struct {
	scene   *scene.Scene
	created time.Time
}

// Memory is an in-process Store.
type Memory struct {
	mu     sync.RWMutex
	scenes map[string]memEntry
	now    func() time.Time
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		scenes: make(map[string]memEntry),
		now:    time.Now,
	}
}

func (m *Memory) Put(_ context.Context, s *scene.Scene) (string, error) {
	id := typeid.NewSceneID()
	m.mu.Lock()
	m.scenes[id] = memEntry{scene: s, created: m.now().UTC()}
	m.mu.Unlock()
	return id, nil
}

func (m *Memory) Get(_ context.Context, id string) (*scene.Scene, error) {
	m.mu.RLock()
	e, ok := m.scenes[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return e.scene, nil
}

// List returns summaries, newest first.
func (m *Memory) List(_ context.Context) ([]Summary, error) {
	m.mu.RLock()
	out := make([]Summary, 0, len(m.scenes))
	for id, e := range m.scenes {
		out = append(out, summarize(id, e.scene, e.created))
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) Close() {}
