package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/inamate/vizscene/internal/scene"
	"github.com/inamate/vizscene/internal/typeid"
)

func testScene(id string) *scene.Scene {
	return &scene.Scene{
		ID:         id,
		DurationMs: 1000,
		FPS:        30,
		Layers: []scene.Layer{
			{ID: "dot", Type: scene.ShapeCircle, Props: scene.Props{"r": 5.0}},
		},
	}
}

func TestMemoryPutGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	id, err := m.Put(ctx, testScene("demo"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := typeid.Validate(id, typeid.PrefixScene); err != nil {
		t.Errorf("stored id: %v", err)
	}

	got, err := m.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != "demo" {
		t.Errorf("got scene %q, want demo", got.ID)
	}
}

func TestMemoryGetMissing(t *testing.T) {
	_, err := NewMemory().Get(context.Background(), "scene_missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryListNewestFirst(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	m.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	for _, name := range []string{"first", "second", "third"} {
		if _, err := m.Put(ctx, testScene(name)); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	list, err := m.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("got %d summaries, want 3", len(list))
	}
	for i, want := range []string{"third", "second", "first"} {
		if list[i].SceneID != want {
			t.Errorf("list[%d] = %q, want %q", i, list[i].SceneID, want)
		}
	}
	if list[0].Layers != 1 || list[0].DurationMs != 1000 {
		t.Errorf("summary = %+v", list[0])
	}
}

func TestOpenWithoutURLUsesMemory(t *testing.T) {
	s, err := Open(context.Background(), "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	if _, ok := s.(*Memory); !ok {
		t.Errorf("Open(\"\") = %T, want *Memory", s)
	}
}
