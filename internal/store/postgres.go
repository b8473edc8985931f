package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inamate/vizscene/internal/scene"
	"github.com/inamate/vizscene/internal/typeid"
)

const schema = `
CREATE TABLE IF NOT EXISTS scenes (
	id         TEXT PRIMARY KEY,
	scene      JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const listLimit = 200

// Postgres stores scenes as JSONB rows.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

// NewPostgres connects to databaseURL and creates the scenes table if it is
// missing.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Put(ctx context.Context, s *scene.Scene) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal scene: %w", err)
	}

	id := typeid.NewSceneID()
	if _, err := p.pool.Exec(ctx, `INSERT INTO scenes (id, scene) VALUES ($1, $2)`, id, data); err != nil {
		return "", fmt.Errorf("insert scene: %w", err)
	}
	return id, nil
}

func (p *Postgres) Get(ctx context.Context, id string) (*scene.Scene, error) {
	var data []byte
	err := p.pool.QueryRow(ctx, `SELECT scene FROM scenes WHERE id = $1`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get scene: %w", err)
	}

	var s scene.Scene
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode scene %s: %w", id, err)
	}
	return &s, nil
}

func (p *Postgres) List(ctx context.Context) ([]Summary, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, scene, created_at FROM scenes ORDER BY created_at DESC, id DESC LIMIT $1`, listLimit)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			id      string
			data    []byte
			created time.Time
		)
		if err := rows.Scan(&id, &data, &created); err != nil {
			return nil, fmt.Errorf("scan scene: %w", err)
		}
		var s scene.Scene
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("decode scene %s: %w", id, err)
		}
		out = append(out, summarize(id, &s, created))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	if out == nil {
		out = []Summary{}
	}
	return out, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

// Open returns a Postgres store when databaseURL is set and an in-memory one
// otherwise.
func Open(ctx context.Context, databaseURL string) (Store, error) {
	if databaseURL == "" {
		return NewMemory(), nil
	}
	pg, err := NewPostgres(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	return pg, nil
}
