// File: internal/infra/db/postgres/session_store.go
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"groq-chat-relay/internal/domain/model"
	"groq-chat-relay/internal/domain/ports/repository"
)

// storageKey identifies the single row holding the conversation collection.
const storageKey = "chat.sessions.v1"

var _ repository.SessionStore = (*SessionStore)(nil)

// SessionStore persists the conversation collection as one jsonb row. The
// store is single-writer by design; the state machine serializes its own
// persistence calls.
type SessionStore struct {
	pool *pgxpool.Pool
}

func NewSessionStore(pool *pgxpool.Pool) *SessionStore {
	return &SessionStore{pool: pool}
}

// EnsureSchema creates the backing table when missing.
func (s *SessionStore) EnsureSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS session_state (
  key        TEXT PRIMARY KEY,
  data       JSONB NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`
	_, err := s.pool.Exec(ctx, q)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Load reads the collection. A missing row, missing table, or undecodable
// record yields an empty collection; only connection-level failures surface
// as errors.
func (s *SessionStore) Load(ctx context.Context) (model.Collection, error) {
	const q = `SELECT data FROM session_state WHERE key = $1;`
	var raw []byte
	if err := s.pool.QueryRow(ctx, q, storageKey).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Collection{}, nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "42P01" {
			// undefined_table: EnsureSchema has not run yet
			return model.Collection{}, nil
		}
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	var sessions model.Collection
	if err := json.Unmarshal(raw, &sessions); err != nil {
		return model.Collection{}, nil
	}
	if sessions == nil {
		sessions = model.Collection{}
	}
	return sessions, nil
}

func (s *SessionStore) Save(ctx context.Context, sessions model.Collection) error {
	data, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("encode sessions: %w", err)
	}
	const q = `
INSERT INTO session_state (key, data, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (key) DO UPDATE SET
  data = EXCLUDED.data,
  updated_at = NOW();`
	if _, err := s.pool.Exec(ctx, q, storageKey, data); err != nil {
		return fmt.Errorf("save sessions: %w", err)
	}
	return nil
}
