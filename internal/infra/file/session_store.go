// File: internal/infra/file/session_store.go
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"groq-chat-relay/internal/domain/model"
	"groq-chat-relay/internal/domain/ports/repository"
)

var _ repository.SessionStore = (*SessionStore)(nil)

// SessionStore keeps the whole conversation collection in one JSON file.
// It is the default backend: no external service, survives process restarts.
type SessionStore struct {
	path string
}

func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// Load reads the collection. A missing or unreadable file yields an empty
// collection, never an error.
func (s *SessionStore) Load(ctx context.Context) (model.Collection, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return model.Collection{}, nil
	}
	var sessions model.Collection
	if err := json.Unmarshal(b, &sessions); err != nil {
		return model.Collection{}, nil
	}
	if sessions == nil {
		sessions = model.Collection{}
	}
	return sessions, nil
}

// Save writes the collection atomically via a temp file rename, so a crash
// mid-write never corrupts the previous snapshot.
func (s *SessionStore) Save(ctx context.Context, sessions model.Collection) error {
	b, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("encode sessions: %w", err)
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".sessions-*")
	if err != nil {
		return fmt.Errorf("temp file: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write sessions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
