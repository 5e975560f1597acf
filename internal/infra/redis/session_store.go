package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"groq-chat-relay/internal/domain/model"
	"groq-chat-relay/internal/domain/ports/repository"
)

// storageKey is the single well-known key the whole collection lives under.
const storageKey = "chat.sessions.v1"

var _ repository.SessionStore = (*SessionStore)(nil)

// SessionStore persists the conversation collection as one JSON record in
// redis. No TTL: conversations live until deleted.
type SessionStore struct {
	client RedisClient
}

func NewSessionStore(client RedisClient) *SessionStore {
	return &SessionStore{client: client}
}

// Load reads the collection. An absent key or an undecodable record yields
// an empty collection, never an error.
func (s *SessionStore) Load(ctx context.Context) (model.Collection, error) {
	data, err := s.client.Get(ctx, storageKey)
	if err != nil {
		return model.Collection{}, nil
	}
	var sessions model.Collection
	if err := json.Unmarshal([]byte(data), &sessions); err != nil {
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
	if err := s.client.Set(ctx, storageKey, data, 0); err != nil {
		return fmt.Errorf("save sessions: %w", err)
	}
	return nil
}
