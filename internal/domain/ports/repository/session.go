package repository

import (
	"context"

	"groq-chat-relay/internal/domain/model"
)

// SessionStore persists the whole conversation collection as one record.
//
// Load is tolerant by contract: an absent or unreadable record yields an
// empty collection and a nil error. Save is best-effort; callers log a
// failure and continue with their in-memory state.
//
// Save is called after every mutation, including every streamed increment,
// so a reload mid-stream always shows the text received so far.
type SessionStore interface {
	Load(ctx context.Context) (model.Collection, error)
	Save(ctx context.Context, sessions model.Collection) error
}
