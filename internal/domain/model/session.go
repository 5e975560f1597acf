package model

import (
	"strings"
	"time"
)

// DefaultTitle is the placeholder title a session carries until its first
// user message arrives.
const DefaultTitle = "New chat"

// titleMaxLen caps the derived session title length in characters.
const titleMaxLen = 40

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry in a conversation transcript. Content of an
// assistant message grows in place while its reply is streaming; everything
// else is immutable after creation.
type Message struct {
	Role    string `json:"role"` // "user" | "assistant"
	Content string `json:"content"`
}

// Session is the aggregate root for one persisted conversation.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Collection maps session id to session. It is the unit of persistence:
// the whole collection is stored as a single record under one key.
type Collection map[string]*Session

func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		Title:     DefaultTitle,
		Messages:  make([]Message, 0, 8),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddMessage appends a message and returns its index.
func (s *Session) AddMessage(role, content string) int {
	s.Messages = append(s.Messages, Message{Role: role, Content: content})
	s.UpdatedAt = time.Now()
	return len(s.Messages) - 1
}

// AppendContent grows the message at idx by one streamed increment.
func (s *Session) AppendContent(idx int, chunk string) {
	if idx < 0 || idx >= len(s.Messages) {
		return
	}
	s.Messages[idx].Content += chunk
	s.UpdatedAt = time.Now()
}

// MaybeSetTitle derives the title from the first user message, exactly once.
// The title is the first line of the text, truncated to 40 characters.
// A session that already has a real title keeps it.
func (s *Session) MaybeSetTitle(text string) {
	if s.Title != DefaultTitle {
		return
	}
	line := strings.TrimSpace(text)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	if line == "" {
		return
	}
	if r := []rune(line); len(r) > titleMaxLen {
		line = string(r[:titleMaxLen])
	}
	s.Title = line
}

// LastUserContent returns the content of the most recent user message,
// or "" when none exists.
func LastUserContent(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Content
		}
	}
	return ""
}
