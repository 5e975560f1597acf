// File: internal/usecase/session_uc.go
package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"groq-chat-relay/internal/domain"
	"groq-chat-relay/internal/domain/model"
	"groq-chat-relay/internal/domain/ports/adapter"
	"groq-chat-relay/internal/domain/ports/repository"
	"groq-chat-relay/internal/infra/logging"
	"groq-chat-relay/internal/infra/metrics"
)

// Compile-time check
var _ SessionUseCase = (*sessionUC)(nil)

// SessionUseCase owns the in-memory view of all conversations, the active
// session pointer and the single-flight sending flag. Every mutation is
// persisted through the SessionStore, including each streamed increment, so
// a reload mid-stream shows all text received so far.
type SessionUseCase interface {
	NewChat(ctx context.Context) (*model.Session, error)
	SetActive(id string) error
	DeleteChat(ctx context.Context, id string) error
	// SendMessage appends a user message to the active session, streams the
	// assistant reply into a new message, and persists after every
	// increment. onChunk, when non-nil, observes each increment as it is
	// applied. Blank text is a no-op; a second call while one is in flight
	// returns domain.ErrBusy.
	SendMessage(ctx context.Context, text string, onChunk func(string)) error
	Active() *model.Session
	List() []*model.Session
	Sending() bool
}

type sessionUC struct {
	mu       sync.Mutex
	sessions model.Collection
	activeID string
	sending  bool

	store repository.SessionStore
	relay RelayUseCase
	log   *zerolog.Logger
}

// NewSessionUseCase loads the persisted collection and guarantees at least
// one session exists and is active before anything can observe the state.
func NewSessionUseCase(ctx context.Context, store repository.SessionStore, relay RelayUseCase, logger *zerolog.Logger) (*sessionUC, error) {
	sessions, err := store.Load(ctx)
	metrics.IncStoreLoad(err == nil)
	if err != nil {
		// Load is tolerant by contract; a real error still must not take
		// the application down.
		logger.Warn().Err(err).Msg("session load failed; starting empty")
		sessions = model.Collection{}
	}
	u := &sessionUC{
		sessions: sessions,
		store:    store,
		relay:    relay,
		log:      logger,
	}
	if len(u.sessions) == 0 {
		s := model.NewSession(uuid.NewString())
		u.sessions[s.ID] = s
		u.activeID = s.ID
		u.persist(ctx)
	} else {
		u.activeID = u.firstID()
	}
	return u, nil
}

func (u *sessionUC) NewChat(ctx context.Context) (*model.Session, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	s := model.NewSession(uuid.NewString())
	u.sessions[s.ID] = s
	u.activeID = s.ID
	u.persist(ctx)
	return s, nil
}

func (u *sessionUC) SetActive(id string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.sessions[id]; !ok {
		return domain.ErrNotFound
	}
	// View-only change; nothing to persist.
	u.activeID = id
	return nil
}

func (u *sessionUC) DeleteChat(ctx context.Context, id string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.sessions[id]; !ok {
		return domain.ErrNotFound
	}
	delete(u.sessions, id)
	if u.activeID == id {
		if first := u.firstID(); first != "" {
			u.activeID = first
		} else {
			// Deleting the last session immediately replaces it; the empty
			// collection is never observable.
			s := model.NewSession(uuid.NewString())
			u.sessions[s.ID] = s
			u.activeID = s.ID
		}
	}
	u.persist(ctx)
	return nil
}

func (u *sessionUC) SendMessage(ctx context.Context, text string, onChunk func(string)) error {
	defer logging.TraceDuration(u.log, "SessionUC.SendMessage")()
	if strings.TrimSpace(text) == "" {
		return nil
	}

	u.mu.Lock()
	if u.sending {
		u.mu.Unlock()
		return domain.ErrBusy
	}
	u.sending = true
	s := u.sessions[u.activeID]
	s.AddMessage(model.RoleUser, text)
	s.MaybeSetTitle(text)
	u.persist(ctx)
	outbound := toAdapterMessages(s.Messages)
	u.mu.Unlock()

	ch, err := u.relay.Stream(logging.WithSessID(ctx, s.ID), outbound)
	if err != nil {
		// The request never produced a response stream. Render the failure
		// into the transcript so it is not silently unresolved.
		u.mu.Lock()
		s.AddMessage(model.RoleAssistant, "Error: "+err.Error())
		u.sending = false
		u.persist(ctx)
		u.mu.Unlock()
		return nil
	}

	// Slot for the streamed reply, visible (empty) before the first chunk.
	u.mu.Lock()
	idx := s.AddMessage(model.RoleAssistant, "")
	u.mu.Unlock()

	// Increments are applied and persisted strictly in arrival order. The
	// lock is released between chunks so the rest of the state machine
	// stays responsive while a reply streams.
	for chunk := range ch {
		u.mu.Lock()
		s.AppendContent(idx, chunk)
		u.persist(ctx)
		u.mu.Unlock()
		if onChunk != nil {
			onChunk(chunk)
		}
	}

	u.mu.Lock()
	u.sending = false
	u.persist(ctx)
	u.mu.Unlock()
	return nil
}

func (u *sessionUC) Active() *model.Session {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.sessions[u.activeID]
}

// List returns sessions in a stable display order, oldest first.
func (u *sessionUC) List() []*model.Session {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]*model.Session, 0, len(u.sessions))
	for _, s := range u.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (u *sessionUC) Sending() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.sending
}

// persist saves the whole collection; durability is best-effort and a
// failure never interrupts the operation that triggered it.
// Callers hold u.mu.
func (u *sessionUC) persist(ctx context.Context) {
	err := u.store.Save(ctx, u.sessions)
	metrics.IncStoreSave(err == nil)
	if err != nil {
		u.log.Warn().Err(err).Msg("session save failed; continuing in memory")
	}
}

// firstID returns the id of the oldest session, or "".
// Callers hold u.mu.
func (u *sessionUC) firstID() string {
	first := ""
	for id, s := range u.sessions {
		if first == "" || s.CreatedAt.Before(u.sessions[first].CreatedAt) ||
			(s.CreatedAt.Equal(u.sessions[first].CreatedAt) && id < first) {
			first = id
		}
	}
	return first
}

func toAdapterMessages(msgs []model.Message) []adapter.Message {
	out := make([]adapter.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, adapter.Message{Role: m.Role, Content: m.Content})
	}
	return out
}
