package memstore

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"

	"github.com/mnemo-app/mnemo-api/internal/domain"
)

// Session store errors
var (
	// ErrSessionNotFound is returned when the session does not exist or
	// has already expired.
	ErrSessionNotFound = errors.New("guest session not found")

	// ErrSessionCardNotFound is returned when the card does not belong to
	// the session.
	ErrSessionCardNotFound = errors.New("card not found in guest session")
)

// Session is an ephemeral guest workspace: a generated user ID and a small
// deck of cards that live only in memory. Sessions are owned by the store
// and expire after their TTL.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	cards     map[uuid.UUID]*domain.Card
	expiresAt time.Time
}

// SessionStore holds guest sessions in memory with TTL eviction. It is an
// injected dependency: handlers receive a *SessionStore rather than reaching
// for process-global state, so tests can run isolated stores side by side.
type SessionStore struct {
	mu        sync.RWMutex
	sessions  map[uuid.UUID]*Session
	ttl       time.Duration
	scheduler *gocron.Scheduler
	logger    *slog.Logger
}

// NewSessionStore creates a session store whose sessions expire after ttl.
// If logger is nil, a default logger will be used. Call Start to begin the
// background sweep and Stop on shutdown.
func NewSessionStore(ttl time.Duration, logger *slog.Logger) *SessionStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SessionStore{
		sessions:  make(map[uuid.UUID]*Session),
		ttl:       ttl,
		scheduler: gocron.NewScheduler(time.UTC),
		logger:    logger.With(slog.String("component", "session_store")),
	}
}

// Start launches the background sweep that evicts expired sessions.
func (s *SessionStore) Start() {
	if _, err := s.scheduler.Every(1).Minute().Do(s.sweep); err != nil {
		s.logger.Error("failed to schedule session sweep", slog.String("error", err.Error()))
		return
	}
	s.scheduler.StartAsync()
}

// Stop halts the background sweep.
func (s *SessionStore) Stop() {
	s.scheduler.Stop()
}

// Create registers a new session seeded with the given cards and returns it.
// The cards are cloned into session-local copies; the seed deck keeps its
// template user ID replaced by the session's own.
func (s *SessionStore) Create(seed []*domain.Card) *Session {
	now := time.Now().UTC()
	session := &Session{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		cards:     make(map[uuid.UUID]*domain.Card, len(seed)),
		expiresAt: now.Add(s.ttl),
	}

	for _, card := range seed {
		clone := card.Clone()
		clone.ID = uuid.New()
		clone.UserID = session.UserID
		session.cards[clone.ID] = clone
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	s.logger.Debug("created guest session",
		slog.String("session_id", session.ID.String()),
		slog.Int("card_count", len(seed)))
	return session
}

// Get returns the session if it exists and has not expired. A hit extends
// the session's lifetime by the store TTL.
func (s *SessionStore) Get(id uuid.UUID) (*Session, error) {
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok || now.After(session.expiresAt) {
		return nil, ErrSessionNotFound
	}

	session.expiresAt = now.Add(s.ttl)
	return session, nil
}

// Cards returns clones of the session's cards. The caller may mutate the
// result freely; session state changes only through PutCard.
func (s *SessionStore) Cards(sessionID uuid.UUID) ([]*domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok || time.Now().UTC().After(session.expiresAt) {
		return nil, ErrSessionNotFound
	}

	cards := make([]*domain.Card, 0, len(session.cards))
	for _, card := range session.cards {
		cards = append(cards, card.Clone())
	}
	return cards, nil
}

// GetCard returns a clone of one card in the session.
func (s *SessionStore) GetCard(sessionID, cardID uuid.UUID) (*domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok || time.Now().UTC().After(session.expiresAt) {
		return nil, ErrSessionNotFound
	}

	card, ok := session.cards[cardID]
	if !ok {
		return nil, ErrSessionCardNotFound
	}
	return card.Clone(), nil
}

// PutCard stores the updated card back into the session. The card must
// already belong to the session.
func (s *SessionStore) PutCard(sessionID uuid.UUID, card *domain.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok || time.Now().UTC().After(session.expiresAt) {
		return ErrSessionNotFound
	}

	if _, ok := session.cards[card.ID]; !ok {
		return ErrSessionCardNotFound
	}

	session.cards[card.ID] = card.Clone()
	return nil
}

// Len reports the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// sweep drops every expired session.
func (s *SessionStore) sweep() {
	now := time.Now().UTC()

	s.mu.Lock()
	evicted := 0
	for id, session := range s.sessions {
		if now.After(session.expiresAt) {
			delete(s.sessions, id)
			evicted++
		}
	}
	remaining := len(s.sessions)
	s.mu.Unlock()

	if evicted > 0 {
		s.logger.Debug("swept expired guest sessions",
			slog.Int("evicted", evicted),
			slog.Int("remaining", remaining))
	}
}
