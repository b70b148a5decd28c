package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mnemo-app/mnemo-api/internal/domain"
	"github.com/mnemo-app/mnemo-api/internal/domain/srs"
	"github.com/mnemo-app/mnemo-api/internal/platform/logger"
	"github.com/mnemo-app/mnemo-api/internal/platform/memstore"
)

// demoDeck is the seed content every guest session starts with.
var demoDeck = [][2]string{
	{"What is spaced repetition?", "Reviewing material at growing intervals just before you would forget it."},
	{"After how many days does a fresh card come back?", "One day: the first three successful reviews all use a one-day interval."},
	{"What happens when you forget a card?", "Its streak resets and it becomes due immediately."},
	{"What is the longest default interval?", "Sixty days, reached after thirteen consecutive successes."},
}

// GuestService runs throwaway demo sessions. Cards live only in the session
// store, reviews run through the same scheduling core as persistent cards,
// and everything disappears when the session expires.
type GuestService interface {
	// StartSession creates a session seeded with the demo deck and
	// returns its ID.
	StartSession(ctx context.Context) (uuid.UUID, error)

	// ListCards returns the session's cards.
	ListCards(ctx context.Context, sessionID uuid.UUID) ([]*domain.Card, error)

	// SubmitReview runs one review transition against the default rule
	// table and stores the result back into the session.
	SubmitReview(
		ctx context.Context,
		sessionID, cardID uuid.UUID,
		outcome domain.ReviewOutcome,
	) (*domain.Card, error)
}

// guestServiceImpl implements the GuestService interface.
type guestServiceImpl struct {
	sessions   *memstore.SessionStore
	srsService srs.Service
	logger     *slog.Logger
}

// NewGuestService creates a new GuestService backed by the given session
// store.
func NewGuestService(
	sessions *memstore.SessionStore,
	srsService srs.Service,
	logger *slog.Logger,
) GuestService {
	if sessions == nil {
		panic("sessions cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &guestServiceImpl{
		sessions:   sessions,
		srsService: srsService,
		logger:     logger.With(slog.String("component", "guest_service")),
	}
}

// StartSession implements GuestService.StartSession.
func (s *guestServiceImpl) StartSession(ctx context.Context) (uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := time.Now().UTC()
	seedOwner := uuid.New()
	seed := make([]*domain.Card, 0, len(demoDeck))
	for _, qa := range demoDeck {
		card, err := domain.NewCard(seedOwner, qa[0], qa[1], now)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to build demo deck: %w", err)
		}
		seed = append(seed, card)
	}

	session := s.sessions.Create(seed)
	log.Info("started guest session", slog.String("session_id", session.ID.String()))
	return session.ID, nil
}

// ListCards implements GuestService.ListCards.
func (s *guestServiceImpl) ListCards(
	ctx context.Context,
	sessionID uuid.UUID,
) ([]*domain.Card, error) {
	return s.sessions.Cards(sessionID)
}

// SubmitReview implements GuestService.SubmitReview.
func (s *guestServiceImpl) SubmitReview(
	ctx context.Context,
	sessionID, cardID uuid.UUID,
	outcome domain.ReviewOutcome,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := s.sessions.GetCard(sessionID, cardID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	card, _ = s.srsService.Repair(card, now)

	// Guests always review against the default table.
	table := srs.NewTable(domain.DefaultReviewRules(card.UserID, now))

	updated, err := s.srsService.ComputeReview(card, outcome, table, now)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.PutCard(sessionID, updated); err != nil {
		return nil, err
	}

	log.Debug("processed guest review",
		slog.String("session_id", sessionID.String()),
		slog.String("card_id", cardID.String()),
		slog.String("outcome", string(outcome)))
	return updated, nil
}
