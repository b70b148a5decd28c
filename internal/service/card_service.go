package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mnemo-app/mnemo-api/internal/domain"
	"github.com/mnemo-app/mnemo-api/internal/domain/srs"
	"github.com/mnemo-app/mnemo-api/internal/platform/logger"
	"github.com/mnemo-app/mnemo-api/internal/store"
)

// CardServiceError is a custom error type for card service errors.
type CardServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for CardServiceError.
func (e *CardServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("card service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("card service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *CardServiceError) Unwrap() error {
	return e.Err
}

// NewCardServiceError creates a new CardServiceError.
func NewCardServiceError(operation, message string, err error) *CardServiceError {
	return &CardServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// CardService provides card CRUD and listing operations, scoped to the
// requesting user. Review submission lives in the card_review package.
type CardService interface {
	// CreateCard creates a card owned by userID. The card starts due
	// immediately with an empty review history.
	CreateCard(ctx context.Context, userID uuid.UUID, question, answer string) (*domain.Card, error)

	// GetCard retrieves a card, enforcing ownership.
	GetCard(ctx context.Context, userID, cardID uuid.UUID) (*domain.Card, error)

	// ListCards lists the user's cards newest first, optionally filtered
	// by a search term against question and answer.
	ListCards(ctx context.Context, userID uuid.UUID, search string, offset, limit int) (*store.CardPage, error)

	// ListDueCards lists cards due at or before now, soonest first. Cards
	// whose stored state needed repair are repaired and persisted before
	// being returned.
	ListDueCards(ctx context.Context, userID uuid.UUID, offset, limit int) (*store.CardPage, error)

	// UpdateCard applies an explicit update command, enforcing ownership.
	UpdateCard(ctx context.Context, userID, cardID uuid.UUID, update store.CardUpdate) (*domain.Card, error)

	// DeleteCard removes a card, enforcing ownership.
	DeleteCard(ctx context.Context, userID, cardID uuid.UUID) error
}

// cardServiceImpl implements the CardService interface.
type cardServiceImpl struct {
	cardStore  store.CardStore
	srsService srs.Service
	logger     *slog.Logger
}

// NewCardService creates a new CardService.
func NewCardService(
	cardStore store.CardStore,
	srsService srs.Service,
	logger *slog.Logger,
) CardService {
	if cardStore == nil {
		panic("cardStore cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &cardServiceImpl{
		cardStore:  cardStore,
		srsService: srsService,
		logger:     logger.With(slog.String("component", "card_service")),
	}
}

// CreateCard implements CardService.CreateCard.
func (s *cardServiceImpl) CreateCard(
	ctx context.Context,
	userID uuid.UUID,
	question, answer string,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := domain.NewCard(userID, question, answer, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := s.cardStore.Create(ctx, card); err != nil {
		log.Error("failed to create card",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewCardServiceError("create", "failed to store card", err)
	}

	log.Debug("created card",
		slog.String("card_id", card.ID.String()),
		slog.String("user_id", userID.String()))
	return card, nil
}

// GetCard implements CardService.GetCard.
func (s *cardServiceImpl) GetCard(
	ctx context.Context,
	userID, cardID uuid.UUID,
) (*domain.Card, error) {
	card, err := s.cardStore.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card.UserID != userID {
		return nil, ErrNotOwned
	}
	return card, nil
}

// ListCards implements CardService.ListCards.
func (s *cardServiceImpl) ListCards(
	ctx context.Context,
	userID uuid.UUID,
	search string,
	offset, limit int,
) (*store.CardPage, error) {
	return s.cardStore.List(ctx, userID, search, offset, limit)
}

// ListDueCards implements CardService.ListDueCards.
func (s *cardServiceImpl) ListDueCards(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
) (*store.CardPage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := time.Now().UTC()
	page, err := s.cardStore.ListDue(ctx, userID, now, offset, limit)
	if err != nil {
		return nil, err
	}

	// Repair on read: a due listing feeds scheduling decisions, so every
	// card it returns must be consistent. Fixes are written back.
	for i, card := range page.Cards {
		repaired, wasRepaired := s.srsService.Repair(card, now)
		if !wasRepaired {
			continue
		}
		if err := s.cardStore.UpdateReviewState(ctx, repaired); err != nil {
			log.Error("failed to persist repaired card",
				slog.String("error", err.Error()),
				slog.String("card_id", card.ID.String()))
			return nil, NewCardServiceError("list_due", "failed to persist repaired card", err)
		}
		log.Debug("repaired card state on read", slog.String("card_id", card.ID.String()))
		page.Cards[i] = repaired
	}

	return page, nil
}

// UpdateCard implements CardService.UpdateCard.
func (s *cardServiceImpl) UpdateCard(
	ctx context.Context,
	userID, cardID uuid.UUID,
	update store.CardUpdate,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.GetCard(ctx, userID, cardID); err != nil {
		return nil, err
	}

	if update.Question != nil {
		if err := validateContent(*update.Question, domain.MaxQuestionLength,
			domain.ErrCardQuestionEmpty, domain.ErrCardQuestionTooLong); err != nil {
			return nil, err
		}
	}
	if update.Answer != nil {
		if err := validateContent(*update.Answer, domain.MaxAnswerLength,
			domain.ErrCardAnswerEmpty, domain.ErrCardAnswerTooLong); err != nil {
			return nil, err
		}
	}

	card, err := s.cardStore.Update(ctx, cardID, update)
	if err != nil {
		if errors.Is(err, store.ErrCardNotFound) {
			return nil, err
		}
		log.Error("failed to update card",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		return nil, NewCardServiceError("update", "failed to store card update", err)
	}

	return card, nil
}

// DeleteCard implements CardService.DeleteCard.
func (s *cardServiceImpl) DeleteCard(ctx context.Context, userID, cardID uuid.UUID) error {
	if _, err := s.GetCard(ctx, userID, cardID); err != nil {
		return err
	}
	return s.cardStore.Delete(ctx, cardID)
}

func validateContent(value string, maxLen int, emptyErr, tooLongErr error) error {
	if value == "" {
		return emptyErr
	}
	if len([]rune(value)) > maxLen {
		return tooLongErr
	}
	return nil
}
