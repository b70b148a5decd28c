package card_review

import (
	"context"
	"database/sql"
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

// Verify interface compliance at compile time
var _ CardReviewService = (*cardReviewServiceImpl)(nil)

// cardReviewServiceImpl implements the CardReviewService interface.
type cardReviewServiceImpl struct {
	db         *sql.DB
	cardStore  store.CardStore
	ruleStore  store.ReviewRuleStore
	srsService srs.Service
	logger     *slog.Logger
}

// NewCardReviewService creates a new CardReviewService implementation.
func NewCardReviewService(
	db *sql.DB,
	cardStore store.CardStore,
	ruleStore store.ReviewRuleStore,
	srsService srs.Service,
	logger *slog.Logger,
) CardReviewService {
	if db == nil {
		panic("db cannot be nil")
	}
	if cardStore == nil {
		panic("cardStore cannot be nil")
	}
	if ruleStore == nil {
		panic("ruleStore cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &cardReviewServiceImpl{
		db:         db,
		cardStore:  cardStore,
		ruleStore:  ruleStore,
		srsService: srsService,
		logger:     logger.With(slog.String("component", "card_review_service")),
	}
}

// GetNextCard implements CardReviewService.GetNextCard.
func (s *cardReviewServiceImpl) GetNextCard(
	ctx context.Context,
	userID uuid.UUID,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving next review card", slog.String("user_id", userID.String()))

	now := time.Now().UTC()
	page, err := s.cardStore.ListDue(ctx, userID, now, 0, 1)
	if err != nil {
		log.Error("failed to list due cards",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to get next review card: %w", err)
	}

	if len(page.Cards) == 0 {
		log.Debug("no cards due for review", slog.String("user_id", userID.String()))
		return nil, ErrNoCardsDue
	}

	card := page.Cards[0]

	// Repair on read. If anything was fixed, persist the fix so the
	// stored row converges on consistent state.
	repaired, wasRepaired := s.srsService.Repair(card, now)
	if wasRepaired {
		if err := s.cardStore.UpdateReviewState(ctx, repaired); err != nil {
			log.Error("failed to persist repaired card",
				slog.String("error", err.Error()),
				slog.String("card_id", card.ID.String()))
			return nil, fmt.Errorf("failed to persist repaired card: %w", err)
		}
		log.Debug("repaired card state on read",
			slog.String("card_id", card.ID.String()))
		card = repaired
	}

	log.Debug("successfully retrieved next review card",
		slog.String("user_id", userID.String()),
		slog.String("card_id", card.ID.String()))
	return card, nil
}

// SubmitAnswer implements CardReviewService.SubmitAnswer.
func (s *cardReviewServiceImpl) SubmitAnswer(
	ctx context.Context,
	userID uuid.UUID,
	cardID uuid.UUID,
	answer ReviewAnswer,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("processing review answer",
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()),
		slog.String("outcome", string(answer.Outcome)))

	if !answer.Outcome.IsValid() {
		log.Warn("invalid review outcome",
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()),
			slog.String("outcome", string(answer.Outcome)))
		return nil, ErrInvalidAnswer
	}

	var updatedCard *domain.Card
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		cardStore := s.cardStore.WithTx(tx)
		ruleStore := s.ruleStore.WithTx(tx)

		// The row lock serializes concurrent submissions for the same
		// card; the second submission sees the first one's schedule.
		card, err := cardStore.GetByIDForUpdate(ctx, cardID)
		if err != nil {
			if errors.Is(err, store.ErrCardNotFound) {
				log.Warn("card not found for review",
					slog.String("user_id", userID.String()),
					slog.String("card_id", cardID.String()))
				return ErrCardNotFound
			}
			return fmt.Errorf("failed to get card: %w", err)
		}

		if card.UserID != userID {
			log.Warn("user does not own card",
				slog.String("user_id", userID.String()),
				slog.String("card_id", cardID.String()),
				slog.String("owner_id", card.UserID.String()))
			return ErrCardNotOwned
		}

		now := time.Now().UTC()

		card, _ = s.srsService.Repair(card, now)

		rules, err := ruleStore.ListByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load review rules: %w", err)
		}
		table := srs.NewTable(rules)

		newCard, err := s.srsService.ComputeReview(card, answer.Outcome, table, now)
		if err != nil {
			log.Error("failed to compute review transition",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()),
				slog.String("card_id", cardID.String()))
			return fmt.Errorf("failed to compute review transition: %w", err)
		}

		if err := cardStore.UpdateReviewState(ctx, newCard); err != nil {
			return fmt.Errorf("failed to persist review state: %w", err)
		}

		updatedCard = newCard
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrCardNotFound) ||
			errors.Is(err, ErrCardNotOwned) ||
			errors.Is(err, ErrInvalidAnswer) {
			return nil, err
		}

		log.Error("failed to submit answer",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()))
		return nil, NewSubmitAnswerError("transaction failed", err)
	}

	log.Debug("successfully processed review answer",
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()),
		slog.String("outcome", string(answer.Outcome)),
		slog.Int("repetition_count", updatedCard.RepetitionCount),
		slog.Time("next_due_at", updatedCard.NextDueAt))

	return updatedCard, nil
}
