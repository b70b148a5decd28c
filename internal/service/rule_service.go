package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mnemo-app/mnemo-api/internal/domain"
	"github.com/mnemo-app/mnemo-api/internal/platform/logger"
	"github.com/mnemo-app/mnemo-api/internal/store"
)

// RuleUpdate is one submitted row of a replacement rule table.
type RuleUpdate struct {
	MinRepetition int
	MaxRepetition int
	IntervalDays  int
}

// RuleService manages a user's review rule table. Tables are only ever
// replaced wholesale; there is no per-row edit.
type RuleService interface {
	// ListRules returns the user's rules ordered by minimum repetition.
	ListRules(ctx context.Context, userID uuid.UUID) ([]*domain.ReviewRule, error)

	// ReplaceRules validates the submitted table and atomically replaces
	// the user's rules with it. Ranges must be well-formed and must not
	// overlap; gaps are allowed (the resolver's fallback covers them).
	// Returns ErrInvalidRuleSet on structural problems.
	ReplaceRules(ctx context.Context, userID uuid.UUID, updates []RuleUpdate) ([]*domain.ReviewRule, error)

	// ResetToDefault atomically replaces the user's rules with the
	// system default table and returns the new rows.
	ResetToDefault(ctx context.Context, userID uuid.UUID) ([]*domain.ReviewRule, error)
}

// ruleServiceImpl implements the RuleService interface.
type ruleServiceImpl struct {
	db        *sql.DB
	ruleStore store.ReviewRuleStore
	logger    *slog.Logger
}

// NewRuleService creates a new RuleService.
func NewRuleService(db *sql.DB, ruleStore store.ReviewRuleStore, logger *slog.Logger) RuleService {
	if db == nil {
		panic("db cannot be nil")
	}
	if ruleStore == nil {
		panic("ruleStore cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ruleServiceImpl{
		db:        db,
		ruleStore: ruleStore,
		logger:    logger.With(slog.String("component", "rule_service")),
	}
}

// ListRules implements RuleService.ListRules.
func (s *ruleServiceImpl) ListRules(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.ReviewRule, error) {
	return s.ruleStore.ListByUser(ctx, userID)
}

// ReplaceRules implements RuleService.ReplaceRules.
func (s *ruleServiceImpl) ReplaceRules(
	ctx context.Context,
	userID uuid.UUID,
	updates []RuleUpdate,
) ([]*domain.ReviewRule, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := time.Now().UTC()
	rules := make([]*domain.ReviewRule, 0, len(updates))
	for _, u := range updates {
		rule, err := domain.NewReviewRule(userID, u.MinRepetition, u.MaxRepetition, u.IntervalDays, now)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRuleSet, err)
		}
		rules = append(rules, rule)
	}

	if err := validateNoOverlap(rules); err != nil {
		return nil, err
	}

	// A reader must see the old table or the new one, never the window
	// between the delete and the insert.
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.ruleStore.WithTx(tx).ReplaceForUser(ctx, userID, rules)
	})
	if err != nil {
		log.Error("failed to replace review rules",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to replace review rules: %w", err)
	}

	log.Info("replaced review rules",
		slog.String("user_id", userID.String()),
		slog.Int("rule_count", len(rules)))
	return rules, nil
}

// ResetToDefault implements RuleService.ResetToDefault.
func (s *ruleServiceImpl) ResetToDefault(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.ReviewRule, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var rules []*domain.ReviewRule
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		var txErr error
		rules, txErr = s.ruleStore.WithTx(tx).ResetForUser(ctx, userID)
		return txErr
	})
	if err != nil {
		log.Error("failed to reset review rules",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to reset review rules: %w", err)
	}

	log.Info("reset review rules to default", slog.String("user_id", userID.String()))
	return rules, nil
}

// validateNoOverlap rejects tables in which two rules claim the same
// repetition count. The input rules are already individually valid, so only
// the pairwise range relation is checked here.
func validateNoOverlap(rules []*domain.ReviewRule) error {
	for i, a := range rules {
		for _, b := range rules[i+1:] {
			if a.MinRepetition <= b.MaxRepetition && b.MinRepetition <= a.MaxRepetition {
				return fmt.Errorf(
					"%w: ranges [%d,%d] and [%d,%d] overlap",
					ErrInvalidRuleSet,
					a.MinRepetition, a.MaxRepetition,
					b.MinRepetition, b.MaxRepetition,
				)
			}
		}
	}
	return nil
}
