package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/mnemo-app/mnemo-api/internal/domain"
	"github.com/mnemo-app/mnemo-api/internal/store"
)

var ruleColumns = []string{
	"id",
	"user_id",
	"min_repetition",
	"max_repetition",
	"interval_days",
	"created_at",
	"updated_at",
}

// ReviewRuleStore implements the store.ReviewRuleStore interface using a
// PostgreSQL database as the storage backend.
type ReviewRuleStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewReviewRuleStore creates a new PostgreSQL implementation of the
// ReviewRuleStore interface. If logger is nil, a default logger will be used.
func NewReviewRuleStore(db store.DBTX, logger *slog.Logger) *ReviewRuleStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ReviewRuleStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_rule_store")),
	}
}

// Ensure ReviewRuleStore implements store.ReviewRuleStore interface
var _ store.ReviewRuleStore = (*ReviewRuleStore)(nil)

// WithTx implements store.ReviewRuleStore.WithTx.
func (s *ReviewRuleStore) WithTx(tx *sql.Tx) store.ReviewRuleStore {
	return &ReviewRuleStore{db: tx, logger: s.logger}
}

// ListByUser implements store.ReviewRuleStore.ListByUser.
func (s *ReviewRuleStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ReviewRule, error) {
	query, args, err := psql.Select(ruleColumns...).
		From("review_rules").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("min_repetition ASC").
		ToSql()
	if err != nil {
		return nil, store.NewStoreError("review_rule", "list", "failed to build query", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	rules := make([]*domain.ReviewRule, 0)
	for rows.Next() {
		var rule domain.ReviewRule
		err := rows.Scan(
			&rule.ID,
			&rule.UserID,
			&rule.MinRepetition,
			&rule.MaxRepetition,
			&rule.IntervalDays,
			&rule.CreatedAt,
			&rule.UpdatedAt,
		)
		if err != nil {
			return nil, mapError(err)
		}
		rules = append(rules, &rule)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return rules, nil
}

// ReplaceForUser implements store.ReviewRuleStore.ReplaceForUser. The delete
// and the insert run against the same DBTX, so binding the store to a
// transaction via WithTx makes the replacement atomic.
func (s *ReviewRuleStore) ReplaceForUser(
	ctx context.Context,
	userID uuid.UUID,
	rules []*domain.ReviewRule,
) error {
	for _, rule := range rules {
		if err := rule.Validate(); err != nil {
			return store.NewStoreError("review_rule", "replace", "validation failed", err)
		}
		if rule.UserID != userID {
			return store.NewStoreError("review_rule", "replace", "rule owner mismatch", store.ErrInvalidEntity)
		}
	}

	deleteQuery, deleteArgs, err := psql.Delete("review_rules").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return store.NewStoreError("review_rule", "replace", "failed to build delete query", err)
	}

	if _, err := s.db.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return mapError(err)
	}

	if len(rules) == 0 {
		return nil
	}

	builder := psql.Insert("review_rules").Columns(ruleColumns...)
	for _, rule := range rules {
		builder = builder.Values(
			rule.ID,
			rule.UserID,
			rule.MinRepetition,
			rule.MaxRepetition,
			rule.IntervalDays,
			rule.CreatedAt,
			rule.UpdatedAt,
		)
	}

	insertQuery, insertArgs, err := builder.ToSql()
	if err != nil {
		return store.NewStoreError("review_rule", "replace", "failed to build insert query", err)
	}

	if _, err := s.db.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		s.logger.Error("failed to insert replacement rules",
			slog.String("user_id", userID.String()),
			slog.Int("rule_count", len(rules)),
			slog.String("error", err.Error()))
		return mapError(err)
	}

	s.logger.Debug("replaced review rules",
		slog.String("user_id", userID.String()),
		slog.Int("rule_count", len(rules)))
	return nil
}

// ResetForUser implements store.ReviewRuleStore.ResetForUser.
func (s *ReviewRuleStore) ResetForUser(ctx context.Context, userID uuid.UUID) ([]*domain.ReviewRule, error) {
	rules := domain.DefaultReviewRules(userID, time.Now().UTC())
	if err := s.ReplaceForUser(ctx, userID, rules); err != nil {
		return nil, err
	}
	return rules, nil
}
