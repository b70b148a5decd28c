package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/mnemo-app/mnemo-api/internal/domain"
)

// ReviewRuleStore defines the interface for per-user review rule persistence.
//
// Rule sets are only ever replaced wholesale. There is deliberately no
// per-row update: a concurrent reader must observe either the old table or
// the new one, never a half-updated mix.
type ReviewRuleStore interface {
	// ListByUser retrieves all rules for a user, ordered by minimum
	// repetition ascending. An empty slice is not an error; the resolver's
	// fallback policy covers users without rules.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ReviewRule, error)

	// ReplaceForUser replaces the user's entire rule set with the given
	// rules. The old rules are fully removed, never merged. The delete and
	// insert are only atomic on a transaction-bound store; callers MUST go
	// through WithTx.
	ReplaceForUser(ctx context.Context, userID uuid.UUID, rules []*domain.ReviewRule) error

	// ResetForUser replaces the user's rule set with the system default
	// table and returns the inserted rules. Same transaction requirement
	// as ReplaceForUser.
	ResetForUser(ctx context.Context, userID uuid.UUID) ([]*domain.ReviewRule, error)

	// WithTx returns a ReviewRuleStore bound to the given transaction.
	WithTx(tx *sql.Tx) ReviewRuleStore
}
