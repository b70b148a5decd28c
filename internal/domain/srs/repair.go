package srs

import (
	"time"

	"github.com/mnemo-app/mnemo-api/internal/domain"
	"github.com/mnemo-app/mnemo-api/internal/timeutil"
)

// repairCard detects and fixes internally inconsistent card state. It runs
// on every read that feeds a scheduling decision, because the state machine
// silently produces a wrong due date when given inconsistent input.
//
// Two independent checks run in order:
//
//  1. A positive repetition count with no first-review marker gets the
//     marker backfilled from creation time, or from now when creation time
//     is itself absent.
//  2. Every timestamp field that is present but lacks an explicit zone has
//     the deployment zone attached.
//
// The pass is idempotent: a second run returns the same card and reports
// that no repair occurred. The returned boolean tells the caller whether
// anything changed, so the repaired state can be persisted.
func repairCard(card *domain.Card, now time.Time, loc *time.Location) (*domain.Card, bool) {
	next := card.Clone()
	repaired := false

	if next.RepetitionCount > 0 && next.FirstReviewAt == nil {
		first := next.CreatedAt
		if first.IsZero() {
			first = now
		}
		next.FirstReviewAt = &first
		repaired = true
	}

	if fixed, ok := normalizeField(next.CreatedAt, loc); ok {
		next.CreatedAt = fixed
		repaired = true
	}
	if fixed, ok := normalizeField(next.UpdatedAt, loc); ok {
		next.UpdatedAt = fixed
		repaired = true
	}
	if next.FirstReviewAt != nil {
		if fixed, ok := normalizeField(*next.FirstReviewAt, loc); ok {
			next.FirstReviewAt = &fixed
			repaired = true
		}
	}
	if fixed, ok := normalizeField(next.NextDueAt, loc); ok {
		next.NextDueAt = fixed
		repaired = true
	}

	return next, repaired
}

// normalizeField attaches loc to a naive timestamp. The second return value
// reports whether the field actually changed.
func normalizeField(t time.Time, loc *time.Location) (time.Time, bool) {
	if t.IsZero() || timeutil.HasZone(t) {
		return t, false
	}
	return timeutil.Normalize(t, loc), true
}
