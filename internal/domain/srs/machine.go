package srs

import (
	"time"

	"github.com/mnemo-app/mnemo-api/internal/domain"
	"github.com/mnemo-app/mnemo-api/internal/timeutil"
)

// nextOnForgotten collapses the card's streak back to its initial state.
// The repetition count resets and the card becomes due immediately, but the
// first-review marker is preserved: if it was never set, it is backfilled
// from creation time rather than discarded, keeping the earliest known
// engagement with the card.
func nextOnForgotten(card *domain.Card, now time.Time) *domain.Card {
	next := card.Clone()

	next.RepetitionCount = 0
	if next.FirstReviewAt == nil && !next.CreatedAt.IsZero() {
		created := next.CreatedAt
		next.FirstReviewAt = &created
	}
	next.NextDueAt = now
	next.UpdatedAt = now

	return next
}

// nextOnRemembered advances the card's streak by one successful review and
// schedules the next one.
//
// The next due date is measured from a base time, chosen in preference
// order: the card's current due date (continuing the planned cadence even
// when the learner reviews slightly early), then the first-review marker,
// then creation time, then now. If the chosen base lies in the past the
// review happened after the due date, and the base is overridden to now so
// a backlogged learner is not punished with compounding delay.
func nextOnRemembered(card *domain.Card, table *Table, now time.Time, loc *time.Location) *domain.Card {
	next := card.Clone()

	if next.RepetitionCount == 0 || next.FirstReviewAt == nil {
		first := now
		next.FirstReviewAt = &first
	}

	next.RepetitionCount++

	days := ResolveInterval(next.RepetitionCount, table)

	base := chooseBaseTime(card, now, loc)
	next.NextDueAt = timeutil.Normalize(base.AddDate(0, 0, days), loc)
	next.UpdatedAt = now

	return next
}

// chooseBaseTime picks the origin the next interval is added to, from the
// card state as it was before the transition. A base in the past is
// replaced by now: stacking intervals on a stale due date would only grow
// the backlog.
func chooseBaseTime(card *domain.Card, now time.Time, loc *time.Location) time.Time {
	var base time.Time
	switch {
	case !card.NextDueAt.IsZero():
		base = card.NextDueAt
	case card.FirstReviewAt != nil && !card.FirstReviewAt.IsZero():
		base = *card.FirstReviewAt
	case !card.CreatedAt.IsZero():
		base = card.CreatedAt
	default:
		return now
	}

	base = timeutil.Normalize(base, loc)
	if base.Before(now) {
		return now
	}
	return base
}
