package srs

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mnemo-app/mnemo-api/internal/domain"
	"github.com/mnemo-app/mnemo-api/internal/timeutil"
)

// naiveTime builds a timestamp with no zone information, as read from a
// legacy zone-less source.
func naiveTime(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, timeutil.NoZone)
}

func TestRepairBackfillsFirstReview(t *testing.T) {
	t.Parallel()
	svc := NewService(time.UTC)
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("from creation time", func(t *testing.T) {
		// Scenario: positive repetition count but no first-review marker.
		created := now.AddDate(0, 0, -14)
		card := &domain.Card{
			ID:              uuid.New(),
			UserID:          uuid.New(),
			Question:        "q",
			Answer:          "a",
			RepetitionCount: 3,
			FirstReviewAt:   nil,
			NextDueAt:       now.AddDate(0, 0, 1),
			CreatedAt:       created,
			UpdatedAt:       now,
		}

		repaired, wasRepaired := svc.Repair(card, now)
		if !wasRepaired {
			t.Fatal("expected repair to be reported")
		}
		if repaired.FirstReviewAt == nil || !repaired.FirstReviewAt.Equal(created) {
			t.Errorf("FirstReviewAt = %v, want %v", repaired.FirstReviewAt, created)
		}
		// The input card stays untouched.
		if card.FirstReviewAt != nil {
			t.Error("repair mutated the input card")
		}
	})

	t.Run("from now when creation time is absent", func(t *testing.T) {
		card := &domain.Card{
			ID:              uuid.New(),
			UserID:          uuid.New(),
			RepetitionCount: 1,
			NextDueAt:       now,
		}

		repaired, wasRepaired := svc.Repair(card, now)
		if !wasRepaired {
			t.Fatal("expected repair to be reported")
		}
		if repaired.FirstReviewAt == nil || !repaired.FirstReviewAt.Equal(now) {
			t.Errorf("FirstReviewAt = %v, want %v", repaired.FirstReviewAt, now)
		}
	})

	t.Run("fresh card needs no marker", func(t *testing.T) {
		card := &domain.Card{
			ID:        uuid.New(),
			UserID:    uuid.New(),
			NextDueAt: now,
			CreatedAt: now,
			UpdatedAt: now,
		}

		_, wasRepaired := svc.Repair(card, now)
		if wasRepaired {
			t.Error("expected no repair on a consistent fresh card")
		}
	})
}

func TestRepairAttachesZone(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("+08:00", 8*3600)
	svc := NewService(loc)
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, loc)

	naiveCreated := naiveTime(2024, 2, 1, 8, 30)
	naiveDue := naiveTime(2024, 3, 12, 8, 30)
	first := naiveTime(2024, 2, 2, 10, 0)

	card := &domain.Card{
		ID:              uuid.New(),
		UserID:          uuid.New(),
		RepetitionCount: 2,
		FirstReviewAt:   &first,
		NextDueAt:       naiveDue,
		CreatedAt:       naiveCreated,
		UpdatedAt:       naiveCreated,
	}

	repaired, wasRepaired := svc.Repair(card, now)
	if !wasRepaired {
		t.Fatal("expected repair to be reported")
	}

	for name, ts := range map[string]time.Time{
		"CreatedAt":     repaired.CreatedAt,
		"UpdatedAt":     repaired.UpdatedAt,
		"FirstReviewAt": *repaired.FirstReviewAt,
		"NextDueAt":     repaired.NextDueAt,
	} {
		if !timeutil.HasZone(ts) {
			t.Errorf("%s still lacks a zone after repair: %v", name, ts)
		}
	}

	// The wall clock is reinterpreted, not shifted: 08:30 naive becomes
	// 08:30 in the deployment zone.
	want := time.Date(2024, 2, 1, 8, 30, 0, 0, loc)
	if !repaired.CreatedAt.Equal(want) {
		t.Errorf("CreatedAt = %v, want %v", repaired.CreatedAt, want)
	}
}

func TestRepairIsIdempotent(t *testing.T) {
	t.Parallel()
	svc := NewService(time.UTC)
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	card := &domain.Card{
		ID:              uuid.New(),
		UserID:          uuid.New(),
		RepetitionCount: 3,
		FirstReviewAt:   nil,
		NextDueAt:       naiveTime(2024, 3, 12, 8, 0),
		CreatedAt:       naiveTime(2024, 2, 1, 8, 0),
		UpdatedAt:       naiveTime(2024, 3, 1, 8, 0),
	}

	once, firstRun := svc.Repair(card, now)
	if !firstRun {
		t.Fatal("expected the first run to repair")
	}

	twice, secondRun := svc.Repair(once, now)
	if secondRun {
		t.Error("expected the second run to report no repair")
	}

	if !once.CreatedAt.Equal(twice.CreatedAt) ||
		!once.UpdatedAt.Equal(twice.UpdatedAt) ||
		!once.NextDueAt.Equal(twice.NextDueAt) ||
		!once.FirstReviewAt.Equal(*twice.FirstReviewAt) {
		t.Error("second repair changed the card")
	}
}

func TestRepairLeavesConsistentCardAlone(t *testing.T) {
	t.Parallel()
	svc := NewService(time.UTC)
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	first := now.AddDate(0, 0, -5)
	card := &domain.Card{
		ID:              uuid.New(),
		UserID:          uuid.New(),
		RepetitionCount: 4,
		FirstReviewAt:   &first,
		NextDueAt:       now.AddDate(0, 0, 2),
		CreatedAt:       now.AddDate(0, 0, -6),
		UpdatedAt:       now.AddDate(0, 0, -1),
	}

	repaired, wasRepaired := svc.Repair(card, now)
	if wasRepaired {
		t.Error("expected no repair on a consistent card")
	}
	if !repaired.NextDueAt.Equal(card.NextDueAt) {
		t.Error("repair changed a consistent card")
	}
}
