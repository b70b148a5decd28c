package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ReviewRule-specific validation errors
var (
	// ErrRuleIDEmpty is returned when a rule ID is empty or nil.
	ErrRuleIDEmpty = errors.New("review rule ID cannot be empty")

	// ErrRuleUserIDEmpty is returned when a rule's user ID is empty or nil.
	ErrRuleUserIDEmpty = errors.New("review rule user ID cannot be empty")

	// ErrRuleMinRepetition is returned when a rule's minimum repetition is below 1.
	ErrRuleMinRepetition = errors.New("review rule minimum repetition must be at least 1")

	// ErrRuleRangeInverted is returned when a rule's range is inverted.
	ErrRuleRangeInverted = errors.New("review rule maximum repetition cannot be below its minimum")

	// ErrRuleIntervalTooShort is returned when a rule's interval is below 1.
	// The database CHECK constraint enforces the same bound.
	ErrRuleIntervalTooShort = errors.New("review rule interval days must be at least 1")
)

// ReviewRule maps a range of repetition counts to a review interval in days.
// Rules are scoped per user: every user carries their own full rule table so
// pacing can be personalized. The default table stores one row per
// repetition count (min == max) so each row stays independently editable.
type ReviewRule struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	MinRepetition int       `json:"min_repetition"`
	MaxRepetition int       `json:"max_repetition"`
	IntervalDays  int       `json:"interval_days"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewReviewRule creates a new ReviewRule for the given owner.
// Returns an error if validation fails.
func NewReviewRule(userID uuid.UUID, minRep, maxRep, intervalDays int, now time.Time) (*ReviewRule, error) {
	rule := &ReviewRule{
		ID:            uuid.New(),
		UserID:        userID,
		MinRepetition: minRep,
		MaxRepetition: maxRep,
		IntervalDays:  intervalDays,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := rule.Validate(); err != nil {
		return nil, err
	}

	return rule, nil
}

// Validate checks if the ReviewRule has valid data.
func (r *ReviewRule) Validate() error {
	if r.ID == uuid.Nil {
		return ErrRuleIDEmpty
	}

	if r.UserID == uuid.Nil {
		return ErrRuleUserIDEmpty
	}

	if r.MinRepetition < 1 {
		return ErrRuleMinRepetition
	}

	if r.MaxRepetition < r.MinRepetition {
		return ErrRuleRangeInverted
	}

	if r.IntervalDays < 1 {
		return ErrRuleIntervalTooShort
	}

	return nil
}

// defaultIntervals is the canonical default pacing table: one entry per
// repetition count. Repetitions 1-3 repeat after one day, then the interval
// grows until it plateaus at 60 days from repetition 13 onward.
var defaultIntervals = []int{
	1, 1, 1, // repetitions 1-3
	2,  // 4
	3,  // 5
	5,  // 6
	7, 7, // 7-8
	14, 14, // 9-10
	30, 30, // 11-12
	60, 60, 60, 60, 60, 60, 60, 60, // 13-20
}

// DefaultReviewRules returns the 20-row default rule set for a user,
// one independently editable row per repetition count.
func DefaultReviewRules(userID uuid.UUID, now time.Time) []*ReviewRule {
	rules := make([]*ReviewRule, 0, len(defaultIntervals))
	for i, days := range defaultIntervals {
		rep := i + 1
		rules = append(rules, &ReviewRule{
			ID:            uuid.New(),
			UserID:        userID,
			MinRepetition: rep,
			MaxRepetition: rep,
			IntervalDays:  days,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}
	return rules
}
