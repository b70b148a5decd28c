package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardUserIDEmpty is returned when a card's user ID is empty or nil.
	ErrCardUserIDEmpty = errors.New("card user ID cannot be empty")

	// ErrCardQuestionEmpty is returned when a card's question is empty.
	ErrCardQuestionEmpty = errors.New("card question cannot be empty")

	// ErrCardQuestionTooLong is returned when a card's question exceeds the limit.
	ErrCardQuestionTooLong = errors.New("card question cannot exceed 100 characters")

	// ErrCardAnswerEmpty is returned when a card's answer is empty.
	ErrCardAnswerEmpty = errors.New("card answer cannot be empty")

	// ErrCardAnswerTooLong is returned when a card's answer exceeds the limit.
	ErrCardAnswerTooLong = errors.New("card answer cannot exceed 500 characters")

	// ErrCardNegativeRepetitions is returned when a card's repetition count is negative.
	ErrCardNegativeRepetitions = errors.New("card repetition count cannot be negative")
)

// Field length limits for card content.
const (
	MaxQuestionLength = 100
	MaxAnswerLength   = 500
)

// ReviewOutcome represents the result of reviewing a card.
type ReviewOutcome string

// Possible review outcome values.
const (
	// ReviewOutcomeRemembered indicates the user recalled the card. The
	// repetition count increases and the next due date moves out by the
	// configured interval.
	ReviewOutcomeRemembered ReviewOutcome = "remembered"

	// ReviewOutcomeForgotten indicates the user failed to recall the card.
	// The streak resets and the card becomes due immediately.
	ReviewOutcomeForgotten ReviewOutcome = "forgotten"
)

// IsValid reports whether the outcome is one of the known values.
func (o ReviewOutcome) IsValid() bool {
	switch o {
	case ReviewOutcomeRemembered, ReviewOutcomeForgotten:
		return true
	default:
		return false
	}
}

// Card represents a single reviewable flashcard owned by a user.
//
// RepetitionCount is the number of consecutive successful reviews since the
// last reset. FirstReviewAt marks the start of the current streak and is nil
// for a card that has never been reviewed or was just reset. NextDueAt is
// always present and is the single source of truth for when the card next
// becomes eligible for review.
type Card struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	Question        string     `json:"question"`
	Answer          string     `json:"answer"`
	RepetitionCount int        `json:"repetition_count"`
	FirstReviewAt   *time.Time `json:"first_review_at,omitempty"`
	NextDueAt       time.Time  `json:"next_due_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewCard creates a new Card with the given owner and content.
// The card starts with a zero repetition count, no first-review marker, and
// is due immediately. Returns an error if validation fails.
func NewCard(userID uuid.UUID, question, answer string, now time.Time) (*Card, error) {
	card := &Card{
		ID:              uuid.New(),
		UserID:          userID,
		Question:        question,
		Answer:          answer,
		RepetitionCount: 0,
		FirstReviewAt:   nil,
		NextDueAt:       now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
// Returns an error if any field fails validation.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.UserID == uuid.Nil {
		return ErrCardUserIDEmpty
	}

	if c.Question == "" {
		return ErrCardQuestionEmpty
	}

	if len([]rune(c.Question)) > MaxQuestionLength {
		return ErrCardQuestionTooLong
	}

	if c.Answer == "" {
		return ErrCardAnswerEmpty
	}

	if len([]rune(c.Answer)) > MaxAnswerLength {
		return ErrCardAnswerTooLong
	}

	if c.RepetitionCount < 0 {
		return ErrCardNegativeRepetitions
	}

	return nil
}

// Clone returns a deep copy of the card. Scheduling code follows the
// immutable update pattern and never mutates the input card.
func (c *Card) Clone() *Card {
	clone := *c
	if c.FirstReviewAt != nil {
		t := *c.FirstReviewAt
		clone.FirstReviewAt = &t
	}
	return &clone
}
