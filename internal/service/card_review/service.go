package card_review

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mnemo-app/mnemo-api/internal/domain"
)

// ReviewAnswer represents a user's answer to a flashcard review.
type ReviewAnswer struct {
	Outcome domain.ReviewOutcome `json:"outcome"`
}

// CardReviewService processes review submissions: it loads the card, repairs
// inconsistent state, runs the scheduling core against the owner's rule
// table, and persists the result, all inside one transaction.
type CardReviewService interface {
	// GetNextCard retrieves the card with the earliest due time at or
	// before now for the user.
	//
	// Returns:
	//   - (*domain.Card, nil): The next card due for review if one exists
	//   - (nil, ErrNoCardsDue): If the user has no cards due for review
	//   - (nil, error): Any other error, typically from the database
	//
	// If the repairer had to fix the card's state, the repaired state is
	// persisted before the card is returned.
	GetNextCard(ctx context.Context, userID uuid.UUID) (*domain.Card, error)

	// SubmitAnswer processes a user's answer for a flashcard and updates
	// the review schedule.
	//
	// Within a single transaction it:
	//  1. Loads the card with a row lock, so concurrent submissions for
	//     the same card serialize
	//  2. Verifies the card belongs to the user
	//  3. Repairs inconsistent card state
	//  4. Loads the user's rule table (an empty table falls back to the
	//     resolver's one-day policy)
	//  5. Runs the review state machine and persists the new schedule
	//
	// Returns:
	//   - (*domain.Card, nil): The card with its updated schedule
	//   - (nil, ErrCardNotFound): If the card does not exist
	//   - (nil, ErrCardNotOwned): If the user does not own the card
	//   - (nil, ErrInvalidAnswer): If the outcome is not a known value
	//   - (nil, error): Any other error, typically from the database
	SubmitAnswer(
		ctx context.Context,
		userID uuid.UUID,
		cardID uuid.UUID,
		answer ReviewAnswer,
	) (*domain.Card, error)
}

// Common error types for CardReviewService
var (
	// ErrNoCardsDue indicates that the user has no cards due for review.
	ErrNoCardsDue = errors.New("no cards due for review")

	// ErrCardNotFound indicates that the card does not exist.
	ErrCardNotFound = errors.New("card not found")

	// ErrCardNotOwned indicates that the user does not own the card.
	ErrCardNotOwned = errors.New("unauthorized access: card not owned by user")

	// ErrInvalidAnswer indicates an invalid answer was provided.
	ErrInvalidAnswer = errors.New("invalid answer")
)

// ServiceError wraps errors from the card review service with additional
// context, so consumers can differentiate failures with errors.As instead of
// string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "submit_answer")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewSubmitAnswerError returns a new ServiceError for the submit_answer operation.
func NewSubmitAnswerError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "submit_answer",
		Message:   message,
		Err:       err,
	}
}

// NewGetNextCardError returns a new ServiceError for the get_next_card operation.
func NewGetNextCardError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "get_next_card",
		Message:   message,
		Err:       err,
	}
}
