package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/mnemo-app/mnemo-api/internal/domain"
)

// CardUpdate is an explicit update command for a card. Only the fields the
// business logic permits to change are representable; a nil field means
// "leave unchanged". Review-state fields (repetition count, first-review
// marker) are deliberately absent: they change only through
// UpdateReviewState, driven by the scheduling core.
type CardUpdate struct {
	Question  *string
	Answer    *string
	NextDueAt *time.Time
}

// CardPage is one page of a card listing together with the total match count.
type CardPage struct {
	Cards []*domain.Card
	Total int
}

// CardStore defines the interface for card data persistence.
type CardStore interface {
	// Create saves a new card to the store.
	// Returns validation errors if the card data is invalid.
	Create(ctx context.Context, card *domain.Card) error

	// GetByID retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// GetByIDForUpdate retrieves a card by ID and takes a row lock on it.
	// It MUST be called within a transaction; the lock serializes
	// concurrent review submissions for the same card.
	// Returns ErrCardNotFound if the card does not exist.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// List retrieves a page of the user's cards, newest first, optionally
	// filtered by a search term matched against question and answer.
	List(ctx context.Context, userID uuid.UUID, search string, offset, limit int) (*CardPage, error)

	// ListDue retrieves a page of the user's cards whose next due time is
	// at or before asOf, soonest first.
	ListDue(ctx context.Context, userID uuid.UUID, asOf time.Time, offset, limit int) (*CardPage, error)

	// Update applies an explicit update command to an existing card.
	// Returns ErrCardNotFound if the card does not exist.
	Update(ctx context.Context, id uuid.UUID, update CardUpdate) (*domain.Card, error)

	// UpdateReviewState persists the scheduling fields produced by a review
	// transition or a consistency repair: repetition count, first-review
	// marker, next due time, and updated time. Content fields are not touched.
	// Returns ErrCardNotFound if the card does not exist.
	UpdateReviewState(ctx context.Context, card *domain.Card) error

	// Delete removes a card from the store by its ID.
	// Returns ErrCardNotFound if the card does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a CardStore bound to the given transaction, so several
	// operations can run atomically via RunInTransaction.
	WithTx(tx *sql.Tx) CardStore
}
