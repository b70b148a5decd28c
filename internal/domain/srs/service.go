package srs

import (
	"errors"
	"time"

	"github.com/mnemo-app/mnemo-api/internal/domain"
)

// Common errors
var (
	ErrNilCard        = errors.New("card cannot be nil")
	ErrInvalidOutcome = errors.New("invalid review outcome")
)

// Service defines the interface for the scheduling core.
type Service interface {
	// ComputeReview computes the card state after a review outcome.
	// The input card must already have passed through Repair; malformed
	// input is a caller contract violation, not something ComputeReview
	// guesses around.
	ComputeReview(
		card *domain.Card,
		outcome domain.ReviewOutcome,
		table *Table,
		now time.Time,
	) (*domain.Card, error)

	// Repair normalizes inconsistent card state on read and reports
	// whether anything was fixed, so the caller can persist the result.
	Repair(card *domain.Card, now time.Time) (*domain.Card, bool)

	// ResolveInterval returns the interval in days for a repetition count
	// against the given table, applying the clamp and fallback policies.
	ResolveInterval(repetition int, table *Table) int

	// Location returns the deployment's default time zone, the one
	// attached to every naive timestamp.
	Location() *time.Location
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	loc *time.Location
}

// NewService creates a scheduling service that normalizes naive timestamps
// into loc. Passing nil selects UTC.
func NewService(loc *time.Location) Service {
	if loc == nil {
		loc = time.UTC
	}
	return &defaultService{loc: loc}
}

// ComputeReview implements the Service interface.
func (s *defaultService) ComputeReview(
	card *domain.Card,
	outcome domain.ReviewOutcome,
	table *Table,
	now time.Time,
) (*domain.Card, error) {
	if card == nil {
		return nil, ErrNilCard
	}

	switch outcome {
	case domain.ReviewOutcomeRemembered:
		return nextOnRemembered(card, table, now, s.loc), nil
	case domain.ReviewOutcomeForgotten:
		return nextOnForgotten(card, now), nil
	default:
		return nil, ErrInvalidOutcome
	}
}

// Repair implements the Service interface.
func (s *defaultService) Repair(card *domain.Card, now time.Time) (*domain.Card, bool) {
	return repairCard(card, now, s.loc)
}

// ResolveInterval implements the Service interface.
func (s *defaultService) ResolveInterval(repetition int, table *Table) int {
	return ResolveInterval(repetition, table)
}

// Location implements the Service interface.
func (s *defaultService) Location() *time.Location {
	return s.loc
}
