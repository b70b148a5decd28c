package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/mnemo-app/mnemo-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	AccessToken string    `json:"token"`
}

// CreateCardRequest defines the payload for creating a card.
type CreateCardRequest struct {
	Question string `json:"question" validate:"required,max=100"`
	Answer   string `json:"answer"   validate:"required,max=500"`
}

// UpdateCardRequest defines the payload for updating a card. Nil fields are
// left unchanged; only the enumerated fields are patchable.
type UpdateCardRequest struct {
	Question  *string    `json:"question,omitempty"  validate:"omitempty,max=100"`
	Answer    *string    `json:"answer,omitempty"    validate:"omitempty,max=500"`
	NextDueAt *time.Time `json:"next_due_at,omitempty"`
}

// SubmitReviewRequest defines the payload for submitting a review outcome.
type SubmitReviewRequest struct {
	Outcome string `json:"outcome" validate:"required,oneof=remembered forgotten"`
}

// CardResponse represents the response data for a card.
type CardResponse struct {
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

// CardListResponse is one page of cards plus the total match count.
type CardListResponse struct {
	Cards []CardResponse `json:"cards"`
	Total int            `json:"total"`
}

// cardToResponse converts a domain card to its API representation.
func cardToResponse(card *domain.Card) CardResponse {
	return CardResponse{
		ID:              card.ID,
		UserID:          card.UserID,
		Question:        card.Question,
		Answer:          card.Answer,
		RepetitionCount: card.RepetitionCount,
		FirstReviewAt:   card.FirstReviewAt,
		NextDueAt:       card.NextDueAt,
		CreatedAt:       card.CreatedAt,
		UpdatedAt:       card.UpdatedAt,
	}
}

// cardsToResponse converts a card slice to its API representation.
func cardsToResponse(cards []*domain.Card) []CardResponse {
	out := make([]CardResponse, 0, len(cards))
	for _, card := range cards {
		out = append(out, cardToResponse(card))
	}
	return out
}

// RuleRow is one row of a rule table in requests and responses.
type RuleRow struct {
	MinRepetition int `json:"min_repetition" validate:"required,min=1"`
	MaxRepetition int `json:"max_repetition" validate:"required,min=1"`
	IntervalDays  int `json:"interval_days"  validate:"required,min=1"`
}

// ReplaceRulesRequest defines the payload for replacing the rule table.
type ReplaceRulesRequest struct {
	Rules []RuleRow `json:"rules" validate:"required,min=1,dive"`
}

// RuleListResponse is the user's full rule table.
type RuleListResponse struct {
	Rules []RuleRow `json:"rules"`
}

// rulesToResponse converts domain rules to their API representation.
func rulesToResponse(rules []*domain.ReviewRule) RuleListResponse {
	out := RuleListResponse{Rules: make([]RuleRow, 0, len(rules))}
	for _, rule := range rules {
		out.Rules = append(out.Rules, RuleRow{
			MinRepetition: rule.MinRepetition,
			MaxRepetition: rule.MaxRepetition,
			IntervalDays:  rule.IntervalDays,
		})
	}
	return out
}

// GuestSessionResponse is returned when a guest session is created.
type GuestSessionResponse struct {
	SessionID uuid.UUID `json:"session_id"`
}
