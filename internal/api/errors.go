package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mnemo-app/mnemo-api/internal/domain"
	"github.com/mnemo-app/mnemo-api/internal/domain/srs"
	"github.com/mnemo-app/mnemo-api/internal/platform/memstore"
	"github.com/mnemo-app/mnemo-api/internal/service"
	"github.com/mnemo-app/mnemo-api/internal/service/auth"
	"github.com/mnemo-app/mnemo-api/internal/service/card_review"
	"github.com/mnemo-app/mnemo-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, card_review.ErrCardNotOwned),
		errors.Is(err, service.ErrNotOwned):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrCardNotFound),
		errors.Is(err, store.ErrRuleNotFound),
		errors.Is(err, card_review.ErrCardNotFound),
		errors.Is(err, memstore.ErrSessionNotFound),
		errors.Is(err, memstore.ErrSessionCardNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, card_review.ErrInvalidAnswer),
		errors.Is(err, srs.ErrInvalidOutcome),
		errors.Is(err, service.ErrInvalidRuleSet),
		errors.Is(err, service.ErrImportMalformed),
		isDomainValidationError(err):
		return http.StatusBadRequest

	// Special cases
	case errors.Is(err, card_review.ErrNoCardsDue):
		return http.StatusNoContent

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid email or password"

	// Authorization errors
	case errors.Is(err, card_review.ErrCardNotOwned),
		errors.Is(err, service.ErrNotOwned):
		return "You do not own this card"

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrCardNotFound),
		errors.Is(err, card_review.ErrCardNotFound),
		errors.Is(err, memstore.ErrSessionCardNotFound):
		return "Card not found"

	case errors.Is(err, memstore.ErrSessionNotFound):
		return "Session not found or expired"

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	// Bad request errors
	case errors.Is(err, card_review.ErrInvalidAnswer),
		errors.Is(err, srs.ErrInvalidOutcome):
		return "Invalid review outcome"

	case errors.Is(err, service.ErrInvalidRuleSet):
		return "Invalid review rule set"

	case errors.Is(err, service.ErrImportMalformed):
		return "Malformed import file"

	case isDomainValidationError(err):
		return err.Error()

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	// Default case for unknown errors
	default:
		return "An unexpected error occurred"
	}
}

// isDomainValidationError reports whether the error is one of the domain's
// sentinel validation errors, whose messages are safe to show to clients.
func isDomainValidationError(err error) bool {
	sentinels := []error{
		domain.ErrCardQuestionEmpty,
		domain.ErrCardQuestionTooLong,
		domain.ErrCardAnswerEmpty,
		domain.ErrCardAnswerTooLong,
		domain.ErrCardNegativeRepetitions,
		domain.ErrUserEmailEmpty,
		domain.ErrUserEmailInvalid,
		domain.ErrRuleMinRepetition,
		domain.ErrRuleRangeInverted,
		domain.ErrRuleIntervalTooShort,
	}
	for _, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Example format: "Key: 'LoginRequest.Email' Error:Field validation for
	// 'Email' failed on the 'required' tag"
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
