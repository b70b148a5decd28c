// Package service provides application-level services for managing cards,
// review rules, CSV transfer, and guest sessions.
package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// Callers check for these with errors.Is(); the API layer maps them to HTTP
// status codes.
var (
	// ErrNotOwned indicates a resource is owned by a different user than
	// the one making the request. Maps to HTTP 403 Forbidden.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrInvalidRuleSet indicates a submitted rule table failed structural
	// validation (overlapping or inverted ranges). Maps to HTTP 400.
	ErrInvalidRuleSet = errors.New("invalid review rule set")

	// ErrImportMalformed indicates an uploaded CSV could not be parsed.
	// Maps to HTTP 400.
	ErrImportMalformed = errors.New("malformed import file")
)
