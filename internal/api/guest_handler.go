package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mnemo-app/mnemo-api/internal/api/shared"
	"github.com/mnemo-app/mnemo-api/internal/domain"
	"github.com/mnemo-app/mnemo-api/internal/platform/logger"
	"github.com/mnemo-app/mnemo-api/internal/service"
)

// GuestHandler handles demo session HTTP requests. Guest endpoints
// authenticate by session ID rather than JWT; sessions are short-lived and
// hold nothing worth protecting.
type GuestHandler struct {
	guestService service.GuestService
	logger       *slog.Logger
}

// NewGuestHandler creates a new GuestHandler.
func NewGuestHandler(guestService service.GuestService, logger *slog.Logger) *GuestHandler {
	if guestService == nil {
		panic("guestService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &GuestHandler{
		guestService: guestService,
		logger:       logger.With(slog.String("component", "guest_handler")),
	}
}

// sessionIDParam parses the {sessionID} chi URL parameter.
func sessionIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid session ID")
		return uuid.Nil, false
	}
	return sessionID, true
}

// StartSession handles POST /api/demo requests.
func (h *GuestHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	sessionID, err := h.guestService.StartSession(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to start demo session", err)
		return
	}

	log.Debug("demo session started", slog.String("session_id", sessionID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, GuestSessionResponse{SessionID: sessionID})
}

// ListCards handles GET /api/demo/{sessionID}/cards requests.
func (h *GuestHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	cards, err := h.guestService.ListCards(r.Context(), sessionID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CardListResponse{
		Cards: cardsToResponse(cards),
		Total: len(cards),
	})
}

// SubmitReview handles POST /api/demo/{sessionID}/cards/{id}/review requests.
func (h *GuestHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDParam(w, r)
	if !ok {
		return
	}
	cardID, ok := cardIDParam(w, r)
	if !ok {
		return
	}

	var req SubmitReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	card, err := h.guestService.SubmitReview(
		r.Context(),
		sessionID,
		cardID,
		domain.ReviewOutcome(req.Outcome),
	)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}
