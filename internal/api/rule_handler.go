package api

import (
	"log/slog"
	"net/http"

	"github.com/mnemo-app/mnemo-api/internal/api/shared"
	"github.com/mnemo-app/mnemo-api/internal/platform/logger"
	"github.com/mnemo-app/mnemo-api/internal/service"
)

// RuleHandler handles review rule HTTP requests.
type RuleHandler struct {
	ruleService service.RuleService
	logger      *slog.Logger
}

// NewRuleHandler creates a new RuleHandler.
func NewRuleHandler(ruleService service.RuleService, logger *slog.Logger) *RuleHandler {
	if ruleService == nil {
		panic("ruleService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &RuleHandler{
		ruleService: ruleService,
		logger:      logger.With(slog.String("component", "rule_handler")),
	}
}

// ListRules handles GET /api/rules requests.
func (h *RuleHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	rules, err := h.ruleService.ListRules(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, rulesToResponse(rules))
}

// ReplaceRules handles PUT /api/rules requests. The submitted table replaces
// the user's rules wholesale.
func (h *RuleHandler) ReplaceRules(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req ReplaceRulesRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	updates := make([]service.RuleUpdate, 0, len(req.Rules))
	for _, row := range req.Rules {
		updates = append(updates, service.RuleUpdate{
			MinRepetition: row.MinRepetition,
			MaxRepetition: row.MaxRepetition,
			IntervalDays:  row.IntervalDays,
		})
	}

	rules, err := h.ruleService.ReplaceRules(r.Context(), userID, updates)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("rule table replaced",
		slog.String("user_id", userID.String()),
		slog.Int("rule_count", len(rules)))
	shared.RespondWithJSON(w, r, http.StatusOK, rulesToResponse(rules))
}

// ResetRules handles POST /api/rules/reset requests.
func (h *RuleHandler) ResetRules(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	rules, err := h.ruleService.ResetToDefault(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, rulesToResponse(rules))
}
