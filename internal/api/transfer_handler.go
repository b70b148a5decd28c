package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mnemo-app/mnemo-api/internal/api/shared"
	"github.com/mnemo-app/mnemo-api/internal/platform/logger"
	"github.com/mnemo-app/mnemo-api/internal/service"
)

// maxImportBytes bounds the size of an uploaded deck.
const maxImportBytes = 10 << 20 // 10 MiB

// TransferHandler handles CSV export and import HTTP requests.
type TransferHandler struct {
	transferService service.TransferService
	logger          *slog.Logger
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transferService service.TransferService, logger *slog.Logger) *TransferHandler {
	if transferService == nil {
		panic("transferService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TransferHandler{
		transferService: transferService,
		logger:          logger.With(slog.String("component", "transfer_handler")),
	}
}

// ExportCards handles GET /api/cards/export requests. The response is a CSV
// attachment.
func (h *TransferHandler) ExportCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	filename := fmt.Sprintf("cards_%s.csv", time.Now().UTC().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.transferService.ExportCards(r.Context(), userID, w); err != nil {
		// Headers may already be sent; log and cut the response short.
		log.Error("export failed mid-stream",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return
	}
}

// ImportCards handles POST /api/cards/import requests. The body is either a
// raw CSV payload or a multipart form with a "file" field.
func (h *TransferHandler) ImportCards(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)

	reader := r.Body
	if file, _, err := r.FormFile("file"); err == nil {
		defer func() {
			if closeErr := file.Close(); closeErr != nil {
				h.logger.Error("failed to close upload", slog.String("error", closeErr.Error()))
			}
		}()
		reader = file
	}

	result, err := h.transferService.ImportCards(r.Context(), userID, reader)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}
