package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mnemo-app/mnemo-api/internal/domain"
	"github.com/mnemo-app/mnemo-api/internal/platform/logger"
	"github.com/mnemo-app/mnemo-api/internal/store"
	"github.com/mnemo-app/mnemo-api/internal/timeutil"
)

// csvTimeLayout is the zone-less timestamp format used in export files.
// Imports accept this layout (and bare dates) as naive values that get the
// deployment zone attached, plus RFC 3339 values that keep their own offset.
const csvTimeLayout = "2006-01-02 15:04:05"

// exportHeader is the column order of an export file.
var exportHeader = []string{"question", "answer", "created_at", "repetition_count", "next_due_at"}

// ImportRowError describes one rejected row of an import file.
type ImportRowError struct {
	RowNumber int    `json:"row_number"`
	Message   string `json:"message"`
}

// ImportResult summarizes an import run. Rows that fail validation are
// reported, not fatal: the importer keeps going.
type ImportResult struct {
	Imported int              `json:"imported"`
	Skipped  int              `json:"skipped"`
	Errors   []ImportRowError `json:"errors,omitempty"`
}

// TransferService moves card decks in and out of the system as CSV.
type TransferService interface {
	// ExportCards writes all of the user's cards to w as CSV, newest
	// first, with timestamps rendered in the deployment zone.
	ExportCards(ctx context.Context, userID uuid.UUID, w io.Writer) error

	// ImportCards reads a CSV deck from r and creates cards for the user.
	// A header row is detected and skipped; rows whose question matches an
	// existing card are skipped. Missing review fields default to a fresh,
	// immediately-due card. Returns ErrImportMalformed if the file cannot
	// be parsed at all.
	ImportCards(ctx context.Context, userID uuid.UUID, r io.Reader) (*ImportResult, error)
}

// transferServiceImpl implements the TransferService interface.
type transferServiceImpl struct {
	cardStore store.CardStore
	loc       *time.Location
	logger    *slog.Logger
}

// NewTransferService creates a new TransferService. loc is the deployment
// zone attached to naive timestamps; nil selects UTC.
func NewTransferService(
	cardStore store.CardStore,
	loc *time.Location,
	logger *slog.Logger,
) TransferService {
	if cardStore == nil {
		panic("cardStore cannot be nil")
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &transferServiceImpl{
		cardStore: cardStore,
		loc:       loc,
		logger:    logger.With(slog.String("component", "transfer_service")),
	}
}

// exportPageSize bounds memory per export round trip.
const exportPageSize = 500

// ExportCards implements TransferService.ExportCards.
func (s *transferServiceImpl) ExportCards(
	ctx context.Context,
	userID uuid.UUID,
	w io.Writer,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}

	exported := 0
	for offset := 0; ; offset += exportPageSize {
		page, err := s.cardStore.List(ctx, userID, "", offset, exportPageSize)
		if err != nil {
			return fmt.Errorf("failed to list cards for export: %w", err)
		}

		for _, card := range page.Cards {
			record := []string{
				card.Question,
				card.Answer,
				s.formatTime(card.CreatedAt),
				strconv.Itoa(card.RepetitionCount),
				s.formatTime(card.NextDueAt),
			}
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("failed to write export row: %w", err)
			}
			exported++
		}

		if len(page.Cards) < exportPageSize {
			break
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush export: %w", err)
	}

	log.Info("exported cards",
		slog.String("user_id", userID.String()),
		slog.Int("card_count", exported))
	return nil
}

// formatTime renders a timestamp in the deployment zone without an offset
// suffix, matching the layout imports accept as naive.
func (s *transferServiceImpl) formatTime(t time.Time) string {
	return t.In(s.loc).Format(csvTimeLayout)
}

// ImportCards implements TransferService.ImportCards.
func (s *transferServiceImpl) ImportCards(
	ctx context.Context,
	userID uuid.UUID,
	r io.Reader,
) (*ImportResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportMalformed, err)
	}

	existing, err := s.existingQuestions(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for i, record := range records {
		rowNumber := i + 1

		if i == 0 && isHeaderRow(record) {
			continue
		}
		if isBlankRow(record) {
			continue
		}

		card, err := s.rowToCard(userID, record)
		if err != nil {
			result.Errors = append(result.Errors, ImportRowError{
				RowNumber: rowNumber,
				Message:   err.Error(),
			})
			continue
		}

		if existing[card.Question] {
			result.Skipped++
			continue
		}

		if err := s.cardStore.Create(ctx, card); err != nil {
			result.Errors = append(result.Errors, ImportRowError{
				RowNumber: rowNumber,
				Message:   fmt.Sprintf("failed to store card: %v", err),
			})
			continue
		}

		existing[card.Question] = true
		result.Imported++
	}

	log.Info("imported cards",
		slog.String("user_id", userID.String()),
		slog.Int("imported", result.Imported),
		slog.Int("skipped", result.Skipped),
		slog.Int("errors", len(result.Errors)))
	return result, nil
}

// rowToCard builds a card from one import row. Columns follow exportHeader;
// only question and answer are required.
func (s *transferServiceImpl) rowToCard(userID uuid.UUID, record []string) (*domain.Card, error) {
	if len(record) < 2 {
		return nil, fmt.Errorf("row needs at least question and answer columns")
	}

	question := strings.TrimSpace(record[0])
	answer := strings.TrimSpace(record[1])

	now := time.Now().In(s.loc)
	card, err := domain.NewCard(userID, question, answer, now)
	if err != nil {
		return nil, err
	}

	if len(record) > 2 && strings.TrimSpace(record[2]) != "" {
		createdAt, err := s.parseTimeField(record[2])
		if err != nil {
			return nil, fmt.Errorf("created_at: %w", err)
		}
		card.CreatedAt = createdAt
	}

	if len(record) > 3 && strings.TrimSpace(record[3]) != "" {
		count, err := strconv.Atoi(strings.TrimSpace(record[3]))
		if err != nil || count < 0 {
			return nil, fmt.Errorf("repetition_count must be a non-negative integer")
		}
		card.RepetitionCount = count
		// A nonzero streak implies the first review already happened;
		// the repairer would backfill the same way on read.
		if count > 0 {
			first := card.CreatedAt
			card.FirstReviewAt = &first
		}
	}

	if len(record) > 4 && strings.TrimSpace(record[4]) != "" {
		nextDueAt, err := s.parseTimeField(record[4])
		if err != nil {
			return nil, fmt.Errorf("next_due_at: %w", err)
		}
		card.NextDueAt = nextDueAt
	}

	return card, nil
}

// parseTimeField parses an import timestamp and attaches the deployment zone
// when the value carries none.
func (s *transferServiceImpl) parseTimeField(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)

	t, err := timeutil.ParseNaive(raw)
	if err != nil {
		// Bare dates are common in hand-edited decks.
		t, err = time.ParseInLocation("2006-01-02", raw, timeutil.NoZone)
		if err != nil {
			return time.Time{}, fmt.Errorf("cannot parse timestamp %q", raw)
		}
	}
	return timeutil.Normalize(t, s.loc), nil
}

// existingQuestions loads the user's current questions for duplicate
// detection.
func (s *transferServiceImpl) existingQuestions(
	ctx context.Context,
	userID uuid.UUID,
) (map[string]bool, error) {
	questions := make(map[string]bool)
	for offset := 0; ; offset += exportPageSize {
		page, err := s.cardStore.List(ctx, userID, "", offset, exportPageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to list existing cards: %w", err)
		}
		for _, card := range page.Cards {
			questions[card.Question] = true
		}
		if len(page.Cards) < exportPageSize {
			return questions, nil
		}
	}
}

// isHeaderRow reports whether the first row looks like column names rather
// than card content.
func isHeaderRow(record []string) bool {
	if len(record) == 0 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(record[0]))
	return first == "question" || first == "知识点"
}

func isBlankRow(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
