package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemo-app/mnemo-api/internal/domain"
)

func TestTransferService_ExportRendersDeploymentZone(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	createdAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	card, err := domain.NewCard(owner, "q1", "a1", createdAt)
	require.NoError(t, err)

	shanghai := time.FixedZone("+08:00", 8*3600)
	svc := NewTransferService(newMemCardStore(card), shanghai, nil)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCards(context.Background(), owner, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, exportHeader, records[0])
	assert.Equal(t, "q1", records[1][0])
	// Noon UTC renders as 20:00 in UTC+8, without an offset suffix.
	assert.Equal(t, "2024-03-01 20:00:00", records[1][2])
}

func TestTransferService_ImportRoundTrip(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	exportStore := newMemCardStore()
	exportSvc := NewTransferService(exportStore, time.UTC, nil)

	created, err := domain.NewCard(owner, "exported question", "exported answer", time.Now().UTC())
	require.NoError(t, err)
	created.RepetitionCount = 3
	require.NoError(t, exportStore.Create(context.Background(), created))

	var buf bytes.Buffer
	require.NoError(t, exportSvc.ExportCards(context.Background(), owner, &buf))

	importStore := newMemCardStore()
	importSvc := NewTransferService(importStore, time.UTC, nil)
	importer := uuid.New()

	result, err := importSvc.ImportCards(context.Background(), importer, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Empty(t, result.Errors)

	page, err := importStore.List(context.Background(), importer, "", 0, 10)
	require.NoError(t, err)
	require.Len(t, page.Cards, 1)
	assert.Equal(t, "exported question", page.Cards[0].Question)
	assert.Equal(t, 3, page.Cards[0].RepetitionCount)
	assert.NotNil(t, page.Cards[0].FirstReviewAt, "nonzero streak backfills the marker")
}

func TestTransferService_ImportAttachesZoneToNaiveTimestamps(t *testing.T) {
	t.Parallel()

	shanghai := time.FixedZone("+08:00", 8*3600)
	cardStore := newMemCardStore()
	svc := NewTransferService(cardStore, shanghai, nil)
	owner := uuid.New()

	input := "question,answer,created_at,repetition_count,next_due_at\n" +
		"q1,a1,2024-03-01 20:00:00,0,2024-03-02 20:00:00\n"

	result, err := svc.ImportCards(context.Background(), owner, strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 1, result.Imported)

	page, err := cardStore.List(context.Background(), owner, "", 0, 10)
	require.NoError(t, err)
	require.Len(t, page.Cards, 1)

	// 20:00 wall clock in UTC+8 is noon UTC.
	want := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.True(t, page.Cards[0].CreatedAt.Equal(want),
		"naive timestamp must be reinterpreted in the deployment zone")
}

func TestTransferService_ImportSkipsDuplicates(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	existing, err := domain.NewCard(owner, "known question", "a", time.Now().UTC())
	require.NoError(t, err)

	svc := NewTransferService(newMemCardStore(existing), time.UTC, nil)

	input := "known question,answer\nfresh question,answer\n"
	result, err := svc.ImportCards(context.Background(), owner, strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Skipped)
}

func TestTransferService_ImportReportsBadRows(t *testing.T) {
	t.Parallel()

	svc := NewTransferService(newMemCardStore(), time.UTC, nil)

	input := "q1,a1\n" +
		"only-one-column\n" +
		"q2,a2,not-a-date\n" +
		"q3,a3\n"

	result, err := svc.ImportCards(context.Background(), uuid.New(), strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Imported)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 2, result.Errors[0].RowNumber)
	assert.Equal(t, 3, result.Errors[1].RowNumber)
}

func TestTransferService_ImportAcceptsBareDates(t *testing.T) {
	t.Parallel()

	cardStore := newMemCardStore()
	svc := NewTransferService(cardStore, time.UTC, nil)
	owner := uuid.New()

	input := "q1,a1,2024-03-01,2,2024-04-01\n"
	result, err := svc.ImportCards(context.Background(), owner, strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 1, result.Imported)

	page, err := cardStore.List(context.Background(), owner, "", 0, 10)
	require.NoError(t, err)
	require.Len(t, page.Cards, 1)
	assert.Equal(t, 2024, page.Cards[0].CreatedAt.Year())
	assert.Equal(t, time.March, page.Cards[0].CreatedAt.Month())
}
