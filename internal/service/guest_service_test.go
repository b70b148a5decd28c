package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemo-app/mnemo-api/internal/domain"
	"github.com/mnemo-app/mnemo-api/internal/domain/srs"
	"github.com/mnemo-app/mnemo-api/internal/platform/memstore"
)

func newGuestService(t *testing.T) GuestService {
	t.Helper()
	sessions := memstore.NewSessionStore(time.Minute, nil)
	return NewGuestService(sessions, srs.NewService(time.UTC), nil)
}

func TestGuestService_StartSessionSeedsDeck(t *testing.T) {
	t.Parallel()

	svc := newGuestService(t)

	sessionID, err := svc.StartSession(context.Background())
	require.NoError(t, err)

	cards, err := svc.ListCards(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Len(t, cards, len(demoDeck))

	for _, card := range cards {
		assert.Equal(t, 0, card.RepetitionCount)
		assert.False(t, card.NextDueAt.After(time.Now().UTC()), "demo cards start due")
	}
}

func TestGuestService_SubmitReviewSchedulesForward(t *testing.T) {
	t.Parallel()

	svc := newGuestService(t)

	sessionID, err := svc.StartSession(context.Background())
	require.NoError(t, err)

	cards, err := svc.ListCards(context.Background(), sessionID)
	require.NoError(t, err)
	require.NotEmpty(t, cards)

	updated, err := svc.SubmitReview(
		context.Background(),
		sessionID,
		cards[0].ID,
		domain.ReviewOutcomeRemembered,
	)
	require.NoError(t, err)

	assert.Equal(t, 1, updated.RepetitionCount)
	assert.True(t, updated.NextDueAt.After(time.Now().UTC()))

	// The session must hold the new schedule, not the seed state.
	after, err := svc.ListCards(context.Background(), sessionID)
	require.NoError(t, err)
	for _, card := range after {
		if card.ID == updated.ID {
			assert.Equal(t, 1, card.RepetitionCount)
		}
	}
}

func TestGuestService_SubmitReviewUnknownSession(t *testing.T) {
	t.Parallel()

	svc := newGuestService(t)

	_, err := svc.SubmitReview(
		context.Background(),
		uuid.New(),
		uuid.New(),
		domain.ReviewOutcomeRemembered,
	)
	assert.ErrorIs(t, err, memstore.ErrSessionNotFound)
}
