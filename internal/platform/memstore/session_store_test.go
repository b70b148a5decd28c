package memstore

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemo-app/mnemo-api/internal/domain"
)

func seedDeck(t *testing.T, n int) []*domain.Card {
	t.Helper()
	owner := uuid.New()
	now := time.Now().UTC()
	cards := make([]*domain.Card, 0, n)
	for i := 0; i < n; i++ {
		card, err := domain.NewCard(owner, "question", "answer", now)
		require.NoError(t, err)
		cards = append(cards, card)
	}
	return cards
}

func TestSessionStore_CreateSeedsClones(t *testing.T) {
	t.Parallel()

	store := NewSessionStore(time.Minute, nil)
	seed := seedDeck(t, 3)

	session := store.Create(seed)

	cards, err := store.Cards(session.ID)
	require.NoError(t, err)
	assert.Len(t, cards, 3)

	for _, card := range cards {
		assert.Equal(t, session.UserID, card.UserID, "seeded cards must be rebound to the session user")
		for _, original := range seed {
			assert.NotEqual(t, original.ID, card.ID, "seeded cards must get fresh IDs")
		}
	}
}

func TestSessionStore_GetUnknownSession(t *testing.T) {
	t.Parallel()

	store := NewSessionStore(time.Minute, nil)

	_, err := store.Get(uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_PutCardRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewSessionStore(time.Minute, nil)
	session := store.Create(seedDeck(t, 1))

	cards, err := store.Cards(session.ID)
	require.NoError(t, err)
	require.Len(t, cards, 1)

	updated := cards[0].Clone()
	updated.RepetitionCount = 5
	require.NoError(t, store.PutCard(session.ID, updated))

	got, err := store.GetCard(session.ID, updated.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.RepetitionCount)
}

func TestSessionStore_PutCardUnknownCard(t *testing.T) {
	t.Parallel()

	store := NewSessionStore(time.Minute, nil)
	session := store.Create(nil)

	stray, err := domain.NewCard(session.UserID, "q", "a", time.Now().UTC())
	require.NoError(t, err)

	assert.ErrorIs(t, store.PutCard(session.ID, stray), ErrSessionCardNotFound)
}

func TestSessionStore_SweepEvictsExpired(t *testing.T) {
	t.Parallel()

	store := NewSessionStore(time.Nanosecond, nil)
	session := store.Create(seedDeck(t, 1))

	time.Sleep(5 * time.Millisecond)
	store.sweep()

	assert.Equal(t, 0, store.Len())
	_, err := store.Get(session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_GetExtendsLifetime(t *testing.T) {
	t.Parallel()

	store := NewSessionStore(50*time.Millisecond, nil)
	session := store.Create(nil)

	// Touch the session halfway through its TTL, then wait past the
	// original deadline. The touch must have pushed expiry out.
	time.Sleep(30 * time.Millisecond)
	_, err := store.Get(session.ID)
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)
	_, err = store.Get(session.ID)
	assert.NoError(t, err)
}
