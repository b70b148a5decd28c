package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemo-app/mnemo-api/internal/api/shared"
	"github.com/mnemo-app/mnemo-api/internal/domain"
	"github.com/mnemo-app/mnemo-api/internal/service"
	"github.com/mnemo-app/mnemo-api/internal/service/card_review"
	"github.com/mnemo-app/mnemo-api/internal/store"
)

// fakeCardService implements service.CardService with canned results.
type fakeCardService struct {
	card *domain.Card
	page *store.CardPage
	err  error
}

func (f *fakeCardService) CreateCard(
	_ context.Context, _ uuid.UUID, _, _ string,
) (*domain.Card, error) {
	return f.card, f.err
}

func (f *fakeCardService) GetCard(
	_ context.Context, _, _ uuid.UUID,
) (*domain.Card, error) {
	return f.card, f.err
}

func (f *fakeCardService) ListCards(
	_ context.Context, _ uuid.UUID, _ string, _, _ int,
) (*store.CardPage, error) {
	return f.page, f.err
}

func (f *fakeCardService) ListDueCards(
	_ context.Context, _ uuid.UUID, _, _ int,
) (*store.CardPage, error) {
	return f.page, f.err
}

func (f *fakeCardService) UpdateCard(
	_ context.Context, _, _ uuid.UUID, _ store.CardUpdate,
) (*domain.Card, error) {
	return f.card, f.err
}

func (f *fakeCardService) DeleteCard(_ context.Context, _, _ uuid.UUID) error {
	return f.err
}

var _ service.CardService = (*fakeCardService)(nil)

// fakeReviewService implements card_review.CardReviewService.
type fakeReviewService struct {
	card *domain.Card
	err  error

	gotOutcome domain.ReviewOutcome
}

func (f *fakeReviewService) GetNextCard(_ context.Context, _ uuid.UUID) (*domain.Card, error) {
	return f.card, f.err
}

func (f *fakeReviewService) SubmitAnswer(
	_ context.Context, _, _ uuid.UUID, answer card_review.ReviewAnswer,
) (*domain.Card, error) {
	f.gotOutcome = answer.Outcome
	return f.card, f.err
}

var _ card_review.CardReviewService = (*fakeReviewService)(nil)

func testCard(t *testing.T, userID uuid.UUID) *domain.Card {
	t.Helper()
	card, err := domain.NewCard(userID, "question", "answer", time.Now().UTC())
	require.NoError(t, err)
	return card
}

// authedRequest builds a request carrying an authenticated user ID, the way
// the auth middleware would.
func authedRequest(method, target string, body string, userID uuid.UUID) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
	return req.WithContext(ctx)
}

func cardRouter(handler *CardHandler) chi.Router {
	r := chi.NewRouter()
	r.Post("/api/cards", handler.CreateCard)
	r.Get("/api/cards", handler.ListCards)
	r.Get("/api/cards/due", handler.ListDueCards)
	r.Get("/api/cards/next", handler.GetNextReviewCard)
	r.Get("/api/cards/{id}", handler.GetCard)
	r.Put("/api/cards/{id}", handler.UpdateCard)
	r.Delete("/api/cards/{id}", handler.DeleteCard)
	r.Post("/api/cards/{id}/review", handler.SubmitReview)
	return r
}

func TestCreateCard(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	card := testCard(t, userID)
	handler := NewCardHandler(&fakeCardService{card: card}, &fakeReviewService{}, nil)

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodPost, "/api/cards",
		`{"question":"question","answer":"answer"}`, userID)
	cardRouter(handler).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp CardResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, card.ID, resp.ID)
	assert.Equal(t, "question", resp.Question)
}

func TestCreateCard_ValidationFailure(t *testing.T) {
	t.Parallel()

	handler := NewCardHandler(&fakeCardService{}, &fakeReviewService{}, nil)

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodPost, "/api/cards", `{"question":"","answer":"a"}`, uuid.New())
	cardRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateCard_Unauthenticated(t *testing.T) {
	t.Parallel()

	handler := NewCardHandler(&fakeCardService{}, &fakeReviewService{}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/cards",
		strings.NewReader(`{"question":"q","answer":"a"}`))
	cardRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetCard_NotOwned(t *testing.T) {
	t.Parallel()

	handler := NewCardHandler(&fakeCardService{err: service.ErrNotOwned}, &fakeReviewService{}, nil)

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodGet, "/api/cards/"+uuid.NewString(), "", uuid.New())
	cardRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetCard_InvalidID(t *testing.T) {
	t.Parallel()

	handler := NewCardHandler(&fakeCardService{}, &fakeReviewService{}, nil)

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodGet, "/api/cards/not-a-uuid", "", uuid.New())
	cardRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListCards(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	page := &store.CardPage{
		Cards: []*domain.Card{testCard(t, userID), testCard(t, userID)},
		Total: 2,
	}
	handler := NewCardHandler(&fakeCardService{page: page}, &fakeReviewService{}, nil)

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodGet, "/api/cards?limit=10", "", userID)
	cardRouter(handler).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp CardListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Cards, 2)
	assert.Equal(t, 2, resp.Total)
}

func TestGetNextReviewCard_NoCardsDue(t *testing.T) {
	t.Parallel()

	handler := NewCardHandler(
		&fakeCardService{},
		&fakeReviewService{err: card_review.ErrNoCardsDue},
		nil,
	)

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodGet, "/api/cards/next", "", uuid.New())
	cardRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestSubmitReview(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	card := testCard(t, userID)
	reviewSvc := &fakeReviewService{card: card}
	handler := NewCardHandler(&fakeCardService{}, reviewSvc, nil)

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodPost, "/api/cards/"+card.ID.String()+"/review",
		`{"outcome":"remembered"}`, userID)
	cardRouter(handler).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.ReviewOutcomeRemembered, reviewSvc.gotOutcome)
}

func TestSubmitReview_RejectsUnknownOutcome(t *testing.T) {
	t.Parallel()

	handler := NewCardHandler(&fakeCardService{}, &fakeReviewService{}, nil)

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodPost, "/api/cards/"+uuid.NewString()+"/review",
		`{"outcome":"easy"}`, uuid.New())
	cardRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitReview_CardNotFound(t *testing.T) {
	t.Parallel()

	handler := NewCardHandler(
		&fakeCardService{},
		&fakeReviewService{err: card_review.ErrCardNotFound},
		nil,
	)

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodPost, "/api/cards/"+uuid.NewString()+"/review",
		`{"outcome":"forgotten"}`, uuid.New())
	cardRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteCard(t *testing.T) {
	t.Parallel()

	handler := NewCardHandler(&fakeCardService{}, &fakeReviewService{}, nil)

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodDelete, "/api/cards/"+uuid.NewString(), "", uuid.New())
	cardRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
