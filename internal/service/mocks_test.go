package service

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mnemo-app/mnemo-api/internal/domain"
	"github.com/mnemo-app/mnemo-api/internal/store"
)

// memCardStore is an in-memory CardStore used across the service tests.
type memCardStore struct {
	cards map[uuid.UUID]*domain.Card

	failCreate error
}

func newMemCardStore(cards ...*domain.Card) *memCardStore {
	s := &memCardStore{cards: make(map[uuid.UUID]*domain.Card)}
	for _, c := range cards {
		s.cards[c.ID] = c.Clone()
	}
	return s
}

func (s *memCardStore) Create(_ context.Context, card *domain.Card) error {
	if s.failCreate != nil {
		return s.failCreate
	}
	s.cards[card.ID] = card.Clone()
	return nil
}

func (s *memCardStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Card, error) {
	card, ok := s.cards[id]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	return card.Clone(), nil
}

func (s *memCardStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	return s.GetByID(ctx, id)
}

func (s *memCardStore) List(
	_ context.Context, userID uuid.UUID, search string, offset, limit int,
) (*store.CardPage, error) {
	matched := make([]*domain.Card, 0)
	for _, card := range s.cards {
		if card.UserID != userID {
			continue
		}
		if search != "" &&
			!strings.Contains(card.Question, search) &&
			!strings.Contains(card.Answer, search) {
			continue
		}
		matched = append(matched, card.Clone())
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return pageOf(matched, offset, limit), nil
}

func (s *memCardStore) ListDue(
	_ context.Context, userID uuid.UUID, asOf time.Time, offset, limit int,
) (*store.CardPage, error) {
	matched := make([]*domain.Card, 0)
	for _, card := range s.cards {
		if card.UserID == userID && !card.NextDueAt.After(asOf) {
			matched = append(matched, card.Clone())
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].NextDueAt.Before(matched[j].NextDueAt)
	})
	return pageOf(matched, offset, limit), nil
}

func pageOf(cards []*domain.Card, offset, limit int) *store.CardPage {
	total := len(cards)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return &store.CardPage{Cards: cards[offset:end], Total: total}
}

func (s *memCardStore) Update(
	_ context.Context, id uuid.UUID, update store.CardUpdate,
) (*domain.Card, error) {
	card, ok := s.cards[id]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	if update.Question != nil {
		card.Question = *update.Question
	}
	if update.Answer != nil {
		card.Answer = *update.Answer
	}
	if update.NextDueAt != nil {
		card.NextDueAt = *update.NextDueAt
	}
	card.UpdatedAt = time.Now().UTC()
	return card.Clone(), nil
}

func (s *memCardStore) UpdateReviewState(_ context.Context, card *domain.Card) error {
	if _, ok := s.cards[card.ID]; !ok {
		return store.ErrCardNotFound
	}
	s.cards[card.ID] = card.Clone()
	return nil
}

func (s *memCardStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.cards[id]; !ok {
		return store.ErrCardNotFound
	}
	delete(s.cards, id)
	return nil
}

func (s *memCardStore) WithTx(_ *sql.Tx) store.CardStore { return s }

// memRuleStore is an in-memory ReviewRuleStore. Write calls record whether
// they arrived on a transaction-bound copy, so tests can hold services to
// the wholesale-replacement contract.
type memRuleStore struct {
	rules         map[uuid.UUID][]*domain.ReviewRule
	inTx          bool
	lastWriteInTx *bool
}

func newMemRuleStore() *memRuleStore {
	return &memRuleStore{
		rules:         make(map[uuid.UUID][]*domain.ReviewRule),
		lastWriteInTx: new(bool),
	}
}

func (s *memRuleStore) ListByUser(_ context.Context, userID uuid.UUID) ([]*domain.ReviewRule, error) {
	return s.rules[userID], nil
}

func (s *memRuleStore) ReplaceForUser(
	_ context.Context, userID uuid.UUID, rules []*domain.ReviewRule,
) error {
	*s.lastWriteInTx = s.inTx
	s.rules[userID] = rules
	return nil
}

func (s *memRuleStore) ResetForUser(
	_ context.Context, userID uuid.UUID,
) ([]*domain.ReviewRule, error) {
	*s.lastWriteInTx = s.inTx
	rules := domain.DefaultReviewRules(userID, time.Now().UTC())
	s.rules[userID] = rules
	return rules, nil
}

func (s *memRuleStore) WithTx(_ *sql.Tx) store.ReviewRuleStore {
	clone := *s
	clone.inTx = true
	return &clone
}
