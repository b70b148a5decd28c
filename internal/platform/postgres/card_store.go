package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/mnemo-app/mnemo-api/internal/domain"
	"github.com/mnemo-app/mnemo-api/internal/store"
)

// psql is the statement builder configured for PostgreSQL placeholders,
// shared by all stores in this package.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// cardColumns are the columns selected for a full card row, in scan order.
var cardColumns = []string{
	"id",
	"user_id",
	"question",
	"answer",
	"repetition_count",
	"first_review_at",
	"next_due_at",
	"created_at",
	"updated_at",
}

// CardStore implements the store.CardStore interface using a PostgreSQL
// database as the storage backend.
type CardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewCardStore creates a new PostgreSQL implementation of the CardStore
// interface. It accepts a database connection or transaction that should be
// initialized and managed by the caller. If logger is nil, a default
// logger will be used.
func NewCardStore(db store.DBTX, logger *slog.Logger) *CardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure CardStore implements store.CardStore interface
var _ store.CardStore = (*CardStore)(nil)

// WithTx implements store.CardStore.WithTx.
func (s *CardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &CardStore{db: tx, logger: s.logger}
}

// Create implements store.CardStore.Create.
func (s *CardStore) Create(ctx context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return store.NewStoreError("card", "create", "validation failed", err)
	}

	query, args, err := psql.Insert("cards").
		Columns(cardColumns...).
		Values(
			card.ID,
			card.UserID,
			card.Question,
			card.Answer,
			card.RepetitionCount,
			nullableTime(card.FirstReviewAt),
			card.NextDueAt,
			card.CreatedAt,
			card.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return store.NewStoreError("card", "create", "failed to build query", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		s.logger.Error("failed to insert card",
			slog.String("card_id", card.ID.String()),
			slog.String("error", err.Error()))
		return mapError(err)
	}

	return nil
}

// GetByID implements store.CardStore.GetByID.
// Returns store.ErrCardNotFound if the card does not exist.
func (s *CardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	return s.getOne(ctx, id, false)
}

// GetByIDForUpdate implements store.CardStore.GetByIDForUpdate.
// It takes a row lock so concurrent review submissions for the same card
// serialize; it only makes sense inside a transaction.
func (s *CardStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	return s.getOne(ctx, id, true)
}

func (s *CardStore) getOne(ctx context.Context, id uuid.UUID, forUpdate bool) (*domain.Card, error) {
	builder := psql.Select(cardColumns...).
		From("cards").
		Where(sq.Eq{"id": id})
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, store.NewStoreError("card", "get", "failed to build query", err)
	}

	card, err := scanCard(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrCardNotFound
		}
		return nil, mapError(err)
	}
	return card, nil
}

// List implements store.CardStore.List.
func (s *CardStore) List(
	ctx context.Context,
	userID uuid.UUID,
	search string,
	offset, limit int,
) (*store.CardPage, error) {
	conditions := sq.And{sq.Eq{"user_id": userID}}
	if search != "" {
		pattern := "%" + search + "%"
		conditions = append(conditions, sq.Or{
			sq.ILike{"question": pattern},
			sq.ILike{"answer": pattern},
		})
	}

	listBuilder := psql.Select(cardColumns...).
		From("cards").
		Where(conditions).
		OrderBy("created_at DESC").
		Offset(uint64(offset)).
		Limit(uint64(limit))

	return s.queryPage(ctx, listBuilder, conditions)
}

// ListDue implements store.CardStore.ListDue.
func (s *CardStore) ListDue(
	ctx context.Context,
	userID uuid.UUID,
	asOf time.Time,
	offset, limit int,
) (*store.CardPage, error) {
	conditions := sq.And{
		sq.Eq{"user_id": userID},
		sq.LtOrEq{"next_due_at": asOf},
	}

	listBuilder := psql.Select(cardColumns...).
		From("cards").
		Where(conditions).
		OrderBy("next_due_at ASC").
		Offset(uint64(offset)).
		Limit(uint64(limit))

	return s.queryPage(ctx, listBuilder, conditions)
}

// queryPage runs a page query plus a count query over the same conditions.
func (s *CardStore) queryPage(
	ctx context.Context,
	listBuilder sq.SelectBuilder,
	conditions sq.Sqlizer,
) (*store.CardPage, error) {
	countQuery, countArgs, err := psql.Select("COUNT(*)").
		From("cards").
		Where(conditions).
		ToSql()
	if err != nil {
		return nil, store.NewStoreError("card", "list", "failed to build count query", err)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, mapError(err)
	}

	query, args, err := listBuilder.ToSql()
	if err != nil {
		return nil, store.NewStoreError("card", "list", "failed to build query", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	cards := make([]*domain.Card, 0)
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, mapError(err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return &store.CardPage{Cards: cards, Total: total}, nil
}

// Update implements store.CardStore.Update. It applies only the fields the
// command carries and returns the updated card.
func (s *CardStore) Update(
	ctx context.Context,
	id uuid.UUID,
	update store.CardUpdate,
) (*domain.Card, error) {
	builder := psql.Update("cards").
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(cardColumns))

	if update.Question != nil {
		builder = builder.Set("question", *update.Question)
	}
	if update.Answer != nil {
		builder = builder.Set("answer", *update.Answer)
	}
	if update.NextDueAt != nil {
		builder = builder.Set("next_due_at", *update.NextDueAt)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, store.NewStoreError("card", "update", "failed to build query", err)
	}

	card, err := scanCard(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrCardNotFound
		}
		return nil, mapError(err)
	}
	return card, nil
}

// UpdateReviewState implements store.CardStore.UpdateReviewState. Only the
// scheduling fields produced by the core are written; content is untouched.
func (s *CardStore) UpdateReviewState(ctx context.Context, card *domain.Card) error {
	query, args, err := psql.Update("cards").
		Set("repetition_count", card.RepetitionCount).
		Set("first_review_at", nullableTime(card.FirstReviewAt)).
		Set("next_due_at", card.NextDueAt).
		Set("updated_at", card.UpdatedAt).
		Where(sq.Eq{"id": card.ID}).
		ToSql()
	if err != nil {
		return store.NewStoreError("card", "update_review_state", "failed to build query", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if affected == 0 {
		return store.ErrCardNotFound
	}

	return nil
}

// Delete implements store.CardStore.Delete.
func (s *CardStore) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := psql.Delete("cards").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return store.NewStoreError("card", "delete", "failed to build query", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if affected == 0 {
		return store.ErrCardNotFound
	}

	s.logger.Debug("deleted card", slog.String("card_id", id.String()))
	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanCard scans a full card row in cardColumns order.
func scanCard(row rowScanner) (*domain.Card, error) {
	var (
		card        domain.Card
		firstReview sql.NullTime
	)

	err := row.Scan(
		&card.ID,
		&card.UserID,
		&card.Question,
		&card.Answer,
		&card.RepetitionCount,
		&firstReview,
		&card.NextDueAt,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if firstReview.Valid {
		t := firstReview.Time
		card.FirstReviewAt = &t
	}

	return &card, nil
}

// nullableTime converts an optional timestamp to its SQL representation.
func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// joinColumns renders a column list for a RETURNING clause.
func joinColumns(columns []string) string {
	out := ""
	for i, c := range columns {
		if i > 0 {
			out += ", "
		}
		out += c
	}
	return out
}
