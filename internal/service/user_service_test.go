package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemo-app/mnemo-api/internal/domain"
	"github.com/mnemo-app/mnemo-api/internal/service/auth"
	"github.com/mnemo-app/mnemo-api/internal/store"
)

// stubDriver provides just enough of database/sql/driver for the
// transaction runner; the in-memory stores ignore the transaction.
type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return stubConn{}, nil }

type stubConn struct{}

func (stubConn) Prepare(string) (driver.Stmt, error) { return nil, driver.ErrSkip }
func (stubConn) Close() error                        { return nil }
func (stubConn) Begin() (driver.Tx, error)           { return stubTx{}, nil }

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

type stubConnector struct{}

func (stubConnector) Connect(context.Context) (driver.Conn, error) { return stubConn{}, nil }
func (stubConnector) Driver() driver.Driver                        { return stubDriver{} }

func stubDB() *sql.DB {
	return sql.OpenDB(stubConnector{})
}

// memUserStore is an in-memory UserStore.
type memUserStore struct {
	byEmail map[string]*domain.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{byEmail: make(map[string]*domain.User)}
}

func (s *memUserStore) Create(_ context.Context, user *domain.User) error {
	if _, ok := s.byEmail[user.Email]; ok {
		return store.ErrEmailExists
	}
	s.byEmail[user.Email] = user
	return nil
}

func (s *memUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range s.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

func (s *memUserStore) WithTx(_ *sql.Tx) store.UserStore { return s }

func newUserService(userStore *memUserStore, ruleStore *memRuleStore) UserService {
	hasher := auth.NewBcryptHasher(4)
	return NewUserService(stubDB(), userStore, ruleStore, hasher, hasher, nil)
}

func TestUserService_RegisterSeedsDefaultRules(t *testing.T) {
	t.Parallel()

	ruleStore := newMemRuleStore()
	svc := newUserService(newMemUserStore(), ruleStore)

	user, err := svc.Register(context.Background(), "alice@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "password123", user.HashedPassword)

	rules, err := ruleStore.ListByUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Len(t, rules, 20, "registration seeds the default rule table")
}

func TestUserService_RegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	svc := newUserService(newMemUserStore(), newMemRuleStore())

	_, err := svc.Register(context.Background(), "bob@example.com", "password123")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "bob@example.com", "other-password")
	assert.ErrorIs(t, err, store.ErrEmailExists)
}

func TestUserService_RegisterRejectsBadEmail(t *testing.T) {
	t.Parallel()

	svc := newUserService(newMemUserStore(), newMemRuleStore())

	_, err := svc.Register(context.Background(), "not-an-email", "password123")
	assert.ErrorIs(t, err, domain.ErrUserEmailInvalid)
}

func TestUserService_Authenticate(t *testing.T) {
	t.Parallel()

	svc := newUserService(newMemUserStore(), newMemRuleStore())

	registered, err := svc.Register(context.Background(), "carol@example.com", "password123")
	require.NoError(t, err)

	user, err := svc.Authenticate(context.Background(), "carol@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, err = svc.Authenticate(context.Background(), "carol@example.com", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "nobody@example.com", "password123")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}
