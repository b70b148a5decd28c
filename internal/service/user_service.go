package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mnemo-app/mnemo-api/internal/domain"
	"github.com/mnemo-app/mnemo-api/internal/platform/logger"
	"github.com/mnemo-app/mnemo-api/internal/service/auth"
	"github.com/mnemo-app/mnemo-api/internal/store"
)

// UserService handles account registration and credential checks.
type UserService interface {
	// Register creates an account and seeds it with the default review
	// rule table, atomically. Returns store.ErrEmailExists if the email
	// is taken.
	Register(ctx context.Context, email, password string) (*domain.User, error)

	// Authenticate checks the email/password pair and returns the user.
	// Returns auth.ErrInvalidCredentials on any mismatch; it does not
	// reveal whether the email exists.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
}

// userServiceImpl implements the UserService interface.
type userServiceImpl struct {
	db        *sql.DB
	userStore store.UserStore
	ruleStore store.ReviewRuleStore
	hasher    auth.PasswordHasher
	verifier  auth.PasswordVerifier
	logger    *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(
	db *sql.DB,
	userStore store.UserStore,
	ruleStore store.ReviewRuleStore,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	logger *slog.Logger,
) UserService {
	if db == nil {
		panic("db cannot be nil")
	}
	if userStore == nil {
		panic("userStore cannot be nil")
	}
	if ruleStore == nil {
		panic("ruleStore cannot be nil")
	}
	if hasher == nil {
		panic("hasher cannot be nil")
	}
	if verifier == nil {
		panic("verifier cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &userServiceImpl{
		db:        db,
		userStore: userStore,
		ruleStore: ruleStore,
		hasher:    hasher,
		verifier:  verifier,
		logger:    logger.With(slog.String("component", "user_service")),
	}
}

// Register implements UserService.Register.
func (s *userServiceImpl) Register(
	ctx context.Context,
	email, password string,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user, err := domain.NewUser(email, hashed, now)
	if err != nil {
		return nil, err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.userStore.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}
		// Every account starts with the full default pacing table.
		rules := domain.DefaultReviewRules(user.ID, now)
		return s.ruleStore.WithTx(tx).ReplaceForUser(ctx, user.ID, rules)
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return nil, err
		}
		log.Error("failed to register user",
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	log.Info("registered user", slog.String("user_id", user.ID.String()))
	return user, nil
}

// Authenticate implements UserService.Authenticate.
func (s *userServiceImpl) Authenticate(
	ctx context.Context,
	email, password string,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, auth.ErrInvalidCredentials
		}
		log.Error("failed to look up user for authentication",
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		return nil, auth.ErrInvalidCredentials
	}

	return user, nil
}
