package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/mnemo-app/mnemo-api/internal/api"
	"github.com/mnemo-app/mnemo-api/internal/config"
	"github.com/mnemo-app/mnemo-api/internal/domain/srs"
	"github.com/mnemo-app/mnemo-api/internal/platform/memstore"
	"github.com/mnemo-app/mnemo-api/internal/platform/postgres"
	"github.com/mnemo-app/mnemo-api/internal/service"
	"github.com/mnemo-app/mnemo-api/internal/service/auth"
	"github.com/mnemo-app/mnemo-api/internal/service/card_review"
	"github.com/mnemo-app/mnemo-api/internal/timeutil"
)

// application holds the assembled dependency graph. Everything hanging off
// it is constructed once in newApplication and shared for the lifetime of
// the process.
type application struct {
	config *config.Config
	logger *slog.Logger

	db       *sql.DB
	sessions *memstore.SessionStore

	jwtService auth.JWTService

	authHandler     *api.AuthHandler
	cardHandler     *api.CardHandler
	ruleHandler     *api.RuleHandler
	transferHandler *api.TransferHandler
	guestHandler    *api.GuestHandler
}

// newApplication wires configuration into the full service graph: database,
// stores, the scheduling core, services, and HTTP handlers. Migrations are
// applied before any store touches the schema.
func newApplication(cfg *config.Config, appLogger *slog.Logger) (*application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if appLogger == nil {
		appLogger = slog.Default()
	}

	loc, err := timeutil.ParseLocation(cfg.Review.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid review timezone %q: %w", cfg.Review.Timezone, err)
	}

	db, err := setupAppDatabase(cfg, appLogger)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db, appLogger); err != nil {
		closeQuietly(db, appLogger)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Stores share the *sql.DB; transactional services rebind them with
	// WithTx as needed.
	userStore := postgres.NewUserStore(db, appLogger)
	cardStore := postgres.NewCardStore(db, appLogger)
	ruleStore := postgres.NewReviewRuleStore(db, appLogger)

	srsService := srs.NewService(loc)

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		closeQuietly(db, appLogger)
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}
	hasher := auth.NewBcryptHasher(0)

	sessionTTL := time.Duration(cfg.Review.GuestSessionMinutes) * time.Minute
	sessions := memstore.NewSessionStore(sessionTTL, appLogger)
	sessions.Start()

	userService := service.NewUserService(db, userStore, ruleStore, hasher, hasher, appLogger)
	cardService := service.NewCardService(cardStore, srsService, appLogger)
	ruleService := service.NewRuleService(db, ruleStore, appLogger)
	transferService := service.NewTransferService(cardStore, loc, appLogger)
	guestService := service.NewGuestService(sessions, srsService, appLogger)
	reviewService := card_review.NewCardReviewService(db, cardStore, ruleStore, srsService, appLogger)

	app := &application{
		config:          cfg,
		logger:          appLogger,
		db:              db,
		sessions:        sessions,
		jwtService:      jwtService,
		authHandler:     api.NewAuthHandler(userService, jwtService, appLogger),
		cardHandler:     api.NewCardHandler(cardService, reviewService, appLogger),
		ruleHandler:     api.NewRuleHandler(ruleService, appLogger),
		transferHandler: api.NewTransferHandler(transferService, appLogger),
		guestHandler:    api.NewGuestHandler(guestService, appLogger),
	}
	return app, nil
}

// cleanup releases resources the application owns. Safe to call once during
// shutdown.
func (app *application) cleanup() {
	app.sessions.Stop()
	closeQuietly(app.db, app.logger)
}

func closeQuietly(db *sql.DB, logger *slog.Logger) {
	if err := db.Close(); err != nil {
		logger.Error("failed to close database connection", slog.String("error", err.Error()))
	}
}
