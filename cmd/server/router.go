package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	apiMiddleware "github.com/mnemo-app/mnemo-api/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints.
		r.Post("/auth/register", app.authHandler.Register)
		r.Post("/auth/login", app.authHandler.Login)
		r.Post("/auth/demo", app.guestHandler.StartSession)

		// Demo sessions are keyed by an unguessable session ID rather
		// than a JWT, so they stay outside the auth group.
		r.Get("/demo/{sessionID}/cards", app.guestHandler.ListCards)
		r.Post("/demo/{sessionID}/cards/{id}/review", app.guestHandler.SubmitReview)

		// Protected endpoints.
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/cards", app.cardHandler.CreateCard)
			r.Get("/cards", app.cardHandler.ListCards)
			r.Get("/cards/due", app.cardHandler.ListDueCards)
			r.Get("/cards/next", app.cardHandler.GetNextReviewCard)
			r.Get("/cards/export", app.transferHandler.ExportCards)
			r.Post("/cards/import", app.transferHandler.ImportCards)
			r.Get("/cards/{id}", app.cardHandler.GetCard)
			r.Put("/cards/{id}", app.cardHandler.UpdateCard)
			r.Delete("/cards/{id}", app.cardHandler.DeleteCard)
			r.Post("/cards/{id}/review", app.cardHandler.SubmitReview)

			r.Get("/rules", app.ruleHandler.ListRules)
			r.Put("/rules", app.ruleHandler.ReplaceRules)
			r.Post("/rules/reset", app.ruleHandler.ResetRules)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
