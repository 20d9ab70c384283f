package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/retentlabs/retent/internal/api"
	apimiddleware "github.com/retentlabs/retent/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.NewLoggingMiddleware(app.logger))

	reviewHandler := api.NewReviewHandler(app.reviewService, app.logger)
	optimizationHandler := api.NewOptimizationHandler(
		app.orchestrator,
		app.optimizationRuns,
		app.taskQueue,
		app.logger,
	)

	r.Route("/api", func(r chi.Router) {
		// Review endpoints
		r.Post("/reviews", reviewHandler.SubmitReview)

		// Learner endpoints
		r.Route("/learners/{learnerID}", func(r chi.Router) {
			r.Get("/next", reviewHandler.NextDueCard)
			r.Get("/cards/{cardID}/schedule", reviewHandler.PreviewSchedule)
			r.Post("/optimize", optimizationHandler.Optimize)
			r.Get("/metrics", optimizationHandler.Metrics)
			r.Get("/optimizations", optimizationHandler.History)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
