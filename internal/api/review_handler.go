// Package api provides HTTP handlers for the API.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/retentlabs/retent/internal/api/shared"
	"github.com/retentlabs/retent/internal/domain"
	"github.com/retentlabs/retent/internal/platform/logger"
	"github.com/retentlabs/retent/internal/service/review"
)

// ReviewHandler handles review-related HTTP requests.
type ReviewHandler struct {
	reviewService review.ReviewService
	logger        *slog.Logger
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviewService review.ReviewService, log *slog.Logger) *ReviewHandler {
	if reviewService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("reviewService cannot be nil for ReviewHandler")
	}
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ReviewHandler")
	}
	return &ReviewHandler{
		reviewService: reviewService,
		logger:        log.With(slog.String("component", "review_handler")),
	}
}

// SubmitReview handles POST /reviews requests. It applies a rating to a
// card and returns the card's new scheduling state.
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req SubmitReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Debug("failed to decode review request", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		log.Debug("review request failed validation", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	state, err := h.reviewService.SubmitReview(
		r.Context(),
		req.LearnerID,
		req.CardID,
		domain.Rating(req.Rating),
		time.Duration(req.ResponseTimeMs)*time.Millisecond,
	)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("review submitted",
		slog.String("learner_id", req.LearnerID.String()),
		slog.String("card_id", req.CardID.String()),
		slog.Int("rating", req.Rating),
		slog.String("new_state", string(state.State)))

	shared.RespondWithJSON(w, r, http.StatusOK, memoryStateToResponse(state))
}

// NextDueCard handles GET /learners/{learnerID}/next requests. It
// returns the learner's most overdue card, or 204 when nothing is due.
func (h *ReviewHandler) NextDueCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, ok := parseUUIDParam(w, r, "learnerID")
	if !ok {
		return
	}

	state, err := h.reviewService.NextDueCard(r.Context(), learnerID)
	if errors.Is(err, review.ErrNoCardsDue) {
		log.Debug("no cards due", slog.String("learner_id", learnerID.String()))
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, memoryStateToResponse(state))
}

// PreviewSchedule handles GET /learners/{learnerID}/cards/{cardID}/schedule
// requests. It shows the would-be outcome of every rating without
// committing anything.
func (h *ReviewHandler) PreviewSchedule(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := parseUUIDParam(w, r, "learnerID")
	if !ok {
		return
	}
	cardID, ok := parseUUIDParam(w, r, "cardID")
	if !ok {
		return
	}

	outcomes, err := h.reviewService.PreviewSchedule(r.Context(), learnerID, cardID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	resp := SchedulePreviewResponse{
		CardID:   cardID,
		Outcomes: make(map[string]MemoryStateResponse, len(outcomes)),
	}
	for rating, state := range outcomes {
		resp.Outcomes[rating.String()] = memoryStateToResponse(state)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// parseUUIDParam extracts and parses a UUID URL parameter, responding
// with 400 on failure.
func parseUUIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
