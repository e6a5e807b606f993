package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/lifelens/lifelens/internal/api/middleware"
	"github.com/lifelens/lifelens/internal/domain"
	"github.com/lifelens/lifelens/internal/insight"
	"github.com/lifelens/lifelens/internal/jobs"
)

// InsightStore is the persistence surface the insights handler reads from.
// Writing insights happens in the worker, not here.
type InsightStore interface {
	LatestInsight(ctx context.Context, userID string) (*domain.UserInsight, error)
	Insights(ctx context.Context, userID string, limit int) ([]domain.UserInsight, error)
}

// InsightsHandler serves insight generation and retrieval.
type InsightsHandler struct {
	store     InsightStore
	publisher jobs.Publisher
	log       zerolog.Logger
}

// NewInsightsHandler creates a new insights handler.
func NewInsightsHandler(store InsightStore, publisher jobs.Publisher, log zerolog.Logger) *InsightsHandler {
	return &InsightsHandler{
		store:     store,
		publisher: publisher,
		log:       log,
	}
}

// Generate handles POST /api/insights. Generation is asynchronous: the
// request enqueues a job and returns its ID for polling.
func (h *InsightsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID    string `json:"user_id"`
		AccountID string `json:"account_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	job := &jobs.Job{
		Type:      jobs.TypeGenerateInsight,
		UserID:    req.UserID,
		AccountID: req.AccountID,
	}
	if err := h.publisher.Publish(r.Context(), job); err != nil {
		h.log.Error().Err(err).Str("user_id", req.UserID).Msg("Failed to enqueue insight job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue insight job")
		return
	}

	h.log.Info().Str("job_id", job.ID).Str("user_id", req.UserID).Msg("Insight job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":  job.ID,
		"user_id": req.UserID,
		"status":  string(job.Status),
	})
}

// Latest handles GET /api/insights/latest?userId=
func (h *InsightsHandler) Latest(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireQuery(w, r, "userId")
	if !ok {
		return
	}

	ins, err := h.store.LatestInsight(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to load latest insight")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load latest insight")
		return
	}
	if ins == nil {
		middleware.WriteError(w, http.StatusNotFound, "No insights found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, ins)
}

// List handles GET /api/insights?userId=&limit=
func (h *InsightsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireQuery(w, r, "userId")
	if !ok {
		return
	}
	limit := queryInt(r, "limit", 0)

	insights, err := h.store.Insights(r.Context(), userID, limit)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to list insights")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list insights")
		return
	}

	if insights == nil {
		insights = []domain.UserInsight{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"insights": insights,
		"count":    len(insights),
	})
}

// Myths handles GET /api/insights/myths
func (h *InsightsHandler) Myths(w http.ResponseWriter, r *http.Request) {
	myths := insight.MythsAndFacts()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"myths": myths,
		"count": len(myths),
	})
}
