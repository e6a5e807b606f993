package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/lifelens/lifelens/internal/api/middleware"
	"github.com/lifelens/lifelens/internal/domain"
	"github.com/lifelens/lifelens/internal/health"
	"github.com/lifelens/lifelens/internal/warehouse"
)

// HealthLogStore is the persistence surface the health handler needs.
type HealthLogStore interface {
	SaveHealthLog(ctx context.Context, l *domain.HealthLog) error
	HealthLogs(ctx context.Context, userID string) ([]domain.HealthLog, error)
	LatestHealthLog(ctx context.Context, userID string) (*domain.HealthLog, error)
}

// EventSink receives anonymized health events for regional aggregation.
type EventSink interface {
	InsertHealthEvent(ctx context.Context, row *warehouse.HealthEventRow) error
}

// TrendSource serves the regional symptom aggregation.
type TrendSource interface {
	RegionalTrends(ctx context.Context, windowDays int) ([]domain.RegionalTrend, error)
}

// HealthHandler serves the health log and health analytics endpoints.
type HealthHandler struct {
	store  HealthLogStore
	sink   EventSink
	trends TrendSource
	log    zerolog.Logger
}

// NewHealthHandler creates a new health handler. sink and trends may be nil
// when the warehouse is not configured; regional endpoints then return 503.
func NewHealthHandler(store HealthLogStore, sink EventSink, trends TrendSource, log zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		store:  store,
		sink:   sink,
		trends: trends,
		log:    log,
	}
}

// CreateLog handles POST /api/health/logs
func (h *HealthHandler) CreateLog(w http.ResponseWriter, r *http.Request) {
	var log domain.HealthLog
	if err := json.NewDecoder(r.Body).Decode(&log); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if log.UserID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if log.Date == "" {
		log.Date = time.Now().Format("2006-01-02")
	}

	ctx := r.Context()
	if err := h.store.SaveHealthLog(ctx, &log); err != nil {
		h.log.Error().Err(err).Str("user_id", log.UserID).Msg("Failed to save health log")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to save health log")
		return
	}

	h.streamEvent(ctx, log)

	middleware.WriteJSON(w, http.StatusCreated, log)
}

// streamEvent forwards an anonymized copy of the log to the warehouse.
// Failures are logged, never surfaced: the check-in already succeeded.
func (h *HealthHandler) streamEvent(ctx context.Context, log domain.HealthLog) {
	if h.sink == nil {
		return
	}

	region := "Unknown"
	if log.Location != nil {
		region = warehouse.RegionFromLocation(log.Location.Lat, log.Location.Lon)
	}

	logDate := log.ParsedDate()
	if logDate.IsZero() {
		logDate = time.Now()
	}

	row := &warehouse.HealthEventRow{
		UserID:     log.UserID,
		EventDate:  civil.DateOf(logDate),
		Region:     region,
		Symptoms:   log.Symptoms,
		Mood:       string(log.Mood),
		SleepHours: log.SleepHours,
	}
	if err := h.sink.InsertHealthEvent(ctx, row); err != nil {
		h.log.Warn().Err(err).Str("user_id", log.UserID).Msg("Failed to stream health event")
	}
}

// ListLogs handles GET /api/health/logs?userId=
func (h *HealthHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireQuery(w, r, "userId")
	if !ok {
		return
	}

	logs, err := h.store.HealthLogs(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to list health logs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list health logs")
		return
	}

	if logs == nil {
		logs = []domain.HealthLog{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"count": len(logs),
	})
}

// LatestLog handles GET /api/health/logs/latest?userId=
func (h *HealthHandler) LatestLog(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireQuery(w, r, "userId")
	if !ok {
		return
	}

	log, err := h.store.LatestHealthLog(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to load latest health log")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load latest health log")
		return
	}
	if log == nil {
		middleware.WriteError(w, http.StatusNotFound, "No health logs found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, log)
}

// Score handles GET /api/health/score?userId=
func (h *HealthHandler) Score(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireQuery(w, r, "userId")
	if !ok {
		return
	}

	logs, err := h.store.HealthLogs(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to list health logs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to compute health score")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":         userID,
		"score":           health.Score(logs),
		"mood_score":      health.MoodScore(logs),
		"avg_sleep":       health.AverageSleep(logs),
		"avg_meals":       health.AverageMeals(logs),
		"avg_exercise":    health.AverageExercise(logs),
		"logs_considered": len(logs),
	})
}

// Anomalies handles GET /api/health/anomalies?userId=
func (h *HealthHandler) Anomalies(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireQuery(w, r, "userId")
	if !ok {
		return
	}

	logs, err := h.store.HealthLogs(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to list health logs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to detect anomalies")
		return
	}

	anomalies := health.DetectAnomalies(logs)
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":   userID,
		"anomalies": anomalies,
		"count":     len(anomalies),
	})
}

// Trends handles GET /api/health/trends?userId=&period=
func (h *HealthHandler) Trends(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireQuery(w, r, "userId")
	if !ok {
		return
	}

	granularity := domain.Granularity(r.URL.Query().Get("period"))
	if granularity == "" {
		granularity = domain.GranularityWeekly
	}
	if !granularity.Valid() {
		middleware.WriteError(w, http.StatusBadRequest, "period must be daily, weekly or monthly")
		return
	}

	logs, err := h.store.HealthLogs(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to list health logs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to compute trends")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"period":  granularity,
		"trends":  health.Trends(logs, granularity),
	})
}

// RegionalTrends handles GET /api/health/trends/regional
func (h *HealthHandler) RegionalTrends(w http.ResponseWriter, r *http.Request) {
	if h.trends == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Regional trends are not configured")
		return
	}

	windowDays := queryInt(r, "days", 0)
	trends, err := h.trends.RegionalTrends(r.Context(), windowDays)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to aggregate regional trends")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to aggregate regional trends")
		return
	}

	if trends == nil {
		trends = []domain.RegionalTrend{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"trends": trends,
		"count":  len(trends),
	})
}
