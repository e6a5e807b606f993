package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelens/lifelens/internal/domain"
	"github.com/lifelens/lifelens/internal/warehouse"
)

type fakeHealthStore struct {
	logs  map[string][]domain.HealthLog
	saved []domain.HealthLog
	err   error
}

func (f *fakeHealthStore) SaveHealthLog(ctx context.Context, l *domain.HealthLog) error {
	if f.err != nil {
		return f.err
	}
	if l.ID == "" {
		l.ID = "hl-1"
	}
	f.saved = append(f.saved, *l)
	return nil
}

func (f *fakeHealthStore) HealthLogs(ctx context.Context, userID string) ([]domain.HealthLog, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.logs[userID], nil
}

func (f *fakeHealthStore) LatestHealthLog(ctx context.Context, userID string) (*domain.HealthLog, error) {
	if f.err != nil {
		return nil, f.err
	}
	logs := f.logs[userID]
	if len(logs) == 0 {
		return nil, nil
	}
	return &logs[0], nil
}

type fakeSink struct {
	rows []*warehouse.HealthEventRow
	err  error
}

func (f *fakeSink) InsertHealthEvent(ctx context.Context, row *warehouse.HealthEventRow) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, row)
	return nil
}

type fakeTrends struct {
	trends []domain.RegionalTrend
	err    error
}

func (f *fakeTrends) RegionalTrends(ctx context.Context, windowDays int) ([]domain.RegionalTrend, error) {
	return f.trends, f.err
}

func TestHealthCreateLog(t *testing.T) {
	store := &fakeHealthStore{}
	sink := &fakeSink{}
	h := NewHealthHandler(store, sink, nil, zerolog.Nop())

	body := `{"user_id":"u1","date":"2025-06-10","mood":"Happy","sleep_hours":8,"meals":3,"exercise_minutes":30,"symptoms":"cough","location":{"lat":40.7,"lon":-74.0}}`
	req := httptest.NewRequest(http.MethodPost, "/api/health/logs", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.CreateLog(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, store.saved, 1)
	assert.Equal(t, "u1", store.saved[0].UserID)

	// The check-in also streams an anonymized event with a resolved region.
	require.Len(t, sink.rows, 1)
	assert.Equal(t, "Northeast", sink.rows[0].Region)
	assert.Equal(t, "cough", sink.rows[0].Symptoms)
}

func TestHealthCreateLogValidation(t *testing.T) {
	h := NewHealthHandler(&fakeHealthStore{}, nil, nil, zerolog.Nop())

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing user", `{"date":"2025-06-10"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/health/logs", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.CreateLog(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHealthCreateLogSinkFailureIsSilent(t *testing.T) {
	store := &fakeHealthStore{}
	sink := &fakeSink{err: assert.AnError}
	h := NewHealthHandler(store, sink, nil, zerolog.Nop())

	body := `{"user_id":"u1","date":"2025-06-10","mood":"Neutral"}`
	req := httptest.NewRequest(http.MethodPost, "/api/health/logs", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.CreateLog(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, store.saved, 1)
}

func TestHealthScore(t *testing.T) {
	store := &fakeHealthStore{logs: map[string][]domain.HealthLog{
		"u1": {
			{UserID: "u1", Date: "2025-06-10", Mood: domain.MoodHappy, SleepHours: 8, Meals: 3, ExerciseMinutes: 30},
		},
	}}
	h := NewHealthHandler(store, nil, nil, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/health/score?userId=u1", nil)
	rec := httptest.NewRecorder()
	h.Score(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Score          int     `json:"score"`
		MoodScore      float64 `json:"mood_score"`
		LogsConsidered int     `json:"logs_considered"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 100, resp.Score)
	assert.Equal(t, 4.0, resp.MoodScore)
	assert.Equal(t, 1, resp.LogsConsidered)
}

func TestHealthLatestLogNotFound(t *testing.T) {
	h := NewHealthHandler(&fakeHealthStore{}, nil, nil, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/health/logs/latest?userId=u1", nil)
	rec := httptest.NewRecorder()
	h.LatestLog(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthRegionalTrends(t *testing.T) {
	trends := &fakeTrends{trends: []domain.RegionalTrend{
		{
			Region:     "West",
			Symptoms:   []domain.SymptomCount{{Name: "cough", Count: 30, Trend: domain.TrendIncreasing}},
			AlertLevel: domain.AlertModerate,
			Prediction: "Moderate cough activity in West; levels may rise if current trends hold.",
		},
	}}
	h := NewHealthHandler(&fakeHealthStore{}, nil, trends, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/health/trends/regional", nil)
	rec := httptest.NewRecorder()
	h.RegionalTrends(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Trends []domain.RegionalTrend `json:"trends"`
		Count  int                    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "West", resp.Trends[0].Region)
	assert.Equal(t, domain.AlertModerate, resp.Trends[0].AlertLevel)
}

func TestHealthRegionalTrendsUnconfigured(t *testing.T) {
	h := NewHealthHandler(&fakeHealthStore{}, nil, nil, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/health/trends/regional", nil)
	rec := httptest.NewRecorder()
	h.RegionalTrends(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
