package domain

import (
	"time"
)

// Mood is the closed set of moods a daily check-in can report.
type Mood string

const (
	MoodHappy   Mood = "Happy"
	MoodSad     Mood = "Sad"
	MoodAnxious Mood = "Anxious"
	MoodNeutral Mood = "Neutral"
)

// Location is an optional check-in location.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// HealthLog is one daily health check-in. Logs are immutable once created;
// the scorers only ever read them.
type HealthLog struct {
	ID              string    `json:"_id,omitempty"`
	UserID          string    `json:"user_id"`
	Date            string    `json:"date"` // ISO date, "YYYY-MM-DD"
	Mood            Mood      `json:"mood"`
	SleepHours      float64   `json:"sleep_hours"`
	Meals           int       `json:"meals"`
	ExerciseMinutes float64   `json:"exercise_minutes"`
	Symptoms        string    `json:"symptoms"`
	Location        *Location `json:"location,omitempty"`
}

// ParsedDate parses the log date, returning the zero time when malformed.
func (l HealthLog) ParsedDate() time.Time {
	t, err := time.Parse("2006-01-02", l.Date)
	if err != nil {
		t, err = time.Parse(time.RFC3339, l.Date)
		if err != nil {
			return time.Time{}
		}
	}
	return t
}

// Severity ranks how concerning a detected anomaly is.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// HealthAnomaly is one flagged deviation in a health log. A single log can
// produce several anomalies (for example low sleep and a reported symptom).
type HealthAnomaly struct {
	Date     string   `json:"date"`
	Anomaly  string   `json:"anomaly"`
	Severity Severity `json:"severity"`
}

// HealthTrendPoint is the composite health score for one time bucket.
type HealthTrendPoint struct {
	Date  string `json:"date"`
	Score int    `json:"score"`
}

// UserInsight is a generated narrative combining health and financial data.
// It is produced on demand; persistence is the caller's concern.
type UserInsight struct {
	ID               string    `json:"_id,omitempty"`
	UserID           string    `json:"user_id"`
	WeekOf           time.Time `json:"week_of"`
	HealthSummary    string    `json:"health_summary"`
	FinancialSummary string    `json:"financial_summary"`
	Recommendations  []string  `json:"recommendations"`
}

// TrendDirection describes whether a symptom's report volume is moving.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// SymptomCount is one symptom's report volume within a region.
type SymptomCount struct {
	Name  string         `json:"name"`
	Count int            `json:"count"`
	Trend TrendDirection `json:"trend"`
}

// AlertLevel grades a region's overall symptom picture.
type AlertLevel string

const (
	AlertLow      AlertLevel = "low"
	AlertModerate AlertLevel = "moderate"
	AlertHigh     AlertLevel = "high"
)

// RegionalTrend is the aggregated symptom report for one region over the
// trailing window.
type RegionalTrend struct {
	Region     string         `json:"region"`
	Symptoms   []SymptomCount `json:"symptoms"`
	AlertLevel AlertLevel     `json:"alert_level"`
	Prediction string         `json:"prediction"`
}

// MythFact is one entry of the health myth-busting list.
type MythFact struct {
	Myth string `json:"myth"`
	Fact string `json:"fact"`
}
