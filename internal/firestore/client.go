// Package firestore persists the user-generated side of the service: daily
// health check-ins and generated insights. Banking data stays in the
// sandbox; only what users create here is stored here.
package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/lifelens/lifelens/internal/domain"
)

// Collection names.
const (
	healthLogsCollection = "health-logs"
	insightsCollection   = "insights"
)

// Client wraps Firestore with the service's repository operations.
type Client struct {
	Firestore *firestore.Client
	Auth      *auth.Client
	projectID string
}

// NewClient initializes the Firebase app and opens Firestore and Auth
// clients. credsPath optionally points at a service-account file; empty
// means Application Default Credentials.
func NewClient(ctx context.Context, projectID, credsPath string) (*Client, error) {
	conf := &firebase.Config{ProjectID: projectID}

	var opts []option.ClientOption
	if credsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credsPath))
	}

	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize Firebase app: %w", err)
	}

	firestoreClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("create Firestore client: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		firestoreClient.Close()
		return nil, fmt.Errorf("create Auth client: %w", err)
	}

	return &Client{
		Firestore: firestoreClient,
		Auth:      authClient,
		projectID: projectID,
	}, nil
}

// Close closes the Firestore client.
func (c *Client) Close() error {
	return c.Firestore.Close()
}

// VerifyIDToken checks a Firebase ID token and returns the subject user ID.
func (c *Client) VerifyIDToken(ctx context.Context, idToken string) (string, error) {
	token, err := c.Auth.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", fmt.Errorf("verify ID token: %w", err)
	}
	return token.UID, nil
}

// healthLogRow is the Firestore document shape for a health check-in.
type healthLogRow struct {
	ID              string    `firestore:"id"`
	UserID          string    `firestore:"userId"`
	Date            string    `firestore:"date"`
	Mood            string    `firestore:"mood"`
	SleepHours      float64   `firestore:"sleepHours"`
	Meals           int       `firestore:"meals"`
	ExerciseMinutes float64   `firestore:"exerciseMinutes"`
	Symptoms        string    `firestore:"symptoms"`
	Lat             *float64  `firestore:"lat,omitempty"`
	Lon             *float64  `firestore:"lon,omitempty"`
	CreatedAt       time.Time `firestore:"createdAt"`
}

func healthLogToRow(l domain.HealthLog, now time.Time) healthLogRow {
	row := healthLogRow{
		ID:              l.ID,
		UserID:          l.UserID,
		Date:            l.Date,
		Mood:            string(l.Mood),
		SleepHours:      l.SleepHours,
		Meals:           l.Meals,
		ExerciseMinutes: l.ExerciseMinutes,
		Symptoms:        l.Symptoms,
		CreatedAt:       now,
	}
	if l.Location != nil {
		lat, lon := l.Location.Lat, l.Location.Lon
		row.Lat, row.Lon = &lat, &lon
	}
	return row
}

func (r healthLogRow) toDomain() domain.HealthLog {
	l := domain.HealthLog{
		ID:              r.ID,
		UserID:          r.UserID,
		Date:            r.Date,
		Mood:            domain.Mood(r.Mood),
		SleepHours:      r.SleepHours,
		Meals:           r.Meals,
		ExerciseMinutes: r.ExerciseMinutes,
		Symptoms:        r.Symptoms,
	}
	if r.Lat != nil && r.Lon != nil {
		l.Location = &domain.Location{Lat: *r.Lat, Lon: *r.Lon}
	}
	return l
}

// SaveHealthLog stores a check-in, assigning an ID when the log has none.
// The stored ID is written back to the argument.
func (c *Client) SaveHealthLog(ctx context.Context, l *domain.HealthLog) error {
	if l.UserID == "" {
		return fmt.Errorf("save health log: user ID is required")
	}
	if _, err := time.Parse("2006-01-02", l.Date); err != nil {
		return fmt.Errorf("save health log: invalid date %q (expected YYYY-MM-DD)", l.Date)
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}

	row := healthLogToRow(*l, time.Now())
	if _, err := c.Firestore.Collection(healthLogsCollection).Doc(l.ID).Set(ctx, row); err != nil {
		return fmt.Errorf("save health log %s: %w", l.ID, err)
	}
	return nil
}

// HealthLogs retrieves a user's check-ins, newest first.
func (c *Client) HealthLogs(ctx context.Context, userID string) ([]domain.HealthLog, error) {
	iter := c.Firestore.Collection(healthLogsCollection).
		Where("userId", "==", userID).
		OrderBy("date", firestore.Desc).
		Documents(ctx)

	var logs []domain.HealthLog
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate health logs for user %s: %w", userID, err)
		}

		var row healthLogRow
		if err := doc.DataTo(&row); err != nil {
			return nil, fmt.Errorf("decode health log: %w", err)
		}
		logs = append(logs, row.toDomain())
	}
	return logs, nil
}

// LatestHealthLog returns the most recent check-in, or nil when the user has
// none.
func (c *Client) LatestHealthLog(ctx context.Context, userID string) (*domain.HealthLog, error) {
	iter := c.Firestore.Collection(healthLogsCollection).
		Where("userId", "==", userID).
		OrderBy("date", firestore.Desc).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest health log for user %s: %w", userID, err)
	}

	var row healthLogRow
	if err := doc.DataTo(&row); err != nil {
		return nil, fmt.Errorf("decode health log: %w", err)
	}
	l := row.toDomain()
	return &l, nil
}

// insightRow is the Firestore document shape for a generated insight.
type insightRow struct {
	ID               string    `firestore:"id"`
	UserID           string    `firestore:"userId"`
	WeekOf           time.Time `firestore:"weekOf"`
	HealthSummary    string    `firestore:"healthSummary"`
	FinancialSummary string    `firestore:"financialSummary"`
	Recommendations  []string  `firestore:"recommendations"`
	CreatedAt        time.Time `firestore:"createdAt"`
}

// SaveInsight stores a generated insight, assigning an ID when absent.
func (c *Client) SaveInsight(ctx context.Context, ins *domain.UserInsight) error {
	if ins.UserID == "" {
		return fmt.Errorf("save insight: user ID is required")
	}
	if ins.ID == "" {
		ins.ID = uuid.NewString()
	}

	row := insightRow{
		ID:               ins.ID,
		UserID:           ins.UserID,
		WeekOf:           ins.WeekOf,
		HealthSummary:    ins.HealthSummary,
		FinancialSummary: ins.FinancialSummary,
		Recommendations:  ins.Recommendations,
		CreatedAt:        time.Now(),
	}
	if row.Recommendations == nil {
		row.Recommendations = []string{}
	}
	if _, err := c.Firestore.Collection(insightsCollection).Doc(ins.ID).Set(ctx, row); err != nil {
		return fmt.Errorf("save insight %s: %w", ins.ID, err)
	}
	return nil
}

// LatestInsight returns the most recently generated insight for a user, or
// nil when none exists.
func (c *Client) LatestInsight(ctx context.Context, userID string) (*domain.UserInsight, error) {
	iter := c.Firestore.Collection(insightsCollection).
		Where("userId", "==", userID).
		OrderBy("weekOf", firestore.Desc).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest insight for user %s: %w", userID, err)
	}

	var row insightRow
	if err := doc.DataTo(&row); err != nil {
		return nil, fmt.Errorf("decode insight: %w", err)
	}
	return &domain.UserInsight{
		ID:               row.ID,
		UserID:           row.UserID,
		WeekOf:           row.WeekOf,
		HealthSummary:    row.HealthSummary,
		FinancialSummary: row.FinancialSummary,
		Recommendations:  row.Recommendations,
	}, nil
}

// Insights lists a user's generated insights, newest first, capped at limit
// (50 when limit is not positive).
func (c *Client) Insights(ctx context.Context, userID string, limit int) ([]domain.UserInsight, error) {
	if limit <= 0 {
		limit = 50
	}
	iter := c.Firestore.Collection(insightsCollection).
		Where("userId", "==", userID).
		OrderBy("weekOf", firestore.Desc).
		Limit(limit).
		Documents(ctx)

	var insights []domain.UserInsight
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate insights for user %s: %w", userID, err)
		}

		var row insightRow
		if err := doc.DataTo(&row); err != nil {
			return nil, fmt.Errorf("decode insight: %w", err)
		}
		insights = append(insights, domain.UserInsight{
			ID:               row.ID,
			UserID:           row.UserID,
			WeekOf:           row.WeekOf,
			HealthSummary:    row.HealthSummary,
			FinancialSummary: row.FinancialSummary,
			Recommendations:  row.Recommendations,
		})
	}
	return insights, nil
}
