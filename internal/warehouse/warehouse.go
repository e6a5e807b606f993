// Package warehouse streams anonymized health events into BigQuery and
// aggregates them into regional symptom trends. Individual check-ins stay in
// Firestore; the warehouse only carries the fields population queries need.
package warehouse

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"google.golang.org/api/iterator"
)

const healthEventsTable = "health_events"

// DefaultWindowDays is the trailing window for trend aggregation.
const DefaultWindowDays = 30

// HealthEventRow is the warehouse schema for one check-in event.
type HealthEventRow struct {
	UserID     string     `bigquery:"user_id"`
	EventDate  civil.Date `bigquery:"event_date"`
	Region     string     `bigquery:"region"`
	Symptoms   string     `bigquery:"symptoms"`
	Mood       string     `bigquery:"mood"`
	SleepHours float64    `bigquery:"sleep_hours"`
	InsertedAt time.Time  `bigquery:"inserted_ts"`
}

// symptomWindowRow is the query result shape for the trend aggregation.
type symptomWindowRow struct {
	Region      string `bigquery:"region"`
	Symptom     string `bigquery:"symptom"`
	RecentCount int64  `bigquery:"recent_count"`
	PriorCount  int64  `bigquery:"prior_count"`
}

// Client runs warehouse operations against one dataset. It holds a shared
// BigQuery client; callers Close it when done.
type Client struct {
	bq        *bigquery.Client
	projectID string
	datasetID string
}

// NewClient opens a BigQuery client for the project and dataset.
func NewClient(ctx context.Context, projectID, datasetID string) (*Client, error) {
	bq, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("warehouse: creating client: %w", err)
	}
	return &Client{bq: bq, projectID: projectID, datasetID: datasetID}, nil
}

// Close closes the underlying BigQuery client.
func (c *Client) Close() error {
	return c.bq.Close()
}

// InsertHealthEvent streams one event row into the health_events table.
func (c *Client) InsertHealthEvent(ctx context.Context, row *HealthEventRow) error {
	if row.InsertedAt.IsZero() {
		row.InsertedAt = time.Now()
	}
	inserter := c.bq.Dataset(c.datasetID).Table(healthEventsTable).Inserter()
	if err := inserter.Put(ctx, row); err != nil {
		return fmt.Errorf("warehouse: inserting health event: %w", err)
	}
	return nil
}

// SymptomWindows returns per-region symptom counts split into the recent and
// prior halves of the trailing window, ordered by recent volume. windowDays
// defaults to DefaultWindowDays when not positive.
func (c *Client) SymptomWindows(ctx context.Context, windowDays int) ([]symptomWindowRow, error) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	half := windowDays / 2

	query := fmt.Sprintf(`
		SELECT
			region,
			symptoms AS symptom,
			COUNTIF(event_date >= @half_ago) AS recent_count,
			COUNTIF(event_date < @half_ago) AS prior_count
		FROM `+"`%s.%s.%s`"+`
		WHERE symptoms != ''
		  AND event_date >= @window_start
		GROUP BY region, symptom
		ORDER BY recent_count DESC
	`, c.projectID, c.datasetID, healthEventsTable)

	now := time.Now()
	q := c.bq.Query(query)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "window_start", Value: civil.DateOf(now.AddDate(0, 0, -windowDays))},
		{Name: "half_ago", Value: civil.DateOf(now.AddDate(0, 0, -half))},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("warehouse: reading symptom windows: %w", err)
	}

	var rows []symptomWindowRow
	for {
		var row symptomWindowRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("warehouse: iterating symptom windows: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
