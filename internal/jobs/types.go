package jobs

import (
	"context"
	"time"
)

// Type identifies what kind of background work a job carries.
type Type string

const (
	// TypeScanReceipt runs a receipt image through the scan pipeline.
	TypeScanReceipt Type = "scan_receipt"
	// TypeGenerateInsight regenerates the weekly insight for a user.
	TypeGenerateInsight Type = "generate_insight"
)

// Status is the lifecycle state of a job.
type Status string

const (
	// StatusPending indicates the job is waiting to be processed.
	StatusPending Status = "pending"
	// StatusRunning indicates the job is currently being processed.
	StatusRunning Status = "running"
	// StatusCompleted indicates the job completed successfully.
	StatusCompleted Status = "completed"
	// StatusFailed indicates the job failed permanently.
	StatusFailed Status = "failed"
	// StatusRetrying indicates the job failed and will be retried.
	StatusRetrying Status = "retrying"
)

// Job is one unit of background work. The payload fields used depend on
// Type: scan_receipt reads ReceiptURI and AccountID, generate_insight only
// needs UserID.
type Job struct {
	// ID is the unique identifier for this job.
	ID string `json:"id"`

	// Type selects which handler path processes the job.
	Type Type `json:"type"`

	// UserID is the owner of the data the job touches.
	UserID string `json:"user_id"`

	// ReceiptURI is the stored receipt image location for scan jobs.
	ReceiptURI string `json:"receipt_uri,omitempty"`

	// AccountID is the bank account a scanned purchase posts to.
	AccountID string `json:"account_id,omitempty"`

	// Status is the current lifecycle state.
	Status Status `json:"status"`

	// CreatedAt is when the job was enqueued.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when a worker picked the job up.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the job finished (success or failure).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error holds the last failure message, if any.
	Error string `json:"error,omitempty"`

	// RetryCount is how many times this job has been re-enqueued.
	RetryCount int `json:"retry_count"`

	// MaxRetries caps RetryCount before the job is marked failed.
	MaxRetries int `json:"max_retries"`
}

// Publisher enqueues jobs for asynchronous processing. The abstraction
// leaves room for swapping the in-memory queue for Cloud Tasks or Pub/Sub.
type Publisher interface {
	// Publish enqueues a job.
	Publish(ctx context.Context, job *Job) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer pulls jobs off a queue and hands them to a handler.
type Consumer interface {
	// Start begins consuming jobs. The handler is invoked for each job.
	Start(ctx context.Context, handler Handler) error

	// Stop stops consuming and waits for in-flight jobs to finish.
	Stop(ctx context.Context) error
}

// Handler processes one job. A non-nil error marks the attempt failed and
// the job is retried until MaxRetries is exhausted.
type Handler func(ctx context.Context, job *Job) error

// Store persists job state so callers can poll for completion.
type Store interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *Job) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, id string) (*Job, error)

	// ListJobs retrieves jobs matching the filter.
	ListJobs(ctx context.Context, filter Filter) ([]*Job, error)
}

// Filter narrows ListJobs results.
type Filter struct {
	// UserID restricts results to one user's jobs.
	UserID string

	// Type restricts results to one job type.
	Type Type

	// Status restricts results to one lifecycle state.
	Status Status

	// Limit caps the number of results.
	Limit int

	// Offset skips results for pagination.
	Offset int
}
