package inmemory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lifelens/lifelens/internal/jobs"
)

func waitForStatus(t *testing.T, store *Store, id string, want jobs.Status) *jobs.Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := store.GetJob(context.Background(), id)
		if err == nil && job.Status == want {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	job, _ := store.GetJob(context.Background(), id)
	t.Fatalf("job %s never reached status %q (last: %+v)", id, want, job)
	return nil
}

func TestQueueProcessesJob(t *testing.T) {
	store := NewStore()
	q := NewQueue(10, 2, store)
	defer q.Close()

	var handled atomic.Int32
	err := q.Start(context.Background(), func(ctx context.Context, job *jobs.Job) error {
		handled.Add(1)
		return nil
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	job := &jobs.Job{Type: jobs.TypeScanReceipt, UserID: "u1", ReceiptURI: "gs://b/r.jpg"}
	if err := q.Publish(context.Background(), job); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if job.ID == "" {
		t.Fatal("Publish() did not assign a job ID")
	}

	got := waitForStatus(t, store, job.ID, jobs.StatusCompleted)
	if handled.Load() != 1 {
		t.Errorf("handler ran %d times, want 1", handled.Load())
	}
	if got.StartedAt == nil || got.CompletedAt == nil {
		t.Error("completed job is missing timestamps")
	}
	if got.Error != "" {
		t.Errorf("completed job has error %q", got.Error)
	}
}

func TestQueueRetriesUntilSuccess(t *testing.T) {
	store := NewStore()
	q := NewQueue(10, 1, store)
	defer q.Close()

	var attempts atomic.Int32
	err := q.Start(context.Background(), func(ctx context.Context, job *jobs.Job) error {
		if attempts.Add(1) < 2 {
			return errors.New("transient failure")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	job := &jobs.Job{Type: jobs.TypeGenerateInsight, UserID: "u1"}
	if err := q.Publish(context.Background(), job); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	got := waitForStatus(t, store, job.ID, jobs.StatusCompleted)
	if attempts.Load() != 2 {
		t.Errorf("handler ran %d times, want 2", attempts.Load())
	}
	if got.RetryCount != 1 {
		t.Errorf("RetryCount = %d, want 1", got.RetryCount)
	}
}

func TestQueueExhaustsRetries(t *testing.T) {
	store := NewStore()
	q := NewQueue(10, 1, store)
	defer q.Close()

	err := q.Start(context.Background(), func(ctx context.Context, job *jobs.Job) error {
		return errors.New("permanent failure")
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	job := &jobs.Job{Type: jobs.TypeScanReceipt, UserID: "u1", MaxRetries: 1}
	if err := q.Publish(context.Background(), job); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	got := waitForStatus(t, store, job.ID, jobs.StatusFailed)
	if got.Error != "permanent failure" {
		t.Errorf("Error = %q, want %q", got.Error, "permanent failure")
	}
	if got.RetryCount != 1 {
		t.Errorf("RetryCount = %d, want 1", got.RetryCount)
	}
}

func TestQueuePublishValidation(t *testing.T) {
	q := NewQueue(1, 1, nil)
	defer q.Close()

	if err := q.Publish(context.Background(), &jobs.Job{}); err == nil {
		t.Error("Publish() of a typeless job succeeded, want error")
	}
}

func TestQueueRejectsAfterStop(t *testing.T) {
	q := NewQueue(1, 1, nil)
	if err := q.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := q.Stop(context.Background()); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}

	job := &jobs.Job{Type: jobs.TypeScanReceipt}
	if err := q.Publish(context.Background(), job); err == nil {
		t.Error("Publish() after Stop succeeded, want error")
	}
}

func TestQueueStopWaitsForInflight(t *testing.T) {
	store := NewStore()
	q := NewQueue(10, 1, store)

	release := make(chan struct{})
	var started sync.WaitGroup
	started.Add(1)
	err := q.Start(context.Background(), func(ctx context.Context, job *jobs.Job) error {
		started.Done()
		<-release
		return nil
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	job := &jobs.Job{Type: jobs.TypeScanReceipt, UserID: "u1"}
	if err := q.Publish(context.Background(), job); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	started.Wait()

	stopDone := make(chan error, 1)
	go func() {
		stopDone <- q.Stop(context.Background())
	}()

	select {
	case <-stopDone:
		t.Fatal("Stop() returned while a job was still in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	if err := <-stopDone; err != nil {
		t.Errorf("Stop() error = %v", err)
	}

	got := waitForStatus(t, store, job.ID, jobs.StatusCompleted)
	if got.Status != jobs.StatusCompleted {
		t.Errorf("Status = %q, want completed", got.Status)
	}
}
