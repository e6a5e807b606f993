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

	"github.com/lifelens/lifelens/internal/jobs"
)

type fakeUploader struct {
	uri      string
	err      error
	gotUser  string
	gotMIME  string
	gotBytes int
}

func (f *fakeUploader) Upload(ctx context.Context, userID string, data []byte, mimeType string) (string, error) {
	f.gotUser = userID
	f.gotMIME = mimeType
	f.gotBytes = len(data)
	return f.uri, f.err
}

func TestReceiptsUpload(t *testing.T) {
	uploader := &fakeUploader{uri: "gs://receipts/u1/r1.jpg"}
	h := NewReceiptsHandler(uploader, &fakePublisher{}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/receipts/upload?userId=u1", strings.NewReader("jpegbytes"))
	req.Header.Set("Content-Type", "image/jpeg")
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", uploader.gotUser)
	assert.Equal(t, "image/jpeg", uploader.gotMIME)
	assert.Equal(t, len("jpegbytes"), uploader.gotBytes)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "gs://receipts/u1/r1.jpg", resp["receipt_uri"])
}

func TestReceiptsUploadEmptyBody(t *testing.T) {
	h := NewReceiptsHandler(&fakeUploader{}, &fakePublisher{}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/receipts/upload?userId=u1", nil)
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReceiptsUploadUnconfigured(t *testing.T) {
	h := NewReceiptsHandler(nil, &fakePublisher{}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/receipts/upload?userId=u1", strings.NewReader("x"))
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestReceiptsParse(t *testing.T) {
	pub := &fakePublisher{}
	h := NewReceiptsHandler(&fakeUploader{}, pub, zerolog.Nop())

	body := `{"user_id":"u1","account_id":"acc1","receipt_uri":"gs://receipts/u1/r1.jpg"}`
	req := httptest.NewRequest(http.MethodPost, "/api/receipts/parse", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Parse(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, pub.published, 1)
	assert.Equal(t, jobs.TypeScanReceipt, pub.published[0].Type)
	assert.Equal(t, "gs://receipts/u1/r1.jpg", pub.published[0].ReceiptURI)
	assert.Equal(t, "acc1", pub.published[0].AccountID)
}

func TestReceiptsParseValidation(t *testing.T) {
	h := NewReceiptsHandler(&fakeUploader{}, &fakePublisher{}, zerolog.Nop())

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing account", `{"user_id":"u1","receipt_uri":"gs://b/o.jpg"}`},
		{"missing uri", `{"user_id":"u1","account_id":"acc1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/receipts/parse", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Parse(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestJobsEndpoints(t *testing.T) {
	store := &fakeJobStore{jobs: map[string]*jobs.Job{
		"job-1": {ID: "job-1", Type: jobs.TypeScanReceipt, UserID: "u1", Status: jobs.StatusCompleted},
	}}
	h := NewJobsHandler(store, zerolog.Nop())

	t.Run("get existing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.GetJob(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/job-1", nil), "job-1")

		require.Equal(t, http.StatusOK, rec.Code)
		var got jobs.Job
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, jobs.StatusCompleted, got.Status)
	})

	t.Run("get missing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.GetJob(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/nope", nil), "nope")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("list", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ListJobs(rec, httptest.NewRequest(http.MethodGet, "/api/jobs?userId=u1", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Count int `json:"count"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Count)
	})
}

type fakeJobStore struct {
	jobs map[string]*jobs.Job
}

func (f *fakeJobStore) SaveJob(ctx context.Context, job *jobs.Job) error {
	f.jobs[job.ID] = job
	return nil
}

func (f *fakeJobStore) GetJob(ctx context.Context, id string) (*jobs.Job, error) {
	job, ok := f.jobs[id]
	if !ok {
		return nil, assert.AnError
	}
	return job, nil
}

func (f *fakeJobStore) ListJobs(ctx context.Context, filter jobs.Filter) ([]*jobs.Job, error) {
	var out []*jobs.Job
	for _, job := range f.jobs {
		if filter.UserID != "" && job.UserID != filter.UserID {
			continue
		}
		out = append(out, job)
	}
	return out, nil
}
