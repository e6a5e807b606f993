package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/lifelens/lifelens/internal/api/middleware"
	"github.com/lifelens/lifelens/internal/jobs"
)

// maxReceiptBytes caps receipt image uploads at 10 MiB.
const maxReceiptBytes = 10 << 20

// ImageUploader stores receipt images and returns their URI.
type ImageUploader interface {
	Upload(ctx context.Context, userID string, data []byte, mimeType string) (string, error)
}

// ReceiptsHandler serves receipt upload and scan enqueueing.
type ReceiptsHandler struct {
	images    ImageUploader
	publisher jobs.Publisher
	log       zerolog.Logger
}

// NewReceiptsHandler creates a new receipts handler.
func NewReceiptsHandler(images ImageUploader, publisher jobs.Publisher, log zerolog.Logger) *ReceiptsHandler {
	return &ReceiptsHandler{
		images:    images,
		publisher: publisher,
		log:       log,
	}
}

// Upload handles POST /api/receipts/upload?userId=. The request body is the
// raw image; Content-Type names the image format.
func (h *ReceiptsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.images == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Receipt storage is not configured")
		return
	}

	userID, ok := requireQuery(w, r, "userId")
	if !ok {
		return
	}

	mimeType := r.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxReceiptBytes+1))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	if len(data) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "Image body is required")
		return
	}
	if len(data) > maxReceiptBytes {
		middleware.WriteError(w, http.StatusRequestEntityTooLarge, "Image exceeds the 10MB limit")
		return
	}

	uri, err := h.images.Upload(r.Context(), userID, data, mimeType)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to store receipt image")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to store receipt image")
		return
	}

	h.log.Info().Str("user_id", userID).Str("receipt_uri", uri).Int("bytes", len(data)).Msg("Receipt uploaded")

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"receipt_uri": uri,
		"status":      "uploaded",
	})
}

// Parse handles POST /api/receipts/parse. It enqueues a scan job for a
// previously uploaded receipt.
func (h *ReceiptsHandler) Parse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID     string `json:"user_id"`
		AccountID  string `json:"account_id"`
		ReceiptURI string `json:"receipt_uri"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" || req.AccountID == "" || req.ReceiptURI == "" {
		middleware.WriteError(w, http.StatusBadRequest, "user_id, account_id and receipt_uri are required")
		return
	}

	job := &jobs.Job{
		Type:       jobs.TypeScanReceipt,
		UserID:     req.UserID,
		AccountID:  req.AccountID,
		ReceiptURI: req.ReceiptURI,
	}
	if err := h.publisher.Publish(r.Context(), job); err != nil {
		h.log.Error().Err(err).Str("user_id", req.UserID).Msg("Failed to enqueue scan job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue scan job")
		return
	}

	h.log.Info().Str("job_id", job.ID).Str("receipt_uri", req.ReceiptURI).Msg("Scan job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":      job.ID,
		"receipt_uri": req.ReceiptURI,
		"status":      string(job.Status),
	})
}
