// Package imagestore keeps uploaded receipt images in Google Cloud Storage.
// Objects are addressed by gs:// URIs so job payloads stay small.
package imagestore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// Store reads and writes receipt images in a single bucket. It holds one
// storage client for its lifetime and is safe for concurrent use.
type Store struct {
	client *storage.Client
	bucket string
}

// New creates a Store for the given bucket. Application Default Credentials
// must be configured.
func New(ctx context.Context, bucket string) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("imagestore: create storage client: %w", err)
	}
	return &Store{client: client, bucket: bucket}, nil
}

// Close releases the underlying storage client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Upload writes image bytes under receipts/<user>/<uuid><ext> and returns
// the object's gs:// URI. The extension is derived from the MIME type.
func (s *Store) Upload(ctx context.Context, userID string, data []byte, mimeType string) (string, error) {
	ext := ".bin"
	if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
		ext = exts[0]
	}
	object := path.Join("receipts", userID, uuid.NewString()+ext)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(object).NewWriter(ctx)
	w.ContentType = mimeType
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("imagestore: write object %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("imagestore: finalize object %s: %w", object, err)
	}

	return fmt.Sprintf("gs://%s/%s", s.bucket, object), nil
}

// Fetch downloads an object by gs:// URI and returns its bytes and content
// type.
func (s *Store) Fetch(ctx context.Context, gcsURI string) ([]byte, string, error) {
	bucket, object, err := splitURI(gcsURI)
	if err != nil {
		return nil, "", err
	}

	r, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("imagestore: open %s: %w", gcsURI, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("imagestore: read %s: %w", gcsURI, err)
	}
	return data, r.Attrs.ContentType, nil
}

// splitURI breaks a gs://bucket/object URI into its parts.
func splitURI(gcsURI string) (bucket, object string, err error) {
	trimmed, ok := strings.CutPrefix(gcsURI, "gs://")
	if !ok {
		return "", "", fmt.Errorf("imagestore: not a gs:// URI: %s", gcsURI)
	}
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", "", fmt.Errorf("imagestore: URI has no object path: %s", gcsURI)
	}
	return parts[0], parts[1], nil
}
