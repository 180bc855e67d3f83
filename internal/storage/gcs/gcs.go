// Package gcs stores course content in a Google Cloud Storage bucket
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	gcstorage "cloud.google.com/go/storage"
	"github.com/japanesestudent/content-service/internal/storage"
	"google.golang.org/api/option"
)

// ProviderName is recorded with content records stored in GCS
const ProviderName = "gcs"

// Config holds the bucket settings
type Config struct {
	Bucket    string
	CDNDomain string
	Prefix    string
}

type gcsStore struct {
	client    *gcstorage.Client
	bucket    string
	cdnDomain string
	prefix    string
}

// NewGCSStore creates a blob store backed by cfg.Bucket.
// Credentials come from the environment unless opts override them.
func NewGCSStore(ctx context.Context, cfg Config, opts ...option.ClientOption) (*gcsStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("gcs bucket is required")
	}

	opts = append(opts, option.WithScopes(gcstorage.ScopeReadWrite))
	client, err := gcstorage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &gcsStore{
		client:    client,
		bucket:    cfg.Bucket,
		cdnDomain: strings.TrimSuffix(cfg.CDNDomain, "/"),
		prefix:    strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// NewSession returns a session sharing the store's client
func (s *gcsStore) NewSession(ctx context.Context) (storage.BlobSession, error) {
	return s, nil
}

// Upload writes the object under a generated key
func (s *gcsStore) Upload(ctx context.Context, obj storage.BlobObject) (*storage.StoredBlob, error) {
	key := storage.GenerateObjectKey(obj.Name)
	if s.prefix != "" {
		key = s.prefix + "/" + key
	}

	// cancelling wctx aborts the upload; Close would commit the partial object
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(wctx)
	w.ContentType = obj.MIMEType
	w.Metadata = map[string]string{"original_name": obj.Name}
	if _, err := io.Copy(w, obj.Body); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close GCS writer: %w", err)
	}

	return &storage.StoredBlob{
		ID:   key,
		Name: obj.Name,
	}, nil
}

// CanonicalLink returns the public URL of an object, through the CDN when one is configured
func (s *gcsStore) CanonicalLink(storedID string) string {
	if s.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", s.cdnDomain, storedID)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, storedID)
}

// Delete removes an object, treating a missing object as deleted
func (s *gcsStore) Delete(ctx context.Context, storedID string) error {
	err := s.client.Bucket(s.bucket).Object(storedID).Delete(ctx)
	if err != nil && !errors.Is(err, gcstorage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", storedID, s.bucket, err)
	}
	return nil
}

// Provider returns the provider name
func (s *gcsStore) Provider() string {
	return ProviderName
}

// Close releases the storage client
func (s *gcsStore) Close() error {
	return s.client.Close()
}
