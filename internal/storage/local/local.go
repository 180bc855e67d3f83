// Package local stores course content on the local filesystem, for development and tests
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/japanesestudent/content-service/internal/storage"
)

// ProviderName is recorded with content records stored on disk
const ProviderName = "local"

const contentDir = "course-content"

// localStore implements storage.BlobStore using the local filesystem
type localStore struct {
	basePath string
	baseURL  string
}

// NewLocalStore creates a new localStore instance
func NewLocalStore(basePath, baseURL string) *localStore {
	return &localStore{
		basePath: basePath,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}
}

// generatePath returns the file path for a stored id
func (s *localStore) generatePath(storedID string) string {
	return filepath.Join(s.basePath, contentDir, filepath.Base(storedID))
}

// NewSession ensures the content directory exists
func (s *localStore) NewSession(ctx context.Context) (storage.BlobSession, error) {
	if err := os.MkdirAll(filepath.Join(s.basePath, contentDir), 0755); err != nil {
		return nil, fmt.Errorf("failed to create content directory: %w", err)
	}
	return s, nil
}

// Upload copies the object body into a new file
func (s *localStore) Upload(ctx context.Context, obj storage.BlobObject) (*storage.StoredBlob, error) {
	key := storage.GenerateObjectKey(obj.Name)
	path := s.generatePath(key)

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(file, contextReader{ctx: ctx, r: obj.Body}); err != nil {
		file.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to close file: %w", err)
	}

	return &storage.StoredBlob{
		ID:   key,
		Name: obj.Name,
	}, nil
}

// CanonicalLink returns the URL the file is served under
func (s *localStore) CanonicalLink(storedID string) string {
	return fmt.Sprintf("%s/media/%s/%s", s.baseURL, contentDir, storedID)
}

// Delete removes a file
func (s *localStore) Delete(ctx context.Context, storedID string) error {
	err := os.Remove(s.generatePath(storedID))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Provider returns the provider name
func (s *localStore) Provider() string {
	return ProviderName
}

// Handler serves stored files under /media/
func (s *localStore) Handler() http.Handler {
	return http.StripPrefix("/media/", http.FileServer(http.Dir(s.basePath)))
}

// contextReader stops a copy once ctx is done
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (r contextReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
