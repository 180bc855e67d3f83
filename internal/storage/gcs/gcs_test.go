package gcs

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/japanesestudent/content-service/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func TestNewGCSStore_RequiresBucket(t *testing.T) {
	store, err := NewGCSStore(context.Background(), Config{})
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestGCSStore_CanonicalLink(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		expected string
	}{
		{
			name:     "bucket url",
			cfg:      Config{Bucket: "course-content"},
			expected: "https://storage.googleapis.com/course-content/abc.mp4",
		},
		{
			name:     "cdn domain",
			cfg:      Config{Bucket: "course-content", CDNDomain: "cdn.example.com/"},
			expected: "https://cdn.example.com/abc.mp4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewGCSStore(context.Background(), tt.cfg, option.WithoutAuthentication())
			require.NoError(t, err)
			defer store.Close()

			assert.Equal(t, tt.expected, store.CanonicalLink("abc.mp4"))
			assert.Equal(t, "gcs", store.Provider())
		})
	}
}

// fakeGCS accepts object uploads and records the ones whose body arrived completely
type fakeGCS struct {
	mu        sync.Mutex
	committed []string
}

func (f *fakeGCS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, "/upload/storage/v1/b/") {
		http.NotFound(w, r)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return
	}

	f.mu.Lock()
	f.committed = append(f.committed, string(body))
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"bucket": "course-content",
		"name":   r.URL.Query().Get("name"),
		"size":   "0",
	})
}

func (f *fakeGCS) committedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.committed)
}

func setupEmulatedStore(t *testing.T) (*gcsStore, *fakeGCS) {
	t.Helper()
	fake := &fakeGCS{}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)
	t.Setenv("STORAGE_EMULATOR_HOST", server.URL)

	store, err := NewGCSStore(context.Background(), Config{Bucket: "course-content", Prefix: "contents"}, option.WithoutAuthentication())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, fake
}

func TestGCSStore_Upload(t *testing.T) {
	store, fake := setupEmulatedStore(t)

	blob, err := store.Upload(context.Background(), storage.BlobObject{
		Name:     "lesson-1.mp4",
		MIMEType: "video/mp4",
		Body:     strings.NewReader("lesson bytes"),
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(blob.ID, "contents/"), blob.ID)
	assert.True(t, strings.HasSuffix(blob.ID, ".mp4"), blob.ID)
	assert.Equal(t, "lesson-1.mp4", blob.Name)

	require.Equal(t, 1, fake.committedCount())
	assert.Contains(t, fake.committed[0], "lesson bytes")
	assert.Contains(t, fake.committed[0], "video/mp4")
}

func TestGCSStore_Upload_OversizedBodyIsNotCommitted(t *testing.T) {
	store, fake := setupEmulatedStore(t)

	body := storage.NewLimitedReader(strings.NewReader(strings.Repeat("x", 1025)), 1024)
	blob, err := store.Upload(context.Background(), storage.BlobObject{
		Name:     "lesson-1.mp4",
		MIMEType: "video/mp4",
		Body:     body,
	})

	assert.ErrorIs(t, err, storage.ErrTooLarge)
	assert.Nil(t, blob)
	assert.Never(t, func() bool { return fake.committedCount() > 0 }, 300*time.Millisecond, 20*time.Millisecond)
}
