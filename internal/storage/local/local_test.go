package local

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/japanesestudent/content-service/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_UploadAndDelete(t *testing.T) {
	basePath := t.TempDir()
	store := NewLocalStore(basePath, "http://localhost:8080/")

	session, err := store.NewSession(context.Background())
	require.NoError(t, err)

	blob, err := session.Upload(context.Background(), storage.BlobObject{
		Name:     "lesson1.mp4",
		MIMEType: "video/mp4",
		Body:     strings.NewReader("video bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, "lesson1.mp4", blob.Name)
	assert.True(t, strings.HasSuffix(blob.ID, ".mp4"))

	data, err := os.ReadFile(filepath.Join(basePath, contentDir, blob.ID))
	require.NoError(t, err)
	assert.Equal(t, "video bytes", string(data))

	assert.Equal(t, "http://localhost:8080/media/course-content/"+blob.ID, store.CanonicalLink(blob.ID))

	require.NoError(t, store.Delete(context.Background(), blob.ID))
	_, err = os.Stat(filepath.Join(basePath, contentDir, blob.ID))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is not an error
	assert.NoError(t, store.Delete(context.Background(), blob.ID))
}

func TestLocalStore_UploadCancelled(t *testing.T) {
	basePath := t.TempDir()
	store := NewLocalStore(basePath, "http://localhost:8080")

	session, err := store.NewSession(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	blob, err := session.Upload(ctx, storage.BlobObject{
		Name: "lesson1.mp4",
		Body: strings.NewReader("video bytes"),
	})
	assert.Error(t, err)
	assert.Nil(t, blob)

	entries, err := os.ReadDir(filepath.Join(basePath, contentDir))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalStore_Handler(t *testing.T) {
	basePath := t.TempDir()
	store := NewLocalStore(basePath, "http://localhost:8080")

	session, err := store.NewSession(context.Background())
	require.NoError(t, err)
	blob, err := session.Upload(context.Background(), storage.BlobObject{
		Name: "lesson1.mkv",
		Body: strings.NewReader("mkv bytes"),
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/media/course-content/"+blob.ID, nil)
	w := httptest.NewRecorder()
	store.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "mkv bytes", w.Body.String())
	assert.Equal(t, "local", store.Provider())
}
