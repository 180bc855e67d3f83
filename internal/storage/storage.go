// Package storage defines the external blob store used for course content files
package storage

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// BlobObject is one file handed to a blob store for upload
type BlobObject struct {
	Name     string
	MIMEType string
	Body     io.Reader
}

// StoredBlob is the blob store's receipt for an uploaded file
type StoredBlob struct {
	ID   string
	Name string
}

// BlobSession is an authenticated handle to the blob store.
// A session is opened once per batch and is safe for concurrent uploads.
type BlobSession interface {
	// Upload streams obj.Body to the store and returns the store's identifier for it.
	// "ctx" bounds the upload; cancelling it aborts the transfer.
	Upload(ctx context.Context, obj BlobObject) (*StoredBlob, error)
}

// BlobStore is the external blob store that hosts course content files
type BlobStore interface {
	// NewSession obtains credentials and returns a session for uploading a batch.
	// An error means no file of the batch can be uploaded.
	NewSession(ctx context.Context) (BlobSession, error)

	// CanonicalLink derives the public link for a stored file from its identifier.
	// The link is a pure function of the identifier.
	CanonicalLink(storedID string) string

	// Delete removes a stored file. Used to clean up files whose content record was never linked.
	Delete(ctx context.Context, storedID string) error

	// Provider returns the name recorded with content records, e.g. "drive"
	Provider() string
}

// GenerateObjectKey generates a new object key that keeps the extension of name
func GenerateObjectKey(name string) string {
	key := uuid.New().String()
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return key
	}
	return key + ext
}
