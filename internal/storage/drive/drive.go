// Package drive stores course content in a Google Drive folder
package drive

import (
	"context"
	"errors"
	"fmt"

	"github.com/japanesestudent/content-service/internal/storage"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// ProviderName is recorded with content records stored in Drive
const ProviderName = "drive"

const linkFormat = "https://drive.google.com/file/d/%s/view"

// Config holds the service account credentials and the parent folder for uploads
type Config struct {
	CredentialsFile string
	CredentialsJSON string
	FolderID        string

	// ClientOptions are appended to the credential options, e.g. a custom endpoint
	ClientOptions []option.ClientOption
}

type driveStore struct {
	folderID string
	options  []option.ClientOption
}

// NewDriveStore creates a blob store that uploads into cfg.FolderID
func NewDriveStore(cfg Config) (*driveStore, error) {
	if cfg.FolderID == "" {
		return nil, errors.New("drive folder id is required")
	}

	var opts []option.ClientOption
	switch {
	case cfg.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	opts = append(opts, option.WithScopes(drive.DriveScope))
	opts = append(opts, cfg.ClientOptions...)

	return &driveStore{
		folderID: cfg.FolderID,
		options:  opts,
	}, nil
}

// NewSession creates a Drive client with its own token source, so a batch authenticates once
func (s *driveStore) NewSession(ctx context.Context) (storage.BlobSession, error) {
	srv, err := drive.NewService(ctx, s.options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &driveSession{files: srv.Files, folderID: s.folderID}, nil
}

// CanonicalLink returns the Drive viewer link for a file
func (s *driveStore) CanonicalLink(storedID string) string {
	return fmt.Sprintf(linkFormat, storedID)
}

// Delete removes a file from Drive
func (s *driveStore) Delete(ctx context.Context, storedID string) error {
	srv, err := drive.NewService(ctx, s.options...)
	if err != nil {
		return fmt.Errorf("failed to create drive service: %w", err)
	}

	err = srv.Files.Delete(storedID).SupportsAllDrives(true).Context(ctx).Do()
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == 404 {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete drive file %s: %w", storedID, err)
	}
	return nil
}

// Provider returns the provider name
func (s *driveStore) Provider() string {
	return ProviderName
}

type driveSession struct {
	files    *drive.FilesService
	folderID string
}

// Upload creates a file in the session's folder with the object's name and MIME type
func (s *driveSession) Upload(ctx context.Context, obj storage.BlobObject) (*storage.StoredBlob, error) {
	metadata := &drive.File{
		Name:     obj.Name,
		MimeType: obj.MIMEType,
		Parents:  []string{s.folderID},
	}

	file, err := s.files.Create(metadata).
		Media(obj.Body, googleapi.ContentType(obj.MIMEType)).
		SupportsAllDrives(true).
		Fields("id, name").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s to drive: %w", obj.Name, err)
	}

	return &storage.StoredBlob{
		ID:   file.Id,
		Name: file.Name,
	}, nil
}
