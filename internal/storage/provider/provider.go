// Package provider builds the blob store selected by configuration
package provider

import (
	"context"
	"fmt"

	"github.com/japanesestudent/content-service/internal/config"
	"github.com/japanesestudent/content-service/internal/storage"
	"github.com/japanesestudent/content-service/internal/storage/drive"
	"github.com/japanesestudent/content-service/internal/storage/gcs"
	"github.com/japanesestudent/content-service/internal/storage/local"
	"github.com/japanesestudent/content-service/internal/storage/s3"
)

// New creates the blob store for cfg.Provider
func New(ctx context.Context, cfg config.BlobConfig) (storage.BlobStore, error) {
	var (
		store storage.BlobStore
		err   error
	)

	switch cfg.Provider {
	case config.BlobProviderDrive:
		store, err = newDrive(cfg)
	case config.BlobProviderGCS:
		store, err = newGCS(ctx, cfg)
	case config.BlobProviderS3:
		store, err = newS3(ctx, cfg)
	case config.BlobProviderLocal:
		store = local.NewLocalStore(cfg.MediaBasePath, cfg.MediaBaseURL)
	default:
		err = fmt.Errorf("unknown blob provider %q", cfg.Provider)
	}

	if err != nil {
		return nil, err
	}
	return store, nil
}

func newDrive(cfg config.BlobConfig) (storage.BlobStore, error) {
	store, err := drive.NewDriveStore(drive.Config{
		CredentialsFile: cfg.DriveCredentialsFile,
		CredentialsJSON: cfg.DriveCredentialsJSON,
		FolderID:        cfg.DriveFolderID,
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

func newGCS(ctx context.Context, cfg config.BlobConfig) (storage.BlobStore, error) {
	store, err := gcs.NewGCSStore(ctx, gcs.Config{
		Bucket:    cfg.GCSBucket,
		CDNDomain: cfg.GCSCDNDomain,
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

func newS3(ctx context.Context, cfg config.BlobConfig) (storage.BlobStore, error) {
	store, err := s3.NewS3Store(ctx, s3.Config{
		Bucket:          cfg.S3Bucket,
		Region:          cfg.S3Region,
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		UsePathStyle:    cfg.S3UsePathStyle,
		PublicBaseURL:   cfg.S3PublicBaseURL,
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}
