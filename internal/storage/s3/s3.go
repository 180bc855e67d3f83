// Package s3 stores course content in an S3-compatible bucket (AWS S3, MinIO)
package s3

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/japanesestudent/content-service/internal/storage"
)

// ProviderName is recorded with content records stored in S3
const ProviderName = "s3"

// Config options for the S3 backend
type Config struct {
	Bucket          string
	Region          string
	Endpoint        string // custom endpoint for S3-compatible services
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	PublicBaseURL   string // overrides the derived object URL, e.g. a CDN
}

type s3Store struct {
	client        *s3.Client
	uploader      *manager.Uploader
	bucket        string
	region        string
	endpoint      string
	usePathStyle  bool
	publicBaseURL string
}

// NewS3Store creates a blob store backed by cfg.Bucket
func NewS3Store(ctx context.Context, cfg Config) (*s3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &s3Store{
		client:        client,
		uploader:      manager.NewUploader(client),
		bucket:        cfg.Bucket,
		region:        cfg.Region,
		endpoint:      strings.TrimSuffix(cfg.Endpoint, "/"),
		usePathStyle:  cfg.UsePathStyle,
		publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}, nil
}

// NewSession returns a session sharing the store's uploader
func (s *s3Store) NewSession(ctx context.Context) (storage.BlobSession, error) {
	return s, nil
}

// Upload streams the object to the bucket under a generated key
func (s *s3Store) Upload(ctx context.Context, obj storage.BlobObject) (*storage.StoredBlob, error) {
	key := storage.GenerateObjectKey(obj.Name)

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        obj.Body,
		ContentType: aws.String(obj.MIMEType),
		Metadata:    map[string]string{"original-name": obj.Name},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload object: %w", err)
	}

	return &storage.StoredBlob{
		ID:   key,
		Name: obj.Name,
	}, nil
}

// CanonicalLink returns the public URL of an object
func (s *s3Store) CanonicalLink(storedID string) string {
	switch {
	case s.publicBaseURL != "":
		return fmt.Sprintf("%s/%s", s.publicBaseURL, storedID)
	case s.endpoint != "" && s.usePathStyle:
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, storedID)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, storedID)
	}
}

// Delete removes an object; S3 reports success for missing keys
func (s *s3Store) Delete(ctx context.Context, storedID string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storedID),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// Provider returns the provider name
func (s *s3Store) Provider() string {
	return ProviderName
}
