package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/japanesestudent/content-service/internal/models"
	"github.com/japanesestudent/content-service/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const defaultSweepBatchSize = 100

var orphansCleanedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "content_orphans_cleaned_total",
	Help: "Orphaned content files and records removed, by source (report, sweep)",
}, []string{"source"})

// UnlinkedContentRepository defines the content record access needed for orphan cleanup
type UnlinkedContentRepository interface {
	GetByID(ctx context.Context, id int) (*models.CourseContent, error)

	// GetUnlinked retrieves records created before olderThan that are on no content list
	GetUnlinked(ctx context.Context, olderThan time.Time, limit int) ([]models.UnlinkedContent, error)

	// DeleteUnlinked deletes a record unless it is on a content list.
	// Returns false when nothing was deleted.
	DeleteUnlinked(ctx context.Context, id int) (bool, error)
}

// OrphanService removes stored files and content records that never reached a content list
type OrphanService struct {
	contentRepo UnlinkedContentRepository
	stores      map[string]storage.BlobStore
	logger      *zap.Logger
	minAge      time.Duration
	batchSize   int
}

// NewOrphanService creates an orphan service.
// minAge keeps the sweep away from records of batches that are still being linked.
func NewOrphanService(contentRepo UnlinkedContentRepository, logger *zap.Logger, minAge time.Duration, stores ...storage.BlobStore) *OrphanService {
	byProvider := make(map[string]storage.BlobStore, len(stores))
	for _, store := range stores {
		byProvider[store.Provider()] = store
	}
	return &OrphanService{
		contentRepo: contentRepo,
		stores:      byProvider,
		logger:      logger,
		minAge:      minAge,
		batchSize:   defaultSweepBatchSize,
	}
}

// Cleanup removes what a failed file left behind: its unlinked content record, if any, and its stored file.
// A record that is on a content list by now is left alone together with its file.
func (s *OrphanService) Cleanup(ctx context.Context, report models.OrphanReport) error {
	store, ok := s.stores[report.StorageProvider]
	if !ok {
		return fmt.Errorf("no blob store configured for provider %q", report.StorageProvider)
	}

	if report.ContentID != 0 {
		deleted, err := s.contentRepo.DeleteUnlinked(ctx, report.ContentID)
		if err != nil {
			return err
		}
		if !deleted {
			_, err := s.contentRepo.GetByID(ctx, report.ContentID)
			if err == nil {
				s.logger.Info("orphan report for linked content ignored",
					zap.Int("content_id", report.ContentID),
				)
				return nil
			}
			if !errors.Is(err, models.ErrContentNotFound) {
				return err
			}
		}
	}

	if err := store.Delete(ctx, report.StorageID); err != nil {
		return fmt.Errorf("%w: %w", ErrExternalStore, err)
	}

	s.logger.Info("orphaned content removed",
		zap.Int("course_id", report.CourseID),
		zap.Int("content_id", report.ContentID),
		zap.String("storage_id", report.StorageID),
		zap.String("failed_stage", string(report.FailedStage)),
	)
	return nil
}

// Sweep removes content records older than the minimum age that are on no content list.
// Returns the number of records cleaned up.
func (s *OrphanService) Sweep(ctx context.Context) (int, error) {
	olderThan := time.Now().UTC().Add(-s.minAge)

	contents, err := s.contentRepo.GetUnlinked(ctx, olderThan, s.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list unlinked contents: %w", err)
	}

	cleaned := 0
	for _, content := range contents {
		err := s.Cleanup(ctx, models.OrphanReport{
			CourseID:        content.CourseID,
			ContentID:       content.ID,
			StorageProvider: content.StorageProvider,
			StorageID:       content.StorageID,
			Reason:          "found by sweep",
		})
		if err != nil {
			s.logger.Warn("failed to clean up unlinked content",
				zap.Int("content_id", content.ID),
				zap.Error(err),
			)
			continue
		}
		cleaned++
	}

	orphansCleanedTotal.WithLabelValues("sweep").Add(float64(cleaned))
	return cleaned, nil
}

// CleanupReported handles an orphan report delivered by the queue
func (s *OrphanService) CleanupReported(ctx context.Context, report models.OrphanReport) error {
	if err := s.Cleanup(ctx, report); err != nil {
		return err
	}
	orphansCleanedTotal.WithLabelValues("report").Inc()
	return nil
}
