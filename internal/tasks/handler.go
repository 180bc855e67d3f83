package tasks

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/japanesestudent/content-service/internal/models"
	"go.uber.org/zap"
)

// OrphanCleaner removes what a failed file left behind
type OrphanCleaner interface {
	CleanupReported(ctx context.Context, report models.OrphanReport) error
}

// OrphanHandler processes orphan cleanup tasks
type OrphanHandler struct {
	cleaner OrphanCleaner
	logger  *zap.Logger
}

// NewOrphanHandler creates a new orphan task handler
func NewOrphanHandler(cleaner OrphanCleaner, logger *zap.Logger) *OrphanHandler {
	return &OrphanHandler{
		cleaner: cleaner,
		logger:  logger,
	}
}

// Register registers the handler's task types on mux
func (h *OrphanHandler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeOrphanCleanup, h.HandleOrphanCleanup)
}

// HandleOrphanCleanup handles one orphan report.
// Malformed payloads are not retried.
func (h *OrphanHandler) HandleOrphanCleanup(ctx context.Context, t *asynq.Task) error {
	report, err := ParseOrphanReport(t)
	if err != nil {
		h.logger.Error("dropping malformed orphan report", zap.Error(err))
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	taskID, _ := asynq.GetTaskID(ctx)
	if err := h.cleaner.CleanupReported(ctx, report); err != nil {
		h.logger.Warn("orphan cleanup failed",
			zap.String("task_id", taskID),
			zap.Int("content_id", report.ContentID),
			zap.String("storage_id", report.StorageID),
			zap.Error(err),
		)
		return err
	}

	return nil
}
