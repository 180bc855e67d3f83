package tasks

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/japanesestudent/content-service/internal/models"
	"go.uber.org/zap"
)

// Enqueuer is the part of *asynq.Client used by QueueReporter
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueReporter enqueues orphan reports for the worker to clean up
type QueueReporter struct {
	client Enqueuer
	logger *zap.Logger
}

// NewQueueReporter creates a reporter that enqueues on client
func NewQueueReporter(client Enqueuer, logger *zap.Logger) *QueueReporter {
	return &QueueReporter{
		client: client,
		logger: logger,
	}
}

// Report enqueues an orphan cleanup task
func (r *QueueReporter) Report(ctx context.Context, report models.OrphanReport) error {
	task, err := NewOrphanCleanupTask(report)
	if err != nil {
		return err
	}

	info, err := r.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue orphan cleanup: %w", err)
	}

	r.logger.Info("orphan cleanup enqueued",
		zap.String("task_id", info.ID),
		zap.Int("course_id", report.CourseID),
		zap.Int("content_id", report.ContentID),
		zap.String("storage_id", report.StorageID),
	)
	return nil
}

// LogReporter only logs orphan reports; the worker's sweep picks up unlinked records later
type LogReporter struct {
	logger *zap.Logger
}

// NewLogReporter creates a logging reporter
func NewLogReporter(logger *zap.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

// Report logs the orphan
func (r *LogReporter) Report(ctx context.Context, report models.OrphanReport) error {
	r.logger.Warn("orphaned content left behind",
		zap.Int("course_id", report.CourseID),
		zap.Int("content_id", report.ContentID),
		zap.String("storage_provider", report.StorageProvider),
		zap.String("storage_id", report.StorageID),
		zap.String("failed_stage", string(report.FailedStage)),
		zap.String("reason", report.Reason),
	)
	return nil
}
