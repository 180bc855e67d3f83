// Package tasks carries orphan reports from the API to the worker over asynq
package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/japanesestudent/content-service/internal/models"
)

const (
	// TypeOrphanCleanup is the asynq task type of an orphan report
	TypeOrphanCleanup = "content:orphan_cleanup"
	// QueueOrphans is the queue orphan reports are enqueued on
	QueueOrphans = "orphans"

	orphanMaxRetry = 10
)

// NewOrphanCleanupTask creates a task carrying report
func NewOrphanCleanupTask(report models.OrphanReport) (*asynq.Task, error) {
	payload, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal orphan report: %w", err)
	}
	return asynq.NewTask(TypeOrphanCleanup, payload, asynq.Queue(QueueOrphans), asynq.MaxRetry(orphanMaxRetry)), nil
}

// ParseOrphanReport decodes the report carried by t
func ParseOrphanReport(t *asynq.Task) (models.OrphanReport, error) {
	var report models.OrphanReport
	if err := json.Unmarshal(t.Payload(), &report); err != nil {
		return report, fmt.Errorf("failed to unmarshal orphan report: %w", err)
	}
	if report.StorageID == "" || report.StorageProvider == "" {
		return report, fmt.Errorf("orphan report for course %d has no storage reference", report.CourseID)
	}
	return report, nil
}
