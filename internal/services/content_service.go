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
	"golang.org/x/sync/errgroup"
)

var (
	ingestionBatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "content_ingestion_batches_total",
		Help: "Content batches by outcome (complete, partial, rejected)",
	}, []string{"outcome"})

	ingestionFilesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "content_ingestion_files_total",
		Help: "Content files by final state and failed stage",
	}, []string{"state", "stage"})

	uploadDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "content_upload_duration_seconds",
		Help:    "Duration of single file uploads to the blob store",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
	})
)

// CourseRepository defines the interface for course aggregate access
type CourseRepository interface {
	// GetByID retrieves a course.
	// Returns models.ErrCourseNotFound when the course does not exist.
	GetByID(ctx context.Context, id int) (*models.Course, error)

	// AppendContent appends a content record to the end of the course's content list.
	//
	// "ctx" is the context for the operation.
	// "courseID" is the course to append to.
	// "contentID" is an existing content record of that course.
	//
	// Returns the position of the new entry.
	// Concurrent appends to the same course never overwrite each other;
	// models.ErrContentVersionConflict is returned when the retries are exhausted.
	AppendContent(ctx context.Context, courseID, contentID int) (int, error)
}

// CourseContentRepository defines the interface for content record access
type CourseContentRepository interface {
	// Create inserts a content record and sets its ID
	Create(ctx context.Context, content *models.CourseContent) error

	// GetByID retrieves a content record.
	// Returns models.ErrContentNotFound when the record does not exist.
	GetByID(ctx context.Context, id int) (*models.CourseContent, error)

	// GetByCourseID resolves a course's content list into records, in list order
	GetByCourseID(ctx context.Context, courseID int) ([]models.CourseContent, error)
}

// OrphanReporter receives state left behind by partially failed files
type OrphanReporter interface {
	Report(ctx context.Context, report models.OrphanReport) error
}

// ContentServiceConfig holds ingestion tuning
type ContentServiceConfig struct {
	// UploadWorkers bounds concurrent uploads within a batch; 1 uploads sequentially
	UploadWorkers int
	// UploadTimeout bounds a single file's upload; zero means no limit
	UploadTimeout time.Duration
}

// ContentService runs the course content ingestion pipeline
type ContentService struct {
	courseRepo  CourseRepository
	contentRepo CourseContentRepository
	store       storage.BlobStore
	validator   *UploadValidator
	orphans     OrphanReporter
	logger      *zap.Logger
	cfg         ContentServiceConfig
}

// NewContentService creates a new content service
func NewContentService(
	courseRepo CourseRepository,
	contentRepo CourseContentRepository,
	store storage.BlobStore,
	validator *UploadValidator,
	orphans OrphanReporter,
	logger *zap.Logger,
	cfg ContentServiceConfig,
) *ContentService {
	if cfg.UploadWorkers < 1 {
		cfg.UploadWorkers = 1
	}
	return &ContentService{
		courseRepo:  courseRepo,
		contentRepo: contentRepo,
		store:       store,
		validator:   validator,
		orphans:     orphans,
		logger:      logger,
		cfg:         cfg,
	}
}

// fileOutcome tracks one file through the pipeline
type fileOutcome struct {
	state   models.FileState
	content *models.CourseContent
	failure *models.FileFailure
}

func (o *fileOutcome) fail(index int, filename string, stage models.IngestionStage, err error) {
	o.state = models.FileStateFailed
	o.failure = &models.FileFailure{
		Index:    index,
		Filename: filename,
		Stage:    stage,
		Reason:   err.Error(),
	}
}

// AddContents ingests a batch of files into a course.
//
// "ctx" is the context of the request.
// "principal" is the authenticated caller; users below tutor are rejected.
// "courseID" is the target course; tutors may only add to their own courses.
// "files" is the batch in submission order.
//
// The whole batch is validated before anything is uploaded. Afterwards each file
// succeeds or fails on its own: files are uploaded and recorded (possibly concurrently),
// then linked to the course in submission order. The returned result carries the
// refreshed course and one failure per file that did not reach the content list.
//
// Returns an error wrapping ErrPermissionDenied, ErrValidation, models.ErrCourseNotFound
// or ErrPersistence when the batch is rejected as a whole.
func (s *ContentService) AddContents(ctx context.Context, principal models.Principal, courseID int, files []ContentFile) (*models.IngestionResult, error) {
	if !principal.CanManageContent() {
		ingestionBatchesTotal.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%w: role %s cannot add course content", ErrPermissionDenied, principal.Role)
	}

	if err := s.validator.Validate(files); err != nil {
		ingestionBatchesTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	course, err := s.courseRepo.GetByID(ctx, courseID)
	if errors.Is(err, models.ErrCourseNotFound) {
		ingestionBatchesTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	if principal.Role != models.RoleAdmin && course.AuthorID != principal.UserID {
		ingestionBatchesTotal.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%w: course %d belongs to another author", ErrPermissionDenied, courseID)
	}

	// uploads and links keep going if the client disconnects
	workCtx := context.WithoutCancel(ctx)

	outcomes := make([]fileOutcome, len(files))
	for i := range outcomes {
		outcomes[i].state = models.FileStateValidated
	}

	session, err := s.store.NewSession(workCtx)
	if err != nil {
		s.logger.Error("failed to open blob store session",
			zap.Int("course_id", courseID),
			zap.String("provider", s.store.Provider()),
			zap.Error(err),
		)
		for i, file := range files {
			outcomes[i].fail(i, file.Filename, models.StageUpload, fmt.Errorf("%w: %w", ErrExternalStore, err))
		}
	} else {
		s.uploadAndRecord(workCtx, session, courseID, files, outcomes)
	}

	s.link(workCtx, courseID, files, outcomes)

	result := &models.IngestionResult{}
	for i := range outcomes {
		if outcomes[i].state == models.FileStateLinked {
			outcomes[i].state = models.FileStateDone
		}
		if outcomes[i].failure != nil {
			result.Failures = append(result.Failures, *outcomes[i].failure)
			ingestionFilesTotal.WithLabelValues(string(models.FileStateFailed), string(outcomes[i].failure.Stage)).Inc()
			continue
		}
		ingestionFilesTotal.WithLabelValues(string(outcomes[i].state), "").Inc()
	}

	if len(result.Failures) == 0 {
		ingestionBatchesTotal.WithLabelValues("complete").Inc()
	} else {
		ingestionBatchesTotal.WithLabelValues("partial").Inc()
	}

	s.logger.Info("content batch ingested",
		zap.Int("course_id", courseID),
		zap.Int("user_id", principal.UserID),
		zap.Int("files", len(files)),
		zap.Int("failed", len(result.Failures)),
	)

	result.Course, err = s.GetCourseContents(workCtx, courseID)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// uploadAndRecord uploads every file and creates its content record.
// Results land in outcomes by index, so completion order does not matter.
func (s *ContentService) uploadAndRecord(ctx context.Context, session storage.BlobSession, courseID int, files []ContentFile, outcomes []fileOutcome) {
	var g errgroup.Group
	g.SetLimit(s.cfg.UploadWorkers)

	for i := range files {
		g.Go(func() error {
			s.ingestFile(ctx, session, courseID, i, files[i], &outcomes[i])
			return nil
		})
	}

	_ = g.Wait()
}

func (s *ContentService) ingestFile(ctx context.Context, session storage.BlobSession, courseID, index int, file ContentFile, outcome *fileOutcome) {
	mimeType := ResolveMIMEType(file)

	blob, size, err := s.upload(ctx, session, file, mimeType)
	if err != nil {
		s.logger.Warn("content upload failed",
			zap.Int("course_id", courseID),
			zap.String("filename", file.Filename),
			zap.Error(err),
		)
		outcome.fail(index, file.Filename, models.StageUpload, fmt.Errorf("%w: %w", ErrExternalStore, err))
		return
	}
	outcome.state = models.FileStateUploaded

	content := &models.CourseContent{
		CourseID:        courseID,
		Name:            file.Filename,
		Link:            s.store.CanonicalLink(blob.ID),
		StorageProvider: s.store.Provider(),
		StorageID:       blob.ID,
		ContentType:     mimeType,
		Size:            size,
	}

	if err := s.contentRepo.Create(ctx, content); err != nil {
		s.logger.Error("failed to create content record",
			zap.Int("course_id", courseID),
			zap.String("filename", file.Filename),
			zap.String("storage_id", blob.ID),
			zap.Error(err),
		)
		outcome.fail(index, file.Filename, models.StageRecord, fmt.Errorf("%w: %w", ErrPersistence, err))
		s.reportOrphan(ctx, models.OrphanReport{
			CourseID:        courseID,
			StorageProvider: content.StorageProvider,
			StorageID:       content.StorageID,
			FailedStage:     models.StageRecord,
			Reason:          err.Error(),
		})
		return
	}

	outcome.state = models.FileStateRecorded
	outcome.content = content
}

// upload streams one file to the session, enforcing the size limit on the bytes actually read
func (s *ContentService) upload(ctx context.Context, session storage.BlobSession, file ContentFile, mimeType string) (*storage.StoredBlob, int64, error) {
	src, err := file.Source.Open()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	if s.cfg.UploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.UploadTimeout)
		defer cancel()
	}

	body := storage.NewLimitedReader(src, s.validator.MaxFileSize())

	start := time.Now()
	blob, err := session.Upload(ctx, storage.BlobObject{
		Name:     file.Filename,
		MIMEType: mimeType,
		Body:     body,
	})
	uploadDurationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, 0, err
	}

	return blob, body.Size(), nil
}

// link appends recorded files to the course's content list in submission order
func (s *ContentService) link(ctx context.Context, courseID int, files []ContentFile, outcomes []fileOutcome) {
	for i := range outcomes {
		outcome := &outcomes[i]
		if outcome.state != models.FileStateRecorded {
			continue
		}

		if _, err := s.courseRepo.AppendContent(ctx, courseID, outcome.content.ID); err != nil {
			s.logger.Error("failed to link content to course",
				zap.Int("course_id", courseID),
				zap.Int("content_id", outcome.content.ID),
				zap.Error(err),
			)
			outcome.fail(i, files[i].Filename, models.StageLink, fmt.Errorf("%w: %w", ErrPersistence, err))
			s.reportOrphan(ctx, models.OrphanReport{
				CourseID:        courseID,
				ContentID:       outcome.content.ID,
				StorageProvider: outcome.content.StorageProvider,
				StorageID:       outcome.content.StorageID,
				FailedStage:     models.StageLink,
				Reason:          err.Error(),
			})
			continue
		}

		outcome.state = models.FileStateLinked
	}
}

func (s *ContentService) reportOrphan(ctx context.Context, report models.OrphanReport) {
	if s.orphans == nil {
		return
	}
	if err := s.orphans.Report(ctx, report); err != nil {
		s.logger.Error("failed to report orphaned content",
			zap.Int("course_id", report.CourseID),
			zap.Int("content_id", report.ContentID),
			zap.String("storage_id", report.StorageID),
			zap.Error(err),
		)
	}
}

// GetCourseContents returns a course with its content list resolved, in list order
func (s *ContentService) GetCourseContents(ctx context.Context, courseID int) (*models.CourseWithContents, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if errors.Is(err, models.ErrCourseNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	contents, err := s.contentRepo.GetByCourseID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	return &models.CourseWithContents{
		Course:   *course,
		Contents: contents,
	}, nil
}

// GetContent returns a single content record
func (s *ContentService) GetContent(ctx context.Context, id int) (*models.CourseContent, error) {
	content, err := s.contentRepo.GetByID(ctx, id)
	if errors.Is(err, models.ErrContentNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return content, nil
}
