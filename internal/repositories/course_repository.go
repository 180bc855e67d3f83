package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/japanesestudent/content-service/internal/models"
)

const (
	defaultMaxAppendAttempts = 5
	defaultAppendBackoff     = 20 * time.Millisecond
	maxAppendBackoff         = 500 * time.Millisecond
)

type courseRepository struct {
	db                *sql.DB
	maxAppendAttempts int
	appendBackoff     time.Duration
}

// NewCourseRepository creates a new course repository.
// maxAppendAttempts bounds how often AppendContent retries after losing a race on the content version.
func NewCourseRepository(db *sql.DB, maxAppendAttempts int) *courseRepository {
	if maxAppendAttempts < 1 {
		maxAppendAttempts = defaultMaxAppendAttempts
	}
	return &courseRepository{
		db:                db,
		maxAppendAttempts: maxAppendAttempts,
		appendBackoff:     defaultAppendBackoff,
	}
}

// GetByID retrieves a course by its ID
func (r *courseRepository) GetByID(ctx context.Context, id int) (*models.Course, error) {
	query := `
		SELECT id, slug, author_id, title, short_summary, complexity_level, content_version
		FROM courses
		WHERE id = ?
		LIMIT 1
	`

	var course models.Course
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&course.ID,
		&course.Slug,
		&course.AuthorID,
		&course.Title,
		&course.ShortSummary,
		&course.ComplexityLevel,
		&course.ContentVersion,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrCourseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course by id: %w", err)
	}

	return &course, nil
}

// AppendContent appends contentID to the end of the course's content list and returns its position.
//
// The append is a compare-and-swap on courses.content_version: the version read before the
// transaction must still be current when it is bumped, otherwise the attempt is discarded and
// retried after a jittered, growing delay. The link row is written at position = old version
// inside the same transaction.
func (r *courseRepository) AppendContent(ctx context.Context, courseID, contentID int) (int, error) {
	for attempt := 1; attempt <= r.maxAppendAttempts; attempt++ {
		position, err := r.tryAppendContent(ctx, courseID, contentID)
		if !errors.Is(err, models.ErrContentVersionConflict) {
			return position, err
		}
		if attempt == r.maxAppendAttempts {
			break
		}

		timer := time.NewTimer(appendRetryDelay(r.appendBackoff, attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return 0, fmt.Errorf("append content %d to course %d: %w", contentID, courseID, ctx.Err())
		case <-timer.C:
		}
	}

	return 0, fmt.Errorf("failed to append content %d to course %d after %d attempts: %w",
		contentID, courseID, r.maxAppendAttempts, models.ErrContentVersionConflict)
}

func (r *courseRepository) tryAppendContent(ctx context.Context, courseID, contentID int) (int, error) {
	var version int
	err := r.db.QueryRowContext(ctx, "SELECT content_version FROM courses WHERE id = ?", courseID).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, models.ErrCourseNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read content version: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE courses
		SET content_version = content_version + 1
		WHERE id = ? AND content_version = ?
	`, courseID, version)
	if err != nil {
		return 0, fmt.Errorf("failed to bump content version: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return 0, models.ErrContentVersionConflict
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO course_content_links (course_id, position, content_id)
		VALUES (?, ?, ?)
	`, courseID, version, contentID)
	if err != nil {
		return 0, fmt.Errorf("failed to link content: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit content link: %w", err)
	}

	return version, nil
}

// appendRetryDelay doubles base per attempt up to maxAppendBackoff and spreads it by +/- 50%
func appendRetryDelay(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	delay := base << (attempt - 1)
	if delay <= 0 || delay > maxAppendBackoff {
		delay = maxAppendBackoff
	}
	return delay/2 + time.Duration(rand.Int64N(int64(delay)))
}
