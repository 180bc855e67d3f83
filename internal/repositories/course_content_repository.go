package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/japanesestudent/content-service/internal/models"
)

type courseContentRepository struct {
	db *sql.DB
}

// NewCourseContentRepository creates a new course content repository
func NewCourseContentRepository(db *sql.DB) *courseContentRepository {
	return &courseContentRepository{
		db: db,
	}
}

// Create inserts a new content record and sets its ID and creation time
func (r *courseContentRepository) Create(ctx context.Context, content *models.CourseContent) error {
	query := `
		INSERT INTO course_contents (course_id, name, link, storage_provider, storage_id, content_type, size, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	createdAt := time.Now().UTC().Truncate(time.Second)
	result, err := r.db.ExecContext(ctx, query,
		content.CourseID,
		content.Name,
		content.Link,
		content.StorageProvider,
		content.StorageID,
		content.ContentType,
		content.Size,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create course content: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	content.ID = int(id)
	content.CreatedAt = createdAt
	return nil
}

// GetByID retrieves a content record by its ID
func (r *courseContentRepository) GetByID(ctx context.Context, id int) (*models.CourseContent, error) {
	query := `
		SELECT id, course_id, name, link, storage_provider, storage_id, content_type, size, created_at
		FROM course_contents
		WHERE id = ?
		LIMIT 1
	`

	var content models.CourseContent
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&content.ID,
		&content.CourseID,
		&content.Name,
		&content.Link,
		&content.StorageProvider,
		&content.StorageID,
		&content.ContentType,
		&content.Size,
		&content.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrContentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course content by id: %w", err)
	}

	return &content, nil
}

// GetByCourseID resolves a course's content list into content records, in list order
func (r *courseContentRepository) GetByCourseID(ctx context.Context, courseID int) ([]models.CourseContent, error) {
	query := `
		SELECT cc.id, cc.course_id, cc.name, cc.link, cc.storage_provider, cc.storage_id, cc.content_type, cc.size, cc.created_at
		FROM course_content_links l
		INNER JOIN course_contents cc ON cc.id = l.content_id AND cc.course_id = l.course_id
		WHERE l.course_id = ?
		ORDER BY l.position
	`

	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query course contents: %w", err)
	}
	defer rows.Close()

	contents := []models.CourseContent{}
	for rows.Next() {
		var content models.CourseContent
		err := rows.Scan(
			&content.ID,
			&content.CourseID,
			&content.Name,
			&content.Link,
			&content.StorageProvider,
			&content.StorageID,
			&content.ContentType,
			&content.Size,
			&content.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course content: %w", err)
		}
		contents = append(contents, content)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return contents, nil
}

// GetUnlinked retrieves content records created before olderThan that are not on any content list
func (r *courseContentRepository) GetUnlinked(ctx context.Context, olderThan time.Time, limit int) ([]models.UnlinkedContent, error) {
	query := `
		SELECT cc.id, cc.course_id, cc.storage_provider, cc.storage_id, cc.created_at
		FROM course_contents cc
		LEFT JOIN course_content_links l ON l.content_id = cc.id
		WHERE l.content_id IS NULL AND cc.created_at < ?
		ORDER BY cc.id
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query unlinked contents: %w", err)
	}
	defer rows.Close()

	var contents []models.UnlinkedContent
	for rows.Next() {
		var content models.UnlinkedContent
		if err := rows.Scan(&content.ID, &content.CourseID, &content.StorageProvider, &content.StorageID, &content.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan unlinked content: %w", err)
		}
		contents = append(contents, content)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return contents, nil
}

// DeleteUnlinked deletes a content record unless it is on a content list.
// Returns false when nothing was deleted (record gone or linked in the meantime).
func (r *courseContentRepository) DeleteUnlinked(ctx context.Context, id int) (bool, error) {
	query := `
		DELETE FROM course_contents
		WHERE id = ?
		AND NOT EXISTS (SELECT 1 FROM course_content_links WHERE content_id = ?)
	`

	result, err := r.db.ExecContext(ctx, query, id, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete unlinked content: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}
