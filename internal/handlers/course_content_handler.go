package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	authMiddleware "github.com/japanesestudent/content-service/internal/auth/middleware"
	"github.com/japanesestudent/content-service/internal/models"
	"github.com/japanesestudent/content-service/internal/services"
	"go.uber.org/zap"
)

// ContentFormField is the multipart field carrying content files
const ContentFormField = "content"

// multipart parts above this size are spooled to temporary files
const multipartMemory = 32 << 20

// ContentService defines the interface for course content operations
type ContentService interface {
	// Method AddContents uploads a batch of files and appends them to a course's content list.
	//
	// "principal" parameter is the authenticated caller.
	// "courseID" parameter is the ID of the target course.
	// "files" parameter is the batch in submission order.
	//
	// If the batch is rejected as a whole, the error will be returned together with "nil" value.
	// Per-file failures are reported in the result.
	AddContents(ctx context.Context, principal models.Principal, courseID int, files []services.ContentFile) (*models.IngestionResult, error)
	// Method GetCourseContents retrieves a course with its contents in list order.
	//
	// "courseID" parameter is the ID of the course.
	//
	// If some error will occur during data retrieve, the error will be returned together with "nil" value.
	GetCourseContents(ctx context.Context, courseID int) (*models.CourseWithContents, error)
	// Method GetContent retrieves a single content record.
	//
	// "id" parameter is the ID of the content record.
	//
	// If some error will occur during data retrieve, the error will be returned together with "nil" value.
	GetContent(ctx context.Context, id int) (*models.CourseContent, error)
}

// CourseContentHandler handles course content HTTP requests
type CourseContentHandler struct {
	BaseHandler
	contentService ContentService
	authMw         func(http.Handler) http.Handler
}

// PartialFailureResponse is returned when some files of a batch failed
type PartialFailureResponse struct {
	Error    string                     `json:"error"`
	Course   *models.CourseWithContents `json:"course"`
	Failures []models.FileFailure       `json:"failures"`
}

// ValidationErrorResponse is returned when a batch is rejected by validation
type ValidationErrorResponse struct {
	Error string                 `json:"error"`
	Files []services.FileProblem `json:"files"`
}

// NewCourseContentHandler creates a new course content handler
func NewCourseContentHandler(contentService ContentService, logger *zap.Logger, authMw func(http.Handler) http.Handler) *CourseContentHandler {
	return &CourseContentHandler{
		BaseHandler:    BaseHandler{Logger: logger},
		contentService: contentService,
		authMw:         authMw,
	}
}

// RegisterRoutes registers all course content routes
func (h *CourseContentHandler) RegisterRoutes(r chi.Router) {
	r.Get("/courses/{id}/contents", h.GetCourseContents)
	r.Get("/contents/{id}", h.GetContent)

	r.Group(func(r chi.Router) {
		if h.authMw != nil {
			r.Use(h.authMw)
		}
		r.Patch("/courses/{id}/contents", h.AddContents)
	})
}

// AddContents handles PATCH /courses/{id}/contents
// @Summary Add content files to a course
// @Description Upload video files (mp4, mkv) and append them to the course's content list in submission order. Requires tutor or admin role; tutors may only change their own courses.
// @Tags contents
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param content formData file true "Content files (repeat the field for several files)"
// @Success 200 {object} models.CourseWithContents
// @Failure 400 {object} PartialFailureResponse "Invalid batch, insufficient role or some files failed"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 413 {object} map[string]string "Request too large"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{id}/contents [patch]
func (h *CourseContentHandler) AddContents(w http.ResponseWriter, r *http.Request) {
	principal, ok := authMiddleware.GetPrincipal(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	courseID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || courseID <= 0 {
		h.RespondError(w, http.StatusBadRequest, "invalid course id")
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.RespondError(w, http.StatusRequestEntityTooLarge, "request too large")
			return
		}
		h.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File[ContentFormField]
	files := make([]services.ContentFile, 0, len(headers))
	for _, header := range headers {
		files = append(files, services.ContentFile{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Source:      header,
		})
	}

	result, err := h.contentService.AddContents(r.Context(), principal, courseID, files)
	if err != nil {
		h.respondServiceError(w, err, courseID)
		return
	}

	if len(result.Failures) > 0 {
		h.RespondJSON(w, http.StatusBadRequest, PartialFailureResponse{
			Error:    "some content files could not be added",
			Course:   result.Course,
			Failures: result.Failures,
		})
		return
	}

	h.RespondJSON(w, http.StatusOK, result.Course)
}

func (h *CourseContentHandler) respondServiceError(w http.ResponseWriter, err error, courseID int) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		h.RespondJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error: validationErr.Error(),
			Files: validationErr.Problems,
		})
	case errors.Is(err, services.ErrPermissionDenied):
		h.Logger.Info("content change denied", zap.Int("course_id", courseID), zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, "insufficient permissions to change course content")
	case errors.Is(err, models.ErrCourseNotFound):
		h.RespondError(w, http.StatusNotFound, "course not found")
	default:
		h.Logger.Error("failed to add course contents", zap.Int("course_id", courseID), zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to add course contents")
	}
}

// GetCourseContents handles GET /courses/{id}/contents
// @Summary Get course contents
// @Description Retrieve a course with its content records in list order
// @Tags contents
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} models.CourseWithContents
// @Failure 400 {object} map[string]string "Invalid course id"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{id}/contents [get]
func (h *CourseContentHandler) GetCourseContents(w http.ResponseWriter, r *http.Request) {
	courseID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || courseID <= 0 {
		h.RespondError(w, http.StatusBadRequest, "invalid course id")
		return
	}

	course, err := h.contentService.GetCourseContents(r.Context(), courseID)
	if err != nil {
		if errors.Is(err, models.ErrCourseNotFound) {
			h.RespondError(w, http.StatusNotFound, "course not found")
			return
		}
		h.Logger.Error("failed to get course contents", zap.Int("course_id", courseID), zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to get course contents")
		return
	}

	h.RespondJSON(w, http.StatusOK, course)
}

// GetContent handles GET /contents/{id}
// @Summary Get content record
// @Description Retrieve a single content record by its ID
// @Tags contents
// @Produce json
// @Param id path int true "Content ID"
// @Success 200 {object} models.CourseContent
// @Failure 400 {object} map[string]string "Invalid content id"
// @Failure 404 {object} map[string]string "Content not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /contents/{id} [get]
func (h *CourseContentHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		h.RespondError(w, http.StatusBadRequest, "invalid content id")
		return
	}

	content, err := h.contentService.GetContent(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrContentNotFound) {
			h.RespondError(w, http.StatusNotFound, "content not found")
			return
		}
		h.Logger.Error("failed to get content", zap.Int("content_id", id), zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to get content")
		return
	}

	h.RespondJSON(w, http.StatusOK, content)
}
