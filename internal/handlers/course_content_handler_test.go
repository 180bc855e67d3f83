package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	authMiddleware "github.com/japanesestudent/content-service/internal/auth/middleware"
	"github.com/japanesestudent/content-service/internal/models"
	"github.com/japanesestudent/content-service/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockContentService is a mock implementation of ContentService
type mockContentService struct {
	result       *models.IngestionResult
	err          error
	course       *models.CourseWithContents
	content      *models.CourseContent
	gotPrincipal models.Principal
	gotCourseID  int
	gotFiles     []services.ContentFile
	gotBodies    []string
}

func (m *mockContentService) AddContents(ctx context.Context, principal models.Principal, courseID int, files []services.ContentFile) (*models.IngestionResult, error) {
	m.gotPrincipal = principal
	m.gotCourseID = courseID
	m.gotFiles = files
	for _, file := range files {
		src, err := file.Source.Open()
		if err != nil {
			return nil, err
		}
		data, _ := io.ReadAll(src)
		src.Close()
		m.gotBodies = append(m.gotBodies, string(data))
	}
	return m.result, m.err
}

func (m *mockContentService) GetCourseContents(ctx context.Context, courseID int) (*models.CourseWithContents, error) {
	return m.course, m.err
}

func (m *mockContentService) GetContent(ctx context.Context, id int) (*models.CourseContent, error) {
	return m.content, m.err
}

// principalMiddleware authenticates every request as principal
func principalMiddleware(principal models.Principal) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(authMiddleware.WithPrincipal(r.Context(), principal)))
		})
	}
}

type uploadPart struct {
	field    string
	filename string
	body     string
}

func multipartBody(t *testing.T, parts ...uploadPart) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, part := range parts {
		fw, err := writer.CreateFormFile(part.field, part.filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(part.body))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func newTestRouter(service ContentService, authMw func(http.Handler) http.Handler) chi.Router {
	handler := NewCourseContentHandler(service, zap.NewNop(), authMw)
	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

var tutor = models.Principal{UserID: 7, Role: models.RoleTutor}

func sampleCourse() *models.CourseWithContents {
	return &models.CourseWithContents{
		Course: models.Course{ID: 1, AuthorID: 7, Title: "Hiragana basics", ContentVersion: 2},
		Contents: []models.CourseContent{
			{ID: 10, CourseID: 1, Name: "lesson1.mp4", Link: "https://drive.google.com/file/d/a/view"},
			{ID: 11, CourseID: 1, Name: "lesson2.mkv", Link: "https://drive.google.com/file/d/b/view"},
		},
	}
}

func TestCourseContentHandler_AddContents(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		parts          []uploadPart
		serviceResult  *models.IngestionResult
		serviceErr     error
		expectedStatus int
		checkBody      func(t *testing.T, body []byte)
	}{
		{
			name: "all files added",
			path: "/courses/1/contents",
			parts: []uploadPart{
				{field: "content", filename: "lesson1.mp4", body: "first"},
				{field: "content", filename: "lesson2.mkv", body: "second"},
			},
			serviceResult:  &models.IngestionResult{Course: sampleCourse()},
			expectedStatus: http.StatusOK,
			checkBody: func(t *testing.T, body []byte) {
				var course models.CourseWithContents
				require.NoError(t, json.Unmarshal(body, &course))
				assert.Equal(t, 1, course.ID)
				require.Len(t, course.Contents, 2)
				assert.Equal(t, "lesson1.mp4", course.Contents[0].Name)
			},
		},
		{
			name:  "partial failure",
			path:  "/courses/1/contents",
			parts: []uploadPart{{field: "content", filename: "lesson1.mp4", body: "first"}},
			serviceResult: &models.IngestionResult{
				Course:   sampleCourse(),
				Failures: []models.FileFailure{{Index: 0, Filename: "lesson1.mp4", Stage: models.StageUpload, Reason: "quota"}},
			},
			expectedStatus: http.StatusBadRequest,
			checkBody: func(t *testing.T, body []byte) {
				var resp PartialFailureResponse
				require.NoError(t, json.Unmarshal(body, &resp))
				assert.NotEmpty(t, resp.Error)
				require.NotNil(t, resp.Course)
				require.Len(t, resp.Failures, 1)
				assert.Equal(t, models.StageUpload, resp.Failures[0].Stage)
			},
		},
		{
			name:  "validation error",
			path:  "/courses/1/contents",
			parts: []uploadPart{{field: "content", filename: "clip.avi", body: "x"}},
			serviceErr: &services.ValidationError{Problems: []services.FileProblem{
				{Index: 0, Filename: "clip.avi", Reason: "file extension is not allowed"},
			}},
			expectedStatus: http.StatusBadRequest,
			checkBody: func(t *testing.T, body []byte) {
				var resp ValidationErrorResponse
				require.NoError(t, json.Unmarshal(body, &resp))
				assert.Contains(t, resp.Error, "clip.avi")
				require.Len(t, resp.Files, 1)
			},
		},
		{
			name:           "permission denied",
			path:           "/courses/1/contents",
			parts:          []uploadPart{{field: "content", filename: "lesson1.mp4", body: "x"}},
			serviceErr:     services.ErrPermissionDenied,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "course not found",
			path:           "/courses/2/contents",
			parts:          []uploadPart{{field: "content", filename: "lesson1.mp4", body: "x"}},
			serviceErr:     models.ErrCourseNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "persistence error",
			path:           "/courses/1/contents",
			parts:          []uploadPart{{field: "content", filename: "lesson1.mp4", body: "x"}},
			serviceErr:     errors.Join(services.ErrPersistence, errors.New("connection refused")),
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "invalid course id",
			path:           "/courses/abc/contents",
			parts:          []uploadPart{{field: "content", filename: "lesson1.mp4", body: "x"}},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &mockContentService{result: tt.serviceResult, err: tt.serviceErr}
			router := newTestRouter(service, principalMiddleware(tutor))

			body, contentType := multipartBody(t, tt.parts...)
			req := httptest.NewRequest(http.MethodPatch, tt.path, body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			if tt.checkBody != nil {
				tt.checkBody(t, w.Body.Bytes())
			}
		})
	}
}

func TestCourseContentHandler_AddContents_PassesFilesInOrder(t *testing.T) {
	service := &mockContentService{result: &models.IngestionResult{Course: sampleCourse()}}
	router := newTestRouter(service, principalMiddleware(tutor))

	body, contentType := multipartBody(t,
		uploadPart{field: "content", filename: "lesson1.mp4", body: "first"},
		uploadPart{field: "other", filename: "ignored.mp4", body: "ignored"},
		uploadPart{field: "content", filename: "lesson2.mkv", body: "second"},
	)
	req := httptest.NewRequest(http.MethodPatch, "/courses/1/contents", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, tutor, service.gotPrincipal)
	assert.Equal(t, 1, service.gotCourseID)
	require.Len(t, service.gotFiles, 2)
	assert.Equal(t, "lesson1.mp4", service.gotFiles[0].Filename)
	assert.Equal(t, int64(len("first")), service.gotFiles[0].Size)
	assert.Equal(t, "lesson2.mkv", service.gotFiles[1].Filename)
	assert.Equal(t, []string{"first", "second"}, service.gotBodies)
}

func TestCourseContentHandler_AddContents_NoFilesReachesService(t *testing.T) {
	service := &mockContentService{err: &services.ValidationError{Problems: []services.FileProblem{{Index: -1, Reason: "no content files provided"}}}}
	router := newTestRouter(service, principalMiddleware(tutor))

	body, contentType := multipartBody(t)
	req := httptest.NewRequest(http.MethodPatch, "/courses/1/contents", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, service.gotFiles)
}

func TestCourseContentHandler_AddContents_NotMultipart(t *testing.T) {
	router := newTestRouter(&mockContentService{}, principalMiddleware(tutor))

	req := httptest.NewRequest(http.MethodPatch, "/courses/1/contents", strings.NewReader(`{"content":[]}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCourseContentHandler_AddContents_RequiresPrincipal(t *testing.T) {
	service := &mockContentService{}
	router := newTestRouter(service, nil)

	body, contentType := multipartBody(t, uploadPart{field: "content", filename: "lesson1.mp4", body: "x"})
	req := httptest.NewRequest(http.MethodPatch, "/courses/1/contents", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, service.gotFiles)
}

func TestCourseContentHandler_GetCourseContents(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		course         *models.CourseWithContents
		err            error
		expectedStatus int
	}{
		{name: "success", path: "/courses/1/contents", course: sampleCourse(), expectedStatus: http.StatusOK},
		{name: "not found", path: "/courses/9/contents", err: models.ErrCourseNotFound, expectedStatus: http.StatusNotFound},
		{name: "invalid id", path: "/courses/0/contents", expectedStatus: http.StatusBadRequest},
		{name: "service error", path: "/courses/1/contents", err: errors.New("database error"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&mockContentService{course: tt.course, err: tt.err}, nil)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var course models.CourseWithContents
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &course))
				assert.Len(t, course.Contents, 2)
			}
		})
	}
}

func TestCourseContentHandler_GetContent(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		content        *models.CourseContent
		err            error
		expectedStatus int
	}{
		{name: "success", path: "/contents/10", content: &models.CourseContent{ID: 10, Name: "lesson1.mp4", StorageID: "secret"}, expectedStatus: http.StatusOK},
		{name: "not found", path: "/contents/99", err: models.ErrContentNotFound, expectedStatus: http.StatusNotFound},
		{name: "invalid id", path: "/contents/x", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&mockContentService{content: tt.content, err: tt.err}, nil)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Contains(t, w.Body.String(), "lesson1.mp4")
				assert.NotContains(t, w.Body.String(), "secret")
			}
		})
	}
}
