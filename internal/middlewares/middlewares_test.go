package middlewares

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestIDMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		incoming   string
		expectSame bool
	}{
		{name: "generates id", incoming: ""},
		{name: "keeps caller id", incoming: "req-123", expectSame: true},
		{name: "replaces oversized id", incoming: strings.Repeat("x", 200)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetRequestID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			require.NotEmpty(t, seen)
			assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
			assert.Equal(t, tt.expectSame, seen == tt.incoming)
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	handler := RecoveryMiddleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name           string
		allowed        []string
		origin         string
		method         string
		expectedOrigin string
		expectedStatus int
	}{
		{name: "wildcard", allowed: []string{"*"}, origin: "https://a.example", method: http.MethodGet, expectedOrigin: "*", expectedStatus: http.StatusOK},
		{name: "listed origin", allowed: []string{"https://a.example"}, origin: "https://A.example", method: http.MethodGet, expectedOrigin: "https://A.example", expectedStatus: http.StatusOK},
		{name: "unlisted origin", allowed: []string{"https://a.example"}, origin: "https://b.example", method: http.MethodGet, expectedStatus: http.StatusOK},
		{name: "preflight", allowed: []string{"*"}, origin: "https://a.example", method: http.MethodOptions, expectedOrigin: "*", expectedStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()

			CORSMiddleware(tt.allowed)(next).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch)
		})
	}
}

func TestRequestSizeLimitMiddleware(t *testing.T) {
	handler := RequestSizeLimitMiddleware(10)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := new(bytes.Buffer)
		if _, err := buf.ReadFrom(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("within limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/", strings.NewReader("0123456789")))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("declared too large", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/", strings.NewReader("0123456789a")))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("undeclared too large", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader("0123456789a"))
		req.ContentLength = -1
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestMetricsMiddleware(t *testing.T) {
	r := chi.NewRouter()
	r.Use(MetricsMiddleware)
	r.Get("/courses/{id}/contents", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/courses/5/contents", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	count := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/courses/{id}/contents", "418"))
	assert.GreaterOrEqual(t, count, float64(1))
}

func TestStatusRecorder(t *testing.T) {
	w := httptest.NewRecorder()
	rec := NewStatusRecorder(w)
	assert.Equal(t, http.StatusOK, rec.Status())

	rec.WriteHeader(http.StatusCreated)
	assert.Equal(t, http.StatusCreated, rec.Status())
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, w, rec.Unwrap())
}
