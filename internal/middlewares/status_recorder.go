package middlewares

import "net/http"

// StatusRecorder wraps http.ResponseWriter to capture the status code
type StatusRecorder struct {
	http.ResponseWriter
	status int
}

// NewStatusRecorder wraps w, defaulting the status to 200
func NewStatusRecorder(w http.ResponseWriter) *StatusRecorder {
	return &StatusRecorder{ResponseWriter: w, status: http.StatusOK}
}

// WriteHeader records the status code and forwards it
func (rw *StatusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Status returns the recorded status code
func (rw *StatusRecorder) Status() int {
	return rw.status
}

// Unwrap lets http.ResponseController reach the underlying writer
func (rw *StatusRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
