package services

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds returned by the services. Handlers map them to HTTP status codes with errors.Is.
var (
	ErrValidation       = errors.New("invalid content batch")
	ErrPermissionDenied = errors.New("permission denied")
	ErrExternalStore    = errors.New("external store error")
	ErrPersistence      = errors.New("persistence error")
)

// FileProblem describes why one file of a batch was rejected
type FileProblem struct {
	Index    int    `json:"index"`
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// ValidationError lists every rejected file of a batch
type ValidationError struct {
	Problems []FileProblem
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		if p.Filename == "" {
			parts = append(parts, p.Reason)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", p.Filename, p.Reason))
	}
	return strings.Join(parts, "; ")
}

// Unwrap makes errors.Is(err, ErrValidation) hold
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
