package models

import "errors"

// Storage-level sentinel errors shared by repositories and services
var (
	ErrCourseNotFound         = errors.New("course not found")
	ErrContentNotFound        = errors.New("content not found")
	ErrContentVersionConflict = errors.New("course content list was modified concurrently")
)
