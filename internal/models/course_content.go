package models

import "time"

// CourseContent is the metadata of one file stored in the external blob store.
// Records are immutable once created.
type CourseContent struct {
	ID              int       `json:"id"`
	CourseID        int       `json:"courseId"`
	Name            string    `json:"name"`
	Link            string    `json:"link"`
	StorageProvider string    `json:"storageProvider"`
	StorageID       string    `json:"-"`
	ContentType     string    `json:"contentType"`
	Size            int64     `json:"size"`
	CreatedAt       time.Time `json:"createdAt"`
}

// UnlinkedContent is a content record that never made it onto its course's content list
type UnlinkedContent struct {
	ID              int
	CourseID        int
	StorageProvider string
	StorageID       string
	CreatedAt       time.Time
}
