package services

import (
	"fmt"
	"mime"
	"mime/multipart"
	"path/filepath"
	"sort"
	"strings"
)

// FileSource opens the bytes of an uploaded file. *multipart.FileHeader implements it.
type FileSource interface {
	Open() (multipart.File, error)
}

// ContentFile is one file of a submitted batch
type ContentFile struct {
	Filename    string
	ContentType string
	Size        int64
	Source      FileSource
}

var videoMIMETypes = map[string]string{
	"mp4": "video/mp4",
	"mkv": "video/x-matroska",
}

// UploadValidator checks a batch before anything is uploaded
type UploadValidator struct {
	maxFileSize int64
	allowed     map[string]struct{}
}

// NewUploadValidator creates a validator accepting files up to maxFileSize bytes
// whose extension is one of allowedExtensions (without the dot, any case)
func NewUploadValidator(maxFileSize int64, allowedExtensions []string) *UploadValidator {
	allowed := make(map[string]struct{}, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
	return &UploadValidator{
		maxFileSize: maxFileSize,
		allowed:     allowed,
	}
}

// MaxFileSize returns the per-file size limit in bytes
func (v *UploadValidator) MaxFileSize() int64 {
	return v.maxFileSize
}

// Validate checks every file of the batch and reports all rejected files at once.
// An empty batch is rejected.
func (v *UploadValidator) Validate(files []ContentFile) error {
	if len(files) == 0 {
		return &ValidationError{Problems: []FileProblem{{Index: -1, Reason: "no content files provided"}}}
	}

	var problems []FileProblem
	for i, file := range files {
		if reason := v.check(file); reason != "" {
			problems = append(problems, FileProblem{Index: i, Filename: file.Filename, Reason: reason})
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func (v *UploadValidator) check(file ContentFile) string {
	if file.Source == nil {
		return "file has no content"
	}
	if file.Size > v.maxFileSize {
		return fmt.Sprintf("file size %d exceeds limit of %d bytes", file.Size, v.maxFileSize)
	}
	if _, ok := v.allowed[extension(file.Filename)]; !ok {
		return fmt.Sprintf("file extension is not allowed, expected one of: %s", strings.Join(v.allowedList(), ", "))
	}
	return ""
}

func (v *UploadValidator) allowedList() []string {
	list := make([]string, 0, len(v.allowed))
	for ext := range v.allowed {
		list = append(list, ext)
	}
	sort.Strings(list)
	return list
}

// ResolveMIMEType returns the file's declared MIME type, or one derived from its extension
func ResolveMIMEType(file ContentFile) string {
	if file.ContentType != "" && file.ContentType != "application/octet-stream" {
		return file.ContentType
	}
	ext := extension(file.Filename)
	if mimeType, ok := videoMIMETypes[ext]; ok {
		return mimeType
	}
	if mimeType := mime.TypeByExtension("." + ext); mimeType != "" {
		return mimeType
	}
	return "application/octet-stream"
}

func extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}
