package models

// FileState is the position of one file in the ingestion state machine:
// Validated -> Uploaded -> Recorded -> Linked -> Done, or Failed at some stage
type FileState string

const (
	FileStateValidated FileState = "validated"
	FileStateUploaded  FileState = "uploaded"
	FileStateRecorded  FileState = "recorded"
	FileStateLinked    FileState = "linked"
	FileStateDone      FileState = "done"
	FileStateFailed    FileState = "failed"
)

// IngestionStage names the pipeline step that failed for a file
type IngestionStage string

const (
	StageUpload IngestionStage = "upload"
	StageRecord IngestionStage = "record"
	StageLink   IngestionStage = "link"
)

// FileFailure describes a file of a batch that did not reach FileStateDone
type FileFailure struct {
	Index    int            `json:"index"`
	Filename string         `json:"filename"`
	Stage    IngestionStage `json:"stage"`
	Reason   string         `json:"reason"`
}

// IngestionResult is the outcome of one batch
type IngestionResult struct {
	Course   *CourseWithContents `json:"course"`
	Failures []FileFailure       `json:"failures,omitempty"`
}

// OrphanReport describes remote or local state left behind by a partially failed file.
// ContentID is zero when the content record was never created.
type OrphanReport struct {
	CourseID        int            `json:"courseId"`
	ContentID       int            `json:"contentId,omitempty"`
	StorageProvider string         `json:"storageProvider"`
	StorageID       string         `json:"storageId"`
	FailedStage     IngestionStage `json:"failedStage"`
	Reason          string         `json:"reason"`
}
