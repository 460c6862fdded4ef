package domain

// JobStatus tracks each workflow stage for a single processing run.
type JobStatus string

const (
	JobStatusIdle         JobStatus = "idle"
	JobStatusExtracting   JobStatus = "extracting"
	JobStatusTranscribing JobStatus = "transcribing"
	JobStatusFinalizing   JobStatus = "finalizing"
	JobStatusDone         JobStatus = "done"
	JobStatusFailed       JobStatus = "failed"
	JobStatusCancelled    JobStatus = "cancelled"
)

// AccuracyTier selects the model hint sent to the transcription backend.
type AccuracyTier string

const (
	AccuracyFast     AccuracyTier = "fast"
	AccuracyBalanced AccuracyTier = "balanced"
	AccuracyBest     AccuracyTier = "best"
)

// Settings contains user-selectable runtime configuration. Loaded once at
// startup, merged with defaults, and passed explicitly into each request.
type Settings struct {
	Language               string       `json:"language"`
	Accuracy               AccuracyTier `json:"accuracy"`
	OutputDir              string       `json:"outputDir"`
	MaxFileSizeBytes       int64        `json:"maxFileSizeBytes"`
	LargeFileWarnBytes     int64        `json:"largeFileWarnBytes"`
	LargeFileOptimizations bool         `json:"largeFileOptimizations"`
}

// Job stores the current run identity and lifecycle status.
type Job struct {
	ID     string    `json:"id"`
	Status JobStatus `json:"status"`
}
