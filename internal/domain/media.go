package domain

// MediaAsset is an immutable handle to a user-supplied media file. A new
// upload or an accepted compression outcome replaces it wholesale.
type MediaAsset struct {
	Path      string `json:"path"`
	Name      string `json:"name"`
	MimeType  string `json:"mimeType"`
	SizeBytes int64  `json:"sizeBytes"`
	LargeFile bool   `json:"largeFile"`
}

// QualityTier is the coarse compression quality selector.
type QualityTier string

const (
	QualityLow    QualityTier = "low"
	QualityMedium QualityTier = "medium"
	QualityHigh   QualityTier = "high"
)

// ExtractionMode selects audio-only extraction or full video re-compression.
type ExtractionMode string

const (
	ModeAudioOnly ExtractionMode = "audio-only"
	ModeCompress  ExtractionMode = "compress"
)

// CompressionSettings parameterizes the engine re-encode. Immutable once a
// run starts.
type CompressionSettings struct {
	Quality          QualityTier `json:"quality"`
	MaxWidth         int         `json:"maxWidth"`
	MaxHeight        int         `json:"maxHeight"`
	FrameRate        int         `json:"frameRate"`
	AudioBitrateKbps int         `json:"audioBitrateKbps"`
}

// ExtractionRequest is consumed once by the orchestrator.
type ExtractionRequest struct {
	Asset    MediaAsset          `json:"asset"`
	Mode     ExtractionMode      `json:"mode"`
	Settings CompressionSettings `json:"settings"`
}

// ProgressEvent is one step of a run's unified 0-100 progress stream.
// Percent is non-decreasing within a run and the last event is always 100.
type ProgressEvent struct {
	Percent float64 `json:"percent"`
	Stage   string  `json:"stage"`
}

// ProgressFunc receives progress events during a run. May be nil.
type ProgressFunc func(ProgressEvent)

// ExtractionResult describes one successful extraction or compression run.
// OutputSize larger than OriginalSize is tolerated; the ratio still reports
// originalSize/outputSize.
type ExtractionResult struct {
	OutputPath        string  `json:"outputPath"`
	OriginalSize      int64   `json:"originalSize"`
	OutputSize        int64   `json:"outputSize"`
	CompressionRatio  float64 `json:"compressionRatio"`
	SavedBytes        int64   `json:"savedBytes"`
	AudioOnly         bool    `json:"audioOnly"`
	ProcessingSeconds float64 `json:"processingSeconds"`
}
