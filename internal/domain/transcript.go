package domain

// TranscriptSegment is one time-coded span of transcribed text. IDs are
// assigned sequentially from 1 across the whole set and stay stable through
// text edits.
type TranscriptSegment struct {
	ID         int     `json:"id"`
	StartTime  float64 `json:"startTime"`
	EndTime    float64 `json:"endTime"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
}

// TranscriptionMeta describes a stored transcription record.
type TranscriptionMeta struct {
	ID              string  `json:"id"`
	FileName        string  `json:"fileName"`
	DurationSeconds float64 `json:"durationSeconds"`
	Language        string  `json:"language"`
	SizeBytes       int64   `json:"sizeBytes"`
	LargeFile       bool    `json:"largeFile"`
	Compressed      bool    `json:"compressed"`
}
