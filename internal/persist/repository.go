package persist

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"video-transcriber/internal/domain"
)

// TranscriptionRecord is the stored header of one completed transcription.
type TranscriptionRecord struct {
	ID              string  `gorm:"primaryKey"`
	FileName        string  `gorm:"index"`
	DurationSeconds float64
	Language        string
	SizeBytes       int64
	LargeFile       bool
	Compressed      bool
	CreatedAt       int64 `gorm:"autoCreateTime"`

	Segments []SegmentRecord `gorm:"foreignKey:TranscriptionID;constraint:OnDelete:CASCADE"`
}

// SegmentRecord is one stored transcript segment row.
type SegmentRecord struct {
	RowID           uint   `gorm:"primaryKey;autoIncrement"`
	TranscriptionID string `gorm:"index"`
	SegmentID       int
	StartTime       float64
	EndTime         float64
	Text            string
	Confidence      float64
}

// Repository stores completed transcriptions and their segments.
type Repository struct {
	db *gorm.DB
}

// Open connects to the sqlite database at path and migrates the schema.
func Open(path string) (*Repository, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open transcription database: %w", err)
	}
	if err := db.AutoMigrate(&TranscriptionRecord{}, &SegmentRecord{}); err != nil {
		return nil, fmt.Errorf("migrate transcription schema: %w", err)
	}
	return &Repository{db: db}, nil
}

// OpenInMemory opens a throwaway in-memory database, mainly for tests.
func OpenInMemory() (*Repository, error) {
	return Open(":memory:")
}

// Save persists a transcription header plus its segments and returns the
// generated record id.
func (r *Repository) Save(meta domain.TranscriptionMeta, segments []domain.TranscriptSegment) (string, error) {
	if len(segments) == 0 {
		return "", fmt.Errorf("refusing to save empty transcription")
	}

	id := meta.ID
	if id == "" {
		id = uuid.NewString()
	}

	record := TranscriptionRecord{
		ID:              id,
		FileName:        meta.FileName,
		DurationSeconds: meta.DurationSeconds,
		Language:        meta.Language,
		SizeBytes:       meta.SizeBytes,
		LargeFile:       meta.LargeFile,
		Compressed:      meta.Compressed,
	}
	for _, seg := range segments {
		record.Segments = append(record.Segments, SegmentRecord{
			TranscriptionID: id,
			SegmentID:       seg.ID,
			StartTime:       seg.StartTime,
			EndTime:         seg.EndTime,
			Text:            seg.Text,
			Confidence:      seg.Confidence,
		})
	}

	if err := r.db.Create(&record).Error; err != nil {
		return "", fmt.Errorf("save transcription: %w", err)
	}
	return id, nil
}

// List returns stored transcription headers, newest first.
func (r *Repository) List() ([]domain.TranscriptionMeta, error) {
	var records []TranscriptionRecord
	if err := r.db.Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list transcriptions: %w", err)
	}

	metas := make([]domain.TranscriptionMeta, 0, len(records))
	for _, rec := range records {
		metas = append(metas, metaFromRecord(rec))
	}
	return metas, nil
}

// Get loads one transcription with its segments in timeline order.
func (r *Repository) Get(id string) (domain.TranscriptionMeta, []domain.TranscriptSegment, error) {
	var record TranscriptionRecord
	err := r.db.Preload("Segments", func(db *gorm.DB) *gorm.DB {
		return db.Order("segment_id ASC")
	}).First(&record, "id = ?", id).Error
	if err != nil {
		return domain.TranscriptionMeta{}, nil, fmt.Errorf("load transcription %s: %w", id, err)
	}

	segments := make([]domain.TranscriptSegment, 0, len(record.Segments))
	for _, row := range record.Segments {
		segments = append(segments, domain.TranscriptSegment{
			ID:         row.SegmentID,
			StartTime:  row.StartTime,
			EndTime:    row.EndTime,
			Text:       row.Text,
			Confidence: row.Confidence,
		})
	}
	return metaFromRecord(record), segments, nil
}

// Delete removes one transcription and its segments.
func (r *Repository) Delete(id string) error {
	if err := r.db.Delete(&SegmentRecord{}, "transcription_id = ?", id).Error; err != nil {
		return fmt.Errorf("delete transcription segments: %w", err)
	}
	result := r.db.Delete(&TranscriptionRecord{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete transcription %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("transcription %s not found", id)
	}
	return nil
}

func metaFromRecord(rec TranscriptionRecord) domain.TranscriptionMeta {
	return domain.TranscriptionMeta{
		ID:              rec.ID,
		FileName:        rec.FileName,
		DurationSeconds: rec.DurationSeconds,
		Language:        rec.Language,
		SizeBytes:       rec.SizeBytes,
		LargeFile:       rec.LargeFile,
		Compressed:      rec.Compressed,
	}
}
