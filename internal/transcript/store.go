package transcript

import (
	"strings"
	"sync"

	"video-transcriber/internal/domain"
)

// Store holds the session's live transcript: the editable, searchable
// ordered set of segments. At most one set is live; Replace swaps it
// wholesale and only callers with a fully successful run should do so.
type Store struct {
	mu       sync.RWMutex
	segments []domain.TranscriptSegment
}

// NewStore creates an empty segment store.
func NewStore() *Store {
	return &Store{}
}

// Replace installs a new transcript set, discarding the previous one.
func (s *Store) Replace(segments []domain.TranscriptSegment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.segments = append([]domain.TranscriptSegment(nil), segments...)
}

// Clear resets the store to empty.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.segments = nil
}

// All returns a snapshot of the current set in timeline order.
func (s *Store) All() []domain.TranscriptSegment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.TranscriptSegment(nil), s.segments...)
}

// Len reports the current segment count.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.segments)
}

// Edit replaces the text of the segment with the matching id. Timing and id
// are untouched; an unknown id is a no-op.
func (s *Store) Edit(id int, newText string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.segments {
		if s.segments[i].ID == id {
			s.segments[i].Text = newText
			return true
		}
	}
	return false
}

// Search returns segments whose text contains term, case-insensitive, in
// original order. An empty term returns the full set.
func (s *Store) Search(term string) []domain.TranscriptSegment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if term == "" {
		return append([]domain.TranscriptSegment(nil), s.segments...)
	}

	needle := strings.ToLower(term)
	var matches []domain.TranscriptSegment
	for _, seg := range s.segments {
		if strings.Contains(strings.ToLower(seg.Text), needle) {
			matches = append(matches, seg)
		}
	}
	return matches
}

// FindActive returns the segment whose span covers currentTime, first match
// in sequence order, or false when the time falls outside every segment.
func (s *Store) FindActive(currentTime float64) (domain.TranscriptSegment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, seg := range s.segments {
		if seg.StartTime <= currentTime && currentTime <= seg.EndTime {
			return seg, true
		}
	}
	return domain.TranscriptSegment{}, false
}
