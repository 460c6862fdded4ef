package transcribe

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"video-transcriber/internal/domain"
)

// scriptedBackend records submissions and emits fixed-length segments per
// chunk, timestamps relative to the chunk start.
type scriptedBackend struct {
	submissions [][]byte
	segsPer     int
	err         error
}

func (b *scriptedBackend) Submit(_ context.Context, audio []byte, opts SubmitOptions) ([]BackendSegment, error) {
	b.submissions = append(b.submissions, audio)
	if b.err != nil {
		return nil, b.err
	}

	segs := make([]BackendSegment, b.segsPer)
	span := opts.DurationSeconds / float64(b.segsPer)
	for i := range segs {
		segs[i] = BackendSegment{
			StartTime:  float64(i) * span,
			EndTime:    float64(i+1) * span,
			Text:       fmt.Sprintf("segment %d", i),
			Confidence: 0.9,
		}
	}
	return segs, nil
}

// noSleep is an instantaneous pacing function for tests.
func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

// newTestDriver builds a driver over the scripted backend.
func newTestDriver(backend Backend) *Driver {
	return NewDriverForTests(backend, nil, noSleep)
}

// timeoutErr mimics a net-style timeout error.
type timeoutErr struct{}

func (timeoutErr) Error() string { return "i/o timeout" }
func (timeoutErr) Timeout() bool { return true }

// TestDirectModeBelowThreshold verifies small payloads go out in one call.
func TestDirectModeBelowThreshold(t *testing.T) {
	backend := &scriptedBackend{segsPer: 4}
	d := newTestDriver(backend)

	audio := make([]byte, 1<<20)
	segments, err := d.Transcribe(context.Background(), audio, Options{DurationHint: 40})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if len(backend.submissions) != 1 {
		t.Fatalf("submissions = %d, want 1", len(backend.submissions))
	}
	if len(segments) != 4 {
		t.Fatalf("segments = %d, want 4", len(segments))
	}
	if segments[0].ID != 1 || segments[3].ID != 4 {
		t.Fatalf("ids = %d..%d, want 1..4", segments[0].ID, segments[3].ID)
	}
}

// TestChunkedModeSplitsAndStitches covers the 60MB/120s reference case:
// three 20MB chunks with continuous timestamps ending near the hint.
func TestChunkedModeSplitsAndStitches(t *testing.T) {
	backend := &scriptedBackend{segsPer: 5}
	d := newTestDriver(backend)

	audio := make([]byte, 60<<20)
	segments, err := d.Transcribe(context.Background(), audio, Options{DurationHint: 120})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}

	if len(backend.submissions) != 3 {
		t.Fatalf("submissions = %d, want 3 chunks", len(backend.submissions))
	}
	for i, sub := range backend.submissions {
		if len(sub) != 20<<20 {
			t.Fatalf("chunk %d size = %d, want 20MB", i, len(sub))
		}
	}

	if len(segments) != 15 {
		t.Fatalf("segments = %d, want 15 (sum of per-chunk counts)", len(segments))
	}
	for i, seg := range segments {
		if seg.ID != i+1 {
			t.Fatalf("segment %d id = %d, want gapless 1..N", i, seg.ID)
		}
		if seg.StartTime >= seg.EndTime {
			t.Fatalf("segment %d has start %v >= end %v", i, seg.StartTime, seg.EndTime)
		}
		if i > 0 && segments[i].StartTime < segments[i-1].EndTime {
			t.Fatalf("segment %d overlaps previous across chunk boundary", i)
		}
	}

	last := segments[len(segments)-1].EndTime
	if last < 119 || last > 121 {
		t.Fatalf("last end = %v, want about 120s", last)
	}
}

// fixedSpanBackend emits the same chunk-relative segments for every chunk,
// ignoring the duration hint entirely.
type fixedSpanBackend struct {
	spans [][2]float64
}

func (b *fixedSpanBackend) Submit(_ context.Context, _ []byte, _ SubmitOptions) ([]BackendSegment, error) {
	segs := make([]BackendSegment, 0, len(b.spans))
	for i, span := range b.spans {
		segs = append(segs, BackendSegment{
			StartTime:  span[0],
			EndTime:    span[1],
			Text:       fmt.Sprintf("span %d", i),
			Confidence: 0.9,
		})
	}
	return segs, nil
}

// TestChunkedWithoutDurationHintKeepsTimelineOrdered verifies stitching
// stays on one continuous timeline when the probe supplied no duration:
// chunk offsets fall back to a payload-size estimate instead of zero.
func TestChunkedWithoutDurationHintKeepsTimelineOrdered(t *testing.T) {
	backend := &fixedSpanBackend{spans: [][2]float64{{0, 2}, {2, 4}}}
	d := newTestDriver(backend)

	segments, err := d.Transcribe(context.Background(), make([]byte, 60<<20), Options{DurationHint: 0})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if len(segments) != 6 {
		t.Fatalf("segments = %d, want 6 across 3 chunks", len(segments))
	}
	for i, seg := range segments {
		if seg.ID != i+1 {
			t.Fatalf("segment %d id = %d, want gapless 1..N", i, seg.ID)
		}
		if i > 0 && seg.StartTime < segments[i-1].EndTime {
			t.Fatalf("segment %d (id %d) starts at %v before previous end %v",
				i, seg.ID, seg.StartTime, segments[i-1].EndTime)
		}
	}
}

// TestChunkOverrunNeverOverlaps verifies the stitched timeline stays
// non-overlapping when a chunk's segments run past its nominal duration.
func TestChunkOverrunNeverOverlaps(t *testing.T) {
	backend := &fixedSpanBackend{spans: [][2]float64{{0, 2}, {2, 4}}}
	d := newTestDriver(backend)

	// 3 chunks at a nominal 2s each, but each chunk actually spans 4s.
	segments, err := d.Transcribe(context.Background(), make([]byte, 60<<20), Options{DurationHint: 6})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	for i := 1; i < len(segments); i++ {
		if segments[i].StartTime < segments[i-1].EndTime {
			t.Fatalf("segment %d overlaps previous: %v < %v",
				i, segments[i].StartTime, segments[i-1].EndTime)
		}
	}
}

// TestChunkedProgressMonotoneEndsAt100 verifies the stitched progress
// stream for a chunked run.
func TestChunkedProgressMonotoneEndsAt100(t *testing.T) {
	backend := &scriptedBackend{segsPer: 2}
	d := newTestDriver(backend)

	var percents []float64
	audio := make([]byte, 45<<20)
	_, err := d.Transcribe(context.Background(), audio, Options{
		DurationHint: 90,
		OnProgress:   func(e domain.ProgressEvent) { percents = append(percents, e.Percent) },
	})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}

	for i := 1; i < len(percents); i++ {
		if percents[i] < percents[i-1] {
			t.Fatalf("progress regressed: %v", percents)
		}
	}
	if percents[len(percents)-1] != 100 {
		t.Fatalf("final percent = %v, want 100", percents[len(percents)-1])
	}
}

// TestTimeoutClassification verifies timeout errors carry distinct retry
// guidance from generic failures.
func TestTimeoutClassification(t *testing.T) {
	d := newTestDriver(&scriptedBackend{err: timeoutErr{}})
	_, err := d.Transcribe(context.Background(), make([]byte, 1<<10), Options{DurationHint: 10})
	if !IsTimeout(err) {
		t.Fatalf("error = %v, want timeout kind", err)
	}

	d = newTestDriver(&scriptedBackend{err: fmt.Errorf("connection refused")})
	_, err = d.Transcribe(context.Background(), make([]byte, 1<<10), Options{DurationHint: 10})
	if IsTimeout(err) {
		t.Fatal("generic failure misclassified as timeout")
	}
	var tErr *Error
	if !errors.As(err, &tErr) || tErr.Kind != KindFailed {
		t.Fatalf("error = %v, want KindFailed", err)
	}
}

// TestEmptyPayloadRejected verifies the fail-fast on empty audio.
func TestEmptyPayloadRejected(t *testing.T) {
	d := newTestDriver(&scriptedBackend{segsPer: 1})
	if _, err := d.Transcribe(context.Background(), nil, Options{}); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

// TestCancellationStopsChunking verifies a cancelled context halts the
// sequential chunk loop.
func TestCancellationStopsChunking(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	backend := &cancellingBackend{cancel: cancel, inner: &scriptedBackend{segsPer: 1}}
	d := newTestDriver(backend)

	_, err := d.Transcribe(ctx, make([]byte, 45<<20), Options{DurationHint: 90})
	if err == nil {
		t.Fatal("expected error after cancellation")
	}
	if backend.calls > 1 {
		t.Fatalf("backend called %d times after cancel, want 1", backend.calls)
	}
}

// cancellingBackend cancels the run during its first submission.
type cancellingBackend struct {
	cancel context.CancelFunc
	inner  Backend
	calls  int
}

func (b *cancellingBackend) Submit(ctx context.Context, audio []byte, opts SubmitOptions) ([]BackendSegment, error) {
	b.calls++
	b.cancel()
	return b.inner.Submit(ctx, audio, opts)
}

// TestSimulatedBackendSpansHint verifies the placeholder generator covers
// the hinted duration with ordered, confident segments.
func TestSimulatedBackendSpansHint(t *testing.T) {
	b := NewSimulatedBackend(42)
	segs, err := b.Submit(context.Background(), make([]byte, 1<<20), SubmitOptions{DurationSeconds: 60})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if len(segs) == 0 {
		t.Fatal("expected segments")
	}

	for i, seg := range segs {
		if seg.StartTime >= seg.EndTime {
			t.Fatalf("segment %d start >= end", i)
		}
		if i > 0 && seg.StartTime < segs[i-1].EndTime {
			t.Fatalf("segment %d overlaps previous", i)
		}
		if seg.Confidence < 0.85 || seg.Confidence > 0.99 {
			t.Fatalf("segment %d confidence = %v out of range", i, seg.Confidence)
		}
	}
	// The generator may drop a trailing sliver under half a second.
	if last := segs[len(segs)-1].EndTime; last < 59.5 || last > 60 {
		t.Fatalf("last end = %v, want within [59.5, 60]", last)
	}
}
