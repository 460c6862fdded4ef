package transcribe

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"

	"video-transcriber/internal/domain"
	"video-transcriber/internal/progress"
)

const (
	// directLimitBytes is the largest payload submitted in one call.
	directLimitBytes = 25 << 20
	// chunkSizeBytes is the fixed chunk size above the direct limit.
	chunkSizeBytes = 20 << 20
	// chunkPacing is a short yield between chunks so progress consumers
	// stay responsive. Not needed for correctness.
	chunkPacing = 150 * time.Millisecond
	// chunkShare is the slice of the transcription phase spent on chunk
	// submission; the remainder covers stitching/finalizing.
	chunkShare = 0.9
)

// Options parameterizes one transcription run.
type Options struct {
	Language     string
	ModelHint    string
	DurationHint float64
	OnProgress   domain.ProgressFunc
}

// Driver submits audio for speech-to-text and returns an ordered transcript,
// transparently chunking payloads over the direct limit. Chunks go out
// sequentially: chunk i+1 never starts before chunk i's segments are
// appended, so output needs no merge step.
type Driver struct {
	backend  Backend
	readFile func(string) ([]byte, error)
	sleep    func(context.Context, time.Duration) error
	logger   hclog.Logger
}

// NewDriver constructs the production driver over the given backend.
func NewDriver(backend Backend, logger hclog.Logger) *Driver {
	return &Driver{
		backend:  backend,
		readFile: os.ReadFile,
		sleep:    sleepCtx,
		logger:   logger.Named("transcribe"),
	}
}

// NewDriverForTests constructs a driver with injectable dependencies.
func NewDriverForTests(backend Backend, readFile func(string) ([]byte, error), sleep func(context.Context, time.Duration) error) *Driver {
	return &Driver{
		backend:  backend,
		readFile: readFile,
		sleep:    sleep,
		logger:   hclog.NewNullLogger(),
	}
}

// TranscribeFile loads the audio payload from disk and transcribes it.
func (d *Driver) TranscribeFile(ctx context.Context, path string, opts Options) ([]domain.TranscriptSegment, error) {
	audio, err := d.readFile(path)
	if err != nil {
		return nil, &Error{Kind: KindFailed, Message: "cannot read audio payload", Err: err}
	}
	return d.Transcribe(ctx, audio, opts)
}

// Transcribe runs a standalone transcription using the full progress budget.
func (d *Driver) Transcribe(ctx context.Context, audio []byte, opts Options) ([]domain.TranscriptSegment, error) {
	gauge := progress.NewGauge(opts.OnProgress)
	segments, err := d.TranscribeInto(ctx, audio, opts, gauge, progress.Full)
	if err != nil {
		return nil, err
	}
	gauge.Finish("Transcription complete")
	return segments, nil
}

// TranscribeInto is the phase-aware variant used when transcription is one
// stage of a larger workflow.
func (d *Driver) TranscribeInto(ctx context.Context, audio []byte, opts Options, gauge *progress.Gauge, phase progress.Phase) ([]domain.TranscriptSegment, error) {
	if len(audio) == 0 {
		return nil, &Error{Kind: KindFailed, Message: "audio payload is empty"}
	}

	if len(audio) > directLimitBytes {
		return d.chunked(ctx, audio, opts, gauge, phase)
	}
	return d.direct(ctx, audio, opts, gauge, phase)
}

// direct submits the whole payload in one call, simulating size-proportional
// progress while awaiting the result.
func (d *Driver) direct(ctx context.Context, audio []byte, opts Options, gauge *progress.Gauge, phase progress.Phase) ([]domain.TranscriptSegment, error) {
	d.logger.Debug("direct transcription", "bytes", len(audio))
	gauge.ReportAt(phase, 0, "Transcribing audio")

	// The backend exposes no native progress, so estimate from payload
	// size while the call is in flight, capped below the completion mark.
	done := make(chan struct{})
	go func() {
		expected := time.Duration(float64(len(audio)) / float64(1<<20) * float64(250*time.Millisecond))
		if expected <= 0 {
			return
		}
		start := time.Now()
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				fraction := float64(time.Since(start)) / float64(expected)
				if fraction > chunkShare {
					fraction = chunkShare
				}
				gauge.ReportAt(phase, fraction, "Transcribing audio")
			}
		}
	}()

	raw, err := d.backend.Submit(ctx, audio, SubmitOptions{
		Language:        opts.Language,
		ModelHint:       opts.ModelHint,
		DurationSeconds: opts.DurationHint,
	})
	close(done)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, classify(err)
	}

	gauge.ReportAt(phase, chunkShare, "Finalizing transcript")
	segments := rebase(raw, 0, 1)
	gauge.ReportAt(phase, 1, "Transcript ready")
	return segments, nil
}

// chunked splits the payload into fixed-size byte ranges, submits them
// sequentially, and stitches results into one continuous timeline.
func (d *Driver) chunked(ctx context.Context, audio []byte, opts Options, gauge *progress.Gauge, phase progress.Phase) ([]domain.TranscriptSegment, error) {
	chunks := chunkPayload(audio, chunkSizeBytes)
	duration := opts.DurationHint
	if duration <= 0 {
		// No duration from the probe: estimate from payload size at the
		// compact speech bitrate (64kbps is 8KB per second). Without this,
		// every chunk offset would be zero and stitched timestamps would
		// restart at 0 per chunk.
		duration = float64(len(audio)) / 8000
	}
	chunkDuration := duration / float64(len(chunks))
	d.logger.Info("chunked transcription", "bytes", len(audio), "chunks", len(chunks), "chunkSeconds", chunkDuration)

	var segments []domain.TranscriptSegment
	lastEnd := 0.0
	nextID := 1
	for i, chunk := range chunks {
		gauge.ReportAt(phase, float64(i)/float64(len(chunks))*chunkShare,
			fmt.Sprintf("Transcribing chunk %d of %d", i+1, len(chunks)))

		raw, err := d.backend.Submit(ctx, chunk, SubmitOptions{
			Language:        opts.Language,
			ModelHint:       opts.ModelHint,
			DurationSeconds: chunkDuration,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, classify(err)
		}

		// Re-base chunk-relative timestamps onto the whole input's
		// timeline before the next chunk is allowed to start. The offset
		// never falls below the previous chunk's last end, so stitched
		// segments stay non-overlapping even when a chunk overruns its
		// nominal duration.
		offset := float64(i) * chunkDuration
		if offset < lastEnd {
			offset = lastEnd
		}
		rebased := rebase(raw, offset, nextID)
		if n := len(rebased); n > 0 {
			lastEnd = rebased[n-1].EndTime
		}
		nextID += len(rebased)
		segments = append(segments, rebased...)

		gauge.ReportAt(phase, float64(i+1)/float64(len(chunks))*chunkShare,
			fmt.Sprintf("Transcribed chunk %d of %d", i+1, len(chunks)))

		if i < len(chunks)-1 {
			if err := d.sleep(ctx, chunkPacing); err != nil {
				return nil, err
			}
		}
	}

	gauge.ReportAt(phase, 1, "Transcript ready")
	return segments, nil
}

// rebase shifts backend segments by the chunk's start offset and assigns
// sequential ids starting at firstID.
func rebase(raw []BackendSegment, offset float64, firstID int) []domain.TranscriptSegment {
	segments := make([]domain.TranscriptSegment, 0, len(raw))
	for i, seg := range raw {
		segments = append(segments, domain.TranscriptSegment{
			ID:         firstID + i,
			StartTime:  seg.StartTime + offset,
			EndTime:    seg.EndTime + offset,
			Text:       seg.Text,
			Confidence: seg.Confidence,
		})
	}
	return segments
}

// chunkPayload slices audio into ranges of at most size bytes. No copies:
// chunks alias the input payload.
func chunkPayload(audio []byte, size int) [][]byte {
	var chunks [][]byte
	for start := 0; start < len(audio); start += size {
		end := start + size
		if end > len(audio) {
			end = len(audio)
		}
		chunks = append(chunks, audio[start:end])
	}
	return chunks
}

// sleepCtx pauses for d or until the context ends.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
