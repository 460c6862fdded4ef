package transcribe

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// phrases feed the placeholder transcript generator.
var phrases = []string{
	"Thanks everyone for joining today's session.",
	"Let's take a closer look at the quarterly numbers.",
	"The main takeaway here is the timeline shift.",
	"We should follow up on this point next week.",
	"As you can see on the current slide,",
	"this approach reduces the overall processing cost.",
	"Are there any questions so far?",
	"Moving on to the next topic,",
	"the integration work is mostly complete.",
	"I'll share the detailed notes after the call.",
}

// SimulatedBackend is a stand-in for a real speech-recognition service: it
// produces plausible timed segments spanning the hinted duration. Real
// deployments replace it behind the Backend interface without touching the
// driver.
type SimulatedBackend struct {
	mu      sync.Mutex
	rng     *rand.Rand
	latency time.Duration
}

// NewSimulatedBackend creates a generator seeded for reproducibility.
func NewSimulatedBackend(seed int64) *SimulatedBackend {
	return &SimulatedBackend{rng: rand.New(rand.NewSource(seed))}
}

// WithLatency adds a fixed per-call delay to mimic a remote round trip.
func (b *SimulatedBackend) WithLatency(d time.Duration) *SimulatedBackend {
	b.latency = d
	return b
}

// Submit generates segments covering [0, DurationSeconds] with timestamps
// relative to the payload start, matching the backend contract.
func (b *SimulatedBackend) Submit(ctx context.Context, audio []byte, opts SubmitOptions) ([]BackendSegment, error) {
	if b.latency > 0 {
		if err := sleepCtx(ctx, b.latency); err != nil {
			return nil, err
		}
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	duration := opts.DurationSeconds
	if duration <= 0 {
		// Without a hint, estimate from the payload at the compact
		// speech bitrate (64kbps is 8KB per second).
		duration = float64(len(audio)) / 8000
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	var segments []BackendSegment
	cursor := 0.0
	for cursor < duration {
		length := 3 + b.rng.Float64()*4
		end := cursor + length
		if end > duration {
			end = duration
		}
		if end-cursor < 0.5 {
			break
		}
		segments = append(segments, BackendSegment{
			StartTime:  cursor,
			EndTime:    end,
			Text:       phrases[b.rng.Intn(len(phrases))],
			Confidence: 0.85 + b.rng.Float64()*0.14,
		})
		cursor = end
	}

	return segments, nil
}
