package progress

import (
	"testing"
	"time"

	"video-transcriber/internal/domain"
)

// TestGaugeNeverDecreases verifies the monotonic percent guarantee.
func TestGaugeNeverDecreases(t *testing.T) {
	var events []domain.ProgressEvent
	g := NewGauge(func(e domain.ProgressEvent) { events = append(events, e) })

	g.Report(10, "a")
	g.Report(40, "b")
	g.Report(25, "regression")
	g.Report(41, "c")

	want := []float64{10, 40, 40, 41}
	if len(events) != len(want) {
		t.Fatalf("events = %d, want %d", len(events), len(want))
	}
	for i, e := range events {
		if e.Percent != want[i] {
			t.Fatalf("event %d percent = %v, want %v", i, e.Percent, want[i])
		}
	}
}

// TestGaugeFinishLandsOnExactly100 verifies the terminal event value.
func TestGaugeFinishLandsOnExactly100(t *testing.T) {
	var last domain.ProgressEvent
	g := NewGauge(func(e domain.ProgressEvent) { last = e })

	g.Report(97.3, "almost")
	g.Finish("done")
	if last.Percent != 100 {
		t.Fatalf("final percent = %v, want 100", last.Percent)
	}
	if last.Stage != "done" {
		t.Fatalf("final stage = %q, want done", last.Stage)
	}
}

// TestGaugeClampsOver100 verifies out-of-range backend values are capped.
func TestGaugeClampsOver100(t *testing.T) {
	g := NewGauge(nil)
	g.Report(250, "overflow")
	if g.Last() != 100 {
		t.Fatalf("last = %v, want 100", g.Last())
	}
}

// TestPhaseAtScalesIntoBudget verifies phase-local fraction mapping.
func TestPhaseAtScalesIntoBudget(t *testing.T) {
	if got := Extraction.At(0.5); got != 22.5 {
		t.Fatalf("Extraction.At(0.5) = %v, want 22.5", got)
	}
	if got := Transcription.At(0); got != 45 {
		t.Fatalf("Transcription.At(0) = %v, want 45", got)
	}
	if got := Finalize.At(2); got != 100 {
		t.Fatalf("Finalize.At(2) = %v, want clamp to 100", got)
	}
	if got := Full.At(-1); got != 0 {
		t.Fatalf("Full.At(-1) = %v, want clamp to 0", got)
	}
}

// TestEstimatorETAFromSteadyRate verifies ETA from a constant progress rate.
func TestEstimatorETAFromSteadyRate(t *testing.T) {
	clock := time.Unix(0, 0)
	e := NewEstimatorForTests(func() time.Time { return clock })

	// 10 percent per second.
	for i := 0; i <= 5; i++ {
		e.Update(float64(i * 10))
		clock = clock.Add(time.Second)
	}

	eta := e.ETASeconds()
	if eta < 4 || eta > 6 {
		t.Fatalf("eta = %v, want about 5s", eta)
	}
}

// TestEstimatorUnknownBeforeSamples verifies the sentinel before data exists.
func TestEstimatorUnknownBeforeSamples(t *testing.T) {
	e := NewEstimator()
	if eta := e.ETASeconds(); eta != -1 {
		t.Fatalf("eta = %v, want -1 before samples", eta)
	}
}
