package progress

import (
	"sync"

	"video-transcriber/internal/domain"
)

// Phase is one slice of a run's overall 0-100 progress budget.
type Phase struct {
	Start float64
	End   float64
}

// Workflow phase budgets: extraction first, transcription next, then a short
// finalize tail. A standalone run uses Full.
var (
	Full          = Phase{Start: 0, End: 100}
	Extraction    = Phase{Start: 0, End: 45}
	Transcription = Phase{Start: 45, End: 90}
	Finalize      = Phase{Start: 90, End: 100}
)

// At maps a phase-local fraction in [0,1] into the overall budget, clamping
// out-of-range input.
func (p Phase) At(fraction float64) float64 {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	return p.Start + (p.End-p.Start)*fraction
}

// Gauge normalizes progress reporting for one run: percentages delivered to
// the callback never decrease, and Finish always lands exactly on 100.
type Gauge struct {
	mu   sync.Mutex
	last float64
	emit domain.ProgressFunc
}

// NewGauge wraps a progress callback; emit may be nil.
func NewGauge(emit domain.ProgressFunc) *Gauge {
	return &Gauge{emit: emit}
}

// Report emits percent/stage, holding percent at the previous high-water
// mark if a backend reports a regression.
func (g *Gauge) Report(percent float64, stage string) {
	g.mu.Lock()
	if percent < g.last {
		percent = g.last
	}
	if percent > 100 {
		percent = 100
	}
	g.last = percent
	emit := g.emit
	g.mu.Unlock()

	if emit != nil {
		emit(domain.ProgressEvent{Percent: percent, Stage: stage})
	}
}

// ReportAt emits a phase-local fraction scaled into the phase's budget.
func (g *Gauge) ReportAt(phase Phase, fraction float64, stage string) {
	g.Report(phase.At(fraction), stage)
}

// Finish emits the terminal 100 event for the run.
func (g *Gauge) Finish(stage string) {
	g.Report(100, stage)
}

// Last returns the high-water mark reported so far.
func (g *Gauge) Last() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}
