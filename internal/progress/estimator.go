package progress

import (
	"sync"
	"time"
)

// Estimator derives a smoothed completion estimate from percent samples.
// Recent samples are windowed and the instantaneous rate is exponentially
// smoothed so ETA does not jump around on bursty pipelines.
type Estimator struct {
	mu              sync.Mutex
	startTime       time.Time
	recentSamples   []sample
	maxSamples      int
	smoothingFactor float64
	currentRate     float64 // percent per second
	lastPercent     float64
	now             func() time.Time
}

type sample struct {
	timestamp time.Time
	percent   float64
}

// NewEstimator creates an estimator for one run.
func NewEstimator() *Estimator {
	e := &Estimator{
		maxSamples:      10,
		smoothingFactor: 0.3,
		recentSamples:   make([]sample, 0, 10),
		now:             time.Now,
	}
	e.startTime = e.now()
	return e
}

// NewEstimatorForTests creates an estimator with an injectable clock.
func NewEstimatorForTests(now func() time.Time) *Estimator {
	e := NewEstimator()
	e.now = now
	e.startTime = now()
	return e
}

// Update records a progress sample and refreshes the smoothed rate.
func (e *Estimator) Update(percent float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	e.recentSamples = append(e.recentSamples, sample{timestamp: now, percent: percent})
	if len(e.recentSamples) > e.maxSamples {
		e.recentSamples = e.recentSamples[len(e.recentSamples)-e.maxSamples:]
	}
	e.lastPercent = percent
	e.calculateRate()
}

// calculateRate computes the windowed rate and folds it into the smoothed
// current rate. Caller holds the lock.
func (e *Estimator) calculateRate() {
	if len(e.recentSamples) < 2 {
		return
	}

	oldest := e.recentSamples[0]
	newest := e.recentSamples[len(e.recentSamples)-1]
	elapsed := newest.timestamp.Sub(oldest.timestamp).Seconds()
	if elapsed <= 0 {
		return
	}

	windowRate := (newest.percent - oldest.percent) / elapsed
	if e.currentRate == 0 {
		e.currentRate = windowRate
		return
	}
	e.currentRate = e.smoothingFactor*windowRate + (1-e.smoothingFactor)*e.currentRate
}

// ETASeconds returns the estimated seconds to completion, or -1 while the
// rate is still unknown or progress has stalled.
func (e *Estimator) ETASeconds() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.currentRate <= 0 {
		return -1
	}
	remaining := 100 - e.lastPercent
	if remaining <= 0 {
		return 0
	}
	return remaining / e.currentRate
}

// ElapsedSeconds returns wall time since the run started.
func (e *Estimator) ElapsedSeconds() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.now().Sub(e.startTime).Seconds()
}
