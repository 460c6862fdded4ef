package extract

import (
	"context"
	"fmt"

	"video-transcriber/internal/domain"
	"video-transcriber/internal/media"
)

// Request carries everything a strategy needs for one run. The orchestrator
// probes the source once and hands the metadata down so strategies never
// re-probe.
type Request struct {
	Asset    domain.MediaAsset
	Mode     domain.ExtractionMode
	Settings domain.CompressionSettings
	Info     media.Info
	WorkDir  string

	// LargeFileOptimizations enables the size-tiered accelerated capture
	// rate. Off, the native pass still runs but at the base rate.
	LargeFileOptimizations bool
}

// reportFunc receives phase-local progress in [0,1] plus a stage label.
// Strategies know nothing about the run's overall budget.
type reportFunc func(fraction float64, stage string)

// Strategy is one interchangeable extraction/compression backend. Exactly
// one strategy is active per request; Extract returns the output file path.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, req Request, report reportFunc) (string, error)
}

// Error is a stage-aware extraction failure with strategy context. Terminal
// marks failures that survive the fallback policy and reach the caller.
type Error struct {
	Strategy string `json:"strategy"`
	Stage    string `json:"stage"`
	Message  string `json:"message"`
	Terminal bool   `json:"terminal"`
	Err      error  `json:"-"`
}

// Error formats extraction failures for logs and UI.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s %s: %s", e.Strategy, e.Stage, e.Message)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// newError builds a non-terminal strategy error.
func newError(strategy, stage, message string, err error) *Error {
	return &Error{Strategy: strategy, Stage: stage, Message: message, Err: err}
}
