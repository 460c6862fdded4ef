package transcribe

import (
	"context"
	"errors"
	"fmt"
)

// BackendSegment is one timed span returned by the transcription backend.
// Timestamps are relative to the submitted payload's start at 0.
type BackendSegment struct {
	StartTime  float64 `json:"startTime"`
	EndTime    float64 `json:"endTime"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
}

// SubmitOptions parameterizes one backend call. DurationSeconds is a hint
// for the payload's audio length; backends with their own timing may ignore
// it.
type SubmitOptions struct {
	Language        string
	ModelHint       string
	DurationSeconds float64
}

// Backend is the external speech-to-text collaborator. The chunking,
// stitching, and progress design must stay agnostic of what sits behind it.
type Backend interface {
	Submit(ctx context.Context, audio []byte, opts SubmitOptions) ([]BackendSegment, error)
}

// ErrorKind distinguishes retry guidance for the UI.
type ErrorKind string

const (
	// KindTimeout suggests retrying with a smaller input.
	KindTimeout ErrorKind = "timeout"
	// KindFailed suggests retrying as-is or reducing file size.
	KindFailed ErrorKind = "failed"
)

// Error is a typed transcription failure. No automatic retry is performed;
// the caller decides.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

// Error formats the failure for logs and UI.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("transcription %s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsTimeout reports whether err is a transcription timeout.
func IsTimeout(err error) bool {
	var tErr *Error
	return errors.As(err, &tErr) && tErr.Kind == KindTimeout
}

// classify converts a raw backend error into a typed one. Deadline and
// timeout conditions get distinct retry guidance.
func classify(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: "backend timed out; retry with a smaller input", Err: err}
	}
	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return &Error{Kind: KindTimeout, Message: "backend timed out; retry with a smaller input", Err: err}
	}
	return &Error{Kind: KindFailed, Message: "backend call failed; retry or reduce file size", Err: err}
}
