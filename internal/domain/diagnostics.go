package domain

import "time"

// DiagnosticStatus indicates whether a single capability check passed.
type DiagnosticStatus string

const (
	DiagnosticStatusPass DiagnosticStatus = "pass"
	DiagnosticStatusFail DiagnosticStatus = "fail"
)

// DiagnosticItem is one capability check result with optional remediation hint.
type DiagnosticItem struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Status  DiagnosticStatus `json:"status"`
	Message string           `json:"message"`
	Hint    string           `json:"hint,omitempty"`
}

// DiagnosticReport aggregates capability checks. NativeCapable reports
// whether the accelerated extraction path can be attempted at all.
type DiagnosticReport struct {
	GeneratedAt   time.Time        `json:"generatedAt"`
	HasFailures   bool             `json:"hasFailures"`
	NativeCapable bool             `json:"nativeCapable"`
	Items         []DiagnosticItem `json:"items"`
}
