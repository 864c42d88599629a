package metrics

import "time"

// Document outcome labels.
const (
	OutcomeSuccess  = "success"
	OutcomeFailed   = "failed"
	OutcomeCanceled = "canceled"
)

// Recorder receives pipeline measurements.
type Recorder interface {
	ObservePassDuration(pass string, d time.Duration)
	ObserveDocumentDuration(d time.Duration)
	IncDocumentOutcome(outcome string)
	IncDiagnostic(code string)
	ObserveBatchDuration(d time.Duration)
	SetWorkers(n int)
}

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) ObservePassDuration(string, time.Duration) {}
func (NoopRecorder) ObserveDocumentDuration(time.Duration)     {}
func (NoopRecorder) IncDocumentOutcome(string)                 {}
func (NoopRecorder) IncDiagnostic(string)                      {}
func (NoopRecorder) ObserveBatchDuration(time.Duration)        {}
func (NoopRecorder) SetWorkers(int)                            {}

var _ Recorder = NoopRecorder{}
