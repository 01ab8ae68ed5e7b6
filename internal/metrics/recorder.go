package metrics

import "time"

// Outcome labels how one request ended.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
)

// Recorder defines the observability hooks of the collection pipeline.
type Recorder interface {
	IncRequest(mode string, outcome Outcome)
	ObserveRequestDuration(mode string, d time.Duration)
	AddObjects(n int)
	AddLoadingErrors(n int)
	AddParsingErrors(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncRequest(string, Outcome)                   {}
func (NoopRecorder) ObserveRequestDuration(string, time.Duration) {}
func (NoopRecorder) AddObjects(int)                               {}
func (NoopRecorder) AddLoadingErrors(int)                         {}
func (NoopRecorder) AddParsingErrors(int)                         {}
