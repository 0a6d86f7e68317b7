package metrics

import "time"

// OutcomeLabel enumerates per-file result categories for counters.
type OutcomeLabel string

const (
	OutcomeSuccess OutcomeLabel = "success"
	OutcomeSkipped OutcomeLabel = "skipped"
	OutcomeFailed  OutcomeLabel = "failed"
)

// Recorder defines observability hooks for batch runs. Implementations may
// forward to Prometheus; NoopRecorder is the default when metrics are not
// configured, so components never need nil checks.
type Recorder interface {
	ObserveFileDuration(language string, d time.Duration)
	ObserveSections(language string, n int)
	IncFileOutcome(outcome OutcomeLabel)
	ObserveRunDuration(d time.Duration)
	IncRunOutcome(outcome OutcomeLabel)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveFileDuration(string, time.Duration) {}
func (NoopRecorder) ObserveSections(string, int)               {}
func (NoopRecorder) IncFileOutcome(OutcomeLabel)               {}
func (NoopRecorder) ObserveRunDuration(time.Duration)          {}
func (NoopRecorder) IncRunOutcome(OutcomeLabel)                {}
