package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once         sync.Once
	fileDuration *prom.HistogramVec
	sections     *prom.HistogramVec
	fileOutcome  *prom.CounterVec
	runDuration  prom.Histogram
	runOutcome   *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.fileDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "weave",
			Name:      "file_duration_seconds",
			Help:      "Duration of per-file documentation generation",
			Buckets:   prom.DefBuckets,
		}, []string{"language"})
		pr.sections = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "weave",
			Name:      "file_sections",
			Help:      "Sections produced per segmented file",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250},
		}, []string{"language"})
		pr.fileOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "weave",
			Name:      "file_outcomes_total",
			Help:      "Per-file outcomes by final status",
		}, []string{"outcome"})
		pr.runDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "weave",
			Name:      "run_duration_seconds",
			Help:      "Total batch run duration",
			Buckets:   prom.DefBuckets,
		})
		pr.runOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "weave",
			Name:      "run_outcomes_total",
			Help:      "Batch run outcomes by final status",
		}, []string{"outcome"})
		reg.MustRegister(pr.fileDuration, pr.sections, pr.fileOutcome, pr.runDuration, pr.runOutcome)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveFileDuration(language string, d time.Duration) {
	if p == nil || p.fileDuration == nil {
		return
	}
	p.fileDuration.WithLabelValues(language).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveSections(language string, n int) {
	if p == nil || p.sections == nil {
		return
	}
	p.sections.WithLabelValues(language).Observe(float64(n))
}

func (p *PrometheusRecorder) IncFileOutcome(outcome OutcomeLabel) {
	if p == nil || p.fileOutcome == nil {
		return
	}
	p.fileOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil || p.runDuration == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRunOutcome(outcome OutcomeLabel) {
	if p == nil || p.runOutcome == nil {
		return
	}
	p.runOutcome.WithLabelValues(string(outcome)).Inc()
}
