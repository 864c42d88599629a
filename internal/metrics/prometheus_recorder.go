package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "docpipe"

// PrometheusRecorder implements Recorder with Prometheus collectors.
type PrometheusRecorder struct {
	passDuration     *prom.HistogramVec
	documentDuration prom.Histogram
	documentOutcomes *prom.CounterVec
	diagnostics      *prom.CounterVec
	batchDuration    prom.Histogram
	workers          prom.Gauge
}

var _ Recorder = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder creates the collectors and registers them with reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		passDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "pass_duration_seconds",
			Help:      "Duration of individual pipeline passes",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"pass"}),
		documentDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "document_duration_seconds",
			Help:      "Time to process one document",
			Buckets:   prom.DefBuckets,
		}),
		documentOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Processed documents by outcome",
		}, []string{"outcome"}),
		diagnostics: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "diagnostics_total",
			Help:      "Recoverable diagnostics by code",
		}, []string{"code"}),
		batchDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Duration of a whole batch",
			Buckets:   prom.DefBuckets,
		}),
		workers: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "batch_workers",
			Help:      "Workers used by the last batch",
		}),
	}
	reg.MustRegister(pr.passDuration, pr.documentDuration, pr.documentOutcomes,
		pr.diagnostics, pr.batchDuration, pr.workers)
	return pr
}

func (p *PrometheusRecorder) ObservePassDuration(pass string, d time.Duration) {
	if p == nil {
		return
	}
	p.passDuration.WithLabelValues(pass).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveDocumentDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.documentDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncDocumentOutcome(outcome string) {
	if p == nil {
		return
	}
	p.documentOutcomes.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) IncDiagnostic(code string) {
	if p == nil {
		return
	}
	p.diagnostics.WithLabelValues(code).Inc()
}

func (p *PrometheusRecorder) ObserveBatchDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.batchDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) SetWorkers(n int) {
	if p == nil {
		return
	}
	p.workers.Set(float64(n))
}
