package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry        *prom.Registry
	requests        *prom.CounterVec
	requestDuration *prom.HistogramVec
	objects         prom.Counter
	loadingErrors   prom.Counter
	parsingErrors   prom.Counter
}

// NewPrometheusRecorder constructs the metrics and registers them on reg, or on a
// fresh registry when reg is nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		registry: reg,
		requests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docharvest",
			Name:      "requests_total",
			Help:      "Processed requests by protocol mode and outcome",
		}, []string{"mode", "outcome"}),
		requestDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "docharvest",
			Name:      "request_duration_seconds",
			Help:      "Time spent decoding, loading and encoding one request",
			Buckets:   prom.DefBuckets,
		}, []string{"mode"}),
		objects: prom.NewCounter(prom.CounterOpts{
			Namespace: "docharvest",
			Name:      "objects_total",
			Help:      "Top-level objects documented",
		}),
		loadingErrors: prom.NewCounter(prom.CounterOpts{
			Namespace: "docharvest",
			Name:      "loading_errors_total",
			Help:      "Loading errors reported in responses",
		}),
		parsingErrors: prom.NewCounter(prom.CounterOpts{
			Namespace: "docharvest",
			Name:      "parsing_errors_total",
			Help:      "Doc comment parsing errors reported in responses",
		}),
	}
	reg.MustRegister(pr.requests, pr.requestDuration, pr.objects, pr.loadingErrors, pr.parsingErrors)
	return pr
}

// Registry returns the registry the metrics are registered on.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	return p.registry
}

// WriteTextfile writes the registry in the Prometheus text format to path.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	return prom.WriteToTextfile(path, p.registry)
}

func (p *PrometheusRecorder) IncRequest(mode string, outcome Outcome) {
	p.requests.WithLabelValues(mode, string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveRequestDuration(mode string, d time.Duration) {
	p.requestDuration.WithLabelValues(mode).Observe(d.Seconds())
}

func (p *PrometheusRecorder) AddObjects(n int) {
	p.objects.Add(float64(n))
}

func (p *PrometheusRecorder) AddLoadingErrors(n int) {
	p.loadingErrors.Add(float64(n))
}

func (p *PrometheusRecorder) AddParsingErrors(n int) {
	p.parsingErrors.Add(float64(n))
}
