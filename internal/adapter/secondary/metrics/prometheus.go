package metrics

import (
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fasttrack/internal/domain"
)

// PrometheusRecorder implements domain.MetricsRecorder using Prometheus metrics.
type PrometheusRecorder struct {
	selections    *prom.CounterVec
	started       *prom.CounterVec
	completed     *prom.CounterVec
	fastDuration  *prom.HistogramVec
	fastingActive prom.Gauge
}

// fastHourBuckets spans short aborted fasts up to multi-day ones.
var fastHourBuckets = []float64{1, 4, 8, 12, 14, 16, 18, 20, 24, 36, 48, 72}

// NewPrometheusRecorder constructs and registers the fasting metrics on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.selections = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "fasttrack",
		Name:      "method_selections_total",
		Help:      "Method selections by method id",
	}, []string{"method"})
	pr.started = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "fasttrack",
		Name:      "fasts_started_total",
		Help:      "Accepted fast starts by method id",
	}, []string{"method"})
	pr.completed = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "fasttrack",
		Name:      "fasts_completed_total",
		Help:      "Completed fasts by method id",
	}, []string{"method"})
	pr.fastDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: "fasttrack",
		Name:      "fast_duration_hours",
		Help:      "Duration of completed fasts in hours",
		Buckets:   fastHourBuckets,
	}, []string{"method"})
	pr.fastingActive = prom.NewGauge(prom.GaugeOpts{
		Namespace: "fasttrack",
		Name:      "fasting_active",
		Help:      "1 while a fast is in progress",
	})
	reg.MustRegister(pr.selections, pr.started, pr.completed, pr.fastDuration, pr.fastingActive)
	return pr
}

func (p *PrometheusRecorder) MethodSelected(methodID string) {
	if p == nil || p.selections == nil {
		return
	}
	p.selections.WithLabelValues(methodID).Inc()
}

func (p *PrometheusRecorder) FastStarted(methodID string) {
	if p == nil || p.started == nil {
		return
	}
	p.started.WithLabelValues(methodID).Inc()
	p.fastingActive.Set(1)
}

func (p *PrometheusRecorder) FastCompleted(methodID string, durationHours float64) {
	if p == nil || p.completed == nil {
		return
	}
	p.completed.WithLabelValues(methodID).Inc()
	p.fastDuration.WithLabelValues(methodID).Observe(durationHours)
	p.fastingActive.Set(0)
}

// HTTPHandler returns an http.Handler that serves the metrics in reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// NoopRecorder is used when metrics are disabled.
type NoopRecorder struct{}

func (NoopRecorder) MethodSelected(string)         {}
func (NoopRecorder) FastStarted(string)            {}
func (NoopRecorder) FastCompleted(string, float64) {}

var (
	_ domain.MetricsRecorder = (*PrometheusRecorder)(nil)
	_ domain.MetricsRecorder = NoopRecorder{}
)
