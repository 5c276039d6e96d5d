package metrics

import (
	"net/http"

	"github.com/mittwald/mittcheck/pkg/health"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mittcheck"

// Recorder exposes probe results as Prometheus metrics.
type Recorder struct {
	registry *prometheus.Registry

	probeHealthy  *prometheus.GaugeVec
	probeDuration *prometheus.HistogramVec
	reports       *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	r := Recorder{
		registry: prometheus.NewRegistry(),
		probeHealthy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "probe_healthy",
			Help:      "Whether the last execution of a probe was healthy (1), unhealthy (0) or skipped (-1).",
		}, []string{"probe"}),
		probeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "probe_duration_seconds",
			Help:      "Duration of probe executions.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"probe", "status"}),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Number of completed health reports by overall status.",
		}, []string{"status"}),
	}

	r.registry.MustRegister(
		r.probeHealthy,
		r.probeDuration,
		r.reports,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &r
}

func (r *Recorder) ObserveResult(name string, result health.Result) {
	value := 0.0
	switch result.Status {
	case health.StatusHealthy:
		value = 1
	case health.StatusSkipped:
		value = -1
	}

	r.probeHealthy.WithLabelValues(name).Set(value)
	r.probeDuration.WithLabelValues(name, result.Status.String()).Observe(result.Duration.Seconds())
}

func (r *Recorder) Observe(report *health.Report) {
	for i := range report.Results {
		r.ObserveResult(report.Results[i].Name, report.Results[i].Result)
	}
	r.reports.WithLabelValues(report.Status.String()).Inc()
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
