package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "docketdesk"

// Registry owns the process metrics. It is not the prometheus global
// registry so tests can build independent instances.
type Registry struct {
	registry *prometheus.Registry

	exportJobs       *prometheus.CounterVec
	exportDuration   *prometheus.HistogramVec
	exportBytes      *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	rateLimited      *prometheus.CounterVec
	eventsPublished  *prometheus.CounterVec
	notificationsOut *prometheus.CounterVec
}

func New() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		exportJobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "exports",
			Name:      "jobs_finished_total",
			Help:      "Export jobs that reached a terminal status.",
		}, []string{"type", "status"}),
		exportDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "exports",
			Name:      "job_duration_seconds",
			Help:      "Time from claim to terminal status.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"type"}),
		exportBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "exports",
			Name:      "artifact_bytes_total",
			Help:      "Bytes written to export artifacts.",
		}, []string{"type"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limit_rejections_total",
			Help:      "Requests rejected by rate limiting.",
		}, []string{"route"}),
		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Integration events published by topic and outcome.",
		}, []string{"topic", "outcome"}),
		notificationsOut: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "sent_total",
			Help:      "Notifications handed to the delivery channel by outcome.",
		}, []string{"kind", "outcome"}),
	}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.exportJobs,
		r.exportDuration,
		r.exportBytes,
		r.httpRequests,
		r.httpDuration,
		r.rateLimited,
		r.eventsPublished,
		r.notificationsOut,
	)
	return r
}

// JobFinished records a terminal export outcome.
func (r *Registry) JobFinished(jobType string, status string, duration time.Duration, artifactBytes int64) {
	r.exportJobs.WithLabelValues(jobType, status).Inc()
	r.exportDuration.WithLabelValues(jobType).Observe(duration.Seconds())
	if artifactBytes > 0 {
		r.exportBytes.WithLabelValues(jobType).Add(float64(artifactBytes))
	}
}

func (r *Registry) ObserveHTTP(route string, code int, duration time.Duration) {
	r.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	r.httpDuration.WithLabelValues(route).Observe(duration.Seconds())
}

func (r *Registry) RateLimited(route string) {
	r.rateLimited.WithLabelValues(route).Inc()
}

func (r *Registry) EventPublished(topic string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.eventsPublished.WithLabelValues(topic, outcome).Inc()
}

func (r *Registry) NotificationSent(kind string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.notificationsOut.WithLabelValues(kind, outcome).Inc()
}

// RegisterGauge exposes a value sampled at scrape time.
func (r *Registry) RegisterGauge(subsystem string, name string, help string, fn func() float64) {
	r.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, fn))
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
