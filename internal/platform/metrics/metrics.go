// Package metrics exposes the intake server's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so tests and multiple servers in one
// process never collide on registration.
type Collector struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	fieldVerdicts *prometheus.CounterVec
	submissions   *prometheus.CounterVec
	blocked       prometheus.Counter
	sessionsOpen  prometheus.Gauge
	queueEntries  *prometheus.GaugeVec
}

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		fieldVerdicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_field_verdicts_total",
				Help: "Field validation verdicts issued while filling intake forms",
			},
			[]string{"field", "severity"},
		),
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_submissions_total",
				Help: "Intakes submitted, by outcome",
			},
			[]string{"outcome"},
		),
		blocked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "intake_submissions_blocked_total",
			Help: "Submit attempts rejected by field errors",
		}),
		sessionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "intake_sessions_open",
			Help: "Intake forms currently open",
		}),
		queueEntries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "queue_entries",
				Help: "Patients waiting in the attendance queue, by risk",
			},
			[]string{"risk"},
		),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.httpRequests,
		c.httpDuration,
		c.fieldVerdicts,
		c.submissions,
		c.blocked,
		c.sessionsOpen,
		c.queueEntries,
	)
	return c
}

func (c *Collector) Registry() *prometheus.Registry { return c.registry }

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (c *Collector) FieldVerdict(field, severity string) {
	c.fieldVerdicts.WithLabelValues(field, severity).Inc()
}

func (c *Collector) Submitted(outcome string) {
	c.submissions.WithLabelValues(outcome).Inc()
}

func (c *Collector) SubmitBlocked() {
	c.blocked.Inc()
}

func (c *Collector) SessionsOpen(n int) {
	c.sessionsOpen.Set(float64(n))
}

func (c *Collector) QueueSize(risk string, n int) {
	c.queueEntries.WithLabelValues(risk).Set(float64(n))
}
