// Package metrics centralises Prometheus instrumentation, mirroring
// the structure of the teacher's MetricsService: a private registry, a
// promhttp handler for scraping, and a set of collectors wired through
// explicit Observe/Inc calls rather than global metrics. Alongside the
// generic HTTP-request collectors it carries scheduler-specific ones
// the orchestrator and solver report against.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds every registered metric this service exposes.
type Collector struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	levelSolveDuration *prometheus.HistogramVec
	variableSpaceSize  *prometheus.HistogramVec
	levelOutcomes      *prometheus.CounterVec
	runsInFlight       prometheus.Gauge
	sessionsDropped    *prometheus.CounterVec
	coursesDropped     *prometheus.CounterVec
}

// New registers every collector and returns the ready-to-use Collector.
func New() *Collector {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	levelSolveDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scheduler_level_solve_duration_seconds",
		Help:    "Wall-clock time spent solving a single academic level",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	}, []string{"level", "status"})

	variableSpaceSize := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scheduler_level_variable_count",
		Help:    "Number of candidate decision variables built for a level",
		Buckets: prometheus.ExponentialBuckets(100, 4, 8),
	}, []string{"level"})

	levelOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_level_outcomes_total",
		Help: "Count of level solves by outcome status",
	}, []string{"level", "status"})

	runsInFlight := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "scheduler_runs_in_flight",
		Help: "Number of generation runs currently executing",
	})

	sessionsDropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_sessions_dropped_total",
		Help: "Count of sessions silently dropped for lacking any legal placement",
	}, []string{"level"})

	coursesDropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_courses_dropped_total",
		Help: "Count of courses dropped from a level for having no assigned lecturer or group (CatalogueInconsistent)",
	}, []string{"level"})

	registry.MustRegister(
		requestDuration, requestTotal,
		levelSolveDuration, variableSpaceSize, levelOutcomes, runsInFlight, sessionsDropped, coursesDropped,
	)

	return &Collector{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		levelSolveDuration: levelSolveDuration,
		variableSpaceSize:  variableSpaceSize,
		levelOutcomes:      levelOutcomes,
		runsInFlight:       runsInFlight,
		sessionsDropped:    sessionsDropped,
		coursesDropped:     coursesDropped,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return c.handler
}

// ObserveHTTPRequest records one HTTP request's outcome.
func (c *Collector) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	label := fmt.Sprintf("%d", status)
	c.requestDuration.WithLabelValues(method, path, label).Observe(duration.Seconds())
	c.requestTotal.WithLabelValues(method, path, label).Inc()
}

// ObserveLevelSolve records one level solve's duration, variable-space
// size and outcome.
func (c *Collector) ObserveLevelSolve(level int, status string, variableCount int, duration time.Duration) {
	if c == nil {
		return
	}
	levelLabel := fmt.Sprintf("%d", level)
	c.levelSolveDuration.WithLabelValues(levelLabel, status).Observe(duration.Seconds())
	c.variableSpaceSize.WithLabelValues(levelLabel).Observe(float64(variableCount))
	c.levelOutcomes.WithLabelValues(levelLabel, status).Inc()
}

// RecordDroppedSessions adds to the dropped-session counter for a level.
func (c *Collector) RecordDroppedSessions(level, count int) {
	if c == nil || count <= 0 {
		return
	}
	c.sessionsDropped.WithLabelValues(fmt.Sprintf("%d", level)).Add(float64(count))
}

// RecordDroppedCourses adds to the dropped-course counter for a level.
func (c *Collector) RecordDroppedCourses(level, count int) {
	if c == nil || count <= 0 {
		return
	}
	c.coursesDropped.WithLabelValues(fmt.Sprintf("%d", level)).Add(float64(count))
}

// RunStarted increments the in-flight run gauge.
func (c *Collector) RunStarted() {
	if c == nil {
		return
	}
	c.runsInFlight.Inc()
}

// RunFinished decrements the in-flight run gauge.
func (c *Collector) RunFinished() {
	if c == nil {
		return
	}
	c.runsInFlight.Dec()
}
