// Package metrics exposes Prometheus instrumentation for the pipeline, the
// registrar lookups, the LLM transport and the REST API.
//
// Every Collector owns its registry so tests and multiple servers in one
// process never collide on registration. Methods on a nil *Collector are no-ops.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the service.
type Collector struct {
	registry *prometheus.Registry

	StageDuration *prometheus.HistogramVec
	StageItems    *prometheus.CounterVec
	StageErrors   *prometheus.CounterVec

	Jobs      *prometheus.CounterVec
	JobsInFly prometheus.Gauge

	AvailabilityLookups *prometheus.CounterVec

	LLMCalls    *prometheus.CounterVec
	LLMDuration *prometheus.HistogramVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// NewCollector creates a collector whose metric names are prefixed by namespace.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		StageItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_items_total",
			Help:      "Items produced by each pipeline stage",
		}, []string{"stage"}),
		StageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_errors_total",
			Help:      "Pipeline stage failures by error type",
		}, []string{"stage", "type"}),
		Jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_total",
			Help:      "Finished pipeline runs by outcome",
		}, []string{"outcome"}),
		JobsInFly: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "jobs_in_flight",
			Help:      "Pipeline runs currently executing",
		}),
		AvailabilityLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "availability_lookups_total",
			Help:      "Registrar lookups by registrar, status and cache source",
		}, []string{"registrar", "status", "source"}),
		LLMCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_calls_total",
			Help:      "LLM calls by provider, model, operation and outcome",
		}, []string{"provider", "model", "operation", "outcome"}),
		LLMDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_call_duration_seconds",
			Help:      "LLM call duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40},
		}, []string{"provider", "operation"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	c.registry.MustRegister(
		c.StageDuration,
		c.StageItems,
		c.StageErrors,
		c.Jobs,
		c.JobsInFly,
		c.AvailabilityLookups,
		c.LLMCalls,
		c.LLMDuration,
		c.HTTPRequests,
		c.HTTPDuration,
		prometheus.NewGoCollector(),
	)
	return c
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// ObserveStage records one stage execution. errType is empty on success.
func (c *Collector) ObserveStage(stage string, elapsed time.Duration, items int, errType string) {
	if c == nil {
		return
	}
	c.StageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
	if errType != "" {
		c.StageErrors.WithLabelValues(stage, errType).Inc()
		return
	}
	c.StageItems.WithLabelValues(stage).Add(float64(items))
}

// JobStarted increments the in-flight gauge.
func (c *Collector) JobStarted() {
	if c == nil {
		return
	}
	c.JobsInFly.Inc()
}

// JobFinished decrements the in-flight gauge and counts the outcome.
func (c *Collector) JobFinished(outcome string) {
	if c == nil {
		return
	}
	c.JobsInFly.Dec()
	c.Jobs.WithLabelValues(outcome).Inc()
}

// ObserveAvailability counts one registrar answer; cached marks cache hits.
func (c *Collector) ObserveAvailability(registrar, status string, cached bool) {
	if c == nil {
		return
	}
	source := "registrar"
	if cached {
		source = "cache"
	}
	c.AvailabilityLookups.WithLabelValues(registrar, status, source).Inc()
}

// ObserveLLMCall satisfies llm.CallObserver.
func (c *Collector) ObserveLLMCall(provider, model, operation, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.LLMCalls.WithLabelValues(provider, model, operation, outcome).Inc()
	c.LLMDuration.WithLabelValues(provider, operation).Observe(elapsed.Seconds())
}

// ObserveHTTP records one served request.
func (c *Collector) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
