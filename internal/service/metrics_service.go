package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService owns the Prometheus registry: HTTP surface metrics, upstream
// platform call metrics and per-stage outcome counters.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	platformCalls   *prometheus.HistogramVec
	platformErrors  *prometheus.CounterVec
	stageOutcomes   *prometheus.CounterVec
}

// NewMetricsService registers the collectors.
func NewMetricsService() *MetricsService {
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

	platformCalls := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "platform_call_duration_seconds",
		Help:    "Duration of upstream platform calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"platform", "operation", "status"})

	platformErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "platform_call_errors_total",
		Help: "Upstream platform calls that failed at the transport level",
	}, []string{"platform", "operation"})

	stageOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stage_outcomes_total",
		Help: "Pipeline stage invocations by outcome",
	}, []string{"stage", "outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, platformCalls, platformErrors, stageOutcomes, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		platformCalls:   platformCalls,
		platformErrors:  platformErrors,
		stageOutcomes:   stageOutcomes,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one inbound request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObservePlatformCall records one upstream attempt; satisfies the client
// observer interfaces. Transport failures carry status 0.
func (m *MetricsService) ObservePlatformCall(platform, operation string, status int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.platformErrors.WithLabelValues(platform, operation).Inc()
		return
	}
	m.platformCalls.WithLabelValues(platform, operation, fmt.Sprintf("%d", status)).Observe(0)
}

// ObservePlatformLatency records a timed upstream attempt.
func (m *MetricsService) ObservePlatformLatency(platform, operation string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.platformCalls.WithLabelValues(platform, operation, fmt.Sprintf("%d", status)).Observe(duration.Seconds())
}

// RecordStageOutcome counts one stage invocation result.
func (m *MetricsService) RecordStageOutcome(stage, outcome string) {
	if m == nil {
		return
	}
	m.stageOutcomes.WithLabelValues(stage, outcome).Inc()
}
