package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the gateway:
// inbound requests, relayed upstream calls and session-store traffic.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	upstreamTotal    *prometheus.CounterVec
	sessionLatency   prometheus.Observer
	staleDiscards    prometheus.Counter
	receiptsIssued   prometheus.Counter
}

// NewMetricsService registers the gateway's Prometheus collectors.
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

	upstreamDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "Duration of relayed upstream requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})

	upstreamTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_requests_total",
		Help: "Total number of relayed upstream requests",
	}, []string{"method", "status"})

	sessionLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "session_store_latency_seconds",
		Help:    "Latency of session store operations",
		Buckets: prometheus.DefBuckets,
	})

	staleDiscards := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "exam_fetch_stale_discards_total",
		Help: "Exam list responses discarded because a newer selection superseded them",
	})

	receiptsIssued := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "receipts_issued_total",
		Help: "Reservation receipts rendered and stored",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, upstreamDuration, upstreamTotal, sessionLatency, staleDiscards, receiptsIssued, goroutines)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		upstreamDuration: upstreamDuration,
		upstreamTotal:    upstreamTotal,
		sessionLatency:   sessionLatency,
		staleDiscards:    staleDiscards,
		receiptsIssued:   receiptsIssued,
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

// ObserveHTTPRequest records inbound request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveUpstreamRequest records a relayed upstream call.
func (m *MetricsService) ObserveUpstreamRequest(method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.upstreamDuration.WithLabelValues(method, labelStatus).Observe(duration.Seconds())
	m.upstreamTotal.WithLabelValues(method, labelStatus).Inc()
}

// ObserveSessionStore records session store operation latency.
func (m *MetricsService) ObserveSessionStore(duration time.Duration) {
	if m == nil || m.sessionLatency == nil {
		return
	}
	m.sessionLatency.Observe(duration.Seconds())
}

// RecordStaleDiscard counts a superseded exam list response.
func (m *MetricsService) RecordStaleDiscard() {
	if m == nil {
		return
	}
	m.staleDiscards.Inc()
}

// RecordReceiptIssued counts a stored receipt.
func (m *MetricsService) RecordReceiptIssued() {
	if m == nil {
		return
	}
	m.receiptsIssued.Inc()
}
