package observability

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yungbote/siteproof-backend/internal/platform/envutil"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
)

type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	writeOps       *prometheus.HistogramVec
	writeConflict  *prometheus.CounterVec
	writeTransient *prometheus.CounterVec
	writeOutcome   *prometheus.CounterVec

	uploadURLs     *prometheus.CounterVec
	webhookEvents  *prometheus.CounterVec
	graphSync      *prometheus.CounterVec
	upstreamStream *prometheus.CounterVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

func Current() *Metrics {
	return instance
}

// Init builds the process-wide metrics set. It returns nil when
// METRICS_ENABLED is off; every method tolerates a nil receiver.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = NewMetrics()
		if log != nil {
			log.Info("metrics enabled")
		}
	})
	return instance
}

// NewMetrics returns a metrics set on its own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sp_api_requests_total",
			Help: "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sp_api_request_duration_seconds",
			Help:    "API request latency in seconds by method/route/status.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"method", "route", "status"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sp_api_inflight_requests",
			Help: "In-flight API requests.",
		}),
		writeOps: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sp_write_duration_seconds",
			Help:    "Transactional write duration by operation/status.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"op", "status"}),
		writeConflict: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sp_write_conflicts_total",
			Help: "Writes that ended in a conflict, by operation.",
		}, []string{"op"}),
		writeTransient: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sp_write_transient_failures_total",
			Help: "Writes that failed on a deadlock or serialization error, by operation.",
		}, []string{"op"}),
		writeOutcome: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sp_asset_writes_total",
			Help: "Idempotent asset writes by type and outcome (created/replayed).",
		}, []string{"type", "outcome"}),
		uploadURLs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sp_upload_urls_issued_total",
			Help: "Pre-signed upload URLs issued by provider.",
		}, []string{"provider"}),
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sp_billing_webhook_events_total",
			Help: "Billing webhook events by type/result.",
		}, []string{"type", "result"}),
		graphSync: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sp_graph_sync_total",
			Help: "Graph projection attempts by status.",
		}, []string{"status"}),
		upstreamStream: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sp_ai_stream_total",
			Help: "Relayed AI streams by kind/result.",
		}, []string{"kind", "result"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.writeOps, m.writeConflict, m.writeTransient, m.writeOutcome,
		m.uploadURLs, m.webhookEvents, m.graphSync, m.upstreamStream,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// StartServer serves /metrics on a dedicated listener until ctx is done.
func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		addr = ":9090"
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed && log != nil {
			log.Warn("metrics server stopped", "error", err)
		}
	}()
	if log != nil {
		log.Info("metrics server listening", "addr", addr)
	}
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	code := strconv.Itoa(status)
	m.apiRequests.WithLabelValues(method, route, code).Inc()
	m.apiLatency.WithLabelValues(method, route, code).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveWrite(op, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.writeOps.WithLabelValues(op, status).Observe(dur.Seconds())
}

func (m *Metrics) IncWriteConflict(op string) {
	if m == nil {
		return
	}
	m.writeConflict.WithLabelValues(op).Inc()
}

func (m *Metrics) IncWriteTransient(op string) {
	if m == nil {
		return
	}
	m.writeTransient.WithLabelValues(op).Inc()
}

func (m *Metrics) IncAssetWrite(assetType string, replayed bool) {
	if m == nil {
		return
	}
	outcome := "created"
	if replayed {
		outcome = "replayed"
	}
	m.writeOutcome.WithLabelValues(assetType, outcome).Inc()
}

func (m *Metrics) AddUploadURLs(provider string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.uploadURLs.WithLabelValues(provider).Add(float64(n))
}

func (m *Metrics) IncWebhookEvent(eventType, result string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(eventType, result).Inc()
}

func (m *Metrics) IncGraphSync(status string) {
	if m == nil {
		return
	}
	m.graphSync.WithLabelValues(status).Inc()
}

func (m *Metrics) IncAIStream(kind, result string) {
	if m == nil {
		return
	}
	m.upstreamStream.WithLabelValues(kind, result).Inc()
}
