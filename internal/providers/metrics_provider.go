package providers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"photoaudit/internal/structures"
	"strconv"
	"time"
)

// ProgressSource reports how far the active review session has advanced.
type ProgressSource interface {
	Progress() (reviewed int, total int)
}

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObserveExportDuration(duration time.Duration)
	IncVisitsReviewed(bucket string, decoy bool)
}

type MetricsProvider struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	exportDuration  prometheus.Histogram
	visitsReviewed  *prometheus.CounterVec
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObserveExportDuration(duration time.Duration) {
	m.exportDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncVisitsReviewed(bucket string, decoy bool) {
	m.visitsReviewed.WithLabelValues(bucket, strconv.FormatBool(decoy)).Inc()
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config, progress ProgressSource) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "photoaudit_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "photoaudit_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "photoaudit_preview_cache_hits_total",
			Help: "Total number of preview cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "photoaudit_preview_cache_misses_total",
			Help: "Total number of preview cache misses",
		}),

		exportDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "photoaudit_export_duration_seconds",
			Help:    "Duration of results export in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		visitsReviewed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "photoaudit_visits_reviewed_total",
			Help: "Visits classified by the reviewer",
		}, []string{"bucket", "decoy"}),
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "photoaudit_session_visits_total",
		Help: "Number of visits in the active review session",
	}, func() float64 {
		_, total := progress.Progress()
		return float64(total)
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "photoaudit_session_visits_remaining",
		Help: "Visits still waiting for a bucket",
	}, func() float64 {
		reviewed, total := progress.Progress()
		return float64(total - reviewed)
	})

	return m
}

// noopMetrics is used when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObserveExportDuration(_ time.Duration)            {}
func (n *noopMetrics) IncVisitsReviewed(_ string, _ bool)               {}
