package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/h-wang94/terraforming-mars/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncSavesTotal()
	IncRestoresTotal()
	ObserveSaveDuration(duration time.Duration)
	SetGamesTotal(count int)
}

type MetricsProvider struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	savesTotal      prometheus.Counter
	restoresTotal   prometheus.Counter
	saveDuration    prometheus.Histogram
	gamesTotal      prometheus.Gauge
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

func (m *MetricsProvider) IncSavesTotal() {
	m.savesTotal.Inc()
}

func (m *MetricsProvider) IncRestoresTotal() {
	m.restoresTotal.Inc()
}

func (m *MetricsProvider) ObserveSaveDuration(duration time.Duration) {
	m.saveDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) SetGamesTotal(count int) {
	m.gamesTotal.Set(float64(count))
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

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gamestore_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gamestore_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gamestore_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gamestore_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		savesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gamestore_saves_total",
			Help: "Total number of game saves written",
		}),

		restoresTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gamestore_restores_total",
			Help: "Total number of games restored from history",
		}),

		saveDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "gamestore_save_duration_seconds",
			Help:    "Duration of snapshot plus history writes in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		gamesTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "gamestore_games_total",
			Help: "Number of games currently present in the store",
		}),
	}
}

type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                   {}
func (n *noopMetrics) IncCacheMisses()                                 {}
func (n *noopMetrics) IncSavesTotal()                                  {}
func (n *noopMetrics) IncRestoresTotal()                               {}
func (n *noopMetrics) ObserveSaveDuration(_ time.Duration)             {}
func (n *noopMetrics) SetGamesTotal(_ int)                             {}
