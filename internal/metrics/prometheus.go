// Package metrics реализует экспорт метрик в Prometheus
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus метрики
var (
	// RequestsTotal общее количество запросов
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teo_dashboard_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"endpoint", "method", "status"},
	)

	// RequestDuration длительность запросов
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "teo_dashboard_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint", "method"},
	)

	// UpstreamCalls вызовы API провайдера по действию и исходу
	UpstreamCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teo_dashboard_upstream_calls_total",
			Help: "Total number of provider API calls",
		},
		[]string{"action", "outcome"},
	)

	// UpstreamLatency время ответа провайдера
	UpstreamLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "teo_dashboard_upstream_latency_seconds",
			Help:    "Provider API call latency in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"action"},
	)

	// RegionFallbacks переходы на следующий регион
	RegionFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teo_dashboard_region_fallbacks_total",
			Help: "Total number of region fallbacks for Pages calls",
		},
		[]string{"region", "code"},
	)

	// CacheHits попадания в кэш
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teo_dashboard_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"tier"},
	)

	// CacheMisses промахи кэша
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teo_dashboard_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"tier"},
	)

	// SharedCalls запросы, обслуженные чужим вызовом
	SharedCalls = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "teo_dashboard_shared_calls_total",
			Help: "Total number of gateway requests served by an in-flight identical call",
		},
	)

	// NormalizedResults нормализованные ответы по типу
	NormalizedResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teo_dashboard_normalized_results_total",
			Help: "Total number of normalized metric results by type",
		},
		[]string{"type"},
	)

	// RefreshDuration длительность цикла обновления панели
	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "teo_dashboard_refresh_duration_seconds",
			Help:    "Dashboard refresh cycle duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	// AbsentMetrics метрики, не полученные в цикле обновления
	AbsentMetrics = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teo_dashboard_absent_metrics_total",
			Help: "Total number of metric fetches that ended absent",
		},
		[]string{"family"},
	)

	// StaleTopDiscards отброшенные устаревшие загрузки топ-анализа
	StaleTopDiscards = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "teo_dashboard_stale_top_discards_total",
			Help: "Total number of top analysis loads discarded as stale",
		},
	)

	// ChartRebuilds выполненные перестроения графиков
	ChartRebuilds = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "teo_dashboard_chart_rebuilds_total",
			Help: "Total number of chart rebuilds performed",
		},
	)

	// ActiveSessions количество активных сессий
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "teo_dashboard_active_sessions",
			Help: "Number of active dashboard sessions",
		},
	)
)

// ObserveCache учитывает попадание или промах уровня кэша
func ObserveCache(tier string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(tier).Inc()
		return
	}
	CacheMisses.WithLabelValues(tier).Inc()
}
