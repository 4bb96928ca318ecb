package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// QueryMetrics records registry read-path behavior.
type QueryMetrics struct {
	duration  *prometheus.HistogramVec
	cacheHit  *prometheus.CounterVec
	cacheMiss *prometheus.CounterVec
}

// NewQueryMetrics registers the registry query metrics on the provided registerer.
func NewQueryMetrics(reg prometheus.Registerer) *QueryMetrics {
	if reg == nil {
		return &QueryMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "registry_query_duration_seconds",
		Help:    "Duration of registry queries in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})
	cacheHit := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "registry_parcel_cache_hit",
		Help: "Parcel state reads served from cache.",
	}, []string{"query"})
	cacheMiss := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "registry_parcel_cache_miss",
		Help: "Parcel state reads that fell through to storage.",
	}, []string{"query"})
	reg.MustRegister(duration, cacheHit, cacheMiss)
	return &QueryMetrics{
		duration:  duration,
		cacheHit:  cacheHit,
		cacheMiss: cacheMiss,
	}
}

// ObserveDuration records the duration for the named query.
func (m *QueryMetrics) ObserveDuration(query string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(query)).Observe(duration.Seconds())
}

// IncCacheHit increments the cache hit counter for the named query.
func (m *QueryMetrics) IncCacheHit(query string) {
	if m == nil || m.cacheHit == nil {
		return
	}
	m.cacheHit.WithLabelValues(normalizeLabel(query)).Inc()
}

// IncCacheMiss increments the cache miss counter for the named query.
func (m *QueryMetrics) IncCacheMiss(query string) {
	if m == nil || m.cacheMiss == nil {
		return
	}
	m.cacheMiss.WithLabelValues(normalizeLabel(query)).Inc()
}
