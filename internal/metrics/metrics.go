package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	LookupsProcessed   *prometheus.CounterVec
	APIErrors          prometheus.Counter
	RequestSeconds     *prometheus.HistogramVec
	ActiveLookups      prometheus.Gauge
	BatchFlushes       prometheus.Counter
	CacheHits          prometheus.Counter
	CacheMisses        prometheus.Counter
	AnnotationsEmitted prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		LookupsProcessed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "pinmap_geocode_lookups_total",
			Help: "Total number of geocode lookups issued, by outcome.",
		}, []string{"status"}),
		APIErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "pinmap_provider_api_errors_total",
			Help: "Total number of errors received from the geocoding provider API.",
		}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pinmap_provider_request_duration_seconds",
			Help:    "Duration of requests to the geocoding provider API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		ActiveLookups: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "pinmap_active_lookups",
			Help: "Current number of in-flight geocode lookups.",
		}),
		BatchFlushes: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "pinmap_batch_flushes_total",
			Help: "Total number of geocode batch flushes executed.",
		}),
		CacheHits: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "pinmap_coordinate_cache_hits_total",
			Help: "Total number of coordinate cache hits during viewport filtering.",
		}),
		CacheMisses: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "pinmap_coordinate_cache_misses_total",
			Help: "Total number of coordinate cache misses during viewport filtering.",
		}),
		AnnotationsEmitted: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "pinmap_annotations_emitted",
			Help: "Number of annotations in the most recently emitted set.",
		}),
	}
}
