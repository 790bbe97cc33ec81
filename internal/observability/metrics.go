package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "disaster_response"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Cache metrics.
	CacheLookups *prometheus.CounterVec // labels: domain, result={hit,miss}
	CacheErrors  *prometheus.CounterVec // labels: op={get,set}

	// Geocoding metrics.
	GeocodeAttempts *prometheus.CounterVec   // labels: provider, outcome={found,not_found,error}
	GeocodeDuration *prometheus.HistogramVec // labels: provider
	GeocodeFailures prometheus.Counter

	// Event bus metrics.
	EventsPublished   *prometheus.CounterVec // labels: topic
	EventsDropped     prometheus.Counter
	ActiveSubscribers prometheus.Gauge

	// Social ingest pipeline metrics.
	MessagesConsumed        prometheus.Counter
	ReportsClassified       *prometheus.CounterVec // labels: priority
	TransformErrors         prometheus.Counter
	PipelineRunning         prometheus.Gauge
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by key domain and result.",
		}, []string{"domain", "result"}),
		CacheErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_errors_total",
			Help:      "Cache backend failures by operation.",
		}, []string{"op"}),
		GeocodeAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_attempts_total",
			Help:      "Geocoding provider calls by provider and outcome.",
		}, []string{"provider", "outcome"}),
		GeocodeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_provider_duration_seconds",
			Help:      "Geocoding provider request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"provider"}),
		GeocodeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_exhausted_total",
			Help:      "Lookups where every provider in the chain was exhausted.",
		}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Events published on the bus by topic.",
		}, []string{"topic"}),
		EventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Deliveries skipped because a subscriber buffer was full.",
		}),
		ActiveSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "event_subscribers",
			Help:      "Currently connected event subscribers.",
		}),
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "social_messages_consumed_total",
			Help:      "Total messages read from the social report topic.",
		}),
		ReportsClassified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "social_reports_classified_total",
			Help:      "Social reports classified by priority.",
		}, []string{"priority"}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "social_transform_errors_total",
			Help:      "Total social report decode failures.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "social_pipeline_running",
			Help:      "1 when the ingest pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "social_batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "social_batch_processing_duration_seconds",
			Help:      "Duration of a complete ingest batch cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.CacheLookups,
		m.CacheErrors,
		m.GeocodeAttempts,
		m.GeocodeDuration,
		m.GeocodeFailures,
		m.EventsPublished,
		m.EventsDropped,
		m.ActiveSubscribers,
		m.MessagesConsumed,
		m.ReportsClassified,
		m.TransformErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
	}
}
