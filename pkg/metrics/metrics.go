package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	LanesValidated        *prometheus.CounterVec
	LegCheckFailures      prometheus.Counter
	ValidationDuration    prometheus.Histogram
	LanesSaved            prometheus.Counter
	LanesDeleted          prometheus.Counter
	StaleResultsDiscarded prometheus.Counter
}

// NewMetrics creates new prometheus metrics in the default registry
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer, namespace)
}

// NewMetricsWith creates new prometheus metrics in the given registry
// Tests pass a fresh registry to avoid duplicate registration
func NewMetricsWith(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		LanesValidated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lanes_validated_total",
			Help:      "The total number of lane validations by resulting status",
		}, []string{"status"}),
		LegCheckFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "leg_check_failures_total",
			Help:      "The total number of leg validation requests that failed",
		}),
		ValidationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lane_validation_duration_seconds",
			Help:      "Time taken to validate a lane across all its legs",
			Buckets:   prometheus.DefBuckets,
		}),
		LanesSaved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lanes_saved_total",
			Help:      "The total number of lanes persisted",
		}),
		LanesDeleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lanes_deleted_total",
			Help:      "The total number of lanes deleted",
		}),
		StaleResultsDiscarded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_results_discarded_total",
			Help:      "The total number of async results discarded due to concurrent edits",
		}),
	}
}
