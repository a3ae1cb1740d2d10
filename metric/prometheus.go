package metric

import (
	"errors"
	"strconv"
	"time"

	"github.com/hupe1980/kcluster"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "kcluster"

// Run status label values.
const (
	StatusConverged    = "converged"
	StatusNotConverged = "not_converged"
	StatusError        = "error"
)

// PrometheusCollector implements kcluster.MetricsCollector on top of
// Prometheus counters, gauges and histograms.
type PrometheusCollector struct {
	iterations        prometheus.Counter
	pointsMoved       prometheus.Counter
	emptyClusters     prometheus.Counter
	inertia           prometheus.Gauge
	totalDistance     prometheus.Gauge
	iterationDuration prometheus.Histogram
	runs              *prometheus.CounterVec
	runDuration       *prometheus.HistogramVec
	runIterations     prometheus.Histogram
}

// NewPrometheusCollector creates the collector and registers its metrics
// with reg. A nil reg uses prometheus.DefaultRegisterer.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusCollector{
		iterations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "iterations_total",
			Help:      "Total assignment passes",
		}),
		pointsMoved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_moved_total",
			Help:      "Total points that changed cluster between passes",
		}),
		emptyClusters: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "empty_clusters_total",
			Help:      "Total clusters left without members after a pass",
		}),
		inertia: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "inertia",
			Help:      "Within-cluster sum of squared distances of the latest pass",
		}),
		totalDistance: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "total_distance",
			Help:      "Sum of point-to-centroid distances of the latest pass",
		}),
		iterationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "iteration_duration_seconds",
			Help:      "Duration of a single assignment pass",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total Cluster calls by outcome",
		}, []string{"status", "k"}),
		runDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of Cluster calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		runIterations: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_iterations",
			Help:      "Assignment passes per Cluster call",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
}

// RecordIteration implements kcluster.MetricsCollector.
func (c *PrometheusCollector) RecordIteration(stats kcluster.IterationStats) {
	c.iterations.Inc()
	c.pointsMoved.Add(float64(stats.Moved))
	c.inertia.Set(stats.Inertia)
	c.totalDistance.Set(stats.TotalDistance)
	c.iterationDuration.Observe(stats.Duration.Seconds())
}

// RecordEmptyCluster implements kcluster.MetricsCollector.
func (c *PrometheusCollector) RecordEmptyCluster() {
	c.emptyClusters.Inc()
}

// RecordCluster implements kcluster.MetricsCollector.
func (c *PrometheusCollector) RecordCluster(k, iterations int, duration time.Duration, err error) {
	status := Status(err)
	c.runs.WithLabelValues(status, strconv.Itoa(k)).Inc()
	c.runDuration.WithLabelValues(status).Observe(duration.Seconds())
	c.runIterations.Observe(float64(iterations))
}

// Status maps a Cluster error to its run status label.
func Status(err error) string {
	switch {
	case err == nil:
		return StatusConverged
	case errors.Is(err, kcluster.ErrNotConverged):
		return StatusNotConverged
	default:
		return StatusError
	}
}

var _ kcluster.MetricsCollector = (*PrometheusCollector)(nil)
