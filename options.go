package kcluster

import (
	"math/rand"
)

// EmptyClusterPolicy decides what happens to the centroid of a cluster that
// received no members in an assignment pass.
type EmptyClusterPolicy int

const (
	// EmptyKeep leaves the previous centroid in place (default).
	EmptyKeep EmptyClusterPolicy = iota
	// EmptyReseed moves the centroid to a uniformly random dataset point.
	EmptyReseed
)

func (p EmptyClusterPolicy) String() string {
	switch p {
	case EmptyKeep:
		return "keep"
	case EmptyReseed:
		return "reseed"
	default:
		return "unknown"
	}
}

type options struct {
	rng              *rand.Rand
	seed             int64
	seeded           bool
	maxIterations    int
	workers          int
	emptyPolicy      EmptyClusterPolicy
	initialCentroids [][]float64
	logger           *Logger
	metricsCollector MetricsCollector
}

// Option configures an Engine.
type Option func(*options)

// WithSeed makes centroid initialization (and reseeding) deterministic.
//
// Ignored when WithRand is also given.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
		o.seeded = true
	}
}

// WithRand sets the random source used for initialization and reseeding.
//
// The engine is the only user of r for its lifetime; do not share it with
// other goroutines.
func WithRand(r *rand.Rand) Option {
	return func(o *options) {
		o.rng = r
	}
}

// WithMaxIterations caps the number of assignment passes per Cluster call.
//
// 0 (default) means unbounded: clustering runs until the centroids stop
// changing. When the cap is hit, Cluster returns the last pass together with
// ErrNotConverged.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		if n < 0 {
			n = 0
		}
		o.maxIterations = n
	}
}

// WithWorkers sets the number of goroutines used for the assignment pass.
//
// Values <= 1 run sequentially. Small datasets always run sequentially.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithEmptyClusterPolicy configures how empty clusters are handled.
func WithEmptyClusterPolicy(p EmptyClusterPolicy) Option {
	return func(o *options) {
		o.emptyPolicy = p
	}
}

// WithInitialCentroids replaces random initialization with explicit
// starting centroids. len(centroids) must equal k.
func WithInitialCentroids(centroids [][]float64) Option {
	return func(o *options) {
		o.initialCentroids = centroids
	}
}

// WithLogger configures the logger. Pass nil to disable logging.
//
// Example:
//
//	eng, _ := kcluster.New(points, 4, kcluster.WithLogger(kcluster.NewTextLogger(slog.LevelDebug)))
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector configures a metrics collector for monitoring runs.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &kcluster.BasicMetricsCollector{}
//	eng, _ := kcluster.New(points, 4, kcluster.WithMetricsCollector(metrics))
//	_, _ = eng.Cluster(ctx)
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}
