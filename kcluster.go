package kcluster

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/hupe1980/kcluster/distance"
	"github.com/hupe1980/kcluster/internal/kmeans"
)

// State is the lifecycle state of an Engine.
type State int

const (
	StateInitialized State = iota
	StateAssigning
	StateRecomputing
	StateConverged
	// StateStopped means the last Cluster call ended early (iteration cap or
	// context). The next call resumes from the current centroids.
	StateStopped
)

func (s State) String() string {
	return toPhase(s).String()
}

func toPhase(s State) kmeans.Phase {
	switch s {
	case StateInitialized:
		return kmeans.PhaseInitialized
	case StateAssigning:
		return kmeans.PhaseAssigning
	case StateRecomputing:
		return kmeans.PhaseRecomputing
	case StateConverged:
		return kmeans.PhaseConverged
	case StateStopped:
		return kmeans.PhaseStopped
	default:
		return kmeans.Phase(-1)
	}
}

func fromPhase(p kmeans.Phase) State {
	switch p {
	case kmeans.PhaseAssigning:
		return StateAssigning
	case kmeans.PhaseRecomputing:
		return StateRecomputing
	case kmeans.PhaseConverged:
		return StateConverged
	case kmeans.PhaseStopped:
		return StateStopped
	default:
		return StateInitialized
	}
}

// Euclidean returns the Euclidean distance between two equal-length vectors.
func Euclidean(a, b []float64) float64 {
	return distance.Euclidean(a, b)
}

// Engine clusters a fixed dataset into k groups.
type Engine struct {
	mu       sync.Mutex
	dataset  [][]float64
	k        int
	lloyd    *kmeans.Lloyd
	observer *observer
	logger   *Logger
	metrics  MetricsCollector
}

// New validates the dataset and k and seeds the initial centroids.
//
// It returns an error matching ErrInvalidArgument when k < 1, k > len(dataset),
// the dataset is empty, or points differ in dimension. The dataset is
// referenced, not copied, and must not be modified while the engine is in use.
func New(dataset [][]float64, k int, optFns ...Option) (*Engine, error) {
	o := options{
		workers:          1,
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		fn(&o)
	}

	rng := o.rng
	if rng == nil && o.seeded {
		rng = rand.New(rand.NewSource(o.seed))
	}

	emptyPolicy := kmeans.EmptyKeep
	if o.emptyPolicy == EmptyReseed {
		emptyPolicy = kmeans.EmptyReseed
	}

	obs := &observer{
		logger:  o.logger,
		metrics: o.metricsCollector,
		policy:  o.emptyPolicy,
	}

	l, err := kmeans.New(dataset, k, kmeans.Config{
		MaxIterations: o.maxIterations,
		Workers:       o.workers,
		EmptyPolicy:   emptyPolicy,
		Rand:          rng,
		Observer:      obs,
		Seeds:         o.initialCentroids,
	})
	if err != nil {
		err = translateError(err)
		if k < 1 || k > len(dataset) {
			err = fmt.Errorf("%w (k=%d, n=%d)", err, k, len(dataset))
		}
		return nil, err
	}

	logger := o.logger.WithK(k).WithDimension(l.Dim()).WithCount(len(dataset))
	obs.logger = logger
	logger.Debug("engine initialized", "workers", o.workers, "max_iterations", o.maxIterations)

	return &Engine{
		dataset:  dataset,
		k:        k,
		lloyd:    l,
		observer: obs,
		logger:   logger,
		metrics:  o.metricsCollector,
	}, nil
}

// Cluster runs Lloyd iterations from the engine's current centroids until
// they stop changing.
//
// If WithMaxIterations is set and reached, the Result of the last pass is
// returned together with an error matching ErrNotConverged. If ctx is done,
// the result is nil and the error wraps ctx.Err().
func (e *Engine) Cluster(ctx context.Context) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.observer.ctx = ctx
	defer func() { e.observer.ctx = nil }()

	start := time.Now()
	out, err := e.lloyd.Run(ctx)

	var res *Result
	iterations := 0
	if out != nil {
		res = newResult(e.dataset, out)
		iterations = res.Iterations
	}
	if err != nil {
		err = fmt.Errorf("cluster: %w", translateError(err))
	}

	e.metrics.RecordCluster(e.k, iterations, time.Since(start), err)
	e.logger.LogCluster(ctx, res, err)

	return res, err
}

// State returns the engine's lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fromPhase(e.lloyd.Phase())
}

// K returns the number of clusters.
func (e *Engine) K() int { return e.k }

// Dim returns the point dimension.
func (e *Engine) Dim() int { return e.lloyd.Dim() }

// Len returns the number of points.
func (e *Engine) Len() int { return len(e.dataset) }

// Centroids returns a copy of the current centroids.
func (e *Engine) Centroids() [][]float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lloyd.Centroids()
}

// observer forwards iteration events to the logger and metrics collector.
type observer struct {
	ctx     context.Context
	logger  *Logger
	metrics MetricsCollector
	policy  EmptyClusterPolicy
}

func (o *observer) context() context.Context {
	if o.ctx == nil {
		return context.Background()
	}
	return o.ctx
}

func (o *observer) OnIteration(stats kmeans.IterationStats) {
	s := IterationStats(stats)
	o.logger.LogIteration(o.context(), s)
	o.metrics.RecordIteration(s)
}

func (o *observer) OnEmptyCluster(iteration, cluster int) {
	o.logger.LogEmptyCluster(o.context(), iteration, cluster, o.policy)
	o.metrics.RecordEmptyCluster()
}
