package kmeans

import (
	"context"
	"math/rand"
	"slices"
	"time"

	"github.com/hupe1980/kcluster/distance"
	"gonum.org/v1/gonum/floats"
)

// Phase is the lifecycle state of a Lloyd run.
type Phase int

const (
	PhaseInitialized Phase = iota
	PhaseAssigning
	PhaseRecomputing
	PhaseConverged
	PhaseStopped
)

func (p Phase) String() string {
	switch p {
	case PhaseInitialized:
		return "initialized"
	case PhaseAssigning:
		return "assigning"
	case PhaseRecomputing:
		return "recomputing"
	case PhaseConverged:
		return "converged"
	case PhaseStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// EmptyPolicy decides what happens to a centroid whose cluster lost all members.
type EmptyPolicy int

const (
	// EmptyKeep leaves the previous centroid in place.
	EmptyKeep EmptyPolicy = iota
	// EmptyReseed moves the centroid to a random dataset point.
	EmptyReseed
)

// Observer receives progress callbacks. Calls happen on the goroutine running Run.
type Observer interface {
	OnIteration(stats IterationStats)
	OnEmptyCluster(iteration, cluster int)
}

// Config controls a Lloyd run. The zero value is a sequential, unbounded run
// with a time-seeded random source.
type Config struct {
	// MaxIterations caps the number of assignment passes per Run. 0 means unbounded.
	MaxIterations int
	// Workers is the number of goroutines used for the assignment pass.
	Workers     int
	EmptyPolicy EmptyPolicy
	Rand        *rand.Rand
	Observer    Observer
	// Seeds replaces random initialization with explicit starting centroids.
	Seeds [][]float64
}

// IterationStats describes one assignment pass.
type IterationStats struct {
	Iteration int
	// TotalDistance is the sum of Euclidean distances from each point to the
	// centroid it was assigned to in this pass.
	TotalDistance float64
	// Inertia is the sum of squared distances. Non-increasing across passes.
	Inertia  float64
	Moved    int
	Empty    int
	Duration time.Duration
}

// Outcome is the result of a Run. Labels, Centroids and TotalDistance all
// describe the last completed assignment pass.
type Outcome struct {
	Labels        []int
	Centroids     [][]float64
	TotalDistance float64
	Iterations    int
	Converged     bool
	History       []IterationStats
}

// Lloyd holds the state of a k-means run over a fixed dataset.
type Lloyd struct {
	points    [][]float64
	dim       int
	centroids [][]float64
	phase     Phase
	cfg       Config
	rng       *rand.Rand
}

// Validate checks the dataset and k and returns the point dimension.
func Validate(points [][]float64, k int) (int, error) {
	if len(points) == 0 {
		return 0, ErrNoPoints
	}
	if k < 1 || k > len(points) {
		return 0, ErrInvalidK
	}
	dim := len(points[0])
	if dim == 0 {
		return 0, ErrZeroDimension
	}
	for i, p := range points {
		if len(p) != dim {
			return 0, &ErrDimensionMismatch{Index: i, Expected: dim, Actual: len(p)}
		}
	}
	return dim, nil
}

// New validates the input and seeds k centroids from distinct dataset points,
// or from cfg.Seeds when set.
func New(points [][]float64, k int, cfg Config) (*Lloyd, error) {
	dim, err := Validate(points, k)
	if err != nil {
		return nil, err
	}

	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	var centroids [][]float64
	if cfg.Seeds != nil {
		if len(cfg.Seeds) != k {
			return nil, ErrSeedCount
		}
		for i, c := range cfg.Seeds {
			if len(c) != dim {
				return nil, &ErrDimensionMismatch{Index: i, Expected: dim, Actual: len(c)}
			}
		}
		centroids = cloneMatrix(cfg.Seeds)
	} else {
		centroids = InitCentroids(points, k, rng)
	}

	return &Lloyd{
		points:    points,
		dim:       dim,
		centroids: centroids,
		phase:     PhaseInitialized,
		cfg:       cfg,
		rng:       rng,
	}, nil
}

// InitCentroids copies k points chosen uniformly at random without replacement.
func InitCentroids(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	perm := rng.Perm(len(points))
	centroids := make([][]float64, k)
	for i := 0; i < k; i++ {
		centroids[i] = slices.Clone(points[perm[i]])
	}
	return centroids
}

// Phase returns the current lifecycle state.
func (l *Lloyd) Phase() Phase { return l.phase }

// Dim returns the point dimension.
func (l *Lloyd) Dim() int { return l.dim }

// K returns the number of clusters.
func (l *Lloyd) K() int { return len(l.centroids) }

// Centroids returns a copy of the current centroids.
func (l *Lloyd) Centroids() [][]float64 { return cloneMatrix(l.centroids) }

// Run iterates assignment and recomputation until the centroids stop changing.
//
// On reaching MaxIterations the outcome of the last pass is returned together
// with ErrMaxIterations, and the engine keeps the recomputed centroids so a
// later Run resumes where this one stopped. On context cancellation the
// outcome is nil.
func (l *Lloyd) Run(ctx context.Context) (*Outcome, error) {
	n := len(l.points)
	labels := make([]int, n)
	prev := make([]int, n)
	for i := range prev {
		prev[i] = -1
	}
	dists := make([]float64, n)

	var history []IterationStats
	for iter := 1; ; iter++ {
		if err := ctx.Err(); err != nil {
			l.phase = PhaseStopped
			return nil, err
		}

		start := time.Now()

		l.phase = PhaseAssigning
		if err := Assign(ctx, l.points, l.centroids, labels, dists, l.cfg.Workers); err != nil {
			l.phase = PhaseStopped
			return nil, err
		}
		stats := summarize(iter, l.points, l.centroids, labels, prev, dists)
		copy(prev, labels)

		l.phase = PhaseRecomputing
		next, counts := Recompute(l.points, labels, l.centroids)
		for j, c := range counts {
			if c > 0 {
				continue
			}
			stats.Empty++
			if l.cfg.EmptyPolicy == EmptyReseed {
				copy(next[j], l.points[l.rng.Intn(n)])
			}
			if l.cfg.Observer != nil {
				l.cfg.Observer.OnEmptyCluster(iter, j)
			}
		}
		stats.Duration = time.Since(start)
		history = append(history, stats)
		if l.cfg.Observer != nil {
			l.cfg.Observer.OnIteration(stats)
		}

		if Equal(next, l.centroids) {
			l.phase = PhaseConverged
			return l.outcome(labels, stats, history, true), nil
		}

		out := l.outcome(labels, stats, history, false)
		l.centroids = next

		if l.cfg.MaxIterations > 0 && iter >= l.cfg.MaxIterations {
			l.phase = PhaseStopped
			return out, ErrMaxIterations
		}
	}
}

func (l *Lloyd) outcome(labels []int, last IterationStats, history []IterationStats, converged bool) *Outcome {
	return &Outcome{
		Labels:        slices.Clone(labels),
		Centroids:     cloneMatrix(l.centroids),
		TotalDistance: last.TotalDistance,
		Iterations:    last.Iteration,
		Converged:     converged,
		History:       history,
	}
}

func summarize(iter int, points, centroids [][]float64, labels, prev []int, dists []float64) IterationStats {
	stats := IterationStats{Iteration: iter}
	for i, d := range dists {
		stats.TotalDistance += d
		stats.Inertia += distance.SquaredEuclidean(points[i], centroids[labels[i]])
		if labels[i] != prev[i] {
			stats.Moved++
		}
	}
	return stats
}

// Recompute returns the mean of each cluster's members and the member counts.
// Clusters without members keep their previous centroid.
func Recompute(points [][]float64, labels []int, prev [][]float64) ([][]float64, []int) {
	k := len(prev)
	dim := len(prev[0])

	backing := make([]float64, k*dim)
	next := make([][]float64, k)
	for j := range next {
		next[j] = backing[j*dim : (j+1)*dim : (j+1)*dim]
	}
	counts := make([]int, k)

	for i, p := range points {
		c := labels[i]
		floats.Add(next[c], p)
		counts[c]++
	}

	for j := range next {
		if counts[j] == 0 {
			copy(next[j], prev[j])
			continue
		}
		c := float64(counts[j])
		for d := range next[j] {
			next[j][d] /= c
		}
	}
	return next, counts
}

// Equal reports whether two centroid sets are identical coordinate by coordinate.
func Equal(a, b [][]float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !slices.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func cloneMatrix(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = slices.Clone(row)
	}
	return out
}
