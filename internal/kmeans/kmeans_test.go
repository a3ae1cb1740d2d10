package kmeans

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// blobs returns n points per center scattered uniformly within spread.
func blobs(rng *rand.Rand, centers [][]float64, n int, spread float64) [][]float64 {
	var pts [][]float64
	for _, c := range centers {
		for i := 0; i < n; i++ {
			p := make([]float64, len(c))
			for d := range c {
				p[d] = c[d] + (rng.Float64()*2-1)*spread
			}
			pts = append(pts, p)
		}
	}
	return pts
}

func TestRun_TwoGroups(t *testing.T) {
	pts := [][]float64{{0, 0}, {0, 1}, {10, 0}, {10, 1}}

	// One seed per side. Two seeds on the same side settle in the
	// {(0,0),(10,0)} / {(0,1),(10,1)} local optimum instead.
	l, err := New(pts, 2, Config{Seeds: [][]float64{{0, 0}, {10, 1}}})
	require.NoError(t, err)
	assert.Equal(t, PhaseInitialized, l.Phase())

	out, err := l.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, out.Converged)
	assert.Equal(t, PhaseConverged, l.Phase())

	assert.Equal(t, out.Labels[0], out.Labels[1])
	assert.Equal(t, out.Labels[2], out.Labels[3])
	assert.NotEqual(t, out.Labels[0], out.Labels[2])
	assert.InDelta(t, 2.0, out.TotalDistance, 1e-12)

	left := out.Centroids[out.Labels[0]]
	right := out.Centroids[out.Labels[2]]
	assert.Equal(t, []float64{0, 0.5}, left)
	assert.Equal(t, []float64{10, 0.5}, right)
}

func TestRun_TwoGroupsLocalOptimum(t *testing.T) {
	pts := [][]float64{{0, 0}, {0, 1}, {10, 0}, {10, 1}}

	l, err := New(pts, 2, Config{Seeds: [][]float64{{0, 0}, {0, 1}}})
	require.NoError(t, err)

	out, err := l.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, out.Converged)
	assert.Equal(t, []int{0, 1, 0, 1}, out.Labels)
	assert.InDelta(t, 20.0, out.TotalDistance, 1e-12)
}

func TestNew_Seeds(t *testing.T) {
	pts := [][]float64{{0, 0}, {1, 1}, {2, 2}}

	_, err := New(pts, 2, Config{Seeds: [][]float64{{0, 0}}})
	assert.ErrorIs(t, err, ErrSeedCount)

	_, err = New(pts, 2, Config{Seeds: [][]float64{{0, 0}, {1}}})
	var dm *ErrDimensionMismatch
	assert.ErrorAs(t, err, &dm)

	seeds := [][]float64{{5, 5}, {6, 6}}
	l, err := New(pts, 2, Config{Seeds: seeds})
	require.NoError(t, err)
	seeds[0][0] = -1
	assert.Equal(t, [][]float64{{5, 5}, {6, 6}}, l.Centroids())
}

func TestRun_KEqualsN(t *testing.T) {
	pts := [][]float64{{1, 2}, {3, 4}, {5, 6}, {7, 8}, {9, 10}}

	l, err := New(pts, len(pts), Config{Rand: seeded(7)})
	require.NoError(t, err)

	out, err := l.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, out.Converged)
	assert.Equal(t, 1, out.Iterations)
	assert.Equal(t, 0.0, out.TotalDistance)

	for i, p := range pts {
		assert.Equal(t, p, out.Centroids[out.Labels[i]])
	}
}

func TestRun_KOne(t *testing.T) {
	pts := blobs(seeded(3), [][]float64{{1, 1, 1}, {-4, 2, 0}}, 20, 0.5)

	l, err := New(pts, 1, Config{Rand: seeded(3)})
	require.NoError(t, err)

	out, err := l.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, out.Converged)

	mean := make([]float64, 3)
	for _, p := range pts {
		for d := range p {
			mean[d] += p[d]
		}
	}
	for d := range mean {
		mean[d] /= float64(len(pts))
		assert.InDelta(t, mean[d], out.Centroids[0][d], 1e-9)
	}
	for _, label := range out.Labels {
		assert.Equal(t, 0, label)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		points [][]float64
		k      int
		err    error
	}{
		{"Empty", nil, 1, ErrNoPoints},
		{"KZero", [][]float64{{1}}, 0, ErrInvalidK},
		{"KNegative", [][]float64{{1}}, -1, ErrInvalidK},
		{"KTooLarge", [][]float64{{1}, {2}}, 3, ErrInvalidK},
		{"ZeroDim", [][]float64{{}, {}}, 1, ErrZeroDimension},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.points, tt.k)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	t.Run("Ragged", func(t *testing.T) {
		_, err := Validate([][]float64{{1, 2}, {1, 2}, {3}}, 2)
		var dm *ErrDimensionMismatch
		require.ErrorAs(t, err, &dm)
		assert.Equal(t, 2, dm.Index)
		assert.Equal(t, 2, dm.Expected)
		assert.Equal(t, 1, dm.Actual)
	})

	t.Run("Valid", func(t *testing.T) {
		dim, err := Validate([][]float64{{1, 2}, {3, 4}}, 2)
		require.NoError(t, err)
		assert.Equal(t, 2, dim)
	})
}

func TestNew_InvalidKLeavesRandUntouched(t *testing.T) {
	points := [][]float64{{0}, {1}, {2}}

	for _, k := range []int{0, 4} {
		rng := seeded(5)
		_, err := New(points, k, Config{Rand: rng})
		require.ErrorIs(t, err, ErrInvalidK)
		assert.Equal(t, seeded(5).Int63(), rng.Int63(), "k=%d", k)
	}
}

func TestRecompute_ExactMean(t *testing.T) {
	rng := seeded(42)
	prev := [][]float64{{0}}

	for trial := 0; trial < 1000; trial++ {
		n := 3 + rng.Intn(20)
		points := make([][]float64, n)
		labels := make([]int, n)
		var sum float64
		for i := range points {
			points[i] = []float64{rng.Float64()}
			sum += points[i][0]
		}

		next, counts := Recompute(points, labels, prev)
		require.Equal(t, []int{n}, counts)
		require.Equal(t, sum/float64(n), next[0][0], "trial %d n=%d", trial, n)
	}
}

func TestRun_FixedPoint(t *testing.T) {
	pts := blobs(seeded(11), [][]float64{{0, 0}, {5, 5}, {-5, 5}, {0, -6}}, 40, 1.5)

	l, err := New(pts, 4, Config{Rand: seeded(11)})
	require.NoError(t, err)

	out, err := l.Run(context.Background())
	require.NoError(t, err)
	require.True(t, out.Converged)

	labels := make([]int, len(pts))
	dists := make([]float64, len(pts))
	require.NoError(t, Assign(context.Background(), pts, out.Centroids, labels, dists, 1))
	assert.Equal(t, out.Labels, labels)

	next, _ := Recompute(pts, labels, out.Centroids)
	assert.True(t, Equal(next, out.Centroids))

	// A second run on a converged engine stops after one pass.
	again, err := l.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, again.Iterations)
	assert.Equal(t, out.Labels, again.Labels)
}

func TestRun_InertiaNonIncreasing(t *testing.T) {
	rng := seeded(42)
	pts := make([][]float64, 500)
	for i := range pts {
		pts[i] = []float64{rng.Float64(), rng.Float64(), rng.Float64(), rng.Float64()}
	}

	l, err := New(pts, 8, Config{Rand: seeded(42)})
	require.NoError(t, err)

	out, err := l.Run(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, out.History)

	for i := 1; i < len(out.History); i++ {
		assert.LessOrEqual(t, out.History[i].Inertia, out.History[i-1].Inertia+1e-9,
			"iteration %d", out.History[i].Iteration)
	}
	assert.Equal(t, len(out.History), out.Iterations)
}

func TestRun_EveryPointAssignedOnce(t *testing.T) {
	pts := blobs(seeded(5), [][]float64{{0, 0}, {3, 3}, {9, 0}}, 30, 2)

	l, err := New(pts, 6, Config{Rand: seeded(5)})
	require.NoError(t, err)

	out, err := l.Run(context.Background())
	require.NoError(t, err)

	counts := make([]int, 6)
	for _, label := range out.Labels {
		require.GreaterOrEqual(t, label, 0)
		require.Less(t, label, 6)
		counts[label]++
	}
	total := 0
	for _, c := range counts {
		total += c
	}
	assert.Equal(t, len(pts), total)
	assert.Len(t, out.Centroids, 6)
}

func TestRun_WorkersMatchSequential(t *testing.T) {
	pts := blobs(seeded(9), [][]float64{{0, 0, 0}, {4, 4, 4}, {-4, 0, 4}, {8, -8, 0}}, 600, 3)

	run := func(workers int) *Outcome {
		l, err := New(pts, 4, Config{Rand: seeded(9), Workers: workers})
		require.NoError(t, err)
		out, err := l.Run(context.Background())
		require.NoError(t, err)
		return out
	}

	seq := run(1)
	par := run(4)

	assert.Equal(t, seq.Labels, par.Labels)
	assert.Equal(t, seq.Centroids, par.Centroids)
	assert.Equal(t, seq.TotalDistance, par.TotalDistance)
	assert.Equal(t, seq.Iterations, par.Iterations)
}

func TestRun_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pts := make([][]float64, 1000)
	for i := range pts {
		pts[i] = []float64{float64(i), float64(i % 7)}
	}

	l, err := New(pts, 10, Config{Rand: seeded(1)})
	require.NoError(t, err)

	_, err = l.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, PhaseStopped, l.Phase())
}

func TestRun_MaxIterations(t *testing.T) {
	rng := seeded(2)
	pts := make([][]float64, 500)
	for i := range pts {
		pts[i] = []float64{rng.Float64(), rng.Float64()}
	}

	l, err := New(pts, 5, Config{Rand: seeded(2), MaxIterations: 1})
	require.NoError(t, err)
	before := l.Centroids()

	out, err := l.Run(context.Background())
	require.ErrorIs(t, err, ErrMaxIterations)
	require.NotNil(t, out)
	assert.False(t, out.Converged)
	assert.Equal(t, 1, out.Iterations)
	assert.Equal(t, PhaseStopped, l.Phase())

	// The outcome describes the pass that was made with the seed centroids.
	assert.Equal(t, before, out.Centroids)
	// The engine moved on to the recomputed centroids.
	assert.False(t, Equal(before, l.Centroids()))
}

type recordingObserver struct {
	iterations []IterationStats
	empty      [][2]int
}

func (r *recordingObserver) OnIteration(stats IterationStats) {
	r.iterations = append(r.iterations, stats)
}

func (r *recordingObserver) OnEmptyCluster(iteration, cluster int) {
	r.empty = append(r.empty, [2]int{iteration, cluster})
}

func TestRun_EmptyClusterKeep(t *testing.T) {
	pts := [][]float64{{0, 0}, {0, 0}, {5, 5}}
	obs := &recordingObserver{}

	l, err := New(pts, 2, Config{Rand: seeded(1), Observer: obs})
	require.NoError(t, err)
	// Duplicate seeds force cluster 1 to start empty.
	l.centroids = [][]float64{{0, 0}, {0, 0}}

	out, err := l.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, out.Converged)
	assert.Equal(t, 3, out.Iterations)

	assert.Equal(t, 1, out.History[0].Empty)
	assert.Equal(t, [][2]int{{1, 1}}, obs.empty)
	assert.Len(t, obs.iterations, 3)

	assert.Equal(t, []int{1, 1, 0}, out.Labels)
	assert.Equal(t, [][]float64{{5, 5}, {0, 0}}, out.Centroids)
	assert.Equal(t, 0.0, out.TotalDistance)
}

func TestRun_EmptyClusterReseed(t *testing.T) {
	pts := [][]float64{{0, 0}, {0, 0}, {5, 5}}

	l, err := New(pts, 2, Config{Rand: seeded(3), EmptyPolicy: EmptyReseed})
	require.NoError(t, err)
	l.centroids = [][]float64{{0, 0}, {0, 0}}

	out, err := l.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, out.Converged)
	assert.Equal(t, 1, out.History[0].Empty)
	assert.Equal(t, 0.0, out.TotalDistance)
	assert.Equal(t, out.Labels[0], out.Labels[1])
	assert.NotEqual(t, out.Labels[0], out.Labels[2])
}

func TestNearest_TieGoesToLowestIndex(t *testing.T) {
	centroids := [][]float64{{1, 0}, {-1, 0}, {0, 1}}
	idx, d := Nearest([]float64{0, 0}, centroids)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 1.0, d)
}

func TestInitCentroids_DistinctSample(t *testing.T) {
	pts := [][]float64{{0}, {1}, {2}, {3}, {4}, {5}}
	centroids := InitCentroids(pts, len(pts), seeded(8))

	seen := map[float64]bool{}
	for _, c := range centroids {
		seen[c[0]] = true
	}
	assert.Len(t, seen, len(pts))

	// Centroids are copies.
	centroids[0][0] = 100
	for _, p := range pts {
		assert.NotEqual(t, 100.0, p[0])
	}
}

func TestInitCentroids_Deterministic(t *testing.T) {
	pts := blobs(seeded(1), [][]float64{{0, 0}}, 50, 1)
	a := InitCentroids(pts, 5, seeded(99))
	b := InitCentroids(pts, 5, seeded(99))
	assert.Equal(t, a, b)
}

func TestClosestCentroids(t *testing.T) {
	centroids := [][]float64{
		{0, 0},
		{10, 10},
		{20, 20},
	}

	res := ClosestCentroids([]float64{1, 1}, centroids, 2)
	assert.Equal(t, []int{0, 1}, res)

	res = ClosestCentroids([]float64{19, 19}, centroids, 1)
	assert.Equal(t, []int{2}, res)

	res = ClosestCentroids([]float64{19, 19}, centroids, 10)
	assert.Equal(t, []int{2, 1, 0}, res)
}

func TestMeanDistances(t *testing.T) {
	groups := [][][]float64{
		{{0, 0}, {0, 2}},
		{},
		{{10, 0}},
	}
	centroids := [][]float64{{0, 1}, {5, 5}, {10, 3}}

	means := MeanDistances(groups, centroids)
	assert.Equal(t, []float64{1, 0, 3}, means)
}

func TestRankOrder(t *testing.T) {
	assert.Equal(t, []int{1, 3, 0, 2}, RankOrder([]float64{2, 0, 5, 1}))
	// Ties keep input order.
	assert.Equal(t, []int{1, 0, 2, 3}, RankOrder([]float64{1, 0, 1, 1}))
	assert.Empty(t, RankOrder(nil))
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "assigning", PhaseAssigning.String())
	assert.Equal(t, "converged", PhaseConverged.String())
	assert.Equal(t, "unknown", Phase(42).String())
}
