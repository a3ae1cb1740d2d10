package kmeans

import (
	"context"
	"sort"

	"github.com/hupe1980/kcluster/distance"
	"golang.org/x/sync/errgroup"
)

// minChunk is the smallest point range handed to a worker.
const minChunk = 256

// Assign writes the nearest centroid index and its distance for every point
// into labels and dists. With workers > 1 the points are split into
// contiguous ranges processed concurrently; centroids are only read.
func Assign(ctx context.Context, points, centroids [][]float64, labels []int, dists []float64, workers int) error {
	n := len(points)
	if workers <= 1 || n < 2*minChunk {
		assignRange(points, centroids, labels, dists, 0, n)
		return nil
	}

	chunk := (n + workers - 1) / workers
	if chunk < minChunk {
		chunk = minChunk
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			assignRange(points, centroids, labels, dists, start, end)
			return nil
		})
	}
	return g.Wait()
}

func assignRange(points, centroids [][]float64, labels []int, dists []float64, start, end int) {
	for i := start; i < end; i++ {
		labels[i], dists[i] = Nearest(points[i], centroids)
	}
}

// Nearest finds the closest centroid for a point. A later centroid only
// wins if it is strictly closer, so ties resolve to the lowest index.
func Nearest(p []float64, centroids [][]float64) (int, float64) {
	best := 0
	minDist := distance.Euclidean(p, centroids[0])
	for j := 1; j < len(centroids); j++ {
		d := distance.Euclidean(p, centroids[j])
		if d < minDist {
			minDist = d
			best = j
		}
	}
	return best, minDist
}

type centroidDist struct {
	id   int
	dist float64
}

// ClosestCentroids returns the indices of the n closest centroids to the
// query, nearest first.
func ClosestCentroids(query []float64, centroids [][]float64, n int) []int {
	if n > len(centroids) {
		n = len(centroids)
	}

	dists := make([]centroidDist, len(centroids))
	for i, c := range centroids {
		dists[i] = centroidDist{id: i, dist: distance.Euclidean(query, c)}
	}

	sort.SliceStable(dists, func(i, j int) bool {
		return dists[i].dist < dists[j].dist
	})

	result := make([]int, n)
	for i := 0; i < n; i++ {
		result[i] = dists[i].id
	}
	return result
}
