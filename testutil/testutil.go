package testutil

import (
	"math/rand"
	"sync"

	"github.com/hupe1980/kcluster/distance"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// UniformVectors generates random points with coordinates in range [0, 1).
// Uses a single backing array for efficiency.
func (r *RNG) UniformVectors(num int, dimensions int) [][]float64 {
	return r.generate(num, dimensions, func(rnd *rand.Rand) float64 {
		return rnd.Float64()
	})
}

// UniformRangeVectors generates random points with coordinates in range [-1, 1).
func (r *RNG) UniformRangeVectors(num int, dimensions int) [][]float64 {
	return r.generate(num, dimensions, func(rnd *rand.Rand) float64 {
		return rnd.Float64()*2 - 1
	})
}

// GaussianVectors generates random points with coordinates from a standard
// normal distribution.
func (r *RNG) GaussianVectors(num int, dimensions int) [][]float64 {
	return r.generate(num, dimensions, func(rnd *rand.Rand) float64 {
		return rnd.NormFloat64()
	})
}

func (r *RNG) generate(num, dimensions int, next func(*rand.Rand) float64) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dimensions)
	vectors := make([][]float64, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = next(r.rand)
		}
		vectors[i] = vec
	}

	return vectors
}

// BlobCenter returns the center of blob c used by Blobs.
// Centers lie on a diagonal grid with spacing 10 so blobs with a spread
// well below 1 never overlap.
func BlobCenter(c, dim int) []float64 {
	center := make([]float64, dim)
	for j := range center {
		center[j] = float64(c) * 10
		if j%2 == 1 {
			center[j] = -center[j]
		}
	}
	return center
}

// Blobs generates points scattered around clusters centers (see BlobCenter)
// with Gaussian noise of the given spread. Point i belongs to blob i%clusters.
func (r *RNG) Blobs(num, dim, clusters int, spread float64) [][]float64 {
	centers := make([][]float64, clusters)
	for c := range centers {
		centers[c] = BlobCenter(c, dim)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dim)
	vectors := make([][]float64, num)

	for i := range num {
		center := centers[i%clusters]
		vec := data[i*dim : (i+1)*dim]

		for j := range dim {
			vec[j] = center[j] + r.rand.NormFloat64()*spread
		}
		vectors[i] = vec
	}

	return vectors
}

// Perturb returns a copy of points with every coordinate shifted by uniform
// noise in [-eps, eps).
func (r *RNG) Perturb(points [][]float64, eps float64) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([][]float64, len(points))
	for i, p := range points {
		q := make([]float64, len(p))
		for j, v := range p {
			q[j] = v + (r.rand.Float64()*2-1)*eps
		}
		out[i] = q
	}
	return out
}

// BruteForceAssign returns, for every point, the index of the nearest
// centroid. Ties go to the lowest index.
func BruteForceAssign(points, centroids [][]float64) []int {
	labels := make([]int, len(points))
	for i, p := range points {
		best := 0
		bestDist := distance.Euclidean(p, centroids[0])
		for j := 1; j < len(centroids); j++ {
			if d := distance.Euclidean(p, centroids[j]); d < bestDist {
				best, bestDist = j, d
			}
		}
		labels[i] = best
	}
	return labels
}

// SameGrouping reports whether two labelings describe the same partition up
// to a renaming of the cluster ids.
func SameGrouping(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	ab := make(map[int]int)
	ba := make(map[int]int)
	for i := range a {
		if m, ok := ab[a[i]]; ok && m != b[i] {
			return false
		}
		if m, ok := ba[b[i]]; ok && m != a[i] {
			return false
		}
		ab[a[i]] = b[i]
		ba[b[i]] = a[i]
	}
	return true
}
