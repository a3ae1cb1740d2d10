package kcluster

import (
	"slices"
	"time"

	"github.com/hupe1980/kcluster/internal/kmeans"
)

// IterationStats describes one assignment pass.
type IterationStats struct {
	Iteration int `json:"iteration"`
	// TotalDistance is the sum of Euclidean distances from each point to the
	// centroid it was assigned to in this pass.
	TotalDistance float64 `json:"total_distance"`
	// Inertia is the sum of squared distances. It never increases from one
	// pass to the next.
	Inertia  float64       `json:"inertia"`
	Moved    int           `json:"moved"`
	Empty    int           `json:"empty"`
	Duration time.Duration `json:"duration"`
}

// Result is the outcome of a Cluster call.
//
// Clusters, Labels, Centroids and TotalDistance all describe the same
// (final) assignment pass.
type Result struct {
	// Clusters holds the dataset indices of each cluster's members, in
	// dataset order.
	Clusters [][]int `json:"clusters"`
	// Labels maps each dataset index to its cluster.
	Labels    []int       `json:"labels"`
	Centroids [][]float64 `json:"centroids"`
	// TotalDistance is the sum over all points of the Euclidean distance to
	// their cluster's centroid.
	TotalDistance float64          `json:"total_distance"`
	Iterations    int              `json:"iterations"`
	Converged     bool             `json:"converged"`
	History       []IterationStats `json:"history,omitempty"`

	dataset [][]float64
}

func newResult(dataset [][]float64, out *kmeans.Outcome) *Result {
	k := len(out.Centroids)

	counts := make([]int, k)
	for _, label := range out.Labels {
		counts[label]++
	}
	clusters := make([][]int, k)
	for j := range clusters {
		clusters[j] = make([]int, 0, counts[j])
	}
	for i, label := range out.Labels {
		clusters[label] = append(clusters[label], i)
	}

	history := make([]IterationStats, len(out.History))
	for i, h := range out.History {
		history[i] = IterationStats(h)
	}

	return &Result{
		Clusters:      clusters,
		Labels:        out.Labels,
		Centroids:     out.Centroids,
		TotalDistance: out.TotalDistance,
		Iterations:    out.Iterations,
		Converged:     out.Converged,
		History:       history,
		dataset:       dataset,
	}
}

// K returns the number of clusters.
func (r *Result) K() int { return len(r.Centroids) }

// Sizes returns the member count of each cluster.
func (r *Result) Sizes() []int {
	sizes := make([]int, len(r.Clusters))
	for i, c := range r.Clusters {
		sizes[i] = len(c)
	}
	return sizes
}

// Members returns copies of the points assigned to cluster i.
// Duplicate input points appear once per occurrence.
func (r *Result) Members(i int) [][]float64 {
	idx := r.Clusters[i]
	members := make([][]float64, len(idx))
	for m, p := range idx {
		members[m] = slices.Clone(r.dataset[p])
	}
	return members
}

// Groups returns the member points of every cluster.
func (r *Result) Groups() [][][]float64 {
	groups := make([][][]float64, len(r.Clusters))
	for i := range r.Clusters {
		groups[i] = r.Members(i)
	}
	return groups
}

// Rank orders the clusters by compactness, most compact first.
func (r *Result) Rank() []RankedCluster {
	return RankByCompactness(r.Groups(), r.Centroids)
}

// Model returns a predictor over the result's centroids.
func (r *Result) Model() *Model {
	return &Model{centroids: cloneMatrix(r.Centroids), dim: len(r.Centroids[0])}
}

func cloneMatrix(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = slices.Clone(row)
	}
	return out
}
