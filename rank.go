package kcluster

import (
	"github.com/hupe1980/kcluster/internal/kmeans"
)

// RankedCluster is a cluster annotated with its compactness score.
type RankedCluster struct {
	// Index is the cluster's position in the input.
	Index int `json:"index"`
	// MeanDistance is the mean Euclidean distance of the members to the
	// centroid, or 0 for an empty cluster.
	MeanDistance float64     `json:"mean_distance"`
	Members      [][]float64 `json:"members"`
}

// RankByCompactness orders clusters by ascending mean member-to-centroid
// distance. groups[i] holds the members of the cluster whose centroid is
// centroids[i]. Clusters with equal scores keep their input order.
//
// The result is a permutation of groups; member slices are not copied.
func RankByCompactness(groups [][][]float64, centroids [][]float64) []RankedCluster {
	means := kmeans.MeanDistances(groups, centroids)
	order := kmeans.RankOrder(means)

	ranked := make([]RankedCluster, len(order))
	for i, idx := range order {
		ranked[i] = RankedCluster{
			Index:        idx,
			MeanDistance: means[idx],
			Members:      groups[idx],
		}
	}
	return ranked
}
