package kmeans

import (
	"sort"

	"github.com/hupe1980/kcluster/distance"
	"gonum.org/v1/gonum/stat"
)

// MeanDistances returns, per group, the mean Euclidean distance of its
// members to centroids[i]. Empty groups score 0.
func MeanDistances(groups [][][]float64, centroids [][]float64) []float64 {
	means := make([]float64, len(groups))
	for i, members := range groups {
		if len(members) == 0 {
			continue
		}
		ds := make([]float64, len(members))
		for m, p := range members {
			ds[m] = distance.Euclidean(p, centroids[i])
		}
		means[i] = stat.Mean(ds, nil)
	}
	return means
}

// RankOrder returns group indices sorted by ascending score. Equal scores
// keep their original order.
func RankOrder(scores []float64) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] < scores[order[b]]
	})
	return order
}
