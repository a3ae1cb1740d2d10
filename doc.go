// Package kcluster partitions points in Euclidean space into k clusters
// using Lloyd's algorithm, and ranks the resulting clusters by compactness.
//
// # Quick Start
//
//	eng, err := kcluster.New(points, 3, kcluster.WithSeed(42))
//	if err != nil {
//	    // errors.Is(err, kcluster.ErrInvalidArgument) when k is outside [1, len(points)]
//	}
//	res, err := eng.Cluster(ctx)
//	fmt.Println(res.Centroids, res.TotalDistance)
//
// # Algorithm
//
// Initial centroids are k distinct dataset points drawn uniformly at random
// from the engine's own random source. Each iteration assigns every point to
// its nearest centroid (ties go to the lowest centroid index) and then
// recomputes each centroid as the mean of its members. Clustering stops when
// a recomputed centroid set is bit-identical to the previous one.
//
// There is no iteration cap by default. WithMaxIterations bounds the run and
// reports the last completed pass with ErrNotConverged. A done context stops
// the run with no result.
//
// # Empty Clusters
//
// A cluster that loses all of its members keeps its previous centroid
// (EmptyKeep). EmptyReseed moves it to a random dataset point instead.
//
// # Ranking
//
//	ranked := res.Rank()        // most compact first
//	ranked = kcluster.RankByCompactness(groups, centroids)
//
// # Concurrency
//
// WithWorkers splits the assignment pass across goroutines. Every pass
// completes before any centroid is recomputed, so results do not depend on
// the worker count. An Engine serializes concurrent Cluster calls.
//
// # Persistence
//
// The persistence package stores a Result as a compact binary snapshot in
// any blobstore.Store (local directory, MinIO, S3) and restores it as a Model
// for prediction.
package kcluster
