// Package testutil provides testing utilities for kcluster.
//
// This package is intended for use in tests, benchmarks and examples only.
// It provides helpers for generating deterministic datasets and computing
// brute-force ground truth.
//
// # Random Datasets
//
//	rng := testutil.NewRNG(seed)
//	points := rng.UniformVectors(100, 8)  // uniform [0, 1)
//	blobs := rng.Blobs(1000, 2, 3, 0.5)   // 3 well separated Gaussian blobs
//
// # Ground Truth
//
//	labels := testutil.BruteForceAssign(points, centroids)
package testutil
