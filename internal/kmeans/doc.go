// Package kmeans implements Lloyd's k-means clustering over float64 points.
//
// Centroids are seeded by sampling k distinct points without replacement.
// Each iteration assigns every point to its nearest centroid (ties go to the
// lowest centroid index), then recomputes centroids as member means. The
// loop stops when the recomputed centroids are bit-identical to the previous
// ones, when an optional iteration cap is reached, or when the context is
// cancelled.
//
// The public kcluster package wraps this with options, logging and metrics.
package kmeans
