// Package distance provides the Euclidean distance functions used for
// cluster assignment and compactness scoring.
//
// All functions operate on float64 slices and delegate the arithmetic to
// gonum's floats package.
//
// # Usage
//
//	d := distance.Euclidean(a, b)
//	sq := distance.SquaredEuclidean(a, b)
package distance
