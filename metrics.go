package kcluster

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting clustering metrics.
// Implement this interface to integrate with monitoring systems like Prometheus
// (see the metric package for a ready-made collector).
type MetricsCollector interface {
	// RecordIteration is called after each assignment pass.
	RecordIteration(stats IterationStats)

	// RecordEmptyCluster is called for each cluster that received no
	// members in a pass.
	RecordEmptyCluster()

	// RecordCluster is called after each Cluster call.
	// iterations is the number of passes made, err is nil on convergence.
	RecordCluster(k, iterations int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordIteration(IterationStats)               {}
func (NoopMetricsCollector) RecordEmptyCluster()                          {}
func (NoopMetricsCollector) RecordCluster(int, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ClusterCount      atomic.Int64
	ClusterErrors     atomic.Int64
	ClusterTotalNanos atomic.Int64
	IterationCount    atomic.Int64
	PointsMoved       atomic.Int64
	EmptyClusters     atomic.Int64
}

// RecordIteration implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIteration(stats IterationStats) {
	b.IterationCount.Add(1)
	b.PointsMoved.Add(int64(stats.Moved))
}

// RecordEmptyCluster implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEmptyCluster() {
	b.EmptyClusters.Add(1)
}

// RecordCluster implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCluster(k, iterations int, duration time.Duration, err error) {
	b.ClusterCount.Add(1)
	b.ClusterTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ClusterErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ClusterCount:    b.ClusterCount.Load(),
		ClusterErrors:   b.ClusterErrors.Load(),
		ClusterAvgNanos: b.getAvgClusterNanos(),
		IterationCount:  b.IterationCount.Load(),
		PointsMoved:     b.PointsMoved.Load(),
		EmptyClusters:   b.EmptyClusters.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgClusterNanos() int64 {
	count := b.ClusterCount.Load()
	if count == 0 {
		return 0
	}
	return b.ClusterTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ClusterCount    int64
	ClusterErrors   int64
	ClusterAvgNanos int64
	IterationCount  int64
	PointsMoved     int64
	EmptyClusters   int64
}
