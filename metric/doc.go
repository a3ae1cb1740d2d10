// Package metric exports clustering metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	collector := metric.NewPrometheusCollector(reg)
//	engine, err := kcluster.New(points, k, kcluster.WithMetricsCollector(collector))
//
// Serve reg with promhttp.HandlerFor to expose the metrics.
package metric
