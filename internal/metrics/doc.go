// Package metrics provides Prometheus metrics for observability.
//
// This package exposes metrics for bucketfs operations including:
//   - Object store call latency broken down by operation and success/failure
//   - Object store call counters and bytes transferred by direction
//   - Adapter operation outcomes (ok, failed, not_found)
//
// bucketfs runs as a short-lived CLI, so metrics are not scraped over HTTP.
// Instead the registry is written to a node-exporter textfile on exit.
//
// Usage:
//
//	reg := prometheus.NewRegistry()
//	storeMetrics := metrics.NewObjectStoreMetrics(reg)
//	adapterMetrics := metrics.NewAdapterMetrics(reg)
//
//	backend := objectstore.NewInstrumentedBackend(s3Store, storeMetrics)
//	fs := adapter.New(backend, bucket, adapter.WithMetrics(adapterMetrics))
//
//	defer metrics.WriteTextfile(path, reg)
package metrics
