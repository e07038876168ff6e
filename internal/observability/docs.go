// Package observability wires Prometheus metrics and OpenTelemetry tracing for the service.
//
// Metrics is nil-safe: components built without metrics (tests, the sweep CLI) hold a nil
// *Metrics and every Observe call becomes a no-op.
package observability
