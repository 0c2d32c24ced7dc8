// Package otel publishes goSession metrics through OpenTelemetry observable instruments.
//
// [NewOTelExporter] registers one Int64ObservableCounter per store counter and one
// Int64ObservableGauge per latency bucket. A single callback reads the metrics
// snapshot on each collection. Callers own the MeterProvider.
package otel
