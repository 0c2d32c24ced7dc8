// Package prometheus renders goSession metrics in the Prometheus text exposition
// format. Counters are named gosession_*_total and the latency histogram is
// gosession_fetch_latency_seconds. Nothing is registered globally; callers mount
// [PrometheusExporter.Handler].
package prometheus
