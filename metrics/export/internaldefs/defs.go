package internaldefs

import (
	goSession "github.com/MrEthical07/goSession"
)

// CounterDef names one store counter.
type CounterDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// HistogramDef names one store histogram.
type HistogramDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// AuditDroppedName is the counter of audit events lost to a full buffer.
const AuditDroppedName = "gosession_audit_dropped_total"

// CounterDefs lists every exported counter in exposition order.
var CounterDefs = []CounterDef{
	{ID: goSession.MetricSetUser, Name: "gosession_set_user_total", Help: "SetUser calls."},
	{ID: goSession.MetricSetLoggedIn, Name: "gosession_set_logged_in_total", Help: "SetIsLoggedIn calls."},
	{ID: goSession.MetricFetchSuccess, Name: "gosession_fetch_success_total", Help: "Profile refreshes that logged the user in."},
	{ID: goSession.MetricFetchFailure, Name: "gosession_fetch_failure_total", Help: "Profile refreshes collapsed to logged out."},
	{ID: goSession.MetricLogout, Name: "gosession_logout_total", Help: "Logout calls."},
	{ID: goSession.MetricRehydrateHit, Name: "gosession_rehydrate_hit_total", Help: "Stores restored from a persisted snapshot."},
	{ID: goSession.MetricRehydrateMiss, Name: "gosession_rehydrate_miss_total", Help: "Stores started without a persisted snapshot."},
	{ID: goSession.MetricRehydrateCorrupt, Name: "gosession_rehydrate_corrupt_total", Help: "Unreadable snapshots discarded at start."},
	{ID: goSession.MetricPersistFailure, Name: "gosession_persist_failure_total", Help: "Snapshot writes or removals that failed."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goSession.MetricFetchLatency, Name: "gosession_fetch_latency_seconds", Help: "Profile refresh round-trip latency."},
}

// HistogramBounds are the upper bounds of the store's latency buckets, in seconds.
var HistogramBounds = []string{"0.005", "0.01", "0.025", "0.05", "0.1", "0.25", "0.5", "+Inf"}

// HistogramBoundSuffix renders HistogramBounds as instrument name suffixes.
var HistogramBoundSuffix = []string{"0_005", "0_01", "0_025", "0_05", "0_1", "0_25", "0_5", "inf"}

// NormalizeBuckets copies raw into a fixed-size array, zero-filling missing buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	copy(out[:], raw)
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i, n := range raw {
		running += n
		out[i] = running
	}
	return out
}

// MetricsOnly adapts a bare Metrics to the exporters' source interface. It reports no
// dropped audit events.
type MetricsOnly struct {
	Metrics *goSession.Metrics
}

func (m MetricsOnly) MetricsSnapshot() goSession.MetricsSnapshot { return m.Metrics.Snapshot() }

func (MetricsOnly) AuditDropped() uint64 { return 0 }
