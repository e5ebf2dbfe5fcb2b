package internaldefs

import (
	"github.com/MrEthical07/authgraph"
)

// CounterDef names one engine counter.
type CounterDef struct {
	ID   authgraph.MetricID
	Name string
	Help string
}

// HistogramDef names one engine histogram.
type HistogramDef struct {
	ID   authgraph.MetricID
	Name string
	Help string
}

const (
	// AuditDroppedName is exported alongside the engine counters.
	AuditDroppedName = "authgraph_audit_dropped_total"
	AuditDroppedHelp = "Audit events dropped because the dispatcher buffer was full."
)

var CounterDefs = []CounterDef{
	{ID: authgraph.MetricAttemptStarted, Name: "authgraph_attempt_started_total", Help: "Authentication attempts started."},
	{ID: authgraph.MetricAttemptSucceeded, Name: "authgraph_attempt_succeeded_total", Help: "Authentication attempts that signed a user in."},
	{ID: authgraph.MetricAttemptFailed, Name: "authgraph_attempt_failed_total", Help: "Authentication attempts that failed."},
	{ID: authgraph.MetricCleanupRun, Name: "authgraph_cleanup_run_total", Help: "Cleanup nodes executed after failed attempts."},
	{ID: authgraph.MetricCleanupFailed, Name: "authgraph_cleanup_failed_total", Help: "Cleanup nodes that completed with Error."},
	{ID: authgraph.MetricCandidatesGathered, Name: "authgraph_candidates_gathered_total", Help: "Account candidates added to attempts."},
	{ID: authgraph.MetricTransientRetry, Name: "authgraph_transient_retry_total", Help: "Node-local retries of transient backend failures."},
	{ID: authgraph.MetricExchangeRateLimited, Name: "authgraph_exchange_rate_limited_total", Help: "Credential exchanges refused by the rate limiter."},
}

var HistogramDefs = []HistogramDef{
	{ID: authgraph.MetricAttemptLatency, Name: "authgraph_attempt_latency_seconds", Help: "Authentication attempt latency."},
}

// HistogramBounds are the upper bounds in seconds of every finite bucket.
// The engine keeps one more bucket for +Inf.
var HistogramBounds = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 5}

// HistogramBoundSuffix labels each bucket, +Inf included, in instrument
// names.
var HistogramBoundSuffix = []string{
	"0_01",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"1",
	"5",
	"inf",
}

const bucketCount = 8

// NormalizeBuckets pads or truncates raw to the engine bucket count.
func NormalizeBuckets(raw []uint64) [bucketCount]uint64 {
	var out [bucketCount]uint64
	copy(out[:], raw)
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [bucketCount]uint64) [bucketCount]uint64 {
	var out [bucketCount]uint64
	var running uint64
	for i, n := range raw {
		running += n
		out[i] = running
	}
	return out
}
