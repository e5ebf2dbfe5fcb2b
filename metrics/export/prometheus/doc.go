// Package prometheus exposes authgraph engine metrics as a
// [prometheus.Collector].
//
// Counter names are prefixed authgraph_ and end in _total. The attempt
// latency histogram is authgraph_attempt_latency_seconds. Register the
// [Collector] on your own registry, or mount [Collector.Handler], which uses
// a private one.
package prometheus
