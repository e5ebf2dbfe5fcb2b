// Package otel exports authgraph engine metrics through OpenTelemetry.
//
// [New] registers an Int64ObservableCounter per engine counter and, for the
// attempt latency histogram, one Int64ObservableGauge per cumulative bucket
// plus count and sum gauges. A single callback reads
// [authgraph.Engine.MetricsSnapshot] on each collection.
//
// The caller owns the MeterProvider. The exporter never mutates the engine.
package otel
