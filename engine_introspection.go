package authgraph

// Graphs lists the registered graphs and resolvers, sorted by name.
func (e *Engine) Graphs() []GraphInfo {
	return e.registry.Names()
}

// Providers lists the registered cross-platform provider names, sorted.
func (e *Engine) Providers() []string {
	return e.registry.ProviderNames()
}

// MetricsSnapshot returns the current counters. It is empty when metrics are
// disabled.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	return e.metrics.Snapshot()
}

// AuditDropped reports audit events dropped because the buffer was full.
func (e *Engine) AuditDropped() uint64 {
	return e.audit.Dropped()
}

// InFlight reports the number of attempts currently running.
func (e *Engine) InFlight() int64 {
	return e.inflight.Load()
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	return cloneConfig(e.config)
}
