package authgraph

import (
	"sync/atomic"
	"time"

	"github.com/MrEthical07/authgraph/graph"
)

// MetricID indexes the engine counters.
type MetricID uint16

const (
	MetricAttemptStarted MetricID = iota
	MetricAttemptSucceeded
	MetricAttemptFailed
	// MetricCleanupRun counts cleanup nodes executed after failed attempts.
	MetricCleanupRun
	MetricCleanupFailed
	MetricCandidatesGathered
	MetricTransientRetry
	MetricExchangeRateLimited
	// MetricAttemptLatency is the only histogram.
	MetricAttemptLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
	sumNano uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free engine counters. It implements graph.Observer so
// that attempts report candidates, cleanup and retries as they happen.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

var _ graph.Observer = (*Metrics)(nil)

// MetricsSnapshot is a point-in-time copy of the counters. Histogram buckets
// are non-cumulative, bounded at 10ms, 50ms, 100ms, 250ms, 500ms, 1s, 5s and
// +Inf.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
	// HistogramSums holds the total observed duration per histogram.
	HistogramSums map[MetricID]time.Duration
}

func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d into the histogram of id. Only MetricAttemptLatency
// has a histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enableLatency || id != MetricAttemptLatency {
		return
	}
	atomic.AddUint64(&m.histograms[id].buckets[bucketIndex(d)], 1)
	if d > 0 {
		atomic.AddUint64(&m.histograms[id].sumNano, uint64(d))
	}
}

func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		Counters:      map[MetricID]uint64{},
		Histograms:    map[MetricID][]uint64{},
		HistogramSums: map[MetricID]time.Duration{},
	}
	if m == nil || !m.enabled {
		return s
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		if id == MetricAttemptLatency {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := range buckets {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricAttemptLatency].buckets[i])
		}
		s.Histograms[MetricAttemptLatency] = buckets
		s.HistogramSums[MetricAttemptLatency] = time.Duration(atomic.LoadUint64(&m.histograms[MetricAttemptLatency].sumNano))
	}
	return s
}

/* ==== graph.Observer ==== */

func (m *Metrics) CandidateAdded(graph.Candidate) {
	m.Inc(MetricCandidatesGathered)
}

func (m *Metrics) CleanupFinished(_ string, r graph.Result) {
	m.Inc(MetricCleanupRun)
	if r == graph.Error {
		m.Inc(MetricCleanupFailed)
	}
}

func (m *Metrics) RetryScheduled(string, int) {
	m.Inc(MetricTransientRetry)
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 10:
		return 0
	case ms <= 50:
		return 1
	case ms <= 100:
		return 2
	case ms <= 250:
		return 3
	case ms <= 500:
		return 4
	case ms <= 1000:
		return 5
	case ms <= 5000:
		return 6
	default:
		return 7
	}
}
