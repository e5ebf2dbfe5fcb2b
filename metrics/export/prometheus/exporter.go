package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrEthical07/authgraph"
	"github.com/MrEthical07/authgraph/metrics/export/internaldefs"
)

// Source is the subset of *authgraph.Engine the collector reads.
type Source interface {
	MetricsSnapshot() authgraph.MetricsSnapshot
	AuditDropped() uint64
}

type counterDesc struct {
	id   authgraph.MetricID
	desc *prometheus.Desc
}

type histogramDesc struct {
	id   authgraph.MetricID
	desc *prometheus.Desc
}

// Collector is a prometheus.Collector over an engine metrics snapshot. Each
// scrape takes one snapshot; nothing is cached between scrapes.
type Collector struct {
	source       Source
	counters     []counterDesc
	histograms   []histogramDesc
	auditDropped *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector reads from engine.
func NewCollector(engine *authgraph.Engine) *Collector {
	return NewCollectorFromSource(engine)
}

func NewCollectorFromSource(source Source) *Collector {
	c := &Collector{
		source:       source,
		auditDropped: prometheus.NewDesc(internaldefs.AuditDroppedName, internaldefs.AuditDroppedHelp, nil, nil),
	}
	for _, def := range internaldefs.CounterDefs {
		c.counters = append(c.counters, counterDesc{id: def.ID, desc: prometheus.NewDesc(def.Name, def.Help, nil, nil)})
	}
	for _, def := range internaldefs.HistogramDefs {
		c.histograms = append(c.histograms, histogramDesc{id: def.ID, desc: prometheus.NewDesc(def.Name, def.Help, nil, nil)})
	}
	return c
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range c.counters {
		ch <- d.desc
	}
	for _, d := range c.histograms {
		ch <- d.desc
	}
	ch <- c.auditDropped
}

// Collect emits nothing for counters and histograms the engine does not
// report, which is every one of them when metrics are disabled.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c.source == nil {
		return
	}
	snap := c.source.MetricsSnapshot()

	for _, d := range c.counters {
		v, ok := snap.Counters[d.id]
		if !ok {
			continue
		}
		ch <- prometheus.MustNewConstMetric(d.desc, prometheus.CounterValue, float64(v))
	}
	for _, d := range c.histograms {
		raw, ok := snap.Histograms[d.id]
		if !ok {
			continue
		}
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(raw))
		buckets := make(map[float64]uint64, len(internaldefs.HistogramBounds))
		for i, le := range internaldefs.HistogramBounds {
			buckets[le] = cumulative[i]
		}
		count := cumulative[len(cumulative)-1]
		ch <- prometheus.MustNewConstHistogram(d.desc, count, snap.HistogramSums[d.id].Seconds(), buckets)
	}
	ch <- prometheus.MustNewConstMetric(c.auditDropped, prometheus.CounterValue, float64(c.source.AuditDropped()))
}

// Handler serves the collector from a private registry, leaving the global
// default registry untouched.
func (c *Collector) Handler() http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(c)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
