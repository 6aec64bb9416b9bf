package bitrie

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "bitrie"

type metricDesc struct {
	desc      *prometheus.Desc
	valueType prometheus.ValueType
	value     func(s ExportStat) uint64
}

// Collector exports the counters of one Index. Scrapes only read atomics,
// so they may run next to the goroutine using the index.
type Collector struct {
	stat  *iStat
	descs []metricDesc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns a collector for idx. labels are attached to every
// metric, typically to tell several indexes apart.
func NewCollector(idx *Index, labels prometheus.Labels) *Collector {
	newDesc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(metricsNamespace, "", name), help, nil, labels)
	}
	return &Collector{
		stat: idx.stat,
		descs: []metricDesc{
			{newDesc("node_loads_total", "nodes read from the storage"), prometheus.CounterValue,
				func(s ExportStat) uint64 { return s.NodeLoads }},
			{newDesc("cache_hits_total", "node loads served from memory"), prometheus.CounterValue,
				func(s ExportStat) uint64 { return s.CacheHits }},
			{newDesc("nodes_created_total", "node records appended"), prometheus.CounterValue,
				func(s ExportStat) uint64 { return s.NodesCreated }},
			{newDesc("headers_flushed_total", "node headers rewritten in place"), prometheus.CounterValue,
				func(s ExportStat) uint64 { return s.HeadersFlushed }},
			{newDesc("flushes_total", "flush calls"), prometheus.CounterValue,
				func(s ExportStat) uint64 { return s.Flushes }},
			{newDesc("rebuilds_total", "completed rebuilds"), prometheus.CounterValue,
				func(s ExportStat) uint64 { return s.Rebuilds }},
			{newDesc("entries", "live entries"), prometheus.GaugeValue,
				func(s ExportStat) uint64 { return s.Entries }},
			{newDesc("store_bytes", "size of the backing stream"), prometheus.GaugeValue,
				func(s ExportStat) uint64 { return s.StoreBytes }},
		},
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range c.descs {
		ch <- d.desc
	}
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.stat.export()
	for _, d := range c.descs {
		ch <- prometheus.MustNewConstMetric(d.desc, d.valueType, float64(d.value(s)))
	}
}

// RegisterMetrics registers a collector for idx with reg. A collector that
// is already registered is not an error.
func RegisterMetrics(reg prometheus.Registerer, idx *Index, labels prometheus.Labels) error {
	err := reg.Register(NewCollector(idx, labels))
	if err != nil && !errors.As(err, &prometheus.AlreadyRegisteredError{}) {
		return fmt.Errorf("cannot register bitrie collector: %w", err)
	}
	return nil
}
