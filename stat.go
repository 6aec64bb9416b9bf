package bitrie

import "sync/atomic"

// ExportStat is a snapshot of an index's counters.
type ExportStat struct {
	NodeLoads      uint64
	CacheHits      uint64
	NodesCreated   uint64
	HeadersFlushed uint64
	Flushes        uint64
	Rebuilds       uint64
	Entries        uint64
	StoreBytes     uint64
}

// iStat is read by metric scrapers from other goroutines, hence atomics.
type iStat struct {
	nodeLoads      atomic.Uint64
	cacheHit       atomic.Uint64
	nodesCreated   atomic.Uint64
	headersFlushed atomic.Uint64
	flushes        atomic.Uint64
	rebuilds       atomic.Uint64
	entries        atomic.Uint64
	storeBytes     atomic.Uint64
}

func (s *iStat) export() ExportStat {
	return ExportStat{
		NodeLoads:      s.nodeLoads.Load(),
		CacheHits:      s.cacheHit.Load(),
		NodesCreated:   s.nodesCreated.Load(),
		HeadersFlushed: s.headersFlushed.Load(),
		Flushes:        s.flushes.Load(),
		Rebuilds:       s.rebuilds.Load(),
		Entries:        s.entries.Load(),
		StoreBytes:     s.storeBytes.Load(),
	}
}
