package csrgo

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/csrgo/core"
)

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
//
//	metrics := &csrgo.BasicMetricsCollector{}
//	g, _ := csrgo.Build(edges, csrgo.WithMetrics(metrics))
//	stats := metrics.GetStats()
type BasicMetricsCollector struct {
	BuildCount      atomic.Int64
	BuildErrors     atomic.Int64
	BuildEdges      atomic.Int64
	BuildTotalNanos atomic.Int64

	ReadOnlyScans    atomic.Int64
	BFSScans         atomic.Int64
	ParallelScans    atomic.Int64
	UpdateTraversals atomic.Int64
	NeighborScans    atomic.Int64
	ScanTotalNanos   atomic.Int64

	OpenCount  atomic.Int64
	OpenErrors atomic.Int64
	OpenBytes  atomic.Int64
}

var _ core.MetricsObserver = (*BasicMetricsCollector)(nil)

// OnBuild implements core.MetricsObserver.
func (b *BasicMetricsCollector) OnBuild(_, edges int, d time.Duration, err error) {
	b.BuildCount.Add(1)
	b.BuildTotalNanos.Add(d.Nanoseconds())
	if err != nil {
		b.BuildErrors.Add(1)
		return
	}
	b.BuildEdges.Add(int64(edges))
}

// OnScan implements core.MetricsObserver.
func (b *BasicMetricsCollector) OnScan(kind core.ScanKind, d time.Duration) {
	switch kind {
	case core.ScanReadOnly:
		b.ReadOnlyScans.Add(1)
	case core.ScanBFS:
		b.BFSScans.Add(1)
	case core.ScanParallel:
		b.ParallelScans.Add(1)
	case core.ScanUpdate:
		b.UpdateTraversals.Add(1)
	case core.ScanNeighbor:
		b.NeighborScans.Add(1)
	}
	b.ScanTotalNanos.Add(d.Nanoseconds())
}

// OnOpen implements core.MetricsObserver.
func (b *BasicMetricsCollector) OnOpen(bytes int64, _ time.Duration, err error) {
	b.OpenCount.Add(1)
	if err != nil {
		b.OpenErrors.Add(1)
		return
	}
	b.OpenBytes.Add(bytes)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	s := BasicMetricsStats{
		BuildCount:       b.BuildCount.Load(),
		BuildErrors:      b.BuildErrors.Load(),
		BuildEdges:       b.BuildEdges.Load(),
		ReadOnlyScans:    b.ReadOnlyScans.Load(),
		BFSScans:         b.BFSScans.Load(),
		ParallelScans:    b.ParallelScans.Load(),
		UpdateTraversals: b.UpdateTraversals.Load(),
		NeighborScans:    b.NeighborScans.Load(),
		OpenCount:        b.OpenCount.Load(),
		OpenErrors:       b.OpenErrors.Load(),
		OpenBytes:        b.OpenBytes.Load(),
	}
	if s.BuildCount > 0 {
		s.BuildAvgNanos = b.BuildTotalNanos.Load() / s.BuildCount
	}
	if scans := s.TotalScans(); scans > 0 {
		s.ScanAvgNanos = b.ScanTotalNanos.Load() / scans
	}
	return s
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	BuildCount       int64
	BuildErrors      int64
	BuildEdges       int64
	BuildAvgNanos    int64
	ReadOnlyScans    int64
	BFSScans         int64
	ParallelScans    int64
	UpdateTraversals int64
	NeighborScans    int64
	ScanAvgNanos     int64
	OpenCount        int64
	OpenErrors       int64
	OpenBytes        int64
}

// TotalScans sums the scans of every kind.
func (s BasicMetricsStats) TotalScans() int64 {
	return s.ReadOnlyScans + s.BFSScans + s.ParallelScans + s.UpdateTraversals + s.NeighborScans
}

// MultiObserver fans events out to every observer in order.
type MultiObserver []core.MetricsObserver

func (m MultiObserver) OnBuild(vertices, edges int, d time.Duration, err error) {
	for _, o := range m {
		o.OnBuild(vertices, edges, d, err)
	}
}

func (m MultiObserver) OnScan(kind core.ScanKind, d time.Duration) {
	for _, o := range m {
		o.OnScan(kind, d)
	}
}

func (m MultiObserver) OnOpen(bytes int64, d time.Duration, err error) {
	for _, o := range m {
		o.OnOpen(bytes, d, err)
	}
}
