package core

import "time"

// ScanKind names a traversal primitive for metrics.
type ScanKind string

const (
	ScanReadOnly ScanKind = "read_only"
	ScanBFS      ScanKind = "bfs"
	ScanParallel ScanKind = "par_scan"
	ScanUpdate   ScanKind = "update_traversal"
	ScanNeighbor ScanKind = "neighbor_scan"
)

// MetricsObserver receives timing events from the builder, scan engine and image loader.
// Implementations must be safe for concurrent use.
type MetricsObserver interface {
	// OnBuild is called once per CSR construction attempt.
	OnBuild(vertices, edges int, d time.Duration, err error)
	// OnScan is called after a scan or traversal completes.
	OnScan(kind ScanKind, d time.Duration)
	// OnOpen is called after an image is opened or loaded.
	OnOpen(bytes int64, d time.Duration, err error)
}

// NoopObserver discards all events.
type NoopObserver struct{}

func (NoopObserver) OnBuild(int, int, time.Duration, error) {}
func (NoopObserver) OnScan(ScanKind, time.Duration)         {}
func (NoopObserver) OnOpen(int64, time.Duration, error)     {}
