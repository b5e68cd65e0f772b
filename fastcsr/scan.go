package fastcsr

import (
	"fmt"
	"time"

	"github.com/hupe1980/csrgo/core"
	"github.com/hupe1980/csrgo/internal/pool"
)

// NeighborScan calls f(v, neighbors(v)) for every vertex in parallel.
// Calls are concurrent and unordered; f must synchronize any shared state.
func (g *FastCSR) NeighborScan(f func(v core.VertexID, neighbors []core.VertexID)) {
	start := time.Now()
	g.pool.RunChunks(g.numVertices, func(r pool.Range) {
		for v := r.Start; v < r.End; v++ {
			id := core.VertexID(v)
			f(id, g.Neighbors(id))
		}
	})
	g.metrics.OnScan(core.ScanNeighbor, time.Since(start))
}

// NeighborScanProp evaluates f for every vertex in parallel and stores the
// result in prop[v]. Each slot is written by exactly one call.
// prop must have NumVertices elements.
func (g *FastCSR) NeighborScanProp(f func(v core.VertexID, neighbors []core.VertexID) float64, prop []float64) {
	if len(prop) != g.numVertices {
		panic(fmt.Sprintf("fastcsr: prop has %d elements, graph has %d vertices", len(prop), g.numVertices))
	}
	start := time.Now()
	g.pool.RunChunks(g.numVertices, func(r pool.Range) {
		for v := r.Start; v < r.End; v++ {
			id := core.VertexID(v)
			prop[v] = f(id, g.Neighbors(id))
		}
	})
	g.metrics.OnScan(core.ScanParallel, time.Since(start))
}

// ReadOnlyScan calls f(src, dst) for every edge. Vertices are processed in
// parallel; the edges of one vertex are delivered in storage order by a
// single goroutine.
func (g *FastCSR) ReadOnlyScan(f func(src, dst core.VertexID)) {
	start := time.Now()
	g.pool.RunChunks(g.numVertices, func(r pool.Range) {
		for v := r.Start; v < r.End; v++ {
			src := core.VertexID(v)
			for _, dst := range g.Neighbors(src) {
				f(src, dst)
			}
		}
	})
	g.metrics.OnScan(core.ScanReadOnly, time.Since(start))
}
