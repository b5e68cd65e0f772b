package csr

import (
	"time"

	"github.com/hupe1980/csrgo/core"
	"github.com/hupe1980/csrgo/internal/pool"
)

// ReadOnlyScan calls f for every edge, vertices in id order and each
// vertex's edges in storage order. It runs on the calling goroutine.
func (g *CSR) ReadOnlyScan(f func(src, dst core.VertexID)) {
	start := time.Now()
	for v := 0; v < g.numVertices; v++ {
		src := core.VertexID(v)
		for _, dst := range g.Neighbors(src) {
			f(src, dst)
		}
	}
	g.metrics.OnScan(core.ScanReadOnly, time.Since(start))
}

// BFS calls f once for every vertex reachable from start, in FIFO discovery
// order. start must be a valid vertex.
func (g *CSR) BFS(start core.VertexID, f func(v core.VertexID)) {
	began := time.Now()

	_ = g.offsets[start] // out-of-range start is a caller bug

	visited := pool.GetVisited(uint(g.numVertices))
	defer pool.PutVisited(visited)

	queue := make([]core.VertexID, 0, 64)
	visited.Set(uint(start))
	queue = append(queue, start)

	for head := 0; head < len(queue); head++ {
		v := queue[head]
		f(v)
		for _, n := range g.Neighbors(v) {
			if !visited.Test(uint(n)) {
				visited.Set(uint(n))
				queue = append(queue, n)
			}
		}
	}
	g.metrics.OnScan(core.ScanBFS, time.Since(began))
}

// ParScan evaluates f(v, neighbors(v)) for every vertex in parallel and then
// replaces the property array with the results in one bulk copy.
//
// f runs concurrently and in no particular order. It must not read the live
// property array; algorithms that need the previous round capture a copy
// before calling ParScan.
func (g *CSR) ParScan(f func(v core.VertexID, neighbors []core.VertexID) float64) {
	start := time.Now()
	scratch := make([]float64, g.numVertices)
	g.pool.RunChunks(g.numVertices, func(r pool.Range) {
		for v := r.Start; v < r.End; v++ {
			id := core.VertexID(v)
			scratch[v] = f(id, g.Neighbors(id))
		}
	})
	copy(g.vertexProp, scratch)
	g.metrics.OnScan(core.ScanParallel, time.Since(start))
}

// UpdateTraversal runs iters rounds of double-buffered propagation.
//
// Two arrays of per-vertex locked cells alternate roles by round parity:
// round i reads buffer i%2 and writes buffer (i+1)%2. For each vertex v, f
// receives v's value from the read buffer, v's neighbors, and the read
// buffer itself; neighbor values should be read through Cells.Get, which
// takes that cell's shared lock. The result is stored under v's exclusive
// lock in the write buffer. After the last round the last-written buffer
// becomes the property array. iters == 0 leaves properties unchanged.
func (g *CSR) UpdateTraversal(iters int, f func(old float64, neighbors []core.VertexID, props core.Cells) float64) {
	if iters <= 0 {
		return
	}
	start := time.Now()

	var bufs [2]core.Cells
	bufs[0] = core.NewCells(g.numVertices, 0)
	bufs[1] = core.NewCells(g.numVertices, 0)
	for v, val := range g.vertexProp {
		bufs[0][v].Store(val)
		bufs[1][v].Store(val)
	}

	for it := 0; it < iters; it++ {
		src, dst := bufs[it%2], bufs[(it+1)%2]
		g.pool.RunChunks(g.numVertices, func(r pool.Range) {
			for v := r.Start; v < r.End; v++ {
				id := core.VertexID(v)
				dst[v].Store(f(src[v].Load(), g.Neighbors(id), src))
			}
		})
	}

	last := bufs[iters%2]
	for v := range g.vertexProp {
		g.vertexProp[v] = last[v].Load()
	}
	g.metrics.OnScan(core.ScanUpdate, time.Since(start))
}
