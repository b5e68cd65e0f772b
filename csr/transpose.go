package csr

import (
	"github.com/hupe1980/csrgo/core"
	"github.com/hupe1980/csrgo/internal/pool"
)

// Transpose builds the CSR of the reversed graph, where each vertex lists
// its in-neighbors. The result shares g's pool, logger and metrics unless
// opts override them.
func (g *CSR) Transpose(opts ...Option) (*CSR, error) {
	reversed := make(core.EdgeList, g.numEdges)
	g.pool.RunChunks(g.numVertices, func(r pool.Range) {
		for v := r.Start; v < r.End; v++ {
			start, _ := g.OffsetRange(core.VertexID(v))
			for i, n := range g.Neighbors(core.VertexID(v)) {
				reversed[int(start)+i] = core.Edge{Src: n, Dst: core.VertexID(v)}
			}
		}
	})

	base := []Option{WithPool(g.pool), WithLogger(g.logger), WithMetrics(g.metrics)}
	return Build(g.numVertices, reversed, append(base, opts...)...)
}

// OutDegrees returns every vertex's out-degree.
func (g *CSR) OutDegrees() []int {
	out := make([]int, g.numVertices)
	for v := range out {
		out[v] = g.Degree(core.VertexID(v))
	}
	return out
}
