package csr

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/hupe1980/csrgo/core"
	"github.com/hupe1980/csrgo/internal/pool"
	"github.com/hupe1980/csrgo/persistence"
)

var (
	// ErrInvalidVertexCount is returned for a negative vertex count.
	ErrInvalidVertexCount = errors.New("csr: invalid vertex count")
	// ErrInvalidStructure is returned when offsets or neighbors break the CSR invariants.
	ErrInvalidStructure = errors.New("csr: invalid structure")
)

// CSR is an immutable adjacency structure plus one mutable float64 per vertex.
type CSR struct {
	numVertices int
	numEdges    int
	offsets     []uint64
	neighbors   []core.VertexID
	vertexProp  []float64

	pool    *pool.Pool
	logger  *slog.Logger
	metrics core.MetricsObserver
}

func newCSR(offsets []uint64, neighbors []core.VertexID, o *options) *CSR {
	return &CSR{
		numVertices: len(offsets),
		numEdges:    len(neighbors),
		offsets:     offsets,
		neighbors:   neighbors,
		vertexProp:  make([]float64, len(offsets)),
		pool:        o.pool,
		logger:      o.logger,
		metrics:     o.metrics,
	}
}

// NumVertices returns V.
func (g *CSR) NumVertices() int { return g.numVertices }

// NumEdges returns E.
func (g *CSR) NumEdges() int { return g.numEdges }

// Offsets returns the offsets array (length V). Callers must not modify it.
func (g *CSR) Offsets() []uint64 { return g.offsets }

// NeighborArray returns the flattened neighbor array (length E). Callers must not modify it.
func (g *CSR) NeighborArray() []core.VertexID { return g.neighbors }

// OffsetRange returns the half-open range of v's neighbors in NeighborArray.
func (g *CSR) OffsetRange(v core.VertexID) (start, end uint64) {
	start = g.offsets[v]
	if v == core.VertexID(g.numVertices-1) {
		return start, uint64(g.numEdges)
	}
	return start, g.offsets[v+1]
}

// Neighbors returns v's out-neighbors as a subslice of NeighborArray.
func (g *CSR) Neighbors(v core.VertexID) []core.VertexID {
	start, end := g.OffsetRange(v)
	return g.neighbors[start:end:end]
}

// Degree returns v's out-degree.
func (g *CSR) Degree(v core.VertexID) int {
	start, end := g.OffsetRange(v)
	return int(end - start)
}

// VertexProps returns the live per-vertex property array.
// Scans replace its contents in place; the slice header stays valid.
func (g *CSR) VertexProps() []float64 { return g.vertexProp }

// SetVertexProps copies vals into the property array. It panics if the
// lengths differ.
func (g *CSR) SetVertexProps(vals []float64) {
	if len(vals) != len(g.vertexProp) {
		panic("csr: SetVertexProps length mismatch")
	}
	copy(g.vertexProp, vals)
}

// FillVertexProps sets every property to v.
func (g *CSR) FillVertexProps(v float64) {
	for i := range g.vertexProp {
		g.vertexProp[i] = v
	}
}

// Edges materializes the edge list in storage order.
func (g *CSR) Edges() core.EdgeList {
	el := make(core.EdgeList, 0, g.numEdges)
	g.ReadOnlyScan(func(src, dst core.VertexID) {
		el = append(el, core.Edge{Src: src, Dst: dst})
	})
	return el
}

// Validate checks the structural invariants in O(V+E).
func (g *CSR) Validate() error {
	if err := persistence.ValidateStructure(g.offsets, g.neighbors); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidStructure, err)
	}
	return nil
}
