package csr

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hupe1980/csrgo/core"
	"github.com/hupe1980/csrgo/internal/pool"
)

// numBins is the number of chunk-local count bins, keyed by src % numBins.
const numBins = 64

// EstimateBuildMemory returns the bytes Build allocates for V vertices and E edges:
// degree counters (reused as cursors), offsets, neighbors and properties.
func EstimateBuildMemory(numVertices, numEdges int) int64 {
	return 8*3*int64(numVertices) + 8*int64(numEdges)
}

// Build constructs a CSR from edges. Every id in edges must be below numVertices.
// On error no CSR is returned.
func Build(numVertices int, edges core.EdgeList, opts ...Option) (*CSR, error) {
	o := newOptions(opts)
	start := time.Now()

	g, err := build(numVertices, edges, o)

	o.metrics.OnBuild(numVertices, len(edges), time.Since(start), err)
	if err != nil {
		o.logger.Error("csr build failed", "vertices", numVertices, "edges", len(edges), "error", err)
		return nil, err
	}
	o.logger.Info("csr build completed",
		"vertices", g.numVertices,
		"edges", g.numEdges,
		"workers", o.pool.Workers(),
		"duration", time.Since(start),
	)
	return g, nil
}

func build(numVertices int, edges core.EdgeList, o *options) (*CSR, error) {
	if numVertices < 0 || (numVertices == 0 && len(edges) > 0) {
		return nil, fmt.Errorf("%w: %d for %d edges", ErrInvalidVertexCount, numVertices, len(edges))
	}

	if err := o.rc.AcquireBuild(o.ctx); err != nil {
		return nil, fmt.Errorf("csr: waiting for build slot: %w", err)
	}
	defer o.rc.ReleaseBuild()

	mem := EstimateBuildMemory(numVertices, len(edges))
	if err := o.rc.ReserveMemory(mem); err != nil {
		return nil, fmt.Errorf("csr: build of %d vertices, %d edges: %w", numVertices, len(edges), err)
	}
	defer o.rc.ReleaseMemory(mem)

	o.logger.Debug("csr build started", "vertices", numVertices, "edges", len(edges), "chunks", pool.NumChunks)

	counts := make([]atomic.Uint64, numVertices)
	countDegrees(o.pool, edges, counts)

	offsets := prefixSum(counts)

	neighbors := make([]core.VertexID, len(edges))
	scatter(o.pool, edges, counts, neighbors)

	return newCSR(offsets, neighbors, o), nil
}

// countDegrees accumulates out-degrees. Each chunk first aggregates its
// sources in local bins so a hub vertex costs one atomic add per chunk
// rather than one per edge.
func countDegrees(p *pool.Pool, edges core.EdgeList, counts []atomic.Uint64) {
	p.RunChunks(len(edges), func(r pool.Range) {
		var bins [numBins]map[core.VertexID]uint64
		for _, e := range edges[r.Start:r.End] {
			b := &bins[e.Src%numBins]
			if *b == nil {
				*b = make(map[core.VertexID]uint64)
			}
			(*b)[e.Src]++
		}
		for _, bin := range bins {
			for v, c := range bin {
				counts[v].Add(c)
			}
		}
	})
}

// prefixSum turns degree counts into start offsets and leaves each counter
// holding its vertex's start offset, ready to serve as a scatter cursor.
func prefixSum(counts []atomic.Uint64) []uint64 {
	offsets := make([]uint64, len(counts))
	var next uint64
	for i := range counts {
		offsets[i] = next
		next += counts[i].Load()
		counts[i].Store(offsets[i])
	}
	return offsets
}

// scatter places every edge. The fetch-add on a vertex cursor reserves a
// slot that no other writer can obtain, so the store itself is plain.
func scatter(p *pool.Pool, edges core.EdgeList, cursors []atomic.Uint64, neighbors []core.VertexID) {
	p.RunChunks(len(edges), func(r pool.Range) {
		for _, e := range edges[r.Start:r.End] {
			slot := cursors[e.Src].Add(1) - 1
			neighbors[slot] = e.Dst
		}
	})
}
