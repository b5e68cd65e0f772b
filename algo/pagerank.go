package algo

import (
	"fmt"
	"slices"

	"github.com/hupe1980/csrgo/core"
	"github.com/hupe1980/csrgo/csr"
	"github.com/hupe1980/csrgo/fastcsr"
)

// DefaultDamping is the conventional damping factor.
const DefaultDamping = 0.85

// PageRank runs iters rounds of PageRank over g using ParScan and returns
// the ranks. g's vertex properties are left untouched. opts apply to the
// transpose build.
func PageRank(g *csr.CSR, iters int, damping float64, opts ...csr.Option) ([]float64, error) {
	n := g.NumVertices()
	if n == 0 {
		return nil, nil
	}
	in, err := g.Transpose(opts...)
	if err != nil {
		return nil, fmt.Errorf("algo: pagerank: %w", err)
	}
	outDeg := g.OutDegrees()

	rank := uniform(n)
	for range iters {
		prev := rank
		base := teleport(prev, outDeg, damping)
		in.ParScan(func(_ core.VertexID, nbrs []core.VertexID) float64 {
			var sum float64
			for _, u := range nbrs {
				sum += prev[u] / float64(outDeg[u])
			}
			return base + damping*sum
		})
		rank = slices.Clone(in.VertexProps())
	}
	return rank, nil
}

// PageRankLocked computes the same ranks as PageRank through
// UpdateTraversal, reading in-neighbor ranks under per-vertex locks.
func PageRankLocked(g *csr.CSR, iters int, damping float64, opts ...csr.Option) ([]float64, error) {
	n := g.NumVertices()
	if n == 0 {
		return nil, nil
	}
	in, err := g.Transpose(opts...)
	if err != nil {
		return nil, fmt.Errorf("algo: pagerank: %w", err)
	}
	outDeg := g.OutDegrees()

	in.FillVertexProps(1 / float64(n))
	for range iters {
		// One round per call so the dangling mass can be recomputed between rounds.
		base := teleport(in.VertexProps(), outDeg, damping)
		in.UpdateTraversal(1, func(_ float64, nbrs []core.VertexID, props core.Cells) float64 {
			var sum float64
			for _, u := range nbrs {
				sum += props.Get(u) / float64(outDeg[u])
			}
			return base + damping*sum
		})
	}
	return slices.Clone(in.VertexProps()), nil
}

// FastPageRank runs PageRank over an image of in-links. Ranks live in two
// arrays of RW-locked cells: the previous round is read under shared locks
// and each vertex's new rank is written under its exclusive lock.
func FastPageRank(f *fastcsr.FastCSR, iters int, damping float64) []float64 {
	n := f.NumVertices()
	if n == 0 {
		return nil
	}

	// Every in-link (v <- u) is one out-edge of u.
	outDeg := make([]int, n)
	for _, u := range f.NeighborArray() {
		outDeg[u]++
	}

	prev := core.NewCells(n, 1/float64(n))
	next := core.NewCells(n, 0)
	for range iters {
		base := teleport(prev.Snapshot(), outDeg, damping)
		f.NeighborScan(func(v core.VertexID, nbrs []core.VertexID) {
			var sum float64
			for _, u := range nbrs {
				sum += prev.Get(u) / float64(outDeg[u])
			}
			next[v].Store(base + damping*sum)
		})
		prev, next = next, prev
	}
	return prev.Snapshot()
}

func uniform(n int) []float64 {
	r := make([]float64, n)
	for i := range r {
		r[i] = 1 / float64(n)
	}
	return r
}

// teleport returns the rank every vertex receives regardless of its
// in-links: the random-jump share plus an even split of dangling rank.
func teleport(rank []float64, outDeg []int, damping float64) float64 {
	var dangling float64
	for v, d := range outDeg {
		if d == 0 {
			dangling += rank[v]
		}
	}
	n := float64(len(rank))
	return (1-damping)/n + damping*dangling/n
}
