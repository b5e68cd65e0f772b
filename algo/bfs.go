package algo

import (
	"sync"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/csrgo/core"
	"github.com/hupe1980/csrgo/internal/pool"
)

// Adjacency is the read surface LevelBFS needs. *csr.CSR and
// *fastcsr.FastCSR both implement it.
type Adjacency interface {
	NumVertices() int
	Neighbors(v core.VertexID) []core.VertexID
}

// LevelBFS returns the vertices reachable from start grouped by distance:
// level 0 is {start}, level i holds the vertices first reached after i hops.
// Each level is sorted ascending.
//
// Levels are expanded in parallel on p (the default pool when nil). Every
// chunk of the frontier collects its discoveries in a private bitmap; the
// bitmaps are merged at the barrier between levels. start must be a valid
// vertex.
func LevelBFS(g Adjacency, start core.VertexID, p *pool.Pool) [][]core.VertexID {
	if p == nil {
		p = pool.Default()
	}
	_ = g.Neighbors(start) // out-of-range start is a caller bug

	visited := roaring64.New()
	visited.Add(start)
	frontier := []core.VertexID{start}
	levels := [][]core.VertexID{frontier}

	for {
		var (
			mu    sync.Mutex
			parts []*roaring64.Bitmap
		)
		p.RunChunks(len(frontier), func(r pool.Range) {
			local := roaring64.New()
			for _, v := range frontier[r.Start:r.End] {
				for _, n := range g.Neighbors(v) {
					if !visited.Contains(n) {
						local.Add(n)
					}
				}
			}
			mu.Lock()
			parts = append(parts, local)
			mu.Unlock()
		})

		next := roaring64.New()
		for _, part := range parts {
			next.Or(part)
		}
		if next.IsEmpty() {
			return levels
		}
		visited.Or(next)
		frontier = next.ToArray()
		levels = append(levels, frontier)
	}
}
