package edgelist

import (
	"math/rand/v2"

	"github.com/hupe1980/csrgo/core"
)

// Random returns an edge list over numVertices vertices in which every
// vertex gets between 0 and maxDegree-1 out-edges to uniformly chosen
// destinations. Edges are grouped by source in increasing order. A nil rng
// uses the global source.
func Random(numVertices, maxDegree int, rng *rand.Rand) core.EdgeList {
	if numVertices <= 0 || maxDegree <= 0 {
		return nil
	}
	intN := rand.IntN
	uintN := rand.Uint64N
	if rng != nil {
		intN = rng.IntN
		uintN = rng.Uint64N
	}

	el := make(core.EdgeList, 0, numVertices*maxDegree/2)
	n := uint64(numVertices)
	for v := range n {
		for range intN(maxDegree) {
			el = append(el, core.Edge{Src: v, Dst: uintN(n)})
		}
	}
	return el
}
