package pool

import (
	"sync"

	"github.com/bits-and-blooms/bitset"
)

// DefaultVisitedBits is the initial capacity of pooled visited sets.
const DefaultVisitedBits = 1 << 16

var visitedPool = sync.Pool{
	New: func() any {
		return bitset.New(DefaultVisitedBits)
	},
}

// GetVisited returns a cleared bitset able to hold n bits without growing.
func GetVisited(n uint) *bitset.BitSet {
	bs := visitedPool.Get().(*bitset.BitSet)
	if bs.Len() < n {
		bs = bitset.New(n)
	}
	bs.ClearAll()
	return bs
}

// PutVisited returns bs to the pool.
func PutVisited(bs *bitset.BitSet) {
	if bs == nil {
		return
	}
	visitedPool.Put(bs)
}
