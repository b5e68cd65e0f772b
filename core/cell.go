package core

import "sync"

// Cell is a float64 guarded by its own reader/writer lock.
// Slices of cells give one lock per vertex rather than one lock per array.
type Cell struct {
	mu  sync.RWMutex
	val float64
}

// Load reads the value under the shared lock.
func (c *Cell) Load() float64 {
	c.mu.RLock()
	v := c.val
	c.mu.RUnlock()
	return v
}

// Store writes the value under the exclusive lock.
func (c *Cell) Store(v float64) {
	c.mu.Lock()
	c.val = v
	c.mu.Unlock()
}

// Cells is an array of independently locked scalars indexed by vertex.
type Cells []Cell

// NewCells returns n cells set to init.
func NewCells(n int, init float64) Cells {
	cs := make(Cells, n)
	if init != 0 {
		for i := range cs {
			cs[i].val = init
		}
	}
	return cs
}

// Get is shorthand for cs[v].Load().
func (cs Cells) Get(v VertexID) float64 {
	return cs[v].Load()
}

// Snapshot copies every value into a plain slice.
// Each cell is read under its own lock; the copy is not a global atomic snapshot.
func (cs Cells) Snapshot() []float64 {
	out := make([]float64, len(cs))
	for i := range cs {
		out[i] = cs[i].Load()
	}
	return out
}
