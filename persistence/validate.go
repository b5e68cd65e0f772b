package persistence

import "fmt"

// ValidateStructure checks that offsets and neighbors form a well-formed
// CSR: offsets start at zero, never decrease, stay within the neighbor
// array, and every neighbor id is a valid vertex.
func ValidateStructure(offsets, neighbors []uint64) error {
	numV, numE := uint64(len(offsets)), uint64(len(neighbors))
	if numV == 0 {
		if numE != 0 {
			return fmt.Errorf("%w: %d edges without vertices", ErrCorrupt, numE)
		}
		return nil
	}
	if offsets[0] != 0 {
		return fmt.Errorf("%w: offsets[0] = %d", ErrCorrupt, offsets[0])
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			return fmt.Errorf("%w: offsets[%d] = %d < offsets[%d] = %d", ErrCorrupt, i, offsets[i], i-1, offsets[i-1])
		}
	}
	if last := offsets[numV-1]; last > numE {
		return fmt.Errorf("%w: last offset %d exceeds %d edges", ErrCorrupt, last, numE)
	}
	for i, n := range neighbors {
		if n >= numV {
			return fmt.Errorf("%w: neighbors[%d] = %d >= %d vertices", ErrCorrupt, i, n, numV)
		}
	}
	return nil
}
