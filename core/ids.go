package core

import (
	"errors"
	"fmt"
	"math"
)

// ErrVertexIDOverflow is returned when an edge names a vertex id whose
// vertex count does not fit in an int.
var ErrVertexIDOverflow = errors.New("core: vertex id out of addressable range")

// VertexID is a dense, zero-based vertex identifier.
// It is 64-bit so the in-memory CSR and the mapped image share one neighbor type.
type VertexID = uint64

// Edge is a directed (source, destination) pair.
type Edge struct {
	Src VertexID
	Dst VertexID
}

// EdgeList is the construction input of a CSR.
// Duplicates and self-loops are permitted; no order is required.
type EdgeList []Edge

// NumVertices returns max(id)+1 over both endpoints, or 0 for an empty list.
// It returns -1 when the largest id leaves no room for the count in an int;
// use CountVertices to get that case as an error.
func (el EdgeList) NumVertices() int {
	n, err := el.CountVertices()
	if err != nil {
		return -1
	}
	return n
}

// CountVertices is NumVertices with an ErrVertexIDOverflow error for ids
// at or above math.MaxInt.
func (el EdgeList) CountVertices() (int, error) {
	if len(el) == 0 {
		return 0, nil
	}
	var maxID VertexID
	for _, e := range el {
		maxID = max(maxID, e.Src, e.Dst)
	}
	if maxID >= math.MaxInt {
		return 0, fmt.Errorf("%w: %d", ErrVertexIDOverflow, maxID)
	}
	return int(maxID) + 1, nil
}

// Reverse returns a new list with every edge flipped.
func (el EdgeList) Reverse() EdgeList {
	out := make(EdgeList, len(el))
	for i, e := range el {
		out[i] = Edge{Src: e.Dst, Dst: e.Src}
	}
	return out
}
