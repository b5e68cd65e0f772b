// Package csr implements the owned Compressed-Sparse-Row graph: a
// lock-free parallel builder, sequential and parallel scans, and the
// binary image used to reopen a graph as a memory-mapped fastcsr.FastCSR.
//
// Construction is a three-phase counting sort over a fixed number of edge
// chunks:
//
//  1. count out-degrees (chunk-local bins, then one atomic add per vertex per chunk)
//  2. sequential prefix sum into offsets
//  3. scatter, where an atomic per-vertex cursor hands out exclusive slots
//
// The offsets array has no trailing sentinel. Vertex v's neighbors span
// [offsets[v], offsets[v+1]), except the last vertex whose range ends at
// NumEdges. Neighbor order within a vertex is not reproducible between builds.
//
// Vertex ids passed to any method must be below NumVertices. This is not
// checked beyond Go's own slice bounds checks.
package csr
