// Package csrgo builds, stores and traverses graphs in Compressed-Sparse-Row
// form.
//
// A graph is built once from an edge list with a lock-free parallel counting
// sort, written as a flat little-endian image and then reopened as a
// memory-mapped read-only FastCSR for parallel scans.
//
// # Quick Start
//
//	g, _ := csrgo.BuildFromFile("graph.el")
//	_ = csrgo.Save(g, "graph.csr")
//
//	f, _ := csrgo.OpenFast("graph.csr")
//	defer f.Close()
//	f.NeighborScan(func(v uint64, nbrs []uint64) { ... })
//
// # Packages
//
//   - csr: owned graph, builder, sequential and parallel scans, image encoding
//   - fastcsr: zero-copy read-only view over a mapped image
//   - algo: PageRank variants and level-synchronous BFS
//   - edgelist: text edge lists, optionally gzip, zstd or lz4 compressed
//   - catalog: versioned images in a blobstore (local, S3, MinIO, Redis)
//
// # Image Layout
//
//	u64 num_vertices | u64 num_edges | u64 offsets[V] | u64 neighbors[E]
//
// All words are little-endian. There is no trailing sentinel offset; the
// last vertex's neighbors end at num_edges.
package csrgo
