// Package algo contains graph algorithms written against the scan API of
// csr and fastcsr: PageRank in three flavors and a level-synchronous
// parallel BFS.
//
// The PageRank variants are pull-based. Each vertex sums the rank of its
// in-neighbors, so they run over the transpose of a graph: PageRank and
// PageRankLocked transpose an owned CSR themselves, FastPageRank expects an
// image that already stores in-links (save the output of csr.CSR.Transpose).
// Rank held by vertices without out-edges is spread evenly, so ranks always
// sum to one.
package algo
