// Package persistence defines the on-disk graph image and the helpers that
// read and write it.
//
// Image layout (little-endian, 8-byte words):
//
//	offset 0        num_vertices
//	offset 8        num_edges
//	offset 16       offsets[0..V)
//	offset 16+8V    neighbors[0..E)
//
// There is no trailing sentinel offset: the last vertex's range ends at
// num_edges. Word arrays are written and viewed through unsafe byte casts,
// so the package refuses to initialize on big-endian or non-64-bit targets
// (see safety.go).
//
// For transport to remote stores an image can be wrapped in a compressed
// envelope (Pack/Unpack) carrying the raw size and a CRC32C of the image.
package persistence
