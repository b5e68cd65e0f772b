// Package edgelist reads, writes and generates edge lists.
//
// The text format has one edge per line, "src,dst", with unsigned decimal
// vertex ids. Whitespace-separated pairs are accepted too, so SNAP-style
// files load unchanged. Blank lines and lines starting with '#' or '%' are
// skipped.
//
// ReadFile and WriteFile pick a compression codec from the file extension:
// .gz (gzip), .zst (zstd), .lz4 (lz4 frame), anything else is plain text.
package edgelist
