// Package hash provides the CRC32-Castagnoli checksum used by packed graph
// images. Go's hash/crc32 uses SSE4.2 or the ARM CRC extension when present.
package hash
