// Package blobstore provides storage for serialized CSR images.
//
// BlobStore is the interface for reading and writing immutable blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, mmap-backed reads, atomic writes
//   - MemoryStore: in-process map, for tests
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO or any S3-compatible endpoint
//   - redis.Store: Redis strings with GETRANGE reads
//
// # Zero-copy access
//
// Blobs that also implement Mappable expose their bytes directly. A FastCSR
// can be opened over such a blob without copying:
//
//	b, _ := store.Open(ctx, "graphs/web/v1.csr")
//	g, _ := fastcsr.FromBlob(b)
//
// # Remote images
//
// Download fetches a blob into any io.WriterAt with parallel ranged reads,
// which is how the catalog materializes a remote image in a local cache.
package blobstore
