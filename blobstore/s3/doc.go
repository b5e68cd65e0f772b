// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("graphs/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	cat := catalog.New(store)
//	version, err := cat.Publish(ctx, "web", g)
//
// # Features
//
//   - Range reads for parallel image download
//   - Multipart uploads with CRC32C checksums
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
//
// CommitStore layers a DynamoDB commit log over a Store so that concurrent
// publishers cannot overwrite each other's CURRENT pointer.
package s3
