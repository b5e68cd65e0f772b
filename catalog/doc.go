// Package catalog publishes CSR images to a blobstore under a graph name and
// fetches them back for zero-copy use.
//
// Layout inside the store:
//
//	<graph>/<version>.csrz   packed image (persistence envelope)
//	<graph>/CURRENT          version id of the live image
//
// Versions are UUIDv7 strings, so lexical order is publication order.
// Publish writes the image before it moves CURRENT; a reader never sees a
// pointer to a missing image. With s3.CommitStore the CURRENT update is a
// conditional DynamoDB write.
//
// Fetch downloads the current image into a local directory, unpacks it,
// verifies it and renames it into place. Fetched images are immutable, so a
// version already present locally is reused.
package catalog
