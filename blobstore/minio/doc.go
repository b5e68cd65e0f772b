// Package minio provides a BlobStore implementation using the MinIO client.
//
// It works with MinIO and other S3-compatible systems (Ceph, SeaweedFS,
// Garage) without pulling in AWS configuration loading.
//
// # Basic Usage
//
//	store, err := minio.Connect("localhost:9000", minio.Credentials{
//	    AccessKey: "minioadmin",
//	    SecretKey: "minioadmin",
//	}, "graphs", "prod/")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cat := catalog.New(store)
//
// An existing *minio.Client can be wrapped with NewStore.
package minio
