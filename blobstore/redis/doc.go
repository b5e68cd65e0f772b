// Package redis provides a BlobStore backed by Redis string values.
//
// Each blob is a single key. Ranged reads use GETRANGE so large images can be
// downloaded in parallel chunks without transferring the whole value.
package redis
