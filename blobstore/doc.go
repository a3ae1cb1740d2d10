// Package blobstore provides storage abstraction for model snapshots.
//
// Store is the interface for writing and reading whole blobs by name.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process map, for tests
//   - LocalStore: local directory with atomic writes
//   - minio.Store: MinIO and S3-compatible servers via minio-go
//   - s3.Store: Amazon S3 via aws-sdk-go-v2, multipart for large blobs
//   - ThrottledStore: wraps any Store with concurrency and bandwidth limits
//
// # Custom Implementations
//
//	type Store interface {
//	    Put(ctx, name, data) error         // Atomic write
//	    Get(ctx, name) ([]byte, error)     // ErrNotFound if missing
//	    Delete(ctx, name) error            // No error if missing
//	    List(ctx, prefix) ([]string, error) // Sorted names
//	}
package blobstore
