// Package blobstore provides storage for the search checkpoint and the target list.
//
// Both are small documents that are rewritten whole after every step, so the
// BlobStore interface only offers whole-blob writes:
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// # Built-in Implementations
//
//   - LocalStore: local directory, atomic temp-file + rename writes
//   - MemoryStore: in-memory, for tests
//   - s3.Store: Amazon S3
//   - minio.Store: MinIO and other S3-compatible storage
package blobstore
