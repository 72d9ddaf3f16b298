// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "featsearch/run-1")
//
// Checkpoints are written through the S3 upload manager, so large states are
// sent as multipart uploads.
package s3
