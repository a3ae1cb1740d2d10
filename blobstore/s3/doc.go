// Package s3 provides an Amazon S3 implementation of blobstore.Store.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("models/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	err = persistence.Save(ctx, store, "run-42.kcl", snap)
//
// Credentials come from the default AWS configuration chain.
package s3
