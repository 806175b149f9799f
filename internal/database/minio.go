package database

import (
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOOptions describes an S3-compatible endpoint and bucket.
type MinIOOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// ConnectMinIO creates a MinIO client and ensures the bucket exists.
func ConnectMinIO(ctx context.Context, opts MinIOOptions) (*minio.Client, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
		// already existing buckets are fine
		exists, xerr := mc.BucketExists(ctx, opts.Bucket)
		if xerr != nil || !exists {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return mc, nil
}
