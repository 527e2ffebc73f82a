package blobstore

import (
	"context"
	"fmt"

	"photoshare/internal/config"
)

// NewFromConfig builds the backend selected by STORAGE_DRIVER.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Store, error) {
	var (
		backend Backend
		err     error
	)
	switch cfg.Storage.Driver {
	case config.DriverLocal:
		backend, err = NewLocal(cfg.Storage.Dir)
	case config.DriverMinIO:
		backend, err = NewMinIO(cfg.MinIO.Endpoint, cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, cfg.MinIO.Bucket, cfg.MinIO.UseSSL)
	case config.DriverS3:
		backend, err = NewS3(ctx, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Endpoint, cfg.S3.UsePathStyle)
	case config.DriverGCS:
		backend, err = NewGCS(ctx, cfg.GCS.Bucket)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	if err != nil {
		return nil, err
	}
	return New(backend), nil
}
