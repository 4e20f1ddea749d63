package storage

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/storefront/config"
)

// Open builds the disk named by STORAGE_DISK.
func Open(ctx context.Context) (Disk, error) {
	switch name := config.StorageDefault(); name {
	case "local", "":
		return NewLocalDisk(config.StorageLocalRoot(), config.StorageURL()), nil
	case "s3":
		return NewS3Disk(ctx, S3Config{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			BaseURL:  config.StorageS3URL(),
		})
	default:
		return nil, fmt.Errorf("storage: unknown disk %q", name)
	}
}
