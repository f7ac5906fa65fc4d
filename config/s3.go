package config

import (
	"fmt"
	"os"
)

type S3Config struct {
	BucketName string
	Region     string
}

// GetS3Config returns nil without an error when no bucket is configured; export is then disabled.
func GetS3Config() (*S3Config, error) {
	bucketName := os.Getenv("BUCKET_NAME")
	if bucketName == "" {
		return nil, nil
	}

	region := os.Getenv("REGION")
	if region == "" {
		return nil, fmt.Errorf("REGION must be set when BUCKET_NAME is")
	}

	return &S3Config{
		BucketName: bucketName,
		Region:     region,
	}, nil
}
