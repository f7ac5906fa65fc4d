package adapters

import (
	"context"
	"fmt"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"storybook-generator/application/ports/outbound"
	"storybook-generator/config"
)

type S3PutObjectAPI interface {
	PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error)
}

type s3StoryExporter struct {
	s3Svc    S3PutObjectAPI
	s3Config *config.S3Config
	logger   outbound.LoggerPort
}

func NewS3StoryExporter(s3Svc S3PutObjectAPI, s3Config *config.S3Config, logger outbound.LoggerPort) outbound.StoryExportPort {
	return &s3StoryExporter{
		s3Svc:    s3Svc,
		s3Config: s3Config,
		logger:   logger,
	}
}

func (s *s3StoryExporter) Put(ctx context.Context, req outbound.PutObjectRequest) (string, error) {
	putInput := &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(req.Key),
		Body:        req.Body,
		ContentType: aws.String(req.ContentType),
	}

	_, err := s.s3Svc.PutObjectWithContext(ctx, putInput)
	if err != nil {
		s.logger.ErrorWithFields(err, "Failed to upload object to S3", map[string]interface{}{
			"bucket": s.s3Config.BucketName,
			"key":    req.Key,
		})
		return "", err
	}

	s3Url := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.s3Config.BucketName, s.s3Config.Region, req.Key)
	s.logger.DebugWithFields("Successfully uploaded object to S3", map[string]interface{}{"s3Url": s3Url})

	return s3Url, nil
}
