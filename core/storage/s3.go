package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/HyunsDev/opize-calendar2notion-server/core/config"
	"github.com/HyunsDev/opize-calendar2notion-server/core/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Uploader writes archive snapshots to object storage.
type Uploader interface {
	PutJSON(ctx context.Context, key string, body []byte) (string, error)
}

type s3Uploader struct {
	client *s3.Client
	bucket string
}

func NewS3Uploader(cfg config.S3Config) Uploader {
	client := s3.New(s3.Options{
		Region: cfg.Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	})
	return &s3Uploader{client: client, bucket: cfg.Bucket}
}

func (u *s3Uploader) PutJSON(ctx context.Context, key string, body []byte) (string, error) {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		logger.Error("S3Uploader:PutJSON:Error", "bucket", u.bucket, "key", key, "error", err)
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	location := fmt.Sprintf("s3://%s/%s", u.bucket, key)
	logger.Info("S3Uploader:PutJSON:Uploaded", "location", location, "bytes", len(body))
	return location, nil
}
