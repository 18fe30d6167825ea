package storage

import (
	"bytes"
	"context"
	"fmt"

	"zara/catalog/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	log "github.com/sirupsen/logrus"
)

// putObjectAPI is the part of *s3.Client the writer needs
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type s3Writer struct {
	client putObjectAPI
	bucket string
	key    string
}

// NewS3Writer builds an S3 client from the default AWS credential chain.
// A custom endpoint switches to path-style addressing for S3-compatible stores.
func NewS3Writer(ctx context.Context, cfg config.S3Config) (Writer, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	log.Infof("✅ S3 output enabled: s3://%s/%s", cfg.Bucket, cfg.Key)
	return newS3Writer(client, cfg.Bucket, cfg.Key), nil
}

func newS3Writer(client putObjectAPI, bucket, key string) *s3Writer {
	return &s3Writer{client: client, bucket: bucket, key: key}
}

func (w *s3Writer) Name() string {
	return fmt.Sprintf("s3://%s/%s", w.bucket, w.key)
}

func (w *s3Writer) Write(ctx context.Context, data []byte) error {
	_, err := w.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(w.bucket),
		Key:           aws.String(w.key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", w.Name(), err)
	}

	log.Infof("💾 Uploaded %d bytes to %s", len(data), w.Name())
	return nil
}
