package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"csvreporter/internal/logger"
)

// API is the subset of the S3 client the store needs.
type API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Store is the object-storage client for both roles the bucket plays: source
// of raw CSV files and sink for report artifacts.
type Store struct {
	client API
	logger logger.Logger
}

func NewStore(client API, log logger.Logger) *Store {
	return &Store{
		client: client,
		logger: log,
	}
}

// Exists reports whether an object is present at key.
func (s *Store) Exists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("head object %s/%s failed: %w", bucket, key, err)
	}
	return true, nil
}

// Upload writes payload at key, overwriting any existing object.
func (s *Store) Upload(ctx context.Context, bucket, key string, payload []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put object %s/%s failed: %w", bucket, key, err)
	}

	s.logger.InfowCtx(ctx, "Uploaded artifact",
		"bucket", bucket,
		"key", key,
		"size_bytes", len(payload),
	)
	return nil
}

// Open streams the object at key. The caller owns the returned reader.
func (s *Store) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object %s/%s failed: %w", bucket, key, err)
	}
	return resp.Body, nil
}
