package artifact

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvreporter/internal/logger"
)

type fakeS3 struct {
	headErr error
	putErr  error
	getErr  error

	lastPut *s3.PutObjectInput
	getBody string
}

func (f *fakeS3) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.lastPut = params
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(strings.NewReader(f.getBody)),
	}, nil
}

func TestExists(t *testing.T) {
	ctx := context.Background()

	t.Run("present object", func(t *testing.T) {
		store := NewStore(&fakeS3{}, logger.NopLogger())
		exists, err := store.Exists(ctx, "bucket", "reports/sample_metrics.json")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("not found maps to false without error", func(t *testing.T) {
		store := NewStore(&fakeS3{headErr: &types.NotFound{}}, logger.NopLogger())
		exists, err := store.Exists(ctx, "bucket", "reports/sample_metrics.json")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("transport error propagates", func(t *testing.T) {
		store := NewStore(&fakeS3{headErr: errors.New("connection refused")}, logger.NopLogger())
		_, err := store.Exists(ctx, "bucket", "reports/sample_metrics.json")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "head object")
	})
}

func TestUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("sends payload with key and content type", func(t *testing.T) {
		client := &fakeS3{}
		store := NewStore(client, logger.NopLogger())

		err := store.Upload(ctx, "bucket", "reports/sample_metrics.json", []byte(`{"row_count":2}`), "application/json")
		require.NoError(t, err)

		require.NotNil(t, client.lastPut)
		assert.Equal(t, "bucket", aws.ToString(client.lastPut.Bucket))
		assert.Equal(t, "reports/sample_metrics.json", aws.ToString(client.lastPut.Key))
		assert.Equal(t, "application/json", aws.ToString(client.lastPut.ContentType))

		body, err := io.ReadAll(client.lastPut.Body)
		require.NoError(t, err)
		assert.Equal(t, `{"row_count":2}`, string(body))
	})

	t.Run("put failure propagates", func(t *testing.T) {
		store := NewStore(&fakeS3{putErr: errors.New("access denied")}, logger.NopLogger())
		err := store.Upload(ctx, "bucket", "key", []byte("x"), "application/json")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "put object")
	})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("streams object body", func(t *testing.T) {
		store := NewStore(&fakeS3{getBody: "a,b\n1,2\n"}, logger.NopLogger())

		reader, err := store.Open(ctx, "bucket", "raw-data/sample.csv")
		require.NoError(t, err)
		defer reader.Close()

		body, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, "a,b\n1,2\n", string(body))
	})

	t.Run("get failure propagates", func(t *testing.T) {
		store := NewStore(&fakeS3{getErr: errors.New("no such key")}, logger.NopLogger())
		_, err := store.Open(ctx, "bucket", "raw-data/sample.csv")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "get object")
	})
}
