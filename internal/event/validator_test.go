package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "csvreporter/pkg/errors"
)

func TestValidate(t *testing.T) {
	const (
		bucket  = "gcs-csv-reporter"
		rawDir  = "raw-data"
		reports = "reports"
	)

	t.Run("valid event derives target", func(t *testing.T) {
		evt := FileChangeEvent{BucketName: bucket, FilePath: "raw-data/sample.csv"}

		target, err := Validate(evt, bucket, rawDir, reports)
		require.NoError(t, err)
		assert.Equal(t, "sample.csv", target.FileName)
		assert.Equal(t, "sample", target.FileNameStem)
		assert.Equal(t, "reports/sample_metrics.json", target.OutputArtifactPath)
	})

	t.Run("derivation is deterministic", func(t *testing.T) {
		evt := FileChangeEvent{BucketName: bucket, FilePath: "raw-data/2024/orders.csv"}

		first, err := Validate(evt, bucket, rawDir, reports)
		require.NoError(t, err)
		second, err := Validate(evt, bucket, rawDir, reports)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("missing fields", func(t *testing.T) {
		tests := []struct {
			name string
			evt  FileChangeEvent
		}{
			{"empty bucket", FileChangeEvent{FilePath: "raw-data/sample.csv"}},
			{"empty path", FileChangeEvent{BucketName: bucket}},
			{"both empty", FileChangeEvent{}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := Validate(tt.evt, bucket, rawDir, reports)
				require.Error(t, err)
				assert.True(t, pkgerrors.HasCode(err, "MALFORMED_PAYLOAD"))
				assert.Contains(t, pkgerrors.ClientMessage(err), "Missing bucket or file path")
			})
		}
	})

	t.Run("bucket mismatch names expected bucket", func(t *testing.T) {
		evt := FileChangeEvent{BucketName: "wrong-bucket", FilePath: "raw-data/sample.csv"}

		_, err := Validate(evt, bucket, rawDir, reports)
		require.Error(t, err)
		assert.True(t, pkgerrors.HasCode(err, "BUCKET_MISMATCH"))
		assert.Contains(t, pkgerrors.ClientMessage(err), bucket)
		assert.Contains(t, pkgerrors.ClientMessage(err), "wrong-bucket")
	})

	t.Run("invalid paths", func(t *testing.T) {
		tests := []struct {
			name string
			path string
		}{
			{"wrong folder", "other-folder/sample.csv"},
			{"no folder prefix", "sample.csv"},
			{"wrong extension", "raw-data/sample.txt"},
			{"extension only suffix match", "raw-data/samplecsv"},
			{"folder as suffix", "not-raw-data/sample.csv"},
			{"reports folder", "reports/sample.csv"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				evt := FileChangeEvent{BucketName: bucket, FilePath: tt.path}
				_, err := Validate(evt, bucket, rawDir, reports)
				require.Error(t, err)
				assert.True(t, pkgerrors.HasCode(err, "INVALID_PATH"))
			})
		}
	})

	t.Run("dot-only basename keeps full name as stem", func(t *testing.T) {
		evt := FileChangeEvent{BucketName: bucket, FilePath: "raw-data/.csv"}

		target, err := Validate(evt, bucket, rawDir, reports)
		require.NoError(t, err)
		assert.Equal(t, ".csv", target.FileName)
		assert.Equal(t, ".csv", target.FileNameStem)
		assert.Equal(t, "reports/.csv_metrics.json", target.OutputArtifactPath)
	})

	t.Run("nested path keeps basename only", func(t *testing.T) {
		evt := FileChangeEvent{BucketName: bucket, FilePath: "raw-data/2024/q1/orders.csv"}

		target, err := Validate(evt, bucket, rawDir, reports)
		require.NoError(t, err)
		assert.Equal(t, "orders.csv", target.FileName)
		assert.Equal(t, "reports/orders_metrics.json", target.OutputArtifactPath)
	})
}
