package event

import (
	"fmt"
	"path"
	"strings"

	"csvreporter/internal/constants"
	pkgerrors "csvreporter/pkg/errors"
)

// Validate checks the decoded event against the expected bucket and input
// folder, and derives the processing target. It runs before any I/O: a
// misrouted or malicious event must be rejected without a single network call.
func Validate(evt FileChangeEvent, expectedBucket, rawDataFolder, reportsFolder string) (ProcessingTarget, error) {
	var target ProcessingTarget

	if evt.BucketName == "" || evt.FilePath == "" {
		return target, pkgerrors.ErrMalformedPayload.
			WithDetail("message", "Missing bucket or file path")
	}

	if evt.BucketName != expectedBucket {
		return target, pkgerrors.ErrBucketMismatch.
			WithDetail("message", fmt.Sprintf("Invalid bucket: expected %s, got %s", expectedBucket, evt.BucketName))
	}

	if !strings.HasPrefix(evt.FilePath, rawDataFolder+"/") || !strings.HasSuffix(evt.FilePath, constants.RequiredExtension) {
		return target, pkgerrors.ErrInvalidPath.
			WithDetail("message", fmt.Sprintf("Invalid file path: %s. Only CSVs in %s/ folder are allowed", evt.FilePath, rawDataFolder))
	}

	fileName := path.Base(evt.FilePath)
	stem := strings.TrimSuffix(fileName, path.Ext(fileName))
	if stem == "" {
		// path.Ext(".csv") swallows the whole basename; keep it as the stem.
		stem = fileName
	}

	return ProcessingTarget{
		FileName:           fileName,
		FileNameStem:       stem,
		OutputArtifactPath: fmt.Sprintf("%s/%s%s", reportsFolder, stem, constants.ReportSuffix),
	}, nil
}
