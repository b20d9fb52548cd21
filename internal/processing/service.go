package processing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"csvreporter/internal/config"
	"csvreporter/internal/constants"
	"csvreporter/internal/event"
	"csvreporter/internal/logger"
	"csvreporter/internal/metadata"
	"csvreporter/internal/report"
	pkgerrors "csvreporter/pkg/errors"
	"csvreporter/pkg/logging"
	"csvreporter/pkg/metrics"
)

// ArtifactStore is the object-storage surface the pipeline needs: existence
// check for duplicate detection and overwriting upload for the report.
type ArtifactStore interface {
	Exists(ctx context.Context, bucket, key string) (bool, error)
	Upload(ctx context.Context, bucket, key string, payload []byte, contentType string) error
}

// MetricsComputer reads the source file and derives its summary statistics.
type MetricsComputer interface {
	Compute(ctx context.Context, bucket, filePath string) (*report.MetricsReport, error)
}

// Service is the pipeline orchestrator. It sequences decode, validation,
// duplicate detection, computation and the dual write, performing each step
// exactly once per invocation. Nothing is retried here: redelivery by the
// upstream messaging system is the sole recovery mechanism, and it is safe
// because every write is an idempotent overwrite keyed by the file name.
type Service struct {
	artifacts ArtifactStore
	records   metadata.Repository
	computer  MetricsComputer
	cfg       config.PipelineConfig
	logger    logger.Logger
	now       func() time.Time
}

func NewService(artifacts ArtifactStore, records metadata.Repository, computer MetricsComputer, cfg config.PipelineConfig, log logger.Logger) *Service {
	return &Service{
		artifacts: artifacts,
		records:   records,
		computer:  computer,
		cfg:       cfg,
		logger:    log,
		now:       time.Now,
	}
}

// Process runs one event through the pipeline and returns the outcome for
// the response contract. All failures come back as classified errors; no
// partial outcome is ever returned alongside an error.
func (s *Service) Process(ctx context.Context, envelope *event.PushEnvelope) (*Outcome, error) {
	start := s.now()
	state := StateReceived

	outcome, err := s.run(ctx, envelope, &state)

	status := StatusError
	if err == nil {
		status = outcome.Status
	}
	metrics.PipelineEventsTotal.WithLabelValues(status).Inc()
	metrics.ObservePipelineDuration(s.now().Sub(start), status)

	if err != nil {
		s.logger.WarnwCtx(ctx, "Pipeline failed",
			"state", string(state),
			"error", err,
		)
		return nil, err
	}
	return outcome, nil
}

func (s *Service) run(ctx context.Context, envelope *event.PushEnvelope, state *State) (*Outcome, error) {
	evt, err := event.Decode(envelope)
	if err != nil {
		*state = StateFailed
		return nil, err
	}

	target, err := event.Validate(evt, s.cfg.BucketName, s.cfg.RawDataFolder, s.cfg.ReportsFolder)
	if err != nil {
		*state = StateFailed
		return nil, err
	}
	*state = StateValidated

	ctx = logging.WithFileName(ctx, target.FileName)
	s.logger.InfowCtx(ctx, "Event validated",
		"file_path", evt.FilePath,
		"output_path", target.OutputArtifactPath,
	)

	processed, err := s.isAlreadyProcessed(ctx, target)
	if err != nil {
		*state = StateFailed
		return nil, pkgerrors.ErrInternal.
			WithCause(err).
			WithMessage(fmt.Sprintf("Internal error: %v", err))
	}
	if processed {
		*state = StateSkipped
		s.logger.InfowCtx(ctx, "Event skipped, file already processed")
		return &Outcome{
			Status:     StatusSkipped,
			FileName:   target.FileName,
			InputFile:  evt.FilePath,
			OutputFile: target.OutputArtifactPath,
		}, nil
	}

	rpt, err := s.computer.Compute(ctx, evt.BucketName, evt.FilePath)
	if err != nil {
		*state = StateFailed
		return nil, err
	}
	*state = StateComputed
	metrics.ReportRowsProcessed.Observe(float64(rpt.RowCount))

	record, err := s.persist(ctx, target, rpt, evt.FilePath)
	if err != nil {
		*state = StateFailed
		return nil, err
	}
	*state = StatePersisted

	s.logger.InfowCtx(ctx, "File processed",
		"row_count", record.RowCount,
		"column_count", record.ColumnCount,
		"output_path", target.OutputArtifactPath,
	)

	*state = StateResponded
	return &Outcome{
		Status:      StatusSuccess,
		FileName:    target.FileName,
		InputFile:   evt.FilePath,
		OutputFile:  target.OutputArtifactPath,
		RowCount:    rpt.RowCount,
		ColumnCount: rpt.ColumnCount,
	}, nil
}

// isAlreadyProcessed checks the two completion signals in a fixed order:
// artifact first, completion record second, short-circuiting on the first
// hit. Because the artifact write precedes the metadata write, a crash
// between the two still shows up as "done" through signal one alone.
func (s *Service) isAlreadyProcessed(ctx context.Context, target event.ProcessingTarget) (bool, error) {
	exists, err := s.artifacts.Exists(ctx, s.cfg.BucketName, target.OutputArtifactPath)
	if err != nil {
		return false, fmt.Errorf("artifact existence check failed: %w", err)
	}
	if exists {
		metrics.DuplicateChecksTotal.WithLabelValues(metrics.SignalArtifact).Inc()
		s.logger.InfowCtx(ctx, "Report already exists in artifact store",
			"output_path", target.OutputArtifactPath,
		)
		return true, nil
	}

	recorded, err := s.records.Exists(ctx, target.FileName)
	if err != nil {
		return false, fmt.Errorf("completion record check failed: %w", err)
	}
	if recorded {
		metrics.DuplicateChecksTotal.WithLabelValues(metrics.SignalMetadata).Inc()
		s.logger.InfowCtx(ctx, "Completion record already exists")
		return true, nil
	}

	metrics.DuplicateChecksTotal.WithLabelValues(metrics.SignalMiss).Inc()
	return false, nil
}

// persist performs the dual write. The order is fixed: artifact before
// metadata. A failure after the artifact write leaves a state the duplicate
// detector still recognizes as done on redelivery.
func (s *Service) persist(ctx context.Context, target event.ProcessingTarget, rpt *report.MetricsReport, filePath string) (*metadata.CompletionRecord, error) {
	payload, err := json.MarshalIndent(rpt, "", "  ")
	if err != nil {
		return nil, pkgerrors.ErrInternal.WithCause(err)
	}

	if err := s.artifacts.Upload(ctx, s.cfg.BucketName, target.OutputArtifactPath, payload, constants.ReportContentType); err != nil {
		metrics.PersistWritesTotal.WithLabelValues(pkgerrors.WriteArtifact, "error").Inc()
		return nil, pkgerrors.ErrPersistFailure.
			WithCause(err).
			WithDetail("write", pkgerrors.WriteArtifact).
			WithDetail("message", "Failed to upload metrics report")
	}
	metrics.PersistWritesTotal.WithLabelValues(pkgerrors.WriteArtifact, "success").Inc()

	record := metadata.CompletionRecord{
		FileName:    target.FileName,
		FilePath:    filePath,
		ProcessedAt: s.now(),
		RowCount:    rpt.RowCount,
		ColumnCount: rpt.ColumnCount,
	}

	if err := s.records.Upsert(ctx, record); err != nil {
		metrics.PersistWritesTotal.WithLabelValues(pkgerrors.WriteMetadata, "error").Inc()
		return nil, pkgerrors.ErrPersistFailure.
			WithCause(err).
			WithDetail("write", pkgerrors.WriteMetadata).
			WithDetail("message", "Failed to record completion metadata")
	}
	metrics.PersistWritesTotal.WithLabelValues(pkgerrors.WriteMetadata, "success").Inc()

	return &record, nil
}
