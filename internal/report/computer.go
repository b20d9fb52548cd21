package report

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strconv"

	"csvreporter/internal/logger"
	pkgerrors "csvreporter/pkg/errors"
)

// Source fetches raw tabular content addressed by bucket and path.
type Source interface {
	Open(ctx context.Context, bucket, filePath string) (io.ReadCloser, error)
}

// Computer derives a MetricsReport from a CSV file in a single pass.
type Computer struct {
	source Source
	logger logger.Logger
}

func NewComputer(source Source, log logger.Logger) *Computer {
	return &Computer{
		source: source,
		logger: log,
	}
}

// columnState accumulates per-column observations during the pass.
type columnState struct {
	nullCount  int
	nonEmpty   bool
	allInteger bool
	allFloat   bool
}

func (c *Computer) Compute(ctx context.Context, bucket, filePath string) (*MetricsReport, error) {
	body, err := c.source.Open(ctx, bucket, filePath)
	if err != nil {
		return nil, pkgerrors.ErrSourceUnreadable.
			WithCause(err).
			WithDetail("message", "Could not fetch source file "+filePath)
	}
	defer body.Close()

	reader := csv.NewReader(body)

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, pkgerrors.ErrSourceUnreadable.
				WithDetail("message", "Source file "+filePath+" is empty")
		}
		return nil, pkgerrors.ErrSourceUnreadable.
			WithCause(err).
			WithDetail("message", "Source file "+filePath+" is not valid CSV")
	}

	columns := make([]string, len(header))
	copy(columns, header)

	states := make([]columnState, len(columns))
	for i := range states {
		states[i].allInteger = true
		states[i].allFloat = true
	}

	rowCount := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, pkgerrors.ErrSourceUnreadable.
				WithCause(err).
				WithDetail("message", "Source file "+filePath+" is not valid CSV")
		}

		rowCount++
		for i, cell := range record {
			observe(&states[i], cell)
		}
	}

	nullCounts := make(map[string]int, len(columns))
	datatypes := make(map[string]string, len(columns))
	for i, name := range columns {
		nullCounts[name] = states[i].nullCount
		datatypes[name] = states[i].detectedType()
	}

	c.logger.DebugwCtx(ctx, "Computed metrics",
		"file_path", filePath,
		"row_count", rowCount,
		"column_count", len(columns),
	)

	return &MetricsReport{
		RowCount:        rowCount,
		ColumnCount:     len(columns),
		Columns:         columns,
		NullCounts:      nullCounts,
		DatatypeSummary: datatypes,
	}, nil
}

func observe(state *columnState, cell string) {
	if cell == "" {
		state.nullCount++
		return
	}

	state.nonEmpty = true
	if state.allInteger {
		if _, err := strconv.ParseInt(cell, 10, 64); err != nil {
			state.allInteger = false
		}
	}
	if state.allFloat {
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			state.allFloat = false
		}
	}
}

func (s *columnState) detectedType() string {
	switch {
	case !s.nonEmpty:
		return TypeText
	case s.allInteger:
		return TypeInteger
	case s.allFloat:
		return TypeFloat
	default:
		return TypeText
	}
}
