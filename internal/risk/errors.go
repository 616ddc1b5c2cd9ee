package risk

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoArtifact indicates no persisted pipeline exists at the configured
// path; the predictor silently serves rule-based scores in that state.
var ErrNoArtifact = errors.New("no trained model artifact")

// RowError identifies one rejected input row.
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Message string `json:"message"`
}

// DataValidationError reports rejected rows or a structurally invalid batch.
// Rows are identified individually so callers never silently drop records.
type DataValidationError struct {
	MissingColumns []string   `json:"missing_columns,omitempty"`
	Rows           []RowError `json:"rows,omitempty"`
}

func (e *DataValidationError) Error() string {
	parts := make([]string, 0, 2)
	if len(e.MissingColumns) > 0 {
		parts = append(parts, fmt.Sprintf("missing required columns: %s", strings.Join(e.MissingColumns, ", ")))
	}
	if len(e.Rows) > 0 {
		parts = append(parts, fmt.Sprintf("%d invalid rows (first: row %d column %s: %s)",
			len(e.Rows), e.Rows[0].Row, e.Rows[0].Column, e.Rows[0].Message))
	}
	if len(parts) == 0 {
		return "data validation failed"
	}
	return strings.Join(parts, "; ")
}

// ModelLoadError indicates a corrupt or schema-drifted artifact. The
// predictor treats it as non-fatal and falls back to rule scoring, but the
// cause is surfaced so the degraded mode is never silent.
type ModelLoadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("load model artifact %s: %s", e.Path, e.Reason)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

// TrainingFailure indicates the training run produced no usable model. It is
// fatal for the training call only and never disturbs a previously
// persisted artifact.
type TrainingFailure struct {
	Reason string
	Err    error
}

func (e *TrainingFailure) Error() string {
	return fmt.Sprintf("training failed: %s", e.Reason)
}

func (e *TrainingFailure) Unwrap() error { return e.Err }
