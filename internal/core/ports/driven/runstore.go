package driven

import (
	"context"

	"github.com/kb-dk/ds-cumulus-export/internal/core/domain"
)

// RunStore journals export runs.
type RunStore interface {
	// StartRun records the beginning of a run.
	StartRun(ctx context.Context, run domain.RunSummary) error

	// FinishRun stores the final counters of a run.
	FinishRun(ctx context.Context, run domain.RunSummary) error

	// RecordSkipped stores one skipped record.
	RecordSkipped(ctx context.Context, skipped domain.SkippedRecord) error

	// GetRun retrieves a run by ID. Returns domain.ErrNotFound if absent.
	GetRun(ctx context.Context, runID string) (*domain.RunSummary, error)

	// ListSkipped returns the skipped records of a run in position order.
	ListSkipped(ctx context.Context, runID string) ([]domain.SkippedRecord, error)

	// ListRuns returns the most recent runs first, at most limit.
	ListRuns(ctx context.Context, limit int) ([]domain.RunSummary, error)
}
