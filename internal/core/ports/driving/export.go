package driving

import (
	"context"

	"github.com/kb-dk/ds-cumulus-export/internal/core/domain"
	"github.com/kb-dk/ds-cumulus-export/internal/core/ports/driven"
)

// ExportService maps a stream of records and writes the resulting documents.
type ExportService interface {
	// Run exports every record of source to writer in source order.
	// Records failing with a record error are skipped and counted. The
	// writer is not closed.
	Run(ctx context.Context, source driven.RecordSource, writer driven.DocumentWriter) (*domain.RunSummary, error)
}

// StatsService summarises the values a mapping produces.
type StatsService interface {
	// Collect maps every record of source and counts the values per field.
	Collect(ctx context.Context, source driven.RecordSource) ([]domain.FieldStat, error)
}
