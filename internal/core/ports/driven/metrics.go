package driven

import (
	"time"

	"github.com/kb-dk/ds-cumulus-export/internal/core/domain"
)

// ExportMetrics observes the progress of export runs.
type ExportMetrics interface {
	// RecordMapped observes the time spent mapping one record.
	RecordMapped(d time.Duration)

	// RecordWritten counts a document accepted by the writer.
	RecordWritten()

	// RecordSkipped counts a record dropped because of a record error.
	RecordSkipped()

	// RunFinished observes a completed run.
	RunFinished(run domain.RunSummary)
}
