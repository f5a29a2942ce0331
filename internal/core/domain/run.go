package domain

import "time"

// RunSummary is the outcome of one export batch.
type RunSummary struct {
	// RunID identifies the batch in logs and in the run store.
	RunID string

	// Processed counts records handed to the field mapper.
	Processed int

	// Written counts records accepted by the writer.
	Written int

	// Skipped counts records abandoned because of a record error.
	Skipped int

	Started  time.Time
	Finished time.Time
}

// Duration returns the wall time of the run.
func (r RunSummary) Duration() time.Duration {
	if r.Finished.IsZero() {
		return 0
	}
	return r.Finished.Sub(r.Started)
}

// SkippedRecord describes a record dropped from the output.
type SkippedRecord struct {
	RunID    string
	Position int
	RecordID string
	Reason   string
}

// FieldStat counts the distinct values seen for one field.
type FieldStat struct {
	Field  string
	Total  int
	Values []ValueCount
}

// ValueCount is one value and the number of times it was seen.
type ValueCount struct {
	Value string
	Count int
}
