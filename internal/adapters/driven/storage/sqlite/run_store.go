package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kb-dk/ds-cumulus-export/internal/core/domain"
	"github.com/kb-dk/ds-cumulus-export/internal/core/ports/driven"
)

// timeLayout sorts lexically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

// StartRun records the beginning of a run.
func (s *runStore) StartRun(ctx context.Context, run domain.RunSummary) error {
	if run.RunID == "" {
		return domain.ErrInvalidInput
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO runs (id, processed, written, skipped, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.RunID, run.Processed, run.Written, run.Skipped,
		formatTime(run.Started), formatNullableTime(run.Finished))
	if err != nil {
		return fmt.Errorf("starting run: %w", err)
	}
	return nil
}

// FinishRun stores the final counters of a run.
func (s *runStore) FinishRun(ctx context.Context, run domain.RunSummary) error {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE runs SET processed = ?, written = ?, skipped = ?, finished_at = ?
		WHERE id = ?
	`, run.Processed, run.Written, run.Skipped, formatNullableTime(run.Finished), run.RunID)
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// RecordSkipped stores one skipped record.
func (s *runStore) RecordSkipped(ctx context.Context, skipped domain.SkippedRecord) error {
	var exists int
	err := s.store.db.QueryRowContext(ctx, "SELECT 1 FROM runs WHERE id = ?", skipped.RunID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("looking up run: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO skipped_records (run_id, position, record_id, reason)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id, position) DO UPDATE SET
			record_id = excluded.record_id,
			reason = excluded.reason
	`, skipped.RunID, skipped.Position, nullString(skipped.RecordID), skipped.Reason)
	if err != nil {
		return fmt.Errorf("recording skipped record: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *runStore) GetRun(ctx context.Context, runID string) (*domain.RunSummary, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, processed, written, skipped, started_at, finished_at
		FROM runs WHERE id = ?
	`, runID)
	return scanRun(row)
}

// ListSkipped returns the skipped records of a run in position order.
func (s *runStore) ListSkipped(ctx context.Context, runID string) ([]domain.SkippedRecord, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT run_id, position, record_id, reason
		FROM skipped_records
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying skipped records: %w", err)
	}
	defer rows.Close()

	out := []domain.SkippedRecord{}
	for rows.Next() {
		var rec domain.SkippedRecord
		var recordID sql.NullString
		if err := rows.Scan(&rec.RunID, &rec.Position, &recordID, &rec.Reason); err != nil {
			return nil, fmt.Errorf("scanning skipped record: %w", err)
		}
		rec.RecordID = recordID.String
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating skipped records: %w", err)
	}
	return out, nil
}

// ListRuns returns the most recent runs first. A limit of zero or less
// returns every run.
func (s *runStore) ListRuns(ctx context.Context, limit int) ([]domain.RunSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, processed, written, skipped, started_at, finished_at
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.RunSummary //nolint:prealloc // size unknown from query
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// ==================== Helper Functions ====================

type scanner interface {
	Scan(dest ...any) error
}

// scanRun scans a run from *sql.Row or *sql.Rows.
func scanRun(row scanner) (*domain.RunSummary, error) {
	var run domain.RunSummary
	var started string
	var finished sql.NullString

	if err := row.Scan(&run.RunID, &run.Processed, &run.Written, &run.Skipped, &started, &finished); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	var err error
	if run.Started, err = time.Parse(timeLayout, started); err != nil {
		return nil, fmt.Errorf("parsing start time of run %s: %w", run.RunID, err)
	}
	run.Finished = parseNullableTime(finished)
	return &run, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatNullableTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(t), Valid: true}
}

func parseNullableTime(s sql.NullString) time.Time {
	if !s.Valid {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
