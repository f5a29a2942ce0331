package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/kb-dk/ds-cumulus-export/internal/core/domain"
	"github.com/kb-dk/ds-cumulus-export/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
type RunStore struct {
	mu      sync.RWMutex
	runs    map[string]domain.RunSummary
	skipped map[string][]domain.SkippedRecord
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		runs:    make(map[string]domain.RunSummary),
		skipped: make(map[string][]domain.SkippedRecord),
	}
}

// StartRun records the beginning of a run.
func (s *RunStore) StartRun(_ context.Context, run domain.RunSummary) error {
	if run.RunID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.RunID] = run
	return nil
}

// FinishRun stores the final counters of a run.
func (s *RunStore) FinishRun(_ context.Context, run domain.RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[run.RunID]; !ok {
		return domain.ErrNotFound
	}
	s.runs[run.RunID] = run
	return nil
}

// RecordSkipped stores one skipped record.
func (s *RunStore) RecordSkipped(_ context.Context, skipped domain.SkippedRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[skipped.RunID]; !ok {
		return domain.ErrNotFound
	}
	s.skipped[skipped.RunID] = append(s.skipped[skipped.RunID], skipped)
	return nil
}

// GetRun retrieves a run by ID.
func (s *RunStore) GetRun(_ context.Context, runID string) (*domain.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[runID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &run, nil
}

// ListSkipped returns the skipped records of a run in position order.
func (s *RunStore) ListSkipped(_ context.Context, runID string) ([]domain.SkippedRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SkippedRecord, len(s.skipped[runID]))
	copy(out, s.skipped[runID])
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

// ListRuns returns the most recent runs first, at most limit.
func (s *RunStore) ListRuns(_ context.Context, limit int) ([]domain.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.RunSummary, 0, len(s.runs))
	for _, run := range s.runs {
		out = append(out, run)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Started.After(out[j].Started) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
