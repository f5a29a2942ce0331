package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kb-dk/ds-cumulus-export/internal/core/domain"
	"github.com/kb-dk/ds-cumulus-export/internal/core/ports/driven"
	"github.com/kb-dk/ds-cumulus-export/internal/core/ports/driving"
	"github.com/kb-dk/ds-cumulus-export/internal/logger"
)

// Ensure Exporter implements the interface.
var _ driving.ExportService = (*Exporter)(nil)

// ProgressFunc receives the running counters after each record.
type ProgressFunc func(run domain.RunSummary)

// Exporter maps records on a bounded worker pool and writes them back in
// source order.
type Exporter struct {
	mapper     driven.FieldMapper
	runs       driven.RunStore
	metrics    driven.ExportMetrics
	progress   ProgressFunc
	workers    int
	maxRecords int
	now        func() time.Time
	newID      func() string
}

// ExporterOption configures an Exporter.
type ExporterOption func(*Exporter)

// WithWorkers sets the number of records mapped concurrently.
func WithWorkers(n int) ExporterOption {
	return func(e *Exporter) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithMaxRecords limits the batch. Negative means all records.
func WithMaxRecords(n int) ExporterOption {
	return func(e *Exporter) {
		e.maxRecords = n
	}
}

// WithRunStore journals runs and skipped records.
func WithRunStore(store driven.RunStore) ExporterOption {
	return func(e *Exporter) {
		e.runs = store
	}
}

// WithMetrics reports progress to metrics.
func WithMetrics(m driven.ExportMetrics) ExporterOption {
	return func(e *Exporter) {
		e.metrics = m
	}
}

// WithProgress reports running counters after each record.
func WithProgress(fn ProgressFunc) ExporterOption {
	return func(e *Exporter) {
		e.progress = fn
	}
}

// NewExporter creates an exporter over mapper.
func NewExporter(mapper driven.FieldMapper, opts ...ExporterOption) *Exporter {
	e := &Exporter{
		mapper:     mapper,
		workers:    1,
		maxRecords: -1,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type mapJob struct {
	pos int
	rec driven.Record
}

type mapResult struct {
	pos      int
	recordID string
	doc      *domain.FieldValues
	err      error
}

// Run exports source to writer. Records are mapped concurrently and written
// strictly in source order. Record errors skip the record; read, write and
// other mapping errors abort the run.
func (e *Exporter) Run(ctx context.Context, source driven.RecordSource, writer driven.DocumentWriter) (*domain.RunSummary, error) {
	run := domain.RunSummary{RunID: e.newID(), Started: e.now()}
	log := logger.WithRun(run.RunID)

	if e.runs != nil {
		if err := e.runs.StartRun(ctx, run); err != nil {
			return nil, fmt.Errorf("start run: %w", err)
		}
	}
	logger.Section("Export " + run.RunID)

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan mapJob, e.workers)
	results := make(chan mapResult, e.workers)

	g.Go(func() error {
		defer close(jobs)
		return e.read(gctx, source, jobs)
	})

	var wg sync.WaitGroup
	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			return e.mapRecords(gctx, jobs, results)
		})
	}
	g.Go(func() error {
		wg.Wait()
		close(results)
		return nil
	})

	g.Go(func() error {
		return e.writeInOrder(gctx, writer, results, &run)
	})

	err := g.Wait()
	run.Finished = e.now()

	if e.runs != nil {
		if ferr := e.runs.FinishRun(context.WithoutCancel(ctx), run); ferr != nil {
			log.WithError(ferr).Warn("unable to journal run")
		}
	}
	if e.metrics != nil {
		e.metrics.RunFinished(run)
	}
	if err != nil {
		return &run, err
	}

	log.WithField("processed", run.Processed).
		WithField("written", run.Written).
		WithField("skipped", run.Skipped).
		Infof("export finished in %s", run.Duration())
	return &run, nil
}

func (e *Exporter) read(ctx context.Context, source driven.RecordSource, jobs chan<- mapJob) error {
	for pos := 0; e.maxRecords < 0 || pos < e.maxRecords; pos++ {
		rec, err := source.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading record %d: %w", pos, err)
		}
		select {
		case jobs <- mapJob{pos: pos, rec: rec}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (e *Exporter) mapRecords(ctx context.Context, jobs <-chan mapJob, results chan<- mapResult) error {
	for job := range jobs {
		start := time.Now()
		doc, err := e.mapper.Map(ctx, job.rec)
		if e.metrics != nil {
			e.metrics.RecordMapped(time.Since(start))
		}
		if err != nil && !domain.IsRecordError(err) {
			return fmt.Errorf("mapping record %d: %w", job.pos, err)
		}
		select {
		case results <- mapResult{pos: job.pos, recordID: job.rec.ID(), doc: doc, err: err}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// writeInOrder buffers out-of-order results until their predecessors
// have been written.
func (e *Exporter) writeInOrder(ctx context.Context, writer driven.DocumentWriter, results <-chan mapResult, run *domain.RunSummary) error {
	pending := make(map[int]mapResult)
	next := 0
	for res := range results {
		pending[res.pos] = res
		for {
			cur, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			if err := e.emit(ctx, writer, cur, run); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Exporter) emit(ctx context.Context, writer driven.DocumentWriter, res mapResult, run *domain.RunSummary) error {
	run.Processed++
	defer func() {
		if e.progress != nil {
			e.progress(*run)
		}
	}()

	if res.err != nil {
		run.Skipped++
		if e.metrics != nil {
			e.metrics.RecordSkipped()
		}
		if e.runs != nil {
			skipped := domain.SkippedRecord{
				RunID:    run.RunID,
				Position: res.pos,
				RecordID: res.recordID,
				Reason:   res.err.Error(),
			}
			if err := e.runs.RecordSkipped(ctx, skipped); err != nil {
				logger.WithRun(run.RunID).WithError(err).Warn("unable to journal skipped record")
			}
		}
		return nil
	}

	if err := writer.Write(ctx, res.doc); err != nil {
		return fmt.Errorf("writing record %d: %w", res.pos, err)
	}
	run.Written++
	if e.metrics != nil {
		e.metrics.RecordWritten()
	}
	return nil
}
