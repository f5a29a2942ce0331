package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/kb-dk/ds-cumulus-export/internal/core/domain"
	"github.com/kb-dk/ds-cumulus-export/internal/core/ports/driven"
	"github.com/kb-dk/ds-cumulus-export/internal/core/ports/driving"
)

// Ensure StatsCollector implements the interface.
var _ driving.StatsService = (*StatsCollector)(nil)

// DefaultTopValues is the number of values reported per field.
const DefaultTopValues = 10

// StatsCollector counts the values a mapping produces, per output field.
type StatsCollector struct {
	mapper driven.FieldMapper
	top    int
}

// NewStatsCollector creates a collector reporting at most top values per
// field. top <= 0 selects DefaultTopValues.
func NewStatsCollector(mapper driven.FieldMapper, top int) *StatsCollector {
	if top <= 0 {
		top = DefaultTopValues
	}
	return &StatsCollector{mapper: mapper, top: top}
}

// Collect maps every record of source and returns one FieldStat per output
// field, ordered by field name. Skipped records are not counted.
func (s *StatsCollector) Collect(ctx context.Context, source driven.RecordSource) ([]domain.FieldStat, error) {
	counts := make(map[string]map[string]int)
	totals := make(map[string]int)

	for {
		rec, err := source.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading record: %w", err)
		}
		doc, err := s.mapper.Map(ctx, rec)
		if err != nil {
			if domain.IsRecordError(err) {
				continue
			}
			return nil, err
		}
		for _, fv := range doc.All() {
			if counts[fv.Field] == nil {
				counts[fv.Field] = make(map[string]int)
			}
			counts[fv.Field][fv.Value]++
			totals[fv.Field]++
		}
	}

	stats := make([]domain.FieldStat, 0, len(counts))
	for field, values := range counts {
		stats = append(stats, domain.FieldStat{
			Field:  field,
			Total:  totals[field],
			Values: topValues(values, s.top),
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Field < stats[j].Field })
	return stats, nil
}

// topValues orders by descending count, then by value.
func topValues(values map[string]int, top int) []domain.ValueCount {
	out := make([]domain.ValueCount, 0, len(values))
	for v, c := range values {
		out = append(out, domain.ValueCount{Value: v, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if len(out) > top {
		out = out[:top]
	}
	return out
}
