package services

import (
	"context"

	"github.com/kb-dk/ds-cumulus-export/internal/core/domain"
	"github.com/kb-dk/ds-cumulus-export/internal/core/ports/driven"
	"github.com/kb-dk/ds-cumulus-export/internal/logger"
)

// Ensure FieldMapper implements the interface.
var _ driven.FieldMapper = (*FieldMapper)(nil)

// FieldMapper runs every converter of a mapping over a record, in order,
// and appends the static fields.
//
// Static fields must be set before the first call to Map. The mapper is
// safe for concurrent use once mapping has started.
type FieldMapper struct {
	converters []driven.Converter
	static     domain.StaticFields
}

// NewFieldMapper creates a mapper over converters.
func NewFieldMapper(converters ...driven.Converter) *FieldMapper {
	return &FieldMapper{converters: converters}
}

// PutStatic sets a field emitted on every document. It fails once mapping
// has started.
func (m *FieldMapper) PutStatic(field, value string) error {
	return m.static.Put(field, value)
}

// Len returns the number of converters.
func (m *FieldMapper) Len() int {
	return len(m.converters)
}

// Map converts one record. A record error abandons the record; the error
// is logged with the record identifier and returned.
func (m *FieldMapper) Map(ctx context.Context, rec driven.Record) (*domain.FieldValues, error) {
	m.static.Freeze()

	out := domain.NewFieldValues()
	for _, c := range m.converters {
		if err := c.Convert(ctx, rec, out); err != nil {
			logger.WithRecord(rec.ID()).
				WithField("extracted", out.String()).
				Warnf("skipping record: %v", err)
			return nil, err
		}
	}
	m.static.AppendTo(out)

	logger.Debug("mapped record %q: %s", rec.ID(), out)
	return out, nil
}
