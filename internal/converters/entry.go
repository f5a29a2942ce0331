package converters

import (
	"context"
	"fmt"

	"github.com/kb-dk/ds-cumulus-export/internal/core/domain"
	"github.com/kb-dk/ds-cumulus-export/internal/core/ports/driven"
	"github.com/kb-dk/ds-cumulus-export/internal/logger"
)

// Ensure Entry implements the interface.
var _ driven.Converter = (*Entry)(nil)

// Entry is a built converter together with its spec.
type Entry struct {
	spec domain.ConverterSpec
	conv driven.Converter
}

// NewEntry wraps a converter that was built outside a Registry.
func NewEntry(spec domain.ConverterSpec, conv driven.Converter) *Entry {
	return &Entry{spec: spec, conv: conv}
}

// Spec returns the converter spec the entry was built from.
func (e *Entry) Spec() domain.ConverterSpec {
	return e.spec
}

// Convert runs the variant converter and then the shared policy.
func (e *Entry) Convert(ctx context.Context, rec driven.Record, out *domain.FieldValues) error {
	produced := domain.NewFieldValues()
	if err := e.conv.Convert(ctx, rec, produced); err != nil {
		return fmt.Errorf("converter %s: %w", e.spec.Name(), err)
	}
	return applyPolicy(e.spec, rec, produced, out)
}

// applyPolicy merges produced into out. When nothing was produced a required
// converter fails the record, and otherwise a configured fallback receives
// the verbatim source text.
func applyPolicy(spec domain.ConverterSpec, rec driven.Record, produced, out *domain.FieldValues) error {
	if produced.Len() > 0 {
		out.Append(produced)
		return nil
	}
	if spec.Required {
		return fmt.Errorf("converter %s: field %q: %w", spec.Name(), spec.Source, domain.ErrMissingRequired)
	}
	if spec.FallbackDest == "" {
		return nil
	}
	raw, ok := rawText(rec, spec)
	if !ok || raw == "" {
		return nil
	}
	logger.Debug("%s: using fallback %s for %q", spec.Name(), spec.FallbackDest, raw)
	out.Add(spec.FallbackDest, raw)
	return nil
}
