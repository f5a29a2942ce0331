package driven

import (
	"context"

	"github.com/kb-dk/ds-cumulus-export/internal/core/domain"
)

// Converter performs the variant-specific step of one field mapping.
// Converters are immutable after construction and safe for concurrent use.
type Converter interface {
	// Convert reads the record and appends zero or more values to out.
	// Transient problems (unparseable values, unreachable services) are
	// logged and yield no values. Only record errors are returned.
	Convert(ctx context.Context, rec Record, out *domain.FieldValues) error
}

// FieldMapper turns one record into its output field values.
type FieldMapper interface {
	Map(ctx context.Context, rec Record) (*domain.FieldValues, error)
}
