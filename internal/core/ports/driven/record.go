package driven

import (
	"context"

	"github.com/kb-dk/ds-cumulus-export/internal/core/domain"
)

// AssetReference is an indirect handle to a file or rendition.
type AssetReference interface {
	// DisplayString returns the canonical text form of the reference,
	// typically a server-qualified path.
	DisplayString() string
}

// Record is one catalog record. Implementations must be safe for concurrent
// reads because several converters may read the same record.
type Record interface {
	// ID identifies the record in diagnostics. May be empty.
	ID() string

	// Text returns the field as text, whatever its stored type.
	Text(field string) (string, bool)

	// Integer returns the field through the 32-bit numeric accessor.
	// A present value that is not a valid integer yields an error
	// wrapping domain.ErrInvalidValue.
	Integer(field string) (int32, bool, error)

	// Long returns the field through the 64-bit numeric accessor.
	Long(field string) (int64, bool, error)

	// AssetReference returns the asset reference stored in field.
	AssetReference(field string) (AssetReference, bool)

	// FindRendition scans the rendition table stored in field and returns
	// the asset reference of the single row matching criteria.
	FindRendition(field string, criteria domain.RenditionCriteria) (AssetReference, bool)
}

// RecordSource iterates the records of a catalog.
type RecordSource interface {
	// Next returns the next record, or io.EOF when exhausted.
	Next(ctx context.Context) (Record, error)

	// Close releases the source.
	Close() error
}
