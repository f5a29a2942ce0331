package driven

import (
	"context"

	"github.com/kb-dk/ds-cumulus-export/internal/core/domain"
)

// DocumentWriter serialises the output of the field mapper into a
// search-engine specific format. Write is called sequentially in record order.
type DocumentWriter interface {
	Write(ctx context.Context, doc *domain.FieldValues) error

	// Close flushes pending output.
	Close(ctx context.Context) error
}
