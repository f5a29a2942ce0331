package converters

import (
	"github.com/kb-dk/ds-cumulus-export/internal/core/domain"
	"github.com/kb-dk/ds-cumulus-export/internal/core/ports/driven"
	"github.com/kb-dk/ds-cumulus-export/internal/datetime"
)

// Destination type tags of the built-in converters.
const (
	TagString        = "string"
	TagVerbatim      = "verbatim"
	TagPattern       = "pattern"
	TagDatetime      = "datetime"
	TagDatetimeRange = "datetimeRange"
	TagInteger       = "integer"
	TagLong          = "long"
	TagURL           = "url"
	TagExternal      = "external"
)

// Dependencies are the collaborators of the built-in converters.
type Dependencies struct {
	// Dates normalises datetime and datetimeRange values. Nil means
	// datetime.Default().
	Dates *datetime.Normalizer

	// Web serves url verification and external lookups. Converters that
	// need it fail to build when it is nil.
	Web driven.WebClient
}

// RegisterDefaults registers all built-in converters with the registry.
func RegisterDefaults(r *Registry, deps Dependencies) error {
	dates := deps.Dates
	if dates == nil {
		dates = datetime.Default()
	}

	builders := []struct {
		tag     string
		builder BuilderFunc
	}{
		{TagString, buildString},
		{TagVerbatim, buildString},
		{TagPattern, buildString},
		{TagDatetime, buildDatetime(dates)},
		{TagDatetimeRange, buildDatetimeRange(dates)},
		{TagInteger, buildNumeric(domain.SourceInteger, 32)},
		{TagLong, buildNumeric(domain.SourceLong, 64)},
		{TagURL, buildURL(deps.Web)},
		{TagExternal, buildExternal(deps.Web)},
	}
	for _, b := range builders {
		if err := r.Register(b.tag, b.builder); err != nil {
			return err
		}
	}
	return nil
}

// NewDefaultRegistry creates a registry holding the built-in converters.
func NewDefaultRegistry(deps Dependencies) (*Registry, error) {
	r := NewRegistry()
	if err := RegisterDefaults(r, deps); err != nil {
		return nil, err
	}
	return r, nil
}
