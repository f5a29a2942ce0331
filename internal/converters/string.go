package converters

import (
	"context"

	"github.com/kb-dk/ds-cumulus-export/internal/core/domain"
	"github.com/kb-dk/ds-cumulus-export/internal/core/ports/driven"
	"github.com/kb-dk/ds-cumulus-export/internal/logger"
)

// stringConverter copies the source text, optionally rewritten by pattern.
// Values that do not match the pattern are dropped.
type stringConverter struct {
	spec    domain.ConverterSpec
	rewrite *rewrite
}

func newStringConverter(spec domain.ConverterSpec) (*stringConverter, error) {
	rw, err := compileRewrite(spec.Pattern, spec.Replacement, "pattern")
	if err != nil {
		return nil, err
	}
	return &stringConverter{spec: spec, rewrite: rw}, nil
}

func buildString(spec domain.ConverterSpec) (driven.Converter, error) {
	return newStringConverter(spec)
}

func (c *stringConverter) Convert(_ context.Context, rec driven.Record, out *domain.FieldValues) error {
	values, err := sourceValues(rec, c.spec, domain.SourceString)
	if err != nil {
		return err
	}
	for _, v := range values {
		if res, ok := c.candidate(v); ok {
			out.Add(c.spec.Dest, res)
		}
	}
	return nil
}

// candidate applies the rewrite step shared by the url and external variants.
func (c *stringConverter) candidate(value string) (string, bool) {
	res, ok := c.rewrite.Apply(value)
	if !ok {
		logger.Debug("%s: %q does not match %q", c.spec.Name(), value, c.spec.Pattern)
		return "", false
	}
	return res, res != ""
}
