package converters

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kb-dk/ds-cumulus-export/internal/core/domain"
	"github.com/kb-dk/ds-cumulus-export/internal/core/ports/driven"
	"github.com/kb-dk/ds-cumulus-export/internal/logger"
)

// numericConverter emits the decimal form of a numeric field.
//
// With a numeric source kind the record's typed accessor is used and a
// malformed value fails the record. With sourceType string the text is
// parsed leniently and a malformed value is simply not emitted.
type numericConverter struct {
	spec    domain.ConverterSpec
	kind    domain.SourceKind
	bitSize int
}

func buildNumeric(kind domain.SourceKind, bitSize int) BuilderFunc {
	return func(spec domain.ConverterSpec) (driven.Converter, error) {
		switch spec.SourceKindOr(kind) {
		case domain.SourceInteger, domain.SourceLong, domain.SourceString:
		default:
			return nil, fmt.Errorf("numeric converter cannot read source type %q: %w", spec.SourceType, domain.ErrUnsupportedType)
		}
		return &numericConverter{spec: spec, kind: kind, bitSize: bitSize}, nil
	}
}

func (c *numericConverter) Convert(_ context.Context, rec driven.Record, out *domain.FieldValues) error {
	if c.spec.SourceKindOr(c.kind) != domain.SourceString {
		v, ok, err := readSource(rec, c.spec, c.kind)
		if err != nil {
			return err
		}
		if ok {
			out.Add(c.spec.Dest, v)
		}
		return nil
	}

	text, ok := rec.Text(c.spec.Source)
	if !ok {
		return nil
	}
	for _, line := range splitLines(text, c.spec.LineBreakIsMulti) {
		n, err := strconv.ParseInt(strings.TrimSpace(line), 10, c.bitSize)
		if err != nil {
			logger.Debug("%s: %q is not a %d-bit integer", c.spec.Name(), line, c.bitSize)
			continue
		}
		out.Add(c.spec.Dest, strconv.FormatInt(n, 10))
	}
	return nil
}
