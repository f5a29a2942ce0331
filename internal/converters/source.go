package converters

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/kb-dk/ds-cumulus-export/internal/core/domain"
	"github.com/kb-dk/ds-cumulus-export/internal/core/ports/driven"
)

var lineBreak = regexp.MustCompile(`\r?\n`)

// readSource extracts the source field through the accessor selected by
// sourceType, using def when the mapping entry names no source kind.
func readSource(rec driven.Record, spec domain.ConverterSpec, def domain.SourceKind) (string, bool, error) {
	switch spec.SourceKindOr(def) {
	case domain.SourceAssetReference:
		ref, ok := rec.AssetReference(spec.Source)
		if !ok || ref == nil {
			return "", false, nil
		}
		return ref.DisplayString(), true, nil
	case domain.SourceRendition:
		ref, ok := rec.FindRendition(spec.Source, spec.Rendition())
		if !ok || ref == nil {
			return "", false, nil
		}
		return ref.DisplayString(), true, nil
	case domain.SourceInteger:
		n, ok, err := rec.Integer(spec.Source)
		if err != nil || !ok {
			return "", false, err
		}
		return strconv.FormatInt(int64(n), 10), true, nil
	case domain.SourceLong:
		n, ok, err := rec.Long(spec.Source)
		if err != nil || !ok {
			return "", false, err
		}
		return strconv.FormatInt(n, 10), true, nil
	case domain.SourceString:
		v, ok := rec.Text(spec.Source)
		return v, ok, nil
	default:
		return "", false, fmt.Errorf("source type %q: %w", spec.SourceType, domain.ErrUnsupportedType)
	}
}

// rawText is the verbatim source text used by the fallback policy.
// Numeric fields are read as text so that malformed numbers reach the
// fallback field unchanged.
func rawText(rec driven.Record, spec domain.ConverterSpec) (string, bool) {
	switch spec.SourceType {
	case domain.SourceAssetReference, domain.SourceRendition:
		v, ok, _ := readSource(rec, spec, domain.SourceString)
		return v, ok
	default:
		return rec.Text(spec.Source)
	}
}

// sourceValues reads the source field and splits it into the values to
// convert: one per non-empty line when lineBreakIsMulti is set.
func sourceValues(rec driven.Record, spec domain.ConverterSpec, def domain.SourceKind) ([]string, error) {
	raw, ok, err := readSource(rec, spec, def)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return nil, nil
	}
	return splitLines(raw, spec.LineBreakIsMulti), nil
}

func splitLines(value string, multi bool) []string {
	if !multi {
		return []string{value}
	}
	lines := lineBreak.Split(value, -1)
	out := lines[:0]
	for _, line := range lines {
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
