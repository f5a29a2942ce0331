// Package jsonl reads catalog records from newline-delimited JSON.
//
// Each line is one object. Scalar values become text fields, an object
// {"assetReference": "..."} becomes an asset reference and an array of
// objects becomes a rendition table with the columns "Rendition Name",
// "State" and "Asset Reference". Null values are treated as absent.
package jsonl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kb-dk/ds-cumulus-export/internal/adapters/driven/storage/memory"
	"github.com/kb-dk/ds-cumulus-export/internal/core/domain"
	"github.com/kb-dk/ds-cumulus-export/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.RecordSource = (*Source)(nil)

// AssetReferenceKey marks an object value as an asset reference.
const AssetReferenceKey = "assetReference"

// Source streams records from a reader.
type Source struct {
	dec    *json.Decoder
	closer io.Closer
	pos    int
}

// NewSource reads records from r. Close does not close r.
func NewSource(r io.Reader) *Source {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &Source{dec: dec}
}

// Open reads records from the file at path.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open records: %w", err)
	}
	s := NewSource(f)
	s.closer = f
	return s, nil
}

// Next decodes the next record. Returns io.EOF at the end of input.
func (s *Source) Next(ctx context.Context) (driven.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var raw map[string]json.RawMessage
	if err := s.dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("record %d: %w: %v", s.pos, domain.ErrInvalidInput, err)
	}
	rec, err := decodeRecord(raw)
	if err != nil {
		return nil, fmt.Errorf("record %d: %w", s.pos, err)
	}
	s.pos++
	return rec, nil
}

// Close releases the underlying file, if any.
func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

type renditionRow struct {
	Name  string    `json:"Rendition Name"`
	State cellValue `json:"State"`
	Asset string    `json:"Asset Reference"`
}

// cellValue accepts a string or a number.
type cellValue string

func (c *cellValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = cellValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = cellValue(n)
	return nil
}

func decodeRecord(raw map[string]json.RawMessage) (*memory.Record, error) {
	rec := memory.NewRecord()
	for field, value := range raw {
		value = bytes.TrimSpace(value)
		if len(value) == 0 || bytes.Equal(value, []byte("null")) {
			continue
		}
		switch value[0] {
		case '"':
			var s string
			if err := json.Unmarshal(value, &s); err != nil {
				return nil, fieldError(field, err)
			}
			rec.SetText(field, s)
		case '{':
			var ref map[string]string
			if err := json.Unmarshal(value, &ref); err != nil {
				return nil, fieldError(field, err)
			}
			display, ok := ref[AssetReferenceKey]
			if !ok {
				return nil, fieldError(field, fmt.Errorf("object without %q", AssetReferenceKey))
			}
			rec.SetAssetReference(field, display)
		case '[':
			var rows []renditionRow
			if err := json.Unmarshal(value, &rows); err != nil {
				return nil, fieldError(field, err)
			}
			for _, row := range rows {
				rec.AddRendition(field, memory.Rendition{
					Name:  row.Name,
					State: string(row.State),
					Asset: memory.AssetRef(row.Asset),
				})
			}
		default:
			// numbers and booleans keep their literal text
			rec.SetText(field, string(value))
		}
	}
	return rec, nil
}

func fieldError(field string, err error) error {
	return fmt.Errorf("field %q: %w: %v", field, domain.ErrInvalidInput, err)
}
