package memory

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kb-dk/ds-cumulus-export/internal/core/domain"
	"github.com/kb-dk/ds-cumulus-export/internal/core/ports/driven"
)

// Ensure Record and Source implement the interfaces.
var (
	_ driven.Record       = (*Record)(nil)
	_ driven.RecordSource = (*Source)(nil)
)

// Rendition table column names, as exported from the catalog.
const (
	RenditionNameColumn  = "Rendition Name"
	RenditionStateColumn = "State"
	RenditionAssetColumn = "Asset Reference"
)

// AssetRef is an asset reference identified by its display string.
type AssetRef string

// DisplayString returns the reference text.
func (a AssetRef) DisplayString() string {
	return string(a)
}

// Rendition is one row of a rendition table.
type Rendition struct {
	Name  string
	State string
	Asset AssetRef
}

// Record is a map-backed catalog record.
// Setters must not be called once the record is shared between goroutines.
type Record struct {
	id         string
	text       map[string]string
	refs       map[string]AssetRef
	renditions map[string][]Rendition
}

// NewRecord creates a record from alternating field names and text values.
// It panics on an odd number of arguments.
func NewRecord(kv ...string) *Record {
	if len(kv)%2 != 0 {
		panic("memory.NewRecord: odd number of arguments")
	}
	r := &Record{
		text:       make(map[string]string),
		refs:       make(map[string]AssetRef),
		renditions: make(map[string][]Rendition),
	}
	for i := 0; i < len(kv); i += 2 {
		r.text[kv[i]] = kv[i+1]
	}
	return r
}

// WithID sets the diagnostic identifier.
func (r *Record) WithID(id string) *Record {
	r.id = id
	return r
}

// SetText stores a text field.
func (r *Record) SetText(field, value string) *Record {
	r.text[field] = value
	return r
}

// SetAssetReference stores an asset reference field.
func (r *Record) SetAssetReference(field, display string) *Record {
	r.refs[field] = AssetRef(display)
	return r
}

// AddRendition appends a row to the rendition table in field.
func (r *Record) AddRendition(field string, row Rendition) *Record {
	r.renditions[field] = append(r.renditions[field], row)
	return r
}

// ID returns the identifier set with WithID, or the "id" field.
func (r *Record) ID() string {
	if r.id != "" {
		return r.id
	}
	return r.text["id"]
}

// Text returns a text field, falling back to the display string of an
// asset reference stored under the same name.
func (r *Record) Text(field string) (string, bool) {
	if v, ok := r.text[field]; ok {
		return v, true
	}
	if ref, ok := r.refs[field]; ok {
		return ref.DisplayString(), true
	}
	return "", false
}

// Integer parses a text field as a 32-bit integer.
func (r *Record) Integer(field string) (int32, bool, error) {
	v, ok := r.text[field]
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 32)
	if err != nil {
		return 0, false, fmt.Errorf("field %q value %q: %w", field, v, domain.ErrInvalidValue)
	}
	return int32(n), true, nil
}

// Long parses a text field as a 64-bit integer.
func (r *Record) Long(field string) (int64, bool, error) {
	v, ok := r.text[field]
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("field %q value %q: %w", field, v, domain.ErrInvalidValue)
	}
	return n, true, nil
}

// AssetReference returns an asset reference field.
func (r *Record) AssetReference(field string) (driven.AssetReference, bool) {
	ref, ok := r.refs[field]
	if !ok || ref == "" {
		return nil, false
	}
	return ref, true
}

// FindRendition returns the asset of the single row matching criteria.
// No match, several matches or an empty asset all count as absent.
func (r *Record) FindRendition(field string, criteria domain.RenditionCriteria) (driven.AssetReference, bool) {
	var found []Rendition
	for _, row := range r.renditions[field] {
		if row.Name == criteria.Name && row.State == criteria.State {
			found = append(found, row)
		}
	}
	if len(found) != 1 || found[0].Asset == "" {
		return nil, false
	}
	return found[0].Asset, true
}

// Source replays a fixed list of records.
type Source struct {
	records []driven.Record
	pos     int
	closed  bool
}

// NewSource creates a source over records.
func NewSource(records ...driven.Record) *Source {
	return &Source{records: records}
}

// Next returns the next record or io.EOF.
func (s *Source) Next(ctx context.Context) (driven.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.closed || s.pos >= len(s.records) {
		return nil, io.EOF
	}
	rec := s.records[s.pos]
	s.pos++
	return rec, nil
}

// Close marks the source as exhausted.
func (s *Source) Close() error {
	s.closed = true
	return nil
}
