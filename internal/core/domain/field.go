package domain

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// FieldValue is a single (field, value) pair destined for the search index.
// Both parts are always non-empty.
type FieldValue struct {
	Field string
	Value string
}

// NewFieldValue creates a FieldValue.
// It panics if field or value is empty: callers are expected to drop empty
// values before emitting them.
func NewFieldValue(field, value string) FieldValue {
	if field == "" {
		panic(fmt.Sprintf("field value with empty field name (value %q)", value))
	}
	if value == "" {
		panic(fmt.Sprintf("field value with empty value (field %q)", field))
	}
	return FieldValue{Field: field, Value: value}
}

// String returns "field=value".
func (fv FieldValue) String() string {
	return fv.Field + "=" + fv.Value
}

// FieldValues is the ordered multi-map produced for one source record.
// The same field may occur several times; insertion order is preserved.
// A FieldValues is owned by a single goroutine.
type FieldValues struct {
	values []FieldValue
}

// NewFieldValues creates an empty FieldValues.
func NewFieldValues() *FieldValues {
	return &FieldValues{}
}

// Add appends a (field, value) pair. See NewFieldValue for the contract.
func (f *FieldValues) Add(field, value string) {
	f.values = append(f.values, NewFieldValue(field, value))
}

// Append adds all pairs of other, in order.
func (f *FieldValues) Append(other *FieldValues) {
	if other == nil {
		return
	}
	f.values = append(f.values, other.values...)
}

// Len returns the number of pairs.
func (f *FieldValues) Len() int {
	return len(f.values)
}

// All returns a copy of all pairs in insertion order.
func (f *FieldValues) All() []FieldValue {
	out := make([]FieldValue, len(f.values))
	copy(out, f.values)
	return out
}

// Get returns all values for field in insertion order.
func (f *FieldValues) Get(field string) []string {
	var out []string
	for _, fv := range f.values {
		if fv.Field == field {
			out = append(out, fv.Value)
		}
	}
	return out
}

// First returns the first value for field.
func (f *FieldValues) First(field string) (string, bool) {
	for _, fv := range f.values {
		if fv.Field == field {
			return fv.Value, true
		}
	}
	return "", false
}

// Fields returns the distinct field names in order of first occurrence.
func (f *FieldValues) Fields() []string {
	seen := make(map[string]bool, len(f.values))
	var out []string
	for _, fv := range f.values {
		if !seen[fv.Field] {
			seen[fv.Field] = true
			out = append(out, fv.Field)
		}
	}
	return out
}

// String renders the pairs for diagnostics.
func (f *FieldValues) String() string {
	parts := make([]string, len(f.values))
	for i, fv := range f.values {
		parts[i] = fv.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// StaticFields holds record-independent fields such as collection and type.
// It is filled before the first record is processed and read-only afterwards.
type StaticFields struct {
	mu     sync.Mutex
	frozen atomic.Bool
	values []FieldValue
}

// Put adds a static field. Setting an existing field replaces its value
// in place. Returns ErrStaticFieldsFrozen once Freeze has been called.
func (s *StaticFields) Put(field, value string) error {
	if field == "" || value == "" {
		return fmt.Errorf("static field %q=%q: %w", field, value, ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen.Load() {
		return fmt.Errorf("static field %q: %w", field, ErrStaticFieldsFrozen)
	}
	for i := range s.values {
		if s.values[i].Field == field {
			s.values[i].Value = value
			return nil
		}
	}
	s.values = append(s.values, NewFieldValue(field, value))
	return nil
}

// Freeze makes the table read-only. It is idempotent.
func (s *StaticFields) Freeze() {
	if s.frozen.Load() {
		return
	}
	s.mu.Lock()
	s.frozen.Store(true)
	s.mu.Unlock()
}

// AppendTo adds every static field to out. Only valid after Freeze.
func (s *StaticFields) AppendTo(out *FieldValues) {
	out.values = append(out.values, s.values...)
}

// Len returns the number of static fields.
func (s *StaticFields) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values)
}
