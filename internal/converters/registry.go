// Package converters builds the field converters of a mapping and applies
// the shared required and fallback policy around them.
package converters

import (
	"fmt"
	"sort"

	"github.com/kb-dk/ds-cumulus-export/internal/core/domain"
	"github.com/kb-dk/ds-cumulus-export/internal/core/ports/driven"
)

// BuilderFunc creates the variant-specific converter for a spec.
// Malformed specs must be rejected here, not on first use.
type BuilderFunc func(spec domain.ConverterSpec) (driven.Converter, error)

// Registry maps destination type tags to their builders.
// Populate it at startup; it is not safe for concurrent registration.
type Registry struct {
	builders map[string]BuilderFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]BuilderFunc),
	}
}

// Register adds a builder for tag. Registering a tag twice is an error.
func (r *Registry) Register(tag string, builder BuilderFunc) error {
	if tag == "" || builder == nil {
		return fmt.Errorf("register converter %q: %w", tag, domain.ErrInvalidInput)
	}
	if _, ok := r.builders[tag]; ok {
		return fmt.Errorf("converter for destination type %q: %w", tag, domain.ErrAlreadyRegistered)
	}
	r.builders[tag] = builder
	return nil
}

// Build validates spec and creates its converter wrapped in the shared policy.
func (r *Registry) Build(spec domain.ConverterSpec) (*Entry, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	builder, ok := r.builders[spec.DestType]
	if !ok {
		return nil, fmt.Errorf("converter %s: destination type %q: %w", spec.Name(), spec.DestType, domain.ErrUnsupportedType)
	}
	conv, err := builder(spec)
	if err != nil {
		return nil, fmt.Errorf("converter %s: %w", spec.Name(), err)
	}
	return &Entry{spec: spec, conv: conv}, nil
}

// BuildAll creates one entry per spec, in order. Any failure discards all
// entries built so far.
func (r *Registry) BuildAll(specs []domain.ConverterSpec) ([]*Entry, error) {
	entries := make([]*Entry, 0, len(specs))
	for i, spec := range specs {
		entry, err := r.Build(spec)
		if err != nil {
			return nil, fmt.Errorf("mapping entry %d: %w", i+1, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Has returns true if a builder is registered for tag.
func (r *Registry) Has(tag string) bool {
	_, ok := r.builders[tag]
	return ok
}

// Names returns the registered tags in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
