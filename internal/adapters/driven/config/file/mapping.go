package file

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/kb-dk/ds-cumulus-export/internal/core/domain"
)

// MappingDocument is a parsed mapping file:
//
//	maps:
//	  default:
//	    converters:
//	      - source: Titel
//	        dest: title
//	        destType: string
type MappingDocument struct {
	Maps map[string]Mapping `yaml:"maps" validate:"required,min=1,dive"`
}

// Mapping is one named, ordered list of converter specs.
type Mapping struct {
	Converters []domain.ConverterSpec `yaml:"converters" validate:"required,min=1,dive"`
}

var mappingValidator = newMappingValidator()

func newMappingValidator() *validator.Validate {
	v := validator.New()

	// Report yaml keys rather than Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// LoadMapping reads the mapping file at path and returns the converter
// specs of the named map.
func LoadMapping(path, name string) ([]domain.ConverterSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening mapping: %w", err)
	}
	defer f.Close()

	doc, err := ParseMapping(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc.Specs(name)
}

// ParseMapping decodes and validates a mapping document. Unknown keys are
// rejected so that misspelled options do not go unnoticed.
func ParseMapping(r io.Reader) (*MappingDocument, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc MappingDocument
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty mapping document: %w", domain.ErrInvalidConfig)
		}
		return nil, fmt.Errorf("decoding mapping: %v: %w", err, domain.ErrInvalidConfig)
	}
	if err := validateMapping(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Names returns the map names in sorted order.
func (d *MappingDocument) Names() []string {
	names := make([]string, 0, len(d.Maps))
	for name := range d.Maps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Specs returns the converter specs of the named map.
func (d *MappingDocument) Specs(name string) ([]domain.ConverterSpec, error) {
	m, ok := d.Maps[name]
	if !ok {
		return nil, fmt.Errorf("map %q (have %s): %w", name, strings.Join(d.Names(), ", "), domain.ErrNotFound)
	}
	return m.Converters, nil
}

func validateMapping(doc *MappingDocument) error {
	err := mappingValidator.Struct(doc)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating mapping: %v: %w", err, domain.ErrInvalidConfig)
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, fmt.Sprintf("%s: %s", trimNamespace(fe.Namespace()), describe(fe)))
	}
	return fmt.Errorf("invalid mapping: %s: %w", strings.Join(problems, "; "), domain.ErrInvalidConfig)
}

// trimNamespace drops the root type name from a validator namespace.
func trimNamespace(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("needs at least %s entries", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
