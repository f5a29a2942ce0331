package domain

import "fmt"

// SourceKind selects how a converter reads its source field from a record.
type SourceKind string

const (
	// SourceString reads the field as text, whatever its stored type.
	SourceString SourceKind = "string"

	// SourceAssetReference reads the display text of an asset reference field.
	SourceAssetReference SourceKind = "assetReference"

	// SourceRendition scans a rendition table for the finished rendition of a
	// given name and reads the display text of its asset reference.
	SourceRendition SourceKind = "rendition"

	// SourceInteger reads the field through the 32-bit numeric accessor.
	SourceInteger SourceKind = "integer"

	// SourceLong reads the field through the 64-bit numeric accessor.
	SourceLong SourceKind = "long"
)

// Rendition lookup defaults.
const (
	DefaultRenditionName  = "JPEG2000"
	DefaultRenditionState = "3"
)

// Valid reports whether k is a known source kind. The empty kind is valid
// and means "the converter's default".
func (k SourceKind) Valid() bool {
	switch k {
	case "", SourceString, SourceAssetReference, SourceRendition, SourceInteger, SourceLong:
		return true
	default:
		return false
	}
}

// ConverterSpec is one entry of a mapping configuration.
// It is decoded from the mapping document and turned into a converter by the
// converter registry, which dispatches on DestType.
type ConverterSpec struct {
	// Source is the record field to read.
	Source string `yaml:"source" validate:"required"`

	// SourceType selects the record accessor. Empty means the converter default.
	SourceType SourceKind `yaml:"sourceType,omitempty" validate:"omitempty,oneof=string assetReference rendition integer long"`

	// Dest is the output field.
	Dest string `yaml:"dest" validate:"required"`

	// FallbackDest receives the verbatim source text when conversion yields nothing.
	FallbackDest string `yaml:"fallbackDest,omitempty"`

	// DestType selects the converter variant (verbatim, datetime, url, ...).
	DestType string `yaml:"destType" validate:"required"`

	// Required fails the whole record when conversion yields nothing.
	Required bool `yaml:"required,omitempty"`

	// LineBreakIsMulti splits values on line breaks into one output per line.
	LineBreakIsMulti bool `yaml:"lineBreakIsMulti,omitempty"`

	// Pattern and Replacement rewrite the source text. The pattern must match
	// the whole value; non-matching values are dropped.
	Pattern     string  `yaml:"pattern,omitempty"`
	Replacement *string `yaml:"replacement,omitempty"`

	// VerifyURL enables the HEAD check of url converters. Nil means enabled.
	VerifyURL *bool `yaml:"verifyURL,omitempty"`

	// VerifyPattern and VerifyReplacement derive the URL that is checked.
	VerifyPattern     string  `yaml:"verifyPattern,omitempty"`
	VerifyReplacement *string `yaml:"verifyReplacement,omitempty"`

	// ExternalService is the service URL template; it must contain $1.
	ExternalService string `yaml:"externalService,omitempty"`

	// ExtPattern and ExtReplacement extract the value from the service response.
	ExtPattern     string  `yaml:"extPattern,omitempty"`
	ExtReplacement *string `yaml:"extReplacement,omitempty"`

	// RenditionName and RenditionState select the rendition for SourceRendition.
	RenditionName  string `yaml:"renditionName,omitempty"`
	RenditionState string `yaml:"renditionState,omitempty"`
}

// Validate checks the invariants shared by all converter variants.
func (s ConverterSpec) Validate() error {
	if s.Source == "" {
		return fmt.Errorf("converter for dest %q has no source: %w", s.Dest, ErrInvalidConfig)
	}
	if s.Dest == "" {
		return fmt.Errorf("converter for source %q has no dest: %w", s.Source, ErrInvalidConfig)
	}
	if s.DestType == "" {
		return fmt.Errorf("converter %s has no destType: %w", s.Name(), ErrInvalidConfig)
	}
	if !s.SourceType.Valid() {
		return fmt.Errorf("converter %s has sourceType %q: %w", s.Name(), s.SourceType, ErrUnsupportedType)
	}
	return nil
}

// Name identifies the converter in logs, e.g. "Titel->title".
func (s ConverterSpec) Name() string {
	return s.Source + "->" + s.Dest
}

// SourceKindOr returns the configured source kind, or def when none is set.
func (s ConverterSpec) SourceKindOr(def SourceKind) SourceKind {
	if s.SourceType == "" {
		return def
	}
	return s.SourceType
}

// Rendition returns the rendition criteria with defaults applied.
func (s ConverterSpec) Rendition() RenditionCriteria {
	c := RenditionCriteria{Name: s.RenditionName, State: s.RenditionState}
	if c.Name == "" {
		c.Name = DefaultRenditionName
	}
	if c.State == "" {
		c.State = DefaultRenditionState
	}
	return c
}

// VerifyEnabled reports whether url verification is on (default true).
func (s ConverterSpec) VerifyEnabled() bool {
	return s.VerifyURL == nil || *s.VerifyURL
}

// RenditionCriteria selects one row of a rendition table.
type RenditionCriteria struct {
	Name  string
	State string
}
