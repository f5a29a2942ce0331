package domain

import (
	"fmt"
	"strings"
)

// OutputFormat selects the document writer.
type OutputFormat string

// Available output formats.
const (
	// FormatSolr writes a Solr XML update document.
	FormatSolr OutputFormat = "solr"

	// FormatJSONL writes one JSON object per record.
	FormatJSONL OutputFormat = "jsonl"

	// FormatElasticsearch bulk-indexes records into an index.
	FormatElasticsearch OutputFormat = "elasticsearch"
)

// IsValid returns true if the format is recognised.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatSolr, FormatJSONL, FormatElasticsearch:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (f OutputFormat) String() string {
	return string(f)
}

// Description returns a human-readable description of the format.
func (f OutputFormat) Description() string {
	switch f {
	case FormatSolr:
		return "Solr XML update document"
	case FormatJSONL:
		return "JSON lines"
	case FormatElasticsearch:
		return "Elasticsearch bulk index"
	default:
		return "Unknown"
	}
}

// AllOutputFormats returns all valid output formats.
func AllOutputFormats() []OutputFormat {
	return []OutputFormat{FormatSolr, FormatJSONL, FormatElasticsearch}
}

// ExportSettings is the explicit configuration of an export run.
type ExportSettings struct {
	// Collection and Type are emitted as static fields on every document.
	Collection string
	Type       string

	// Output is the destination file. Empty or "-" means stdout.
	Output string
	Format OutputFormat

	// Workers bounds the number of records mapped concurrently.
	Workers int

	// MaxRecords limits the batch. -1 means all records.
	MaxRecords int

	Mapping       MappingSettings
	TimeZone      string
	HTTP          HTTPSettings
	Elasticsearch ElasticsearchSettings

	// StoreDir holds the run journal. Empty disables journalling.
	StoreDir string
}

// MappingSettings locates the mapping document.
type MappingSettings struct {
	File string
	Name string
}

// HTTPSettings configures url verification and external lookups.
type HTTPSettings struct {
	TimeoutSeconds    int
	RequestsPerSecond float64
	Burst             int
}

// ElasticsearchSettings configures the elasticsearch writer.
type ElasticsearchSettings struct {
	Addresses []string
	Index     string
}

// Defaults.
const (
	DefaultCollection  = "Samlingsbilleder"
	DefaultType        = "image"
	DefaultMappingFile = "mapping.yaml"
	DefaultMappingName = "default"
	DefaultTimeZone    = "Europe/Copenhagen"
	DefaultIndex       = "cumulus"
)

// DefaultExportSettings returns the settings used when nothing is configured.
func DefaultExportSettings() ExportSettings {
	return ExportSettings{
		Collection: DefaultCollection,
		Type:       DefaultType,
		Format:     FormatSolr,
		Workers:    1,
		MaxRecords: -1,
		Mapping: MappingSettings{
			File: DefaultMappingFile,
			Name: DefaultMappingName,
		},
		TimeZone: DefaultTimeZone,
		HTTP: HTTPSettings{
			TimeoutSeconds:    10,
			RequestsPerSecond: 0,
			Burst:             1,
		},
		Elasticsearch: ElasticsearchSettings{
			Addresses: []string{"http://localhost:9200"},
			Index:     DefaultIndex,
		},
	}
}

// Validate checks the settings for internal consistency.
func (s ExportSettings) Validate() error {
	var problems []string
	if s.Collection == "" {
		problems = append(problems, "collection is empty")
	}
	if s.Type == "" {
		problems = append(problems, "type is empty")
	}
	if !s.Format.IsValid() {
		problems = append(problems, fmt.Sprintf("unknown format %q", s.Format))
	}
	if s.Workers < 1 {
		problems = append(problems, "workers must be at least 1")
	}
	if s.MaxRecords < -1 {
		problems = append(problems, "max_records must be -1 or more")
	}
	if s.Mapping.File == "" {
		problems = append(problems, "mapping file is empty")
	}
	if s.HTTP.TimeoutSeconds < 0 || s.HTTP.RequestsPerSecond < 0 || s.HTTP.Burst < 0 {
		problems = append(problems, "http limits must not be negative")
	}
	if s.Format == FormatElasticsearch && (len(s.Elasticsearch.Addresses) == 0 || s.Elasticsearch.Index == "") {
		problems = append(problems, "elasticsearch needs addresses and an index")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%s: %w", strings.Join(problems, "; "), ErrInvalidConfig)
	}
	return nil
}

// Unlimited reports whether the batch has no record limit.
func (s ExportSettings) Unlimited() bool {
	return s.MaxRecords < 0
}
