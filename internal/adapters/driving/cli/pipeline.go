package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kb-dk/ds-cumulus-export/internal/adapters/driven/config/file"
	"github.com/kb-dk/ds-cumulus-export/internal/adapters/driven/records/jsonl"
	"github.com/kb-dk/ds-cumulus-export/internal/adapters/driven/web"
	"github.com/kb-dk/ds-cumulus-export/internal/adapters/driven/writer/elasticsearch"
	jsonlwriter "github.com/kb-dk/ds-cumulus-export/internal/adapters/driven/writer/jsonl"
	"github.com/kb-dk/ds-cumulus-export/internal/adapters/driven/writer/solr"
	"github.com/kb-dk/ds-cumulus-export/internal/converters"
	"github.com/kb-dk/ds-cumulus-export/internal/core/domain"
	"github.com/kb-dk/ds-cumulus-export/internal/core/ports/driven"
	"github.com/kb-dk/ds-cumulus-export/internal/core/services"
	"github.com/kb-dk/ds-cumulus-export/internal/datetime"
)

// Static fields added to every document.
const (
	collectionField = "collection"
	typeField       = "type"
)

// newRegistry creates the converter registry for settings.
func newRegistry(settings *domain.ExportSettings) (*converters.Registry, error) {
	dates, err := datetime.NewForZone(settings.TimeZone)
	if err != nil {
		return nil, err
	}
	client := web.NewClient(
		web.WithTimeout(time.Duration(settings.HTTP.TimeoutSeconds)*time.Second),
		web.WithRateLimit(web.RateLimitConfig{
			RequestsPerSecond: settings.HTTP.RequestsPerSecond,
			BurstSize:         settings.HTTP.Burst,
		}),
	)
	return converters.NewDefaultRegistry(converters.Dependencies{Dates: dates, Web: client})
}

// buildMapper loads the configured mapping and builds a field mapper with
// the collection and type static fields.
func buildMapper(settings *domain.ExportSettings) (*services.FieldMapper, error) {
	registry, err := newRegistry(settings)
	if err != nil {
		return nil, err
	}
	specs, err := file.LoadMapping(settings.Mapping.File, settings.Mapping.Name)
	if err != nil {
		return nil, err
	}
	entries, err := registry.BuildAll(specs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", settings.Mapping.File, err)
	}

	convs := make([]driven.Converter, len(entries))
	for i, e := range entries {
		convs[i] = e
	}
	mapper := services.NewFieldMapper(convs...)
	if err := mapper.PutStatic(collectionField, settings.Collection); err != nil {
		return nil, err
	}
	if err := mapper.PutStatic(typeField, settings.Type); err != nil {
		return nil, err
	}
	return mapper, nil
}

// openRecords opens the records file at path. Empty or "-" reads stdin.
func openRecords(path string, stdin io.Reader) (driven.RecordSource, error) {
	if path == "" || path == "-" {
		return jsonl.NewSource(stdin), nil
	}
	return jsonl.Open(path)
}

// nopCloser is returned when the writer does not own its destination.
func nopCloser() error { return nil }

// openWriter creates the document writer for the configured format. The
// returned function releases the output file, if any, after the writer has
// been closed.
func openWriter(settings *domain.ExportSettings, stdout io.Writer) (driven.DocumentWriter, func() error, error) {
	if settings.Format == domain.FormatElasticsearch {
		w, err := elasticsearch.NewWriter(elasticsearch.Config{
			Addresses: settings.Elasticsearch.Addresses,
			Index:     settings.Elasticsearch.Index,
		})
		return w, nopCloser, err
	}

	out, release := stdout, nopCloser
	if settings.Output != "" && settings.Output != "-" {
		f, err := os.Create(settings.Output)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create output: %w", err)
		}
		out, release = f, f.Close
	}

	switch settings.Format {
	case domain.FormatJSONL:
		return jsonlwriter.NewWriter(out), release, nil
	case domain.FormatSolr:
		return solr.NewWriter(out), release, nil
	default:
		release()
		return nil, nil, fmt.Errorf("format %q: %w", settings.Format, domain.ErrUnsupportedType)
	}
}
