package converters

import (
	"context"
	"fmt"
	"strings"

	"github.com/kb-dk/ds-cumulus-export/internal/core/domain"
	"github.com/kb-dk/ds-cumulus-export/internal/core/ports/driven"
	"github.com/kb-dk/ds-cumulus-export/internal/logger"
)

// ServicePlaceholder marks where the value goes in an external service URL.
const ServicePlaceholder = "$1"

// externalConverter substitutes the value into a service URL and emits the
// response body, optionally rewritten by extPattern.
type externalConverter struct {
	*stringConverter
	extract *rewrite
	web     driven.WebClient
}

func buildExternal(web driven.WebClient) BuilderFunc {
	return func(spec domain.ConverterSpec) (driven.Converter, error) {
		if !strings.Contains(spec.ExternalService, ServicePlaceholder) {
			return nil, fmt.Errorf("externalService %q lacks %s: %w", spec.ExternalService, ServicePlaceholder, domain.ErrInvalidConfig)
		}
		if web == nil {
			return nil, fmt.Errorf("external service needs a web client: %w", domain.ErrInvalidConfig)
		}
		base, err := newStringConverter(spec)
		if err != nil {
			return nil, err
		}
		extract, err := compileRewrite(spec.ExtPattern, spec.ExtReplacement, "ext")
		if err != nil {
			return nil, err
		}
		return &externalConverter{stringConverter: base, extract: extract, web: web}, nil
	}
}

func (c *externalConverter) Convert(ctx context.Context, rec driven.Record, out *domain.FieldValues) error {
	values, err := sourceValues(rec, c.spec, domain.SourceString)
	if err != nil {
		return err
	}
	for _, v := range values {
		candidate, ok := c.candidate(v)
		if !ok {
			continue
		}
		if res, ok := c.lookup(ctx, rec, candidate); ok {
			out.Add(c.spec.Dest, res)
		}
	}
	return nil
}

func (c *externalConverter) lookup(ctx context.Context, rec driven.Record, value string) (string, bool) {
	url := strings.ReplaceAll(c.spec.ExternalService, ServicePlaceholder, value)
	body, err := c.web.Get(ctx, url)
	if err != nil {
		logger.WithRecord(rec.ID()).WithField("converter", c.spec.Name()).
			WithError(err).Warnf("external lookup %s failed", url)
		return "", false
	}
	res, ok := c.extract.Apply(body)
	if !ok {
		logger.Debug("%s: response from %s does not match %q", c.spec.Name(), url, c.spec.ExtPattern)
		return "", false
	}
	return res, res != ""
}
