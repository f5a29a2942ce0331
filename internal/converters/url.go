package converters

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kb-dk/ds-cumulus-export/internal/core/domain"
	"github.com/kb-dk/ds-cumulus-export/internal/core/ports/driven"
	"github.com/kb-dk/ds-cumulus-export/internal/logger"
)

// urlConverter emits the source value once a HEAD request for the URL
// derived from it answers 200 OK. The pattern and verify pattern only build
// the URL to check. A value the pattern does not match is passed through
// unverified.
type urlConverter struct {
	*stringConverter
	verify *rewrite
	web    driven.WebClient
}

func buildURL(web driven.WebClient) BuilderFunc {
	return func(spec domain.ConverterSpec) (driven.Converter, error) {
		base, err := newStringConverter(spec)
		if err != nil {
			return nil, err
		}
		verify, err := compileRewrite(spec.VerifyPattern, spec.VerifyReplacement, "verify")
		if err != nil {
			return nil, err
		}
		if spec.VerifyEnabled() && web == nil {
			return nil, fmt.Errorf("url verification needs a web client: %w", domain.ErrInvalidConfig)
		}
		return &urlConverter{stringConverter: base, verify: verify, web: web}, nil
	}
}

func (c *urlConverter) Convert(ctx context.Context, rec driven.Record, out *domain.FieldValues) error {
	values, err := sourceValues(rec, c.spec, domain.SourceString)
	if err != nil {
		return err
	}
	for _, v := range values {
		candidate, ok := c.candidate(v)
		if !ok || !c.spec.VerifyEnabled() || c.verified(ctx, rec, candidate) {
			out.Add(c.spec.Dest, v)
		}
	}
	return nil
}

func (c *urlConverter) verified(ctx context.Context, rec driven.Record, candidate string) bool {
	target, ok := c.verify.Apply(candidate)
	if !ok || target == "" {
		logger.Debug("%s: %q does not match verify pattern %q", c.spec.Name(), candidate, c.spec.VerifyPattern)
		return false
	}
	log := logger.WithRecord(rec.ID()).WithField("converter", c.spec.Name())
	status, err := c.web.Head(ctx, target)
	if err != nil {
		log.WithError(err).Warnf("unable to verify %s", target)
		return false
	}
	if status != http.StatusOK {
		log.Warnf("verification of %s returned status %d", target, status)
		return false
	}
	return true
}
