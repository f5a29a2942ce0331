package converters

import (
	"context"

	"github.com/kb-dk/ds-cumulus-export/internal/core/domain"
	"github.com/kb-dk/ds-cumulus-export/internal/core/ports/driven"
	"github.com/kb-dk/ds-cumulus-export/internal/datetime"
	"github.com/kb-dk/ds-cumulus-export/internal/logger"
)

// dateConverter normalises dates through a datetime.Normalizer path.
type dateConverter struct {
	spec      domain.ConverterSpec
	normalise func(string) (string, error)
}

func buildDatetime(dates *datetime.Normalizer) BuilderFunc {
	return func(spec domain.ConverterSpec) (driven.Converter, error) {
		return &dateConverter{
			spec:      spec,
			normalise: func(s string) (string, error) { return dates.UTCTime(s) },
		}, nil
	}
}

func buildDatetimeRange(dates *datetime.Normalizer) BuilderFunc {
	return func(spec domain.ConverterSpec) (driven.Converter, error) {
		return &dateConverter{spec: spec, normalise: dates.UTCTimeRange}, nil
	}
}

func (c *dateConverter) Convert(_ context.Context, rec driven.Record, out *domain.FieldValues) error {
	values, err := sourceValues(rec, c.spec, domain.SourceString)
	if err != nil {
		return err
	}
	for _, v := range values {
		res, err := c.normalise(v)
		if err != nil {
			logger.Debug("%s: %v", c.spec.Name(), err)
			continue
		}
		out.Add(c.spec.Dest, res)
	}
	return nil
}
