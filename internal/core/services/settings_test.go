package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kb-dk/ds-cumulus-export/internal/adapters/driven/storage/memory"
	"github.com/kb-dk/ds-cumulus-export/internal/core/domain"
)

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	settings, err := service.Get()
	require.NoError(t, err)

	assert.Equal(t, service.GetDefaults(), *settings)
	assert.NoError(t, service.Validate())
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		keyCollection:  "Luftfoto",
		keyFormat:      "jsonl",
		keyWorkers:     int64(4),
		keyMaxRecords:  int64(0),
		keyMappingName: "aerial",
		keyHTTPRate:    2.5,
		keyESAddresses: []any{"http://es:9200"},
		keyStoreDir:    "/var/lib/export",
	})
	service := NewSettingsService(store)

	settings, err := service.Get()
	require.NoError(t, err)

	assert.Equal(t, "Luftfoto", settings.Collection)
	assert.Equal(t, domain.DefaultType, settings.Type)
	assert.Equal(t, domain.FormatJSONL, settings.Format)
	assert.Equal(t, 4, settings.Workers)
	assert.Equal(t, 0, settings.MaxRecords, "explicit zero is kept")
	assert.Equal(t, "aerial", settings.Mapping.Name)
	assert.Equal(t, domain.DefaultMappingFile, settings.Mapping.File)
	assert.InDelta(t, 2.5, settings.HTTP.RequestsPerSecond, 1e-9)
	assert.Equal(t, []string{"http://es:9200"}, settings.Elasticsearch.Addresses)
	assert.Equal(t, "/var/lib/export", settings.StoreDir)
}

func TestSettingsService_Validate_UnknownFormat(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{keyFormat: "csv"})
	service := NewSettingsService(store)

	err := service.Validate()
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	settings := service.GetDefaults()
	settings.Collection = "Luftfoto"
	settings.Workers = 8
	settings.MaxRecords = 100
	settings.Format = domain.FormatElasticsearch

	require.NoError(t, service.Save(&settings))
	assert.Equal(t, 1, store.Saves())

	got, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, settings, *got)
}
