package services

import (
	"github.com/kb-dk/ds-cumulus-export/internal/core/domain"
	"github.com/kb-dk/ds-cumulus-export/internal/core/ports/driven"
	"github.com/kb-dk/ds-cumulus-export/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyCollection  = "export.collection"
	keyType        = "export.type"
	keyOutput      = "export.output"
	keyFormat      = "export.format"
	keyWorkers     = "export.workers"
	keyMaxRecords  = "export.max_records"
	keyMappingFile = "mapping.file"
	keyMappingName = "mapping.map"
	keyTimeZone    = "calendar.timezone"
	keyHTTPTimeout = "http.timeout_seconds"
	keyHTTPRate    = "http.requests_per_second"
	keyHTTPBurst   = "http.burst"
	keyESAddresses = "elasticsearch.addresses"
	keyESIndex     = "elasticsearch.index"
	keyStoreDir    = "store.dir"
)

// SettingsService reads and writes ExportSettings through a ConfigStore.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current settings. Unset keys take their defaults.
func (s *SettingsService) Get() (*domain.ExportSettings, error) {
	defaults := domain.DefaultExportSettings()

	settings := &domain.ExportSettings{
		Collection: s.getString(keyCollection, defaults.Collection),
		Type:       s.getString(keyType, defaults.Type),
		Output:     s.configStore.GetString(keyOutput),
		Format:     s.getFormat(defaults.Format),
		Workers:    s.getInt(keyWorkers, defaults.Workers),
		MaxRecords: s.getIntAllowZero(keyMaxRecords, defaults.MaxRecords),
		Mapping: domain.MappingSettings{
			File: s.getString(keyMappingFile, defaults.Mapping.File),
			Name: s.getString(keyMappingName, defaults.Mapping.Name),
		},
		TimeZone: s.getString(keyTimeZone, defaults.TimeZone),
		HTTP: domain.HTTPSettings{
			TimeoutSeconds:    s.getInt(keyHTTPTimeout, defaults.HTTP.TimeoutSeconds),
			RequestsPerSecond: s.getFloat(keyHTTPRate, defaults.HTTP.RequestsPerSecond),
			Burst:             s.getInt(keyHTTPBurst, defaults.HTTP.Burst),
		},
		Elasticsearch: domain.ElasticsearchSettings{
			Addresses: s.getStringSlice(keyESAddresses, defaults.Elasticsearch.Addresses),
			Index:     s.getString(keyESIndex, defaults.Elasticsearch.Index),
		},
		StoreDir: s.configStore.GetString(keyStoreDir),
	}

	return settings, nil
}

// Save persists settings.
func (s *SettingsService) Save(settings *domain.ExportSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyCollection, settings.Collection},
		{keyType, settings.Type},
		{keyOutput, settings.Output},
		{keyFormat, settings.Format.String()},
		{keyWorkers, settings.Workers},
		{keyMaxRecords, settings.MaxRecords},
		{keyMappingFile, settings.Mapping.File},
		{keyMappingName, settings.Mapping.Name},
		{keyTimeZone, settings.TimeZone},
		{keyHTTPTimeout, settings.HTTP.TimeoutSeconds},
		{keyHTTPRate, settings.HTTP.RequestsPerSecond},
		{keyHTTPBurst, settings.HTTP.Burst},
		{keyESAddresses, settings.Elasticsearch.Addresses},
		{keyESIndex, settings.Elasticsearch.Index},
		{keyStoreDir, settings.StoreDir},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return err
		}
	}
	return s.configStore.Save()
}

// Validate checks the current settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.ExportSettings {
	return domain.DefaultExportSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

// getIntAllowZero treats an explicit 0 as a value rather than "unset".
func (s *SettingsService) getIntAllowZero(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	val := s.configStore.GetStringSlice(key)
	if len(val) == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFormat(defaultVal domain.OutputFormat) domain.OutputFormat {
	val := s.configStore.GetString(keyFormat)
	if val == "" {
		return defaultVal
	}
	// Unknown formats are kept so that Validate can report them.
	return domain.OutputFormat(val)
}
