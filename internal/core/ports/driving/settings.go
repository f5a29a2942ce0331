package driving

import "github.com/kb-dk/ds-cumulus-export/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current settings, defaults filled in.
	Get() (*domain.ExportSettings, error)

	// Save persists settings.
	Save(settings *domain.ExportSettings) error

	// Validate checks the current settings.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.ExportSettings
}
