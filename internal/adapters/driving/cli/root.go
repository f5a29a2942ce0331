// Package cli implements the ds-cumulus-export command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kb-dk/ds-cumulus-export/internal/adapters/driven/config/file"
	"github.com/kb-dk/ds-cumulus-export/internal/core/ports/driving"
	"github.com/kb-dk/ds-cumulus-export/internal/core/services"
	"github.com/kb-dk/ds-cumulus-export/internal/logger"
)

var (
	version = "dev"

	configPath string
	verbose    bool
	logFormat  string

	// settingsService is created from --config unless already set.
	settingsService driving.SettingsService
)

var rootCmd = &cobra.Command{
	Use:   "ds-cumulus-export",
	Short: "Export Cumulus catalog records as search documents",
	Long: `ds-cumulus-export maps catalog records to search-engine documents.

A YAML mapping document declares, per output field, which catalog field to
read and how to convert it. Records are read from JSON lines and written as
Solr XML, JSON lines or directly into Elasticsearch.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"settings file (default ~/.ds-cumulus-export/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetFormat(logFormat)
	logger.SetVerbose(verbose)

	if settingsService != nil {
		return nil
	}
	store, err := file.NewConfigStore(configPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	settingsService = services.NewSettingsService(store)
	return nil
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
