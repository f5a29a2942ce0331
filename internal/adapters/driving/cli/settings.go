package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kb-dk/ds-cumulus-export/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the export settings: collection, output format,
mapping document, calendar zone and network limits.

Use subcommands to write the defaults or to choose the output format.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default settings",
	RunE:  runSettingsInit,
}

var settingsFormatCmd = &cobra.Command{
	Use:   "format",
	Short: "Set the output format",
	Long: `Set the output format used by export.

Available formats:
  solr          - Solr XML update document
  jsonl         - JSON lines
  elasticsearch - Elasticsearch bulk index`,
	RunE: runSettingsFormat,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsInitCmd)
	settingsCmd.AddCommand(settingsFormatCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Export]")
	cmd.Printf("  Collection: %s\n", settings.Collection)
	cmd.Printf("  Type: %s\n", settings.Type)
	cmd.Printf("  Format: %s\n", settings.Format.Description())
	cmd.Printf("  Output: %s\n", orDefault(settings.Output, "(stdout)"))
	cmd.Printf("  Workers: %d\n", settings.Workers)
	if settings.Unlimited() {
		cmd.Printf("  Max records: all\n")
	} else {
		cmd.Printf("  Max records: %d\n", settings.MaxRecords)
	}
	cmd.Println()

	cmd.Println("[Mapping]")
	cmd.Printf("  File: %s\n", settings.Mapping.File)
	cmd.Printf("  Map: %s\n", settings.Mapping.Name)
	cmd.Printf("  Time zone: %s\n", settings.TimeZone)
	cmd.Println()

	cmd.Println("[HTTP]")
	cmd.Printf("  Timeout: %ds\n", settings.HTTP.TimeoutSeconds)
	if settings.HTTP.RequestsPerSecond > 0 {
		cmd.Printf("  Rate: %g/s (burst %d)\n", settings.HTTP.RequestsPerSecond, settings.HTTP.Burst)
	} else {
		cmd.Printf("  Rate: unlimited\n")
	}
	cmd.Println()

	if settings.Format == domain.FormatElasticsearch {
		cmd.Println("[Elasticsearch]")
		cmd.Printf("  Addresses: %s\n", strings.Join(settings.Elasticsearch.Addresses, ", "))
		cmd.Printf("  Index: %s\n", settings.Elasticsearch.Index)
		cmd.Println()
	}

	cmd.Println("[Run journal]")
	cmd.Printf("  Directory: %s\n", orDefault(settings.StoreDir, "(disabled)"))
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsInit(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	defaults := settingsService.GetDefaults()
	if err := settingsService.Save(&defaults); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	cmd.Println("Default settings written.")
	return nil
}

func runSettingsFormat(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Select Output Format")
	cmd.Println("--------------------")
	formats := domain.AllOutputFormats()
	for i, f := range formats {
		cmd.Printf("  %d. %s\n", i+1, f.Description())
	}
	cmd.Print("\nEnter choice: ")
	idx := parseChoice(readLine(reader), len(formats), 0)
	if idx == 0 {
		return errors.New("invalid selection")
	}

	settings.Format = formats[idx-1]
	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	cmd.Printf("Output format set to: %s\n", settings.Format.Description())
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
