package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kb-dk/ds-cumulus-export/internal/core/services"
)

var statsTop int

var statsCmd = &cobra.Command{
	Use:   "stats [records.jsonl]",
	Short: "Show the most frequent values per output field",
	Long: `Maps the records with the configured mapping and counts the values
produced for every output field. Skipped records are not counted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStats,
}

func init() {
	statsCmd.Flags().IntVar(&statsTop, "top", services.DefaultTopValues, "values shown per field")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	settings, err := exportSettings(cmd)
	if err != nil {
		return err
	}
	mapper, err := buildMapper(settings)
	if err != nil {
		return err
	}

	input := ""
	if len(args) > 0 {
		input = args[0]
	}
	source, err := openRecords(input, cmd.InOrStdin())
	if err != nil {
		return err
	}
	defer source.Close()

	stats, err := services.NewStatsCollector(mapper, statsTop).Collect(cmd.Context(), source)
	if err != nil {
		return fmt.Errorf("failed to collect statistics: %w", err)
	}

	for _, stat := range stats {
		cmd.Printf("%s (%d values)\n", stat.Field, stat.Total)
		for _, v := range stat.Values {
			cmd.Printf("  %6d  %s\n", v.Count, v.Value)
		}
	}
	return nil
}
