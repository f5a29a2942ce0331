package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kb-dk/ds-cumulus-export/internal/adapters/driven/storage/sqlite"
	"github.com/kb-dk/ds-cumulus-export/internal/core/ports/driven"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List journalled export runs",
	Long: `Lists the most recent export runs recorded in the run journal.
The journal is kept when store.dir is configured.`,
	Args: cobra.NoArgs,
	RunE: runRunsList,
}

var runsSkippedCmd = &cobra.Command{
	Use:   "skipped <run-id>",
	Short: "List the records a run skipped",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsSkipped,
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "number of runs shown, 0 for all")
	runsCmd.AddCommand(runsSkippedCmd)
	rootCmd.AddCommand(runsCmd)
}

// openRunStore opens the configured journal. The returned function closes it.
func openRunStore() (driven.RunStore, func() error, error) {
	if settingsService == nil {
		return nil, nil, errors.New("settings service not configured")
	}
	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get settings: %w", err)
	}
	if settings.StoreDir == "" {
		return nil, nil, errors.New("no run journal: store.dir is not configured")
	}
	store, err := sqlite.NewStore(settings.StoreDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open run journal: %w", err)
	}
	return store.RunStore(), store.Close, nil
}

func runRunsList(cmd *cobra.Command, _ []string) error {
	runs, closeStore, err := openRunStore()
	if err != nil {
		return err
	}
	defer closeStore()

	list, err := runs.ListRuns(cmd.Context(), runsLimit)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		cmd.Println("No runs recorded.")
		return nil
	}
	for _, run := range list {
		cmd.Printf("%s  %s  processed=%d written=%d skipped=%d  %s\n",
			run.RunID, run.Started.Local().Format(time.DateTime),
			run.Processed, run.Written, run.Skipped, run.Duration().Round(time.Millisecond))
	}
	return nil
}

func runRunsSkipped(cmd *cobra.Command, args []string) error {
	runs, closeStore, err := openRunStore()
	if err != nil {
		return err
	}
	defer closeStore()

	if _, err := runs.GetRun(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("run %s: %w", args[0], err)
	}
	skipped, err := runs.ListSkipped(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	for _, rec := range skipped {
		cmd.Printf("#%d %s: %s\n", rec.Position, orDefault(rec.RecordID, "(no id)"), rec.Reason)
	}
	cmd.Printf("%d skipped records\n", len(skipped))
	return nil
}
