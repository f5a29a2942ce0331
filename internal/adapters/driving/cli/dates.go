package cli

import (
	"github.com/spf13/cobra"

	"github.com/kb-dk/ds-cumulus-export/internal/datetime"
)

var datesZone string

var datesCmd = &cobra.Command{
	Use:   "dates <value>...",
	Short: "Show how date values are normalised",
	Long: `Prints the point-in-time and the range normalisation of each value,
or "-" when the value is not recognised.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDates,
}

func init() {
	datesCmd.Flags().StringVar(&datesZone, "zone", datetime.DefaultZone, "zone of values without offset")
	rootCmd.AddCommand(datesCmd)
}

func runDates(cmd *cobra.Command, args []string) error {
	n, err := datetime.NewForZone(datesZone)
	if err != nil {
		return err
	}
	for _, value := range args {
		point, err := n.UTCTime(value)
		if err != nil {
			point = "-"
		}
		rng, err := n.UTCTimeRange(value)
		if err != nil {
			rng = "-"
		}
		cmd.Printf("%q\n  point: %s\n  range: %s\n", value, point, rng)
	}
	return nil
}
